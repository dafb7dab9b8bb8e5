package xmeter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmeter/pkg/meter/xreport"
)

func finalize(t *testing.T, m *Manager) *xreport.Report {
	t.Helper()
	rep, err := m.Finalize(context.Background())
	require.NoError(t, err)
	return rep
}

func TestBundle_TotalAndNested(t *testing.T) {
	clock := &manualClock{}
	wall := clockKind("wall", clock)
	m, _ := newTestManager(t, WithKinds(wall))
	th := m.Thread()

	total := th.Start("total")
	clock.advance(100)
	nested := th.Blank()
	for range 3 {
		require.NoError(t, nested.Restart("nested"))
		clock.advance(10)
		nested.Stop()
	}
	clock.advance(5)
	total.Stop()
	th.Exit()

	rep := finalize(t, m)
	k, ok := rep.Kind("wall")
	require.True(t, ok)
	require.Len(t, k.Records, 2)

	assert.Equal(t, xreport.Record{Path: []string{"total"}, Depth: 0, Value: 135, Count: 1, Min: 135, Max: 135}, k.Records[0])
	assert.Equal(t, xreport.Record{Path: []string{"total", "nested"}, Depth: 1, Value: 30, Count: 3, Min: 10, Max: 10}, k.Records[1])
}

func TestBundle_StopIsIdempotent(t *testing.T) {
	clock := &manualClock{}
	m, _ := newTestManager(t, WithKinds(clockKind("wall", clock)))
	th := m.Thread()

	b := th.Start("once")
	clock.advance(7)
	b.Stop()
	clock.advance(7)
	b.Stop()
	assert.False(t, b.Running())
	th.Exit()

	rec, ok := finalize(t, m).Lookup("wall", "once")
	require.True(t, ok)
	assert.Equal(t, uint64(1), rec.Count)
	assert.InDelta(t, 7.0, rec.Value, 0)
}

func TestBundle_DeferAndExplicitStop(t *testing.T) {
	m, _ := newTestManager(t, WithKinds(stepKind("steps")))
	th := m.Thread()
	func() {
		b := th.Start("scope")
		defer b.Stop()
		b.Stop()
	}()
	th.Exit()

	rec, ok := finalize(t, m).Lookup("steps", "scope")
	require.True(t, ok)
	assert.Equal(t, uint64(1), rec.Count)
}

func TestBundle_RepeatedEntryCounts(t *testing.T) {
	m, _ := newTestManager(t, WithKinds(stepKind("steps")))
	th := m.Thread()
	for range 5 {
		th.Start("loop").Stop()
	}
	th.Exit()

	rec, ok := finalize(t, m).Lookup("steps", "loop")
	require.True(t, ok)
	assert.Equal(t, uint64(5), rec.Count)
	assert.InDelta(t, 5.0, rec.Value, 0)
}

func TestBundle_PathSensitive(t *testing.T) {
	m, _ := newTestManager(t, WithKinds(stepKind("steps")))
	th := m.Thread()
	th.Measure("A", func() { th.Measure("B", func() {}) })
	th.Measure("B", func() {})
	th.Exit()

	rep := finalize(t, m)
	ab, ok := rep.Lookup("steps", "A", "B")
	require.True(t, ok)
	assert.Equal(t, 1, ab.Depth)
	b, ok := rep.Lookup("steps", "B")
	require.True(t, ok)
	assert.Equal(t, 0, b.Depth)
}

func TestBundle_MaxPolicy(t *testing.T) {
	clock := &manualClock{}
	peak := gaugeKind("peak", clock)
	m, _ := newTestManager(t, WithKinds(peak))
	th := m.Thread()

	b := th.Start("phase")
	clock.now = 500
	b.Stop()
	v, ok := b.Value(peak)
	require.True(t, ok)
	assert.InDelta(t, 500.0, v, 0)

	b = th.Start("phase")
	clock.now = 300
	b.Stop()
	th.Exit()

	rec, ok := finalize(t, m).Lookup("peak", "phase")
	require.True(t, ok)
	assert.InDelta(t, 500.0, rec.Value, 0)
	assert.InDelta(t, 300.0, rec.Min, 0)
	assert.Equal(t, uint64(2), rec.Count)
}

func TestBundle_RestartWhileRunning(t *testing.T) {
	m, _ := newTestManager(t, WithKinds(stepKind("steps")))
	th := m.Thread()

	b := th.Start("first")
	assert.ErrorIs(t, b.Restart("second"), ErrBundleRunning)
	assert.Equal(t, "first", b.Label())
	b.Stop()
	require.NoError(t, b.Restart("second"))
	b.Stop()
	th.Exit()

	rep := finalize(t, m)
	_, ok := rep.Lookup("steps", "first")
	assert.True(t, ok)
	_, ok = rep.Lookup("steps", "first", "second")
	assert.False(t, ok, "restart after stop opens a sibling")
	_, ok = rep.Lookup("steps", "second")
	assert.True(t, ok)
}

func TestBundle_ReuseAccumulate(t *testing.T) {
	clock := &manualClock{}
	m, _ := newTestManager(t, WithKinds(clockKind("wall", clock)))
	th := m.Thread()

	acc := th.Blank(WithBundleReuse(ReuseAccumulate))
	for range 3 {
		require.NoError(t, acc.Restart("acc"))
		clock.advance(10)
		acc.Stop()
	}
	th.Exit()

	rec, ok := finalize(t, m).Lookup("wall", "acc")
	require.True(t, ok)
	// 每次记录累积值 10、20、30
	assert.InDelta(t, 60.0, rec.Value, 0)
	assert.InDelta(t, 10.0, rec.Min, 0)
	assert.InDelta(t, 30.0, rec.Max, 0)
}

func TestBundle_ManagerReusePolicy(t *testing.T) {
	clock := &manualClock{}
	m, _ := newTestManager(t, WithKinds(clockKind("wall", clock)), WithReusePolicy(ReuseAccumulate))
	th := m.Thread()
	b := th.Blank(WithBundleReuse(ReuseReset))
	for range 2 {
		require.NoError(t, b.Restart("x"))
		clock.advance(4)
		b.Stop()
	}
	th.Exit()

	rec, _ := finalize(t, m).Lookup("wall", "x")
	assert.InDelta(t, 8.0, rec.Value, 0, "bundle option overrides manager policy")
}

func TestBundle_WithBundleKinds(t *testing.T) {
	a, b := stepKind("a"), stepKind("b")
	m, _ := newTestManager(t, WithKinds(a, b))
	th := m.Thread()

	bundle := th.Start("only-b", WithBundleKinds(b, nil))
	assert.Equal(t, []Kind{b}, bundle.Kinds())
	bundle.Stop()
	_, ok := bundle.Value(a)
	assert.False(t, ok)
	th.Exit()

	rep := finalize(t, m)
	_, ok = rep.Lookup("a", "only-b")
	assert.False(t, ok)
	_, ok = rep.Lookup("b", "only-b")
	assert.True(t, ok)
}

func TestBundle_MeasurePanicStopsScope(t *testing.T) {
	m, _ := newTestManager(t, WithKinds(stepKind("steps")))
	th := m.Thread()

	assert.Panics(t, func() {
		th.Measure("outer", func() { panic("boom") })
	})
	th.Measure("after", func() {})
	th.Exit()

	rep := finalize(t, m)
	rec, ok := rep.Lookup("steps", "outer")
	require.True(t, ok)
	assert.Equal(t, uint64(1), rec.Count)
	_, ok = rep.Lookup("steps", "after")
	assert.True(t, ok, "cursor restored after panic")
}

func TestBundle_Inert(t *testing.T) {
	var b Bundle
	assert.NotPanics(t, func() {
		b.Stop()
		require.NoError(t, b.Restart("x"))
		b.Stop()
	})
	assert.False(t, b.Running())
	_, ok := b.Value(WallClock)
	assert.False(t, ok)
}

func TestBundle_StopAfterThreadExitDropped(t *testing.T) {
	m, buf := newTestManager(t, WithKinds(stepKind("steps")))
	th := m.Thread()
	th.Measure("done", func() {})
	b := th.Start("orphan")
	nested := th.Start("nested")
	th.Exit()
	nested.Stop()
	b.Stop()
	assert.NoError(t, b.Restart("orphan"))
	assert.False(t, b.Running())

	rep := finalize(t, m)
	rec, ok := rep.Lookup("steps", "done")
	require.True(t, ok)
	assert.Equal(t, uint64(1), rec.Count)
	_, ok = rep.Lookup("steps", "orphan")
	assert.False(t, ok, "a scope still open at exit leaves no node")
	require.Len(t, rep.Kinds[0].Records, 1)
	assert.Equal(t, 1, strings.Count(buf.String(), "measurement after thread exit dropped"))
}

func TestBundle_OpenScopeAtExitKeepsFinishedChildren(t *testing.T) {
	var c manualClock
	m, _ := newTestManager(t, WithKinds(clockKind("clock", &c)))
	th := m.Thread()
	outer := th.Start("outer")
	inner := th.Start("inner")
	c.advance(4)
	inner.Stop()
	th.Exit()
	outer.Stop()

	rep := finalize(t, m)
	rec, ok := rep.Lookup("clock", "outer", "inner")
	require.True(t, ok)
	assert.InDelta(t, 4, rec.Value, 0)
	parent, ok := rep.Lookup("clock", "outer")
	require.True(t, ok)
	assert.Zero(t, parent.Count)
}

func BenchmarkBundle_StartStop(b *testing.B) {
	m := NewManager(WithKinds(WallClock))
	th := m.Thread()
	b.ReportAllocs()
	for b.Loop() {
		th.Start("hot").Stop()
	}
	th.Exit()
}
