package xgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
)

// scope 模拟一次 Bundle 的进入与退出。
func scope(g *Graph[int64], r *xhash.Registry, label string, v int64, body func()) {
	i := g.Enter(r.Intern(label), label)
	g.Push(i)
	if body != nil {
		body()
	}
	g.Exit(i, v)
}

func TestGraph_New(t *testing.T) {
	g := New[int64](xcomp.PolicySum)
	assert.True(t, g.Empty())
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, RootIndex, g.Cursor())
	assert.Equal(t, xcomp.PolicySum, g.Policy())
	assert.Empty(t, g.Flatten())
}

func TestGraph_RepeatedEntryReusesNode(t *testing.T) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)
	for i := range 10 {
		scope(g, r, "loop", int64(i), nil)
	}

	assert.Equal(t, 2, g.Len())
	i, ok := g.Find("loop")
	require.True(t, ok)
	st := g.Node(i).Stats
	assert.Equal(t, uint64(10), st.Count)
	assert.Equal(t, int64(45), st.Value)
	assert.Equal(t, int64(0), st.Min)
	assert.Equal(t, int64(9), st.Max)
}

func TestGraph_PathSensitiveIdentity(t *testing.T) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)

	scope(g, r, "A", 1, func() {
		scope(g, r, "B", 2, nil)
	})
	scope(g, r, "B", 3, nil)

	entries := g.Flatten()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"A"}, entries[0].Path)
	assert.Equal(t, []string{"A", "B"}, entries[1].Path)
	assert.Equal(t, 1, entries[1].Depth)
	assert.Equal(t, []string{"B"}, entries[2].Path)
	assert.Equal(t, 0, entries[2].Depth)
	assert.Equal(t, int64(2), entries[1].Stats.Value)
	assert.Equal(t, int64(3), entries[2].Stats.Value)
}

func TestGraph_ChildrenInsertionOrder(t *testing.T) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)
	for _, l := range []string{"z", "a", "m", "a"} {
		scope(g, r, l, 1, nil)
	}
	var got []string
	for _, e := range g.Flatten() {
		got = append(got, e.Path[0])
	}
	assert.Equal(t, []string{"z", "a", "m"}, got)
}

func TestGraph_PopWithoutObservation(t *testing.T) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)
	i := g.Enter(r.Intern("x"), "x")
	g.Push(i)
	assert.Equal(t, i, g.Cursor())
	g.Pop(i)
	assert.Equal(t, RootIndex, g.Cursor())
	assert.Zero(t, g.Node(i).Stats.Count)
}

func TestGraph_WalkStops(t *testing.T) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)
	scope(g, r, "a", 1, nil)
	scope(g, r, "b", 1, nil)

	visited := 0
	g.Walk(func([]string, *Node[int64]) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestGraph_Find(t *testing.T) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)
	scope(g, r, "a", 1, func() { scope(g, r, "b", 1, nil) })

	_, ok := g.Find("a", "b")
	assert.True(t, ok)
	_, ok = g.Find("b")
	assert.False(t, ok)
	root, ok := g.Find()
	assert.True(t, ok)
	assert.Equal(t, RootIndex, root)
}

func BenchmarkGraph_EnterExit(b *testing.B) {
	r := xhash.New()
	g := New[int64](xcomp.PolicySum)
	id := r.Intern("hot")
	b.ReportAllocs()
	for b.Loop() {
		i := g.Enter(id, "hot")
		g.Push(i)
		g.Exit(i, 1)
	}
}
