package xmeter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
)

func TestDefaultKinds(t *testing.T) {
	names := make([]string, 0, 3)
	for _, k := range DefaultKinds() {
		names = append(names, k.Name())
	}
	assert.Equal(t, []string{"wall", "cpu", "peak_rss"}, names)
}

func TestLookupKind_CaseInsensitive(t *testing.T) {
	k, ok := LookupKind("  WALL ")
	require.True(t, ok)
	assert.Same(t, WallClock, k)

	_, ok = LookupKind("nope")
	assert.False(t, ok)
}

func TestLookupKinds(t *testing.T) {
	kinds, err := LookupKinds([]string{"cpu", "wall", "CPU"})
	require.NoError(t, err)
	assert.Equal(t, []Kind{CPUClock, WallClock}, kinds)

	_, err = LookupKinds([]string{"wall", "mystery"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKinds_SortedAndComplete(t *testing.T) {
	all := Kinds()
	require.GreaterOrEqual(t, len(all), 18)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name(), all[i].Name())
	}
}

func TestRegisterKind(t *testing.T) {
	custom := stepKind("test_register_custom")
	require.NoError(t, RegisterKind(custom))
	require.NoError(t, RegisterKind(custom), "same kind twice")

	got, ok := LookupKind("test_register_custom")
	require.True(t, ok)
	assert.Same(t, custom, got)

	err := RegisterKind(stepKind("Test_Register_Custom"))
	assert.ErrorIs(t, err, ErrDuplicateKind)

	assert.ErrorIs(t, RegisterKind(nil), ErrNilKind)
}

func TestNewKind_Meta(t *testing.T) {
	k := NewKind(func() xcomp.Component[float64] {
		return xcomp.New[float64](xcomp.Meta{Label: "ratio", Unit: "%", Policy: xcomp.PolicyMin}, nil)
	})
	assert.Equal(t, "ratio", k.Name())
	assert.Equal(t, xcomp.PolicyMin, k.Meta().Policy)
	assert.Equal(t, "%", k.Meta().Unit)
}

func TestReusePolicy(t *testing.T) {
	for in, want := range map[string]ReusePolicy{"": ReuseReset, "Reset": ReuseReset, " accumulate ": ReuseAccumulate} {
		got, err := ParseReusePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseReusePolicy("sometimes")
	assert.ErrorIs(t, err, ErrUnknownReusePolicy)
	assert.Equal(t, "accumulate", ReuseAccumulate.String())
	assert.Equal(t, "reset", ReuseReset.String())
}
