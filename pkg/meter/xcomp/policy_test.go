package xcomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "sum", PolicySum.String())
	assert.Equal(t, "max", PolicyMax.String())
	assert.Equal(t, "min", PolicyMin.String())
	assert.Equal(t, "Policy(9)", Policy(9).String())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"sum", PolicySum},
		{" MAX ", PolicyMax},
		{"Min", PolicyMin},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePolicy("avg")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestPolicy_TextRoundTrip(t *testing.T) {
	data, err := PolicyMax.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "max", string(data))

	var p Policy
	require.NoError(t, p.UnmarshalText([]byte("min")))
	assert.Equal(t, PolicyMin, p)

	_, err = Policy(42).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, int64(7), Combine(PolicySum, int64(3), 4))
	assert.Equal(t, int64(4), Combine(PolicyMax, int64(3), 4))
	assert.Equal(t, int64(3), Combine(PolicyMin, int64(3), 4))
	assert.InDelta(t, 2.5, Combine(PolicyMax, 2.5, -1.0), 1e-12)
	// 未知策略按 SUM 处理
	assert.Equal(t, int64(5), Combine(Policy(99), int64(2), 3))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("sample")
	require.NoError(t, err)
	assert.Equal(t, ModeSample, m)
	assert.Equal(t, "delta", ModeDelta.String())

	_, err = ParseMode("rate")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
