package xdist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewLocalGroup_InvalidSize(t *testing.T) {
	_, err := NewLocalGroup(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestLocalGroup_Member(t *testing.T) {
	g, err := NewLocalGroup(3)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Size())

	m, err := g.Member(2)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rank())
	assert.Equal(t, 3, m.Size())

	_, err = g.Member(3)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = g.Member(-1)
	assert.ErrorIs(t, err, ErrInvalidRank)
}

func TestLocalGroup_Gather(t *testing.T) {
	const size = 4
	g, err := NewLocalGroup(size)
	require.NoError(t, err)
	members := g.Members()

	for _, root := range []int{0, 2} {
		results := make([][][]byte, size)
		var eg errgroup.Group
		for rank, m := range members {
			eg.Go(func() error {
				out, err := m.Gather(context.Background(), root, fmt.Appendf(nil, "rank-%d", rank))
				results[rank] = out
				return err
			})
		}
		require.NoError(t, eg.Wait())

		for rank := range size {
			if rank != root {
				assert.Nil(t, results[rank])
				continue
			}
			require.Len(t, results[rank], size)
			for i, p := range results[rank] {
				assert.Equal(t, fmt.Sprintf("rank-%d", i), string(p))
			}
		}
	}

	g.mu.Lock()
	assert.Empty(t, g.rounds, "completed rounds are released")
	g.mu.Unlock()
}

func TestLocalGroup_GatherCopiesPayload(t *testing.T) {
	g, err := NewLocalGroup(1)
	require.NoError(t, err)
	m, _ := g.Member(0)

	payload := []byte("abc")
	out, err := m.Gather(context.Background(), 0, payload)
	require.NoError(t, err)
	payload[0] = 'x'
	assert.Equal(t, "abc", string(out[0]))
}

func TestLocalGroup_GatherTimeout(t *testing.T) {
	g, err := NewLocalGroup(2)
	require.NoError(t, err)
	root, _ := g.Member(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = root.Gather(ctx, 0, []byte("alone"))
	require.ErrorIs(t, err, ErrGatherTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	g.mu.Lock()
	assert.Empty(t, g.rounds, "abandoned rounds are released")
	g.mu.Unlock()
}

func TestLocalGroup_InvalidRoot(t *testing.T) {
	g, err := NewLocalGroup(2)
	require.NoError(t, err)
	a, _ := g.Member(0)
	b, _ := g.Member(1)

	_, err = a.Gather(context.Background(), 5, nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)

	// 同一轮中 root 不一致
	_, err = b.Gather(context.Background(), 0, nil)
	require.NoError(t, err)
	_, err = a.Gather(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestLocalGroup_DuplicateRank(t *testing.T) {
	g, err := NewLocalGroup(2)
	require.NoError(t, err)
	first, _ := g.Member(1)
	second, _ := g.Member(1)

	_, err = first.Gather(context.Background(), 0, nil)
	require.NoError(t, err)
	_, err = second.Gather(context.Background(), 0, nil)
	assert.ErrorIs(t, err, ErrDuplicateRank)
}
