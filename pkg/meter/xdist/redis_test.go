package xdist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestRedis(t *testing.T) (redis.UniversalClient, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr:         mr.Addr(),
		DialTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
		PoolSize:     4,
		MaxRetries:   1,
	})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewRedis_Validation(t *testing.T) {
	_, err := NewRedis(nil, 0, 1)
	assert.ErrorIs(t, err, ErrNilClient)

	client, _ := newTestRedis(t)
	_, err = NewRedis(client, 2, 2)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = NewRedis(client, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	r, err := NewRedis(client, 1, 3, WithKeyPrefix("p"), WithSession("s"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Rank())
	assert.Equal(t, 3, r.Size())
	assert.Equal(t, "p:s:gather:7", r.key(7))
}

func TestRedis_Gather(t *testing.T) {
	client, mr := newTestRedis(t)
	const size = 3

	comms := make([]*Redis, size)
	for rank := range size {
		c, err := NewRedis(client, rank, size, WithSession("run-1"), WithPollInterval(5*time.Millisecond))
		require.NoError(t, err)
		comms[rank] = c
	}

	results := make([][][]byte, size)
	var eg errgroup.Group
	for rank, c := range comms {
		eg.Go(func() error {
			out, err := c.Gather(context.Background(), 0, fmt.Appendf(nil, "payload-%d", rank))
			results[rank] = out
			return err
		})
	}
	require.NoError(t, eg.Wait())

	require.Len(t, results[0], size)
	for i, p := range results[0] {
		assert.Equal(t, fmt.Sprintf("payload-%d", i), string(p))
	}
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
	assert.False(t, mr.Exists("xmeter:run-1:gather:0"), "root deletes the round key")
}

func TestRedis_NonRootSetsTTL(t *testing.T) {
	client, mr := newTestRedis(t)
	c, err := NewRedis(client, 1, 2, WithKeyTTL(time.Minute))
	require.NoError(t, err)

	out, err := c.Gather(context.Background(), 0, []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, "x", mr.HGet("xmeter:default:gather:0", "1"))
	assert.Equal(t, time.Minute, mr.TTL("xmeter:default:gather:0"))
}

func TestRedis_GatherTimeout(t *testing.T) {
	client, _ := newTestRedis(t)
	root, err := NewRedis(client, 0, 2,
		WithGatherTimeout(30*time.Millisecond), WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	_, err = root.Gather(context.Background(), 0, []byte("alone"))
	assert.ErrorIs(t, err, ErrGatherTimeout)
}

func TestRedis_GatherInvalidRoot(t *testing.T) {
	client, _ := newTestRedis(t)
	c, err := NewRedis(client, 0, 1)
	require.NoError(t, err)
	_, err = c.Gather(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestRedis_PublishFailure(t *testing.T) {
	client, mr := newTestRedis(t)
	c, err := NewRedis(client, 0, 1)
	require.NoError(t, err)

	mr.SetError("READONLY")
	_, err = c.Gather(context.Background(), 0, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish rank 0")
}
