package xdist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	retry "github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"
)

var _ Communicator = (*Redis)(nil)

// errNotReady 表示仍有 rank 未提交，触发下一次轮询。
var errNotReady = errors.New("xdist: gather not complete")

// Redis 通过 Redis 哈希表实现 Gather。
//
// 每一轮使用键 <prefix>:<session>:gather:<round>，字段为 rank，值为负载。
// 根 rank 轮询 HLEN 直到等于 Size，读取全部字段后删除该键。
type Redis struct {
	client redis.UniversalClient
	rank   int
	size   int
	opts   redisOptions
	round  atomic.Uint64
}

// NewRedis 创建 Redis 通信器。
func NewRedis(client redis.UniversalClient, rank, size int, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if err := checkMembership(rank, size); err != nil {
		return nil, err
	}
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis{client: client, rank: rank, size: size, opts: o}, nil
}

// Rank 返回本成员的编号。
func (r *Redis) Rank() int { return r.rank }

// Size 返回通信组大小。
func (r *Redis) Size() int { return r.size }

func (r *Redis) key(round uint64) string {
	return fmt.Sprintf("%s:%s:gather:%d", r.opts.prefix, r.opts.session, round)
}

// Gather 提交 payload；根 rank 等待全部 rank 后返回按 rank 排序的负载。
func (r *Redis) Gather(ctx context.Context, root int, payload []byte) ([][]byte, error) {
	if err := checkRoot(root, r.size); err != nil {
		return nil, err
	}
	key := r.key(r.round.Add(1) - 1)

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, strconv.Itoa(r.rank), payload)
		p.Expire(ctx, key, r.opts.keyTTL)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("xdist: publish rank %d: %w", r.rank, err)
	}
	if r.rank != root {
		return nil, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.opts.timeout)
	defer cancel()
	if err := r.await(waitCtx, key); err != nil {
		return nil, err
	}

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("xdist: collect %s: %w", key, err)
	}
	out := make([][]byte, r.size)
	for field, value := range fields {
		rank, err := strconv.Atoi(field)
		if err != nil || rank < 0 || rank >= r.size {
			return nil, fmt.Errorf("%w: unexpected field %q in %s", ErrInvalidRank, field, key)
		}
		out[rank] = []byte(value)
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("xdist: cleanup %s: %w", key, err)
	}
	return out, nil
}

func (r *Redis) await(ctx context.Context, key string) error {
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(r.opts.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errNotReady) }),
	).Do(func() error {
		n, err := r.client.HLen(ctx, key).Result()
		if err != nil {
			return err
		}
		if n < int64(r.size) {
			return errNotReady
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return timeoutError(ctx)
	}
	return fmt.Errorf("xdist: poll %s: %w", key, err)
}
