package xdist

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// LocalGroup 在单个进程内模拟一组 rank，成员之间通过内存交换负载。
type LocalGroup struct {
	size int

	mu     sync.Mutex
	rounds map[uint64]*localRound
}

type localRound struct {
	root     int
	payloads [][]byte
	arrived  []bool
	pending  int
	done     chan struct{}
}

// NewLocalGroup 创建大小为 size 的进程内通信组。
func NewLocalGroup(size int) (*LocalGroup, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &LocalGroup{size: size, rounds: make(map[uint64]*localRound)}, nil
}

// Size 返回通信组大小。
func (g *LocalGroup) Size() int { return g.size }

// Member 返回 rank 对应的成员。同一 rank 多次调用返回互相独立的成员，
// 调用方应为每个 rank 只取一次。
func (g *LocalGroup) Member(rank int) (Communicator, error) {
	if err := checkMembership(rank, g.size); err != nil {
		return nil, err
	}
	return &localMember{group: g, rank: rank}, nil
}

// Members 返回全部成员，下标即 rank。
func (g *LocalGroup) Members() []Communicator {
	out := make([]Communicator, g.size)
	for i := range out {
		out[i] = &localMember{group: g, rank: i}
	}
	return out
}

type localMember struct {
	group *LocalGroup
	rank  int
	round atomic.Uint64
}

func (m *localMember) Rank() int { return m.rank }
func (m *localMember) Size() int { return m.group.size }

func (m *localMember) Gather(ctx context.Context, root int, payload []byte) ([][]byte, error) {
	if err := checkRoot(root, m.group.size); err != nil {
		return nil, err
	}
	n := m.round.Add(1) - 1
	rd, err := m.group.contribute(n, m.rank, root, payload)
	if err != nil {
		return nil, err
	}
	if m.rank != root {
		return nil, nil
	}

	// 无论成败，根返回后该轮不再使用
	defer m.group.finish(n)
	select {
	case <-rd.done:
		return rd.payloads, nil
	case <-ctx.Done():
		return nil, timeoutError(ctx)
	}
}

func (g *LocalGroup) finish(n uint64) {
	g.mu.Lock()
	delete(g.rounds, n)
	g.mu.Unlock()
}

func (g *LocalGroup) contribute(n uint64, rank, root int, payload []byte) (*localRound, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rd, ok := g.rounds[n]
	if !ok {
		rd = &localRound{
			root:     root,
			payloads: make([][]byte, g.size),
			arrived:  make([]bool, g.size),
			pending:  g.size,
			done:     make(chan struct{}),
		}
		g.rounds[n] = rd
	}
	if rd.root != root {
		return nil, fmt.Errorf("%w: round %d uses root %d, rank %d asked for %d", ErrInvalidRoot, n, rd.root, rank, root)
	}
	if rd.arrived[rank] {
		return nil, fmt.Errorf("%w: rank %d in round %d", ErrDuplicateRank, rank, n)
	}
	rd.arrived[rank] = true
	rd.payloads[rank] = bytes.Clone(payload)
	rd.pending--
	if rd.pending == 0 {
		close(rd.done)
	}
	return rd, nil
}
