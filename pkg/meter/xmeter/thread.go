package xmeter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// forest 是一个线程上各组件类型的调用图。
type forest map[Kind]storage

// Thread 是单个 goroutine 拥有的测量上下文，持有每个组件类型的调用图与游标。
//
// 除 [Thread.Spawn] 外的方法只能由拥有者调用。
//
// 锁顺序：Manager.mu 先于 Thread.mu，子线程的 mu 先于父线程的 mu。
type Thread struct {
	m      *Manager
	parent *Thread
	id     uint64
	name   string

	exited bool // 仅拥有者访问

	registered atomic.Bool
	discarded  atomic.Bool

	// mu 保护调用图：拥有者在开始与结束作用域时持有，终结时 Manager 持有它摘取调用图。
	mu       sync.Mutex
	storages forest
	pending  []forest // 已退出子线程交来的调用图
	open     int      // 运行中的 Bundle 数
	dead     bool     // 调用图已移交
	dropped  bool     // 已记录过一次被丢弃的测量
}

// Thread 创建新的线程句柄。
func (m *Manager) Thread(opts ...ThreadOption) *Thread {
	return m.newThread(nil, opts)
}

// Spawn 创建子线程句柄，子线程退出时其调用图并入 t。可在任意 goroutine 调用。
func (t *Thread) Spawn(opts ...ThreadOption) *Thread {
	return t.m.newThread(t, opts)
}

func (m *Manager) newThread(parent *Thread, opts []ThreadOption) *Thread {
	t := &Thread{m: m, parent: parent, id: m.nextThread.Add(1), storages: make(forest)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID 返回线程句柄编号，在 Manager 内唯一。
func (t *Thread) ID() uint64 { return t.id }

// Name 返回线程名。
func (t *Thread) Name() string { return t.name }

// Manager 返回线程所属的 Manager。
func (t *Thread) Manager() *Manager { return t.m }

func (t *Thread) usable() bool {
	return !t.exited && !t.discarded.Load() && t.m.State() < StateFinalizing
}

func (t *Thread) recording() bool {
	return !t.discarded.Load() && t.m.State() == StateActive
}

// storage 返回组件类型 k 的调用图，首次使用时创建。调用方持有 t.mu。
func (t *Thread) storage(k Kind) storage {
	if st, ok := t.storages[k]; ok {
		return st
	}
	st := k.newStorage()
	t.storages[k] = st
	return st
}

// register 向 Manager 登记本线程，终结时 Manager 据此摘取调用图。不能在持有 t.mu 时调用。
func (t *Thread) register() {
	if t.registered.CompareAndSwap(false, true) {
		t.m.register(t)
	}
}

// detachLocked 摘下调用图（含子线程交来的部分），之后线程不再修改调用图。
// 返回摘下的调用图与当时运行中的 Bundle 数；已摘取过时返回 nil。
func (t *Thread) detachLocked() (forest, int) {
	if t.dead {
		return nil, 0
	}
	t.dead = true
	own, pending, open := t.storages, t.pending, t.open
	t.storages, t.pending = nil, nil
	for _, child := range pending {
		mergeForest(own, child, t.m.logger)
	}
	return own, open
}

func (t *Thread) detach() (forest, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detachLocked()
}

// handToParent 在父线程仍存活时把调用图排入父线程队列。父线程已移交时返回 false，
// 本线程调用图保持原样，由 Manager 接收；本线程已被摘取时同样返回 false。
func (t *Thread) handToParent() bool {
	p := t.parent
	// 空闲的父线程也要登记，否则终结时找不到它队列里的调用图
	p.register()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	own, _ := t.detachLocked()
	p.pending = append(p.pending, own)
	return true
}

// Exit 结束线程：先并入子线程交来的调用图，再交给父线程（父线程已退出时交给 Manager）。
// 仍在运行的 Bundle 不会留下节点。重复调用是空操作。
func (t *Thread) Exit() {
	if t.exited {
		return
	}
	t.exited = true

	ctx := context.Background()
	if t.discarded.Load() {
		t.m.logger.Debug(ctx, "thread data discarded", xlog.Thread(t.id))
		return
	}
	if !t.registered.Load() {
		return
	}
	if t.parent != nil && t.handToParent() {
		t.m.unregister(t)
		t.m.logger.Debug(ctx, "thread merged into parent", xlog.Thread(t.id), slog.Uint64("parent", t.parent.id))
		return
	}
	t.m.absorb(t)
}

// mergeForest 把 src 的每个组件类型并入 dst。只合并有观测的节点。
func mergeForest(dst, src forest, logger xlog.Logger) {
	for k, st := range src {
		cur, ok := dst[k]
		if !ok {
			cur = k.newStorage()
			dst[k] = cur
		}
		if err := cur.merge(st); err != nil {
			logger.Warn(context.Background(), "merge skipped", xlog.Kind(k.Name()), xlog.Err(err))
		}
	}
}
