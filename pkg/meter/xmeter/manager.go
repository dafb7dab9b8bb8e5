package xmeter

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xmeter/pkg/meter/xdist"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
	"github.com/omeyang/xmeter/pkg/meter/xreport"
	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// State 是 Manager 生命周期状态。
type State int32

const (
	StateUninitialized State = iota
	StateActive
	StateFinalizing
	StateFinalized
)

// String 返回状态名称。
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateFinalizing:
		return "finalizing"
	case StateFinalized:
		return "finalized"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

const defaultName = "xmeter"

// Manager 是进程级测量协调者：登记线程、接收退出线程的调用图，并在终结时生成报告。
type Manager struct {
	name     string
	kinds    []Kind
	reuse    ReusePolicy
	registry *xhash.Registry
	comm     xdist.Communicator
	root     int
	logger   xlog.Logger

	state      atomic.Int32
	nextThread atomic.Uint64

	mu      sync.Mutex
	threads map[*Thread]struct{}
	roots   forest

	finalMu  sync.Mutex
	final    *xreport.Report
	finalErr error
}

// NewManager 创建 Manager，初始状态为 UNINITIALIZED，首次测量时进入 ACTIVE。
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		name:     defaultName,
		kinds:    DefaultKinds(),
		registry: xhash.Default(),
		logger:   xlog.Default(),
		threads:  make(map[*Thread]struct{}),
		roots:    make(forest),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name 返回报告名称。
func (m *Manager) Name() string { return m.name }

// State 返回当前状态。
func (m *Manager) State() State { return State(m.state.Load()) }

// Kinds 返回默认启用的组件类型。
func (m *Manager) Kinds() []Kind { return slices.Clone(m.kinds) }

// Registry 返回标签注册表。
func (m *Manager) Registry() *xhash.Registry { return m.registry }

// register 登记线程；首次登记使 Manager 进入 ACTIVE。
func (m *Manager) register(t *Thread) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.State() {
	case StateUninitialized:
		m.state.Store(int32(StateActive))
		m.logger.Info(context.Background(), "meter activated", xlog.State(StateActive.String()))
	case StateFinalizing, StateFinalized:
		t.discarded.Store(true)
		return
	}
	m.threads[t] = struct{}{}
}

func (m *Manager) unregister(t *Thread) {
	m.mu.Lock()
	delete(m.threads, t)
	m.mu.Unlock()
}

// absorb 摘下退出线程的调用图并入进程根。
func (m *Manager) absorb(t *Thread) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.threads, t)
	f, _ := t.detach()
	if f == nil {
		return
	}
	ctx := context.Background()
	if m.State() >= StateFinalizing {
		m.logger.Debug(ctx, "thread data discarded", xlog.Thread(t.id))
		return
	}
	mergeForest(m.roots, f, m.logger)
	m.logger.Debug(ctx, "thread merged", xlog.Thread(t.id), xlog.Count(len(f)))
}

// Finalize 停止接收测量，折叠仍存活线程已结束的测量，执行分布式合并（如已配置）并返回报告。
// 终结时仍在运行的 Bundle 不计入报告，数量记在 [xreport.Report.Discarded]。
//
// 重复调用返回第一次的报告与错误。分布式合并失败时返回本地报告，
// 错误包装 [ErrDistributedMerge]。
func (m *Manager) Finalize(ctx context.Context) (*xreport.Report, error) {
	m.finalMu.Lock()
	defer m.finalMu.Unlock()
	if m.final != nil {
		return m.final, m.finalErr
	}

	m.mu.Lock()
	from := m.State()
	m.state.Store(int32(StateFinalizing))
	live := slices.SortedFunc(maps.Keys(m.threads), func(a, b *Thread) int { return cmp.Compare(a.id, b.id) })
	discarded := 0
	for _, t := range live {
		f, open := t.detach()
		discarded += open
		mergeForest(m.roots, f, m.logger)
	}
	clear(m.threads)
	m.mu.Unlock()

	m.logger.Info(ctx, "meter finalizing", xlog.State(from.String()))
	if len(live) > 0 {
		m.logger.Debug(ctx, "live threads folded", xlog.Count(len(live)))
	}
	if discarded > 0 {
		m.logger.Warn(ctx, "open measurements discarded at finalize", xlog.Count(discarded))
	}

	rep := &xreport.Report{Name: m.name, Size: 1, Discarded: discarded}
	var err error
	if m.comm != nil {
		rep.Rank, rep.Size = m.comm.Rank(), m.comm.Size()
		rep.Merged, err = m.mergeDistributed(ctx)
		if err != nil {
			m.logger.Error(ctx, "distributed merge failed, reporting local data",
				xlog.Rank(m.comm.Rank()), xlog.Err(err))
		}
	}
	rep.Kinds = m.buildKinds()

	m.state.Store(int32(StateFinalized))
	m.logger.Info(ctx, "meter finalized", xlog.State(StateFinalized.String()), xlog.Count(len(rep.Kinds)))
	m.final, m.finalErr = rep, err
	return rep, err
}

// reportKinds 返回报告中组件类型的顺序：配置顺序在前，其余按名称。
func (m *Manager) reportKinds() []Kind {
	out := slices.Clone(m.kinds)
	var extra []Kind
	for k := range m.roots {
		if !slices.Contains(out, k) {
			extra = append(extra, k)
		}
	}
	slices.SortFunc(extra, func(a, b Kind) int { return strings.Compare(a.Name(), b.Name()) })
	return append(out, extra...)
}

func (m *Manager) buildKinds() []xreport.KindReport {
	kinds := m.reportKinds()
	out := make([]xreport.KindReport, 0, len(kinds))
	for _, k := range kinds {
		if st, ok := m.roots[k]; ok {
			out = append(out, st.report())
			continue
		}
		out = append(out, kindReport(k))
	}
	return out
}
