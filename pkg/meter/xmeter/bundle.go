package xmeter

import (
	"context"
	"slices"

	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// Bundle 把一组组件实例绑定为一次作用域测量。
//
// Bundle 属于创建它的 [Thread]，只能在该线程的 goroutine 中使用。
// Stop 只生效一次，可以同时 defer 与显式调用。零值 Bundle（以及没有线程的
// [Start] 返回的 Bundle）是惰性的：所有方法都是空操作。
type Bundle struct {
	th      *Thread
	kinds   []Kind
	reuse   ReusePolicy
	probes  []probe
	label   string
	running bool
}

func (t *Thread) newBundle(opts []BundleOption) *Bundle {
	b := &Bundle{th: t, kinds: t.m.kinds, reuse: t.m.reuse}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start 以 label 开始一次作用域测量。
func (t *Thread) Start(label string, opts ...BundleOption) *Bundle {
	b := t.newBundle(opts)
	b.begin(label)
	return b
}

// Blank 创建未开始的 Bundle，之后通过 [Bundle.Restart] 以不同标签多次使用。
func (t *Thread) Blank(opts ...BundleOption) *Bundle {
	return t.newBundle(opts)
}

// Measure 测量 fn 的执行，fn panic 时照常结束作用域后继续向上传播。
func (t *Thread) Measure(label string, fn func(), opts ...BundleOption) {
	b := t.Start(label, opts...)
	defer b.Stop()
	fn()
}

// Restart 以新标签重新开始。运行中调用返回 [ErrBundleRunning]，状态不变。
func (b *Bundle) Restart(label string) error {
	if b.running {
		return ErrBundleRunning
	}
	b.begin(label)
	return nil
}

// begin 的顺序：解析各组件类型游标下的节点，启动全部组件，再把节点压为游标。
func (b *Bundle) begin(label string) {
	t := b.th
	if t == nil || !t.usable() {
		return
	}
	t.register()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead || !t.usable() {
		return
	}
	if b.probes == nil {
		b.probes = make([]probe, 0, len(b.kinds))
		for _, k := range b.kinds {
			b.probes = append(b.probes, t.storage(k).newProbe(b.reuse))
		}
	}
	id := t.m.registry.Intern(label)
	for _, p := range b.probes {
		p.enter(id, label)
	}
	for _, p := range b.probes {
		p.start()
	}
	for _, p := range b.probes {
		p.push()
	}
	t.open++
	b.label = label
	b.running = true
}

// Stop 逆序停止组件，把值按合并策略计入节点并恢复游标。重复调用是空操作。
//
// Manager 已进入 FINALIZING、线程已退出或线程数据已被丢弃时，测量值不计入调用图。
// 这类丢弃每个线程只记录一条 Debug 日志。
func (b *Bundle) Stop() {
	if !b.running {
		return
	}
	b.running = false
	for i := len(b.probes) - 1; i >= 0; i-- {
		b.probes[i].stop()
	}

	t := b.th
	t.mu.Lock()
	// 调用图已移交，不能再修改
	if t.dead {
		first := !t.dropped
		t.dropped = true
		t.mu.Unlock()
		if first {
			msg := "measurement discarded"
			if t.exited {
				msg = "measurement after thread exit dropped"
			}
			t.m.logger.Debug(context.Background(), msg,
				xlog.Scope(b.label), xlog.Thread(t.id), xlog.State(t.m.State().String()))
		}
		return
	}
	t.open--
	record := t.recording()
	for i := len(b.probes) - 1; i >= 0; i-- {
		b.probes[i].commit(record)
	}
	first := !record && !t.dropped
	if first {
		t.dropped = true
	}
	t.mu.Unlock()
	if first {
		t.m.logger.Debug(context.Background(), "measurement discarded",
			xlog.Scope(b.label), xlog.Thread(t.id), xlog.State(t.m.State().String()))
	}
}

// Running 报告 Bundle 是否处于作用域中。
func (b *Bundle) Running() bool { return b.running }

// Label 返回最近一次开始的作用域标签。
func (b *Bundle) Label() string { return b.label }

// Kinds 返回 Bundle 启用的组件类型。
func (b *Bundle) Kinds() []Kind { return slices.Clone(b.kinds) }

// Value 返回组件类型 k 最近一次 Stop 记录的值。
func (b *Bundle) Value(k Kind) (float64, bool) {
	for i, bk := range b.kinds {
		if bk == k && i < len(b.probes) {
			return b.probes[i].value(), true
		}
	}
	return 0, false
}
