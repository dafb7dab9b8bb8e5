package xcomp

// Component 是所有测量组件必须满足的契约。
//
// 组件实例不是并发安全的：同一实例只由持有它的 Bundle 在单个 goroutine 中使用。
type Component[T Number] interface {
	// Meta 返回组件类型的元数据。
	Meta() Meta
	// Record 读取当前原始测量值；不可测量时返回 0。
	Record() T
	// Start 记录起始样本。已处于运行状态时为空操作。
	Start()
	// Stop 记录结束样本并更新 value。未运行时为空操作。
	Stop()
	// Reset 清零 value 并关闭未结束的区间。
	Reset()
	// Value 返回最近一次 Stop 得到的值。
	Value() T
	// Running 报告是否存在未结束的区间。
	Running() bool
}

// Recorder 读取一次原始测量值。实现必须在失败时返回 0。
type Recorder[T Number] func() T

// 编译时接口检查
var (
	_ Component[int64]   = (*Base[int64])(nil)
	_ Component[float64] = (*Base[float64])(nil)
)

// Base 是基于单个 [Recorder] 的通用组件实现，并提供 value 上的成对算术。
//
// 方法均不加锁。
type Base[T Number] struct {
	meta    Meta
	record  Recorder[T]
	start   T
	value   T
	running bool
}

// New 创建基于 recorder 的组件。recorder 为 nil 时组件恒为 0。
func New[T Number](meta Meta, record Recorder[T]) *Base[T] {
	return &Base[T]{meta: meta, record: record}
}

// Meta 返回元数据。
func (b *Base[T]) Meta() Meta { return b.meta }

// Record 读取一次原始值，recorder 的 panic 被恢复为 0。
func (b *Base[T]) Record() (v T) {
	if b.record == nil {
		return 0
	}
	defer func() {
		if recover() != nil {
			v = 0
		}
	}()
	return b.record()
}

// Start 记录起始样本。
func (b *Base[T]) Start() {
	if b.running {
		return
	}
	b.start = b.Record()
	b.running = true
}

// Stop 记录结束样本并按 Mode 更新 value。
func (b *Base[T]) Stop() {
	if !b.running {
		return
	}
	end := b.Record()
	b.running = false
	if b.meta.Mode == ModeSample {
		b.value = end
		return
	}
	b.value = end - b.start
}

// Reset 清零 value。
func (b *Base[T]) Reset() {
	b.start = 0
	b.value = 0
	b.running = false
}

// Value 返回当前 value。
func (b *Base[T]) Value() T { return b.value }

// Running 报告是否存在未结束的区间。
func (b *Base[T]) Running() bool { return b.running }

// Set 直接设置 value，用于快照恢复和测试。
func (b *Base[T]) Set(v T) { b.value = v }

// Add 实现 value += v。
func (b *Base[T]) Add(v T) *Base[T] {
	b.value += v
	return b
}

// Sub 实现 value -= v。
func (b *Base[T]) Sub(v T) *Base[T] {
	b.value -= v
	return b
}

// Mul 实现 value *= v。
func (b *Base[T]) Mul(v T) *Base[T] {
	b.value *= v
	return b
}

// Div 实现 value /= v。v 为 0 时 value 保持不变。
func (b *Base[T]) Div(v T) *Base[T] {
	if v == 0 {
		return b
	}
	b.value /= v
	return b
}

// Max 实现 value = max(value, v)。
func (b *Base[T]) Max(v T) *Base[T] {
	b.value = max(b.value, v)
	return b
}

// Min 实现 value = min(value, v)。
func (b *Base[T]) Min(v T) *Base[T] {
	b.value = min(b.value, v)
	return b
}

// Combine 按本组件的策略把 other 的 value 合并进来。
func (b *Base[T]) Combine(other Component[T]) *Base[T] {
	if other == nil {
		return b
	}
	b.value = Combine(b.meta.Policy, b.value, other.Value())
	return b
}
