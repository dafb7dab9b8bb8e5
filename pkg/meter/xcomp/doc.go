// Package xcomp 定义测量组件的统一契约与内置后端。
//
// # 组件契约
//
// 每个组件类型都满足 [Component]：
//
//	Record() T  读取一次原始测量值（无副作用）
//	Start()     记录起始样本
//	Stop()      记录结束样本，value 设为差值（ModeDelta）或最新样本（ModeSample）
//	Reset()     清零 value 并关闭未结束的区间
//	Meta()      标签、描述、单位、合并策略
//
// 核心层从不解释组件测量的是什么，只关心同类两个实例如何按 [Policy] 合并。
//
// # 不可测量时的约定
//
// 当前平台不支持或后端调用失败时，Record 返回 0（哨兵零值），从不返回错误、从不 panic。
// recorder 内部的 panic 会被恢复为 0。调用方必须容忍组件"静默不贡献信息"。
//
// # 内置后端
//
//	wall            单调时钟           SUM
//	user/sys/cpu    getrusage          SUM
//	thread_cpu      CLOCK_THREAD_CPUTIME_ID（仅 linux/darwin）
//	peak_rss        getrusage maxrss   MAX（采样）
//	page_rss        gopsutil RSS       SUM
//	minor_faults/major_faults/block_in/block_out  getrusage
//	vol_ctx_switch/ivol_ctx_switch/read_bytes/written_bytes  gopsutil
//	heap_alloc      runtime/metrics    SUM
//	goroutines      runtime            MAX（采样）
//	cpu_util        float64 组件       MAX
//
// thread_cpu 读取的是当前 OS 线程的 CPU 时间，goroutine 可能在测量区间内迁移线程；
// 需要精确值时调用方应配合 runtime.LockOSThread 使用。
package xcomp
