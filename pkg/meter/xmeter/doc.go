// Package xmeter 组合测量组件、按线程记录调用图，并在终结时合并为一份报告。
//
// # 基本用法
//
//	m := xmeter.NewManager(xmeter.WithKinds(xmeter.WallClock, xmeter.PeakRSS))
//	th := m.Thread()
//
//	total := th.Start("total")
//	work()
//	nested := th.Blank()
//	for range 3 {
//		_ = nested.Restart("nested")
//		step()
//		nested.Stop()
//	}
//	total.Stop()
//
//	th.Exit()
//	report, err := m.Finalize(ctx)
//
// # 线程
//
// Go 没有 goroutine 本地存储，"线程"是显式的 [*Thread] 句柄：一个句柄只能由一个
// goroutine 使用。[Thread.Spawn] 创建子句柄，子句柄退出时其调用图并入父句柄
// （父句柄已退出时直接并入 Manager）。热路径（Start/Stop）只取本线程无竞争的锁。
//
// # 生命周期
//
//	UNINITIALIZED --首次测量--> ACTIVE --Finalize--> FINALIZING --合并完成--> FINALIZED
//
// FINALIZING 之后的测量被丢弃。终结时仍未退出的线程，已结束的作用域照常并入报告，
// 仍在运行的 Bundle 不留节点，数量计入 Report.Discarded。
// 重复调用 Finalize 返回同一份报告。
//
// # 分布式合并
//
// 配置 [WithCommunicator] 后，每个 rank 把调用图快照（带标签表）以 CBOR 编码并 Gather 到根 rank，
// 根 rank 按 rank 顺序依次折叠。传输失败时仍返回本地报告，错误包装 [ErrDistributedMerge]。
package xmeter
