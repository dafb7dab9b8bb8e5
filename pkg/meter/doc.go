// Package meter 收纳测量核心相关的子包。
//
// 子包列表：
//   - xcomp: 组件契约、基础算术与内置测量后端
//   - xhash: 作用域标签到稳定数值 ID 的进程级注册表
//   - xgraph: 基于 arena 的调用图、线程合并与快照
//   - xmeter: Bundle、Thread、Manager 与跨 rank 合并
//   - xdist: 跨进程合并使用的通信器（进程内、Redis）
//   - xreport: 扁平化报告记录与输出 Sink
//
// 数据流：Thread.Start 构造 Bundle → 在每个组件类型的调用图中解析节点 →
// 启动组件；Bundle.Stop 停止组件 → 按合并策略累加进节点 → 游标回退到父节点。
// Thread.Exit 将森林合并到父级，Manager.Finalize 完成跨 rank 合并并产出报告。
package meter
