// Package xgraph 实现按线程记录的层次调用图及其合并。
//
// 每个 [Graph] 是一棵以合成根节点为根的森林，节点存放在连续数组中，
// 通过 [NodeIndex] 互相引用；(父节点, 作用域 ID) 到子节点的索引表保证查找为 O(1)。
//
// 节点身份是从根到该节点的作用域 ID 路径：同一标签在不同深度是不同节点，
// 在同一游标位置重复进入复用同一节点，[Stats] 记录值、次数与观测到的最小/最大值。
//
// 合并：
//   - [Graph.Merge] 按标签路径把另一棵同进程的图折叠进来，src 被消费（重置为空根）
//   - [Graph.Snapshot] 导出带标签表的快照，跨进程时只交换标签文本
//   - [Graph.MergeSnapshot] 以本地注册表重新映射标签后按路径折叠
//
// 两种合并都是归约：无论线程或 rank 以何种顺序合并，统计结果一致。
//
// Graph 不是并发安全的，由拥有它的线程独占修改；合并时由调用方持有目标的锁。
package xgraph
