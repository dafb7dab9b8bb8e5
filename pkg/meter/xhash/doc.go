// Package xhash 提供进程内作用域标签到数值 ID 的注册表。
//
// 注册表只增不删：同一标签文本在注册表生命周期内始终映射到同一 ID。
// ID 由 xxhash 派生，碰撞时线性探测；[RootID]（0）保留给调用图的合成根节点。
//
// ID 只在进程内有效，跨进程合并时交换的是标签文本而不是 ID。
//
// 并发：已注册标签的查找走 sync.Map 无锁路径；首次注册时短暂持有互斥锁。
package xhash
