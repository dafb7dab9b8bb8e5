// Package xdist 提供分布式合并使用的通信抽象及其实现。
//
// [Communicator] 只要求一种集合操作 Gather：每个 rank 提交一段字节，
// 根 rank 收到按 rank 排序的全部负载，其余 rank 在提交后得到 nil。
//
// 实现：
//   - [LocalGroup] 进程内模拟多个 rank，用于测试和单机演示
//   - [Redis] 基于 go-redis 的哈希表聚合，根 rank 轮询直到全部到达
//
// 所有实现都遵守 ctx 的取消与截止时间。
package xdist
