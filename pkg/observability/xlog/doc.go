// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，Build 返回该错误）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xmeter.log", xlog.WithMaxSize(50)).
//		Build()
//	defer cleanup()
//
// # 上下文属性
//
// [WithAttrs] 把属性挂到 context 上（如 rank、thread），[EnrichHandler]
// 在写出时自动注入，调用方无需层层传递 logger。
//
// # 全局 Logger
//
// [Default] 惰性初始化为 stderr、Info、text；[SetDefault] 替换；[Discard] 返回丢弃所有输出的 Logger。
//
// 日志写入失败不会返回给调用方，也不会 panic；可通过 [Builder.SetOnError] 接收内部错误。
package xlog
