package xmeter

import "errors"

var (
	// ErrBundleRunning 表示对运行中的 Bundle 调用 Restart。
	ErrBundleRunning = errors.New("xmeter: bundle is running")

	// ErrDistributedMerge 表示跨 rank 合并失败，报告只包含本地数据。
	ErrDistributedMerge = errors.New("xmeter: distributed merge failed")

	// ErrUnknownKind 表示组件类型目录中没有该名称。
	ErrUnknownKind = errors.New("xmeter: unknown component kind")

	// ErrDuplicateKind 表示组件类型名称已被另一个类型注册。
	ErrDuplicateKind = errors.New("xmeter: duplicate component kind")

	// ErrNilKind 表示注册了 nil 组件类型。
	ErrNilKind = errors.New("xmeter: nil component kind")

	// ErrUnknownReusePolicy 表示无法识别的复用策略字符串。
	ErrUnknownReusePolicy = errors.New("xmeter: unknown reuse policy")
)
