package xcomp

import "errors"

var (
	// ErrUnknownPolicy 表示无法识别的合并策略字符串。
	ErrUnknownPolicy = errors.New("xcomp: unknown combine policy")

	// ErrUnknownMode 表示无法识别的测量模式字符串。
	ErrUnknownMode = errors.New("xcomp: unknown measurement mode")
)
