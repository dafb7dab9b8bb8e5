package xgraph

import "errors"

var (
	// ErrInvalidSnapshot 表示快照结构不合法（父索引或标签索引越界）。
	ErrInvalidSnapshot = errors.New("xgraph: invalid snapshot")

	// ErrPolicyMismatch 表示合并双方的合并策略不一致。
	ErrPolicyMismatch = errors.New("xgraph: combine policy mismatch")
)
