package xlog

import (
	"log/slog"
	"time"
)

// 日志中常用的标准字段名
const (
	KeyError    = "error"
	KeyStack    = "stack"
	KeyDuration = "duration"
	KeyCount    = "count"
	KeyKind     = "kind"
	KeyScope    = "scope"
	KeyRank     = "rank"
	KeyThread   = "thread"
	KeyState    = "state"
)

// Err 创建错误属性；err 为 nil 时返回空属性（会被 slog 忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 以人类可读格式记录耗时
func Duration(d time.Duration) slog.Attr { return slog.String(KeyDuration, d.String()) }

// Count 记录数量
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

// Kind 记录组件类型名
func Kind(name string) slog.Attr { return slog.String(KeyKind, name) }

// Scope 记录作用域标签
func Scope(label string) slog.Attr { return slog.String(KeyScope, label) }

// Rank 记录分布式 rank
func Rank(rank int) slog.Attr { return slog.Int(KeyRank, rank) }

// Thread 记录线程句柄编号
func Thread(id uint64) slog.Attr { return slog.Uint64(KeyThread, id) }

// State 记录状态机状态
func State(s string) slog.Attr { return slog.String(KeyState, s) }
