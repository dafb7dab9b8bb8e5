package xlog

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	globalLogger atomic.Pointer[LoggerWithLevel]
	globalOnce   sync.Once
)

// Default 返回全局默认 Logger，首次调用时创建（stderr、Info、text）
func Default() LoggerWithLevel {
	globalOnce.Do(func() {
		if globalLogger.Load() != nil {
			return
		}
		// 默认参数不会失败
		l, _, _ := New().Build()
		globalLogger.CompareAndSwap(nil, &l)
	})
	return *globalLogger.Load()
}

// SetDefault 替换全局默认 Logger，nil 被忽略
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// Discard 返回丢弃所有输出的 Logger
func Discard() LoggerWithLevel {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelError + 1)
	return &xlogger{
		handler:    slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelVar}),
		levelVar:   levelVar,
		errorCount: new(atomic.Uint64),
	}
}
