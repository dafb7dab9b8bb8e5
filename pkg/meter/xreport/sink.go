package xreport

import (
	"context"
	"errors"
)

// Sink 接收最终报告。
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// SinkFunc 把函数适配为 [Sink]。
type SinkFunc func(ctx context.Context, r *Report) error

// Write 调用 f。
func (f SinkFunc) Write(ctx context.Context, r *Report) error { return f(ctx, r) }

// MultiSink 依次写入全部输出端，某个失败不影响其余，错误合并返回。
type MultiSink []Sink

// Write 写入全部输出端。
func (m MultiSink) Write(ctx context.Context, r *Report) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
