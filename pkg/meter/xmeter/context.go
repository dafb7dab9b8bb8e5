package xmeter

import (
	"context"

	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

type threadKey struct{}

// WithThread 返回携带线程句柄的 context，同时把线程编号加入日志属性。
func WithThread(ctx context.Context, t *Thread) context.Context {
	if t == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, threadKey{}, t)
	return xlog.WithAttrs(ctx, xlog.Thread(t.id))
}

// ThreadFrom 返回 ctx 携带的线程句柄。
func ThreadFrom(ctx context.Context) (*Thread, bool) {
	if ctx == nil {
		return nil, false
	}
	t, ok := ctx.Value(threadKey{}).(*Thread)
	return t, ok && t != nil
}

// Start 用 ctx 携带的线程开始测量；ctx 中没有线程时返回惰性 Bundle。
func Start(ctx context.Context, label string, opts ...BundleOption) *Bundle {
	t, ok := ThreadFrom(ctx)
	if !ok {
		return &Bundle{}
	}
	return t.Start(label, opts...)
}
