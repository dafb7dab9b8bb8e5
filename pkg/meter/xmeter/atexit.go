package xmeter

import (
	"context"
	"time"

	"github.com/tebeka/atexit"

	"github.com/omeyang/xmeter/pkg/meter/xreport"
	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// atExitTimeout 是退出阶段终结与写出报告的最长时间。
const atExitTimeout = 30 * time.Second

// registerAtExit 便于测试捕获退出回调。
var registerAtExit = func(fn func()) func() error {
	id := atexit.Register(fn)
	return id.Cancel
}

// FinalizeAtExit 在进程通过 atexit.Exit 退出时终结 Manager 并写出报告。
// 与显式调用 Finalize 得到同一份报告。返回的函数取消注册。
func (m *Manager) FinalizeAtExit(sinks ...xreport.Sink) (cancel func() error) {
	return registerAtExit(func() {
		ctx, done := context.WithTimeout(context.Background(), atExitTimeout)
		defer done()

		rep, err := m.Finalize(ctx)
		if err != nil {
			m.logger.Warn(ctx, "finalize at exit", xlog.Err(err))
		}
		if rep == nil {
			return
		}
		if err := xreport.MultiSink(sinks).Write(ctx, rep); err != nil {
			m.logger.Error(ctx, "write report at exit", xlog.Err(err))
		}
	})
}
