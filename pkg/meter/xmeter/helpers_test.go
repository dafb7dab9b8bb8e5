package xmeter

import (
	"bytes"
	"testing"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// manualClock 是单 goroutine 测试用的可控时钟。
type manualClock struct{ now int64 }

func (c *manualClock) advance(d int64) { c.now += d }

// clockKind 返回读取 c 的 SUM 组件类型。
func clockKind(label string, c *manualClock) Kind {
	return NewKind(func() xcomp.Component[int64] {
		return xcomp.New(xcomp.Meta{Label: label, Unit: "ns", Policy: xcomp.PolicySum},
			func() int64 { return c.now })
	})
}

// gaugeKind 返回采样 c 的 MAX 组件类型。
func gaugeKind(label string, c *manualClock) Kind {
	return NewKind(func() xcomp.Component[int64] {
		return xcomp.New(xcomp.Meta{Label: label, Unit: "bytes", Policy: xcomp.PolicyMax, Mode: xcomp.ModeSample},
			func() int64 { return c.now })
	})
}

// stepKind 每个实例自带计数器，每次测量值恰为 1，可在并发测试中使用。
func stepKind(label string) Kind {
	return NewKind(func() xcomp.Component[int64] {
		var n int64
		return xcomp.New(xcomp.Meta{Label: label, Unit: "1", Policy: xcomp.PolicySum},
			func() int64 {
				n++
				return n
			})
	})
}

// newTestManager 创建使用独立注册表、日志写入 buf 的 Manager。
func newTestManager(t *testing.T, opts ...Option) (*Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug).Build()
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	base := []Option{WithRegistry(xhash.New()), WithLogger(logger)}
	return NewManager(append(base, opts...)...), &buf
}
