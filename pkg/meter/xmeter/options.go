package xmeter

import (
	"fmt"
	"strings"

	"github.com/omeyang/xmeter/pkg/meter/xdist"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// ReusePolicy 决定 Blank Bundle 在多次 Restart 之间如何处理组件值。
type ReusePolicy uint8

const (
	// ReuseReset 每次 Restart 前重置组件，各作用域独立计值（默认）。
	ReuseReset ReusePolicy = iota
	// ReuseAccumulate 组件值按合并策略跨作用域累积，每次 Stop 记录累积值。
	ReuseAccumulate
)

// String 返回策略名称。
func (p ReusePolicy) String() string {
	if p == ReuseAccumulate {
		return "accumulate"
	}
	return "reset"
}

// ParseReusePolicy 解析 reset/accumulate（大小写不敏感）。空字符串视为 reset。
func ParseReusePolicy(s string) (ReusePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset":
		return ReuseReset, nil
	case "accumulate":
		return ReuseAccumulate, nil
	default:
		return ReuseReset, fmt.Errorf("%w: %q", ErrUnknownReusePolicy, s)
	}
}

// Option 配置 [Manager]。
type Option func(*Manager)

// WithKinds 设置 Manager 默认启用的组件类型及报告顺序。nil 元素被忽略，全空时保持默认。
func WithKinds(kinds ...Kind) Option {
	return func(m *Manager) {
		var out []Kind
		for _, k := range kinds {
			if k != nil {
				out = append(out, k)
			}
		}
		if len(out) > 0 {
			m.kinds = out
		}
	}
}

// WithRegistry 使用指定的标签注册表，默认使用 [xhash.Default]。
func WithRegistry(r *xhash.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithReusePolicy 设置 Blank Bundle 的默认复用策略。
func WithReusePolicy(p ReusePolicy) Option {
	return func(m *Manager) { m.reuse = p }
}

// WithCommunicator 启用分布式合并，root 为汇总报告的 rank。
func WithCommunicator(c xdist.Communicator, root int) Option {
	return func(m *Manager) {
		m.comm = c
		m.root = root
	}
}

// WithLogger 设置 Manager 日志，默认使用 [xlog.Default]。
func WithLogger(l xlog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithName 设置报告名称，默认 "xmeter"。
func WithName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.name = name
		}
	}
}

// BundleOption 配置单个 [Bundle]。
type BundleOption func(*Bundle)

// WithBundleKinds 只启用给定的组件类型，替代 Manager 的默认组件集。
func WithBundleKinds(kinds ...Kind) BundleOption {
	return func(b *Bundle) {
		var out []Kind
		for _, k := range kinds {
			if k != nil {
				out = append(out, k)
			}
		}
		b.kinds = out
	}
}

// WithBundleReuse 覆盖 Manager 的复用策略。
func WithBundleReuse(p ReusePolicy) BundleOption {
	return func(b *Bundle) { b.reuse = p }
}

// ThreadOption 配置 [Thread]。
type ThreadOption func(*Thread)

// WithThreadName 设置线程名，出现在日志中。
func WithThreadName(name string) ThreadOption {
	return func(t *Thread) { t.name = name }
}
