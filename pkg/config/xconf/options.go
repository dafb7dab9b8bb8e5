package xconf

import "time"

type options struct {
	delim string
	tag   string
}

// Option 配置 [New] 与 [NewFromBytes]。
type Option func(*options)

func defaultOptions() *options {
	return &options{delim: ".", tag: "koanf"}
}

// WithDelim 设置键路径分隔符，默认 "."。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 设置 Unmarshal 使用的结构体标签，默认 "koanf"。
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}

type watchOptions struct {
	debounce time.Duration
}

// WatchOption 配置 [Watch]。
type WatchOption func(*watchOptions)

// WithDebounce 设置防抖时间，窗口内的多次变更只触发一次重载。默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}
