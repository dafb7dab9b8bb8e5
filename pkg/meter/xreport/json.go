package xreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONSink 以 JSON 写出报告。
type JSONSink struct {
	w      io.Writer
	indent string
}

// JSONOption 配置 [JSONSink]。
type JSONOption func(*JSONSink)

// WithIndent 设置缩进，默认两个空格；空字符串输出紧凑格式。
func WithIndent(indent string) JSONOption {
	return func(s *JSONSink) { s.indent = indent }
}

// NewJSONSink 创建写入 w 的 JSON 输出端。
func NewJSONSink(w io.Writer, opts ...JSONOption) *JSONSink {
	s := &JSONSink{w: w, indent: "  "}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write 写出报告。
func (s *JSONSink) Write(_ context.Context, r *Report) error {
	enc := json.NewEncoder(s.w)
	if s.indent != "" {
		enc.SetIndent("", s.indent)
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("xreport: encode json: %w", err)
	}
	return nil
}
