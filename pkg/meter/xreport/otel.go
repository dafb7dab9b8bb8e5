package xreport

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MetricScopeValue 是作用域合并值的仪表名。
	MetricScopeValue = "xmeter.scope.value"
	// MetricScopeCount 是作用域进入次数的仪表名。
	MetricScopeCount = "xmeter.scope.count"
)

// OTelSink 把报告记录导出为 OpenTelemetry 指标。
//
// 每条记录产生一次 gauge 观测（value）和一次 counter 累加（count），
// 属性为 kind、path（以 "/" 连接）、depth 和 rank。
type OTelSink struct {
	value metric.Float64Gauge
	count metric.Int64Counter
}

// NewOTelSink 用 meter 创建仪表。
func NewOTelSink(meter metric.Meter) (*OTelSink, error) {
	value, err := meter.Float64Gauge(MetricScopeValue,
		metric.WithDescription("merged value of an instrumented scope"))
	if err != nil {
		return nil, fmt.Errorf("xreport: create gauge: %w", err)
	}
	count, err := meter.Int64Counter(MetricScopeCount,
		metric.WithDescription("number of completed entries of an instrumented scope"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("xreport: create counter: %w", err)
	}
	return &OTelSink{value: value, count: count}, nil
}

// Write 导出全部记录。
func (s *OTelSink) Write(ctx context.Context, r *Report) error {
	for _, k := range r.Kinds {
		for _, rec := range k.Records {
			attrs := metric.WithAttributes(
				attribute.String("kind", k.Kind),
				attribute.String("unit", k.Unit),
				attribute.String("path", strings.Join(rec.Path, "/")),
				attribute.Int("depth", rec.Depth),
				attribute.Int("rank", r.Rank),
			)
			s.value.Record(ctx, rec.Value, attrs)
			s.count.Add(ctx, int64(rec.Count), attrs)
		}
	}
	return nil
}
