package xgraph

import "github.com/omeyang/xmeter/pkg/meter/xcomp"

// Stats 是节点的累计统计。
type Stats[T xcomp.Number] struct {
	// Value 按策略合并的值。
	Value T `json:"value"`
	// Count 作用域被进入（并结束）的次数。
	Count uint64 `json:"count"`
	// Min 单次观测到的最小值。
	Min T `json:"min"`
	// Max 单次观测到的最大值。
	Max T `json:"max"`
}

// Observe 记录一次作用域结束时的测量值。
func (s *Stats[T]) Observe(p xcomp.Policy, v T) {
	if s.Count == 0 {
		s.Value, s.Min, s.Max = v, v, v
		s.Count = 1
		return
	}
	s.Value = xcomp.Combine(p, s.Value, v)
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
	s.Count++
}

// Merge 把 o 合并进 s。空统计（Count 为 0）是单位元。
func (s *Stats[T]) Merge(p xcomp.Policy, o Stats[T]) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = o
		return
	}
	s.Value = xcomp.Combine(p, s.Value, o.Value)
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
	s.Count += o.Count
}

// Mean 返回平均单次值；Count 为 0 时返回 0。
func (s Stats[T]) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Value) / float64(s.Count)
}
