package xcomp

import (
	"runtime"
	"runtime/metrics"
)

const heapAllocsMetric = "/gc/heap/allocs:bytes"

// readHeapAllocs 读取累计堆分配字节数；运行时不支持该指标时返回 0。
func readHeapAllocs() int64 {
	sample := [1]metrics.Sample{{Name: heapAllocsMetric}}
	metrics.Read(sample[:])
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return int64(sample[0].Value.Uint64())
}

// NewHeapAlloc 创建作用域内堆分配字节数组件（SUM）。
func NewHeapAlloc() *Base[int64] {
	return New(Meta{
		Label:       "heap_alloc",
		Description: "bytes allocated on the go heap",
		Unit:        "bytes",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, readHeapAllocs)
}

// NewGoroutines 创建 goroutine 数量组件（MAX，采样）。
func NewGoroutines() *Base[int64] {
	return New(Meta{
		Label:       "goroutines",
		Description: "live goroutines at scope exit",
		Unit:        "1",
		Policy:      PolicyMax,
		Mode:        ModeSample,
	}, func() int64 { return int64(runtime.NumGoroutine()) })
}
