package xcomp

import "time"

// processStart 是单调时钟的零点。
var processStart = time.Now()

// monotonicNow 返回自进程启动以来的单调纳秒数，测试可替换。
var monotonicNow = func() int64 {
	return int64(time.Since(processStart))
}

// NewWallClock 创建墙钟耗时组件（纳秒，SUM）。
func NewWallClock() *Base[int64] {
	return New(Meta{
		Label:       "wall",
		Description: "wall clock time",
		Unit:        "ns",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return monotonicNow() })
}

// NewUserClock 创建进程用户态 CPU 时间组件（纳秒，SUM）。
func NewUserClock() *Base[int64] {
	return New(Meta{
		Label:       "user",
		Description: "process user cpu time",
		Unit:        "ns",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return readUsage().utime })
}

// NewSystemClock 创建进程内核态 CPU 时间组件（纳秒，SUM）。
func NewSystemClock() *Base[int64] {
	return New(Meta{
		Label:       "sys",
		Description: "process system cpu time",
		Unit:        "ns",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return readUsage().stime })
}

// NewCPUClock 创建进程 CPU 时间（user+sys）组件（纳秒，SUM）。
func NewCPUClock() *Base[int64] {
	return New(Meta{
		Label:       "cpu",
		Description: "process cpu time (user + system)",
		Unit:        "ns",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, processCPU)
}

// NewThreadCPUClock 创建当前 OS 线程 CPU 时间组件（纳秒，SUM）。
// 仅 linux/darwin 可测量，其他平台恒为 0。
func NewThreadCPUClock() *Base[int64] {
	return New(Meta{
		Label:       "thread_cpu",
		Description: "os thread cpu time",
		Unit:        "ns",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, threadCPU)
}

func processCPU() int64 {
	u := readUsage()
	return u.utime + u.stime
}
