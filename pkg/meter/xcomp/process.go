package xcomp

import (
	"os"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

// procStats 抽象 gopsutil 的进程查询，测试中替换。
type procStats interface {
	MemoryInfo() (*process.MemoryInfoStat, error)
	NumCtxSwitches() (*process.NumCtxSwitchesStat, error)
	IOCounters() (*process.IOCountersStat, error)
}

// selfProcess 返回当前进程句柄；创建失败时返回 nil。
var selfProcess = sync.OnceValue(func() procStats {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}
	return p
})

// currentProcess 是 selfProcess 的可替换入口。
var currentProcess = func() procStats { return selfProcess() }

func readRSS() int64 {
	p := currentProcess()
	if p == nil {
		return 0
	}
	m, err := p.MemoryInfo()
	if err != nil || m == nil {
		return 0
	}
	return int64(m.RSS)
}

func readCtxSwitches() (voluntary, involuntary int64) {
	p := currentProcess()
	if p == nil {
		return 0, 0
	}
	s, err := p.NumCtxSwitches()
	if err != nil || s == nil {
		return 0, 0
	}
	return s.Voluntary, s.Involuntary
}

func readIOBytes() (read, written int64) {
	p := currentProcess()
	if p == nil {
		return 0, 0
	}
	c, err := p.IOCounters()
	if err != nil || c == nil {
		return 0, 0
	}
	return int64(c.ReadBytes), int64(c.WriteBytes)
}

// NewPageRSS 创建当前常驻内存变化量组件（字节，SUM）。
func NewPageRSS() *Base[int64] {
	return New(Meta{
		Label:       "page_rss",
		Description: "change in resident set size",
		Unit:        "bytes",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, readRSS)
}

// NewVoluntaryCtxSwitch 创建自愿上下文切换次数组件（SUM）。
func NewVoluntaryCtxSwitch() *Base[int64] {
	return New(Meta{
		Label:       "vol_ctx_switch",
		Description: "voluntary context switches",
		Unit:        "1",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 {
		v, _ := readCtxSwitches()
		return v
	})
}

// NewInvoluntaryCtxSwitch 创建非自愿上下文切换次数组件（SUM）。
func NewInvoluntaryCtxSwitch() *Base[int64] {
	return New(Meta{
		Label:       "ivol_ctx_switch",
		Description: "involuntary context switches",
		Unit:        "1",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 {
		_, v := readCtxSwitches()
		return v
	})
}

// NewReadBytes 创建读取字节数组件（SUM）。
func NewReadBytes() *Base[int64] {
	return New(Meta{
		Label:       "read_bytes",
		Description: "bytes read from storage",
		Unit:        "bytes",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 {
		r, _ := readIOBytes()
		return r
	})
}

// NewWrittenBytes 创建写入字节数组件（SUM）。
func NewWrittenBytes() *Base[int64] {
	return New(Meta{
		Label:       "written_bytes",
		Description: "bytes written to storage",
		Unit:        "bytes",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 {
		_, w := readIOBytes()
		return w
	})
}
