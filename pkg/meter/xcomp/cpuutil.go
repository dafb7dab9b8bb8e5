package xcomp

var _ Component[float64] = (*CPUUtil)(nil)

// CPUUtil 以百分比记录区间内 CPU 时间与墙钟时间之比（float64，MAX）。
//
// 多核并行时可能超过 100。
type CPUUtil struct {
	wall  *Base[int64]
	cpu   *Base[int64]
	value float64
}

// NewCPUUtil 创建 CPU 利用率组件。
func NewCPUUtil() *CPUUtil {
	return &CPUUtil{wall: NewWallClock(), cpu: NewCPUClock()}
}

var cpuUtilMeta = Meta{
	Label:       "cpu_util",
	Description: "cpu time as a percentage of wall time",
	Unit:        "%",
	Policy:      PolicyMax,
	Mode:        ModeDelta,
}

// Meta 返回元数据。
func (c *CPUUtil) Meta() Meta { return cpuUtilMeta }

// Record 返回进程启动以来的平均利用率。
func (c *CPUUtil) Record() float64 {
	return utilization(c.cpu.Record(), c.wall.Record())
}

// Start 开始区间。
func (c *CPUUtil) Start() {
	c.wall.Start()
	c.cpu.Start()
}

// Stop 结束区间并计算利用率。
func (c *CPUUtil) Stop() {
	if !c.wall.Running() {
		return
	}
	c.cpu.Stop()
	c.wall.Stop()
	c.value = utilization(c.cpu.Value(), c.wall.Value())
}

// Reset 清零。
func (c *CPUUtil) Reset() {
	c.wall.Reset()
	c.cpu.Reset()
	c.value = 0
}

// Value 返回最近一次区间的利用率。
func (c *CPUUtil) Value() float64 { return c.value }

// Running 报告是否存在未结束的区间。
func (c *CPUUtil) Running() bool { return c.wall.Running() }

func utilization(cpu, wall int64) float64 {
	if wall <= 0 {
		return 0
	}
	return 100 * float64(cpu) / float64(wall)
}
