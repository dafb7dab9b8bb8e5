package xcomp

// usage 是 getrusage 结果中组件关心的字段，时间单位纳秒，内存单位字节。
type usage struct {
	utime   int64
	stime   int64
	maxRSS  int64
	minflt  int64
	majflt  int64
	inblock int64
	oublock int64
}

// NewPeakRSS 创建峰值常驻内存组件（字节，MAX，采样）。
func NewPeakRSS() *Base[int64] {
	return New(Meta{
		Label:       "peak_rss",
		Description: "peak resident set size",
		Unit:        "bytes",
		Policy:      PolicyMax,
		Mode:        ModeSample,
	}, func() int64 { return readUsage().maxRSS })
}

// NewMinorFaults 创建次缺页次数组件（SUM）。
func NewMinorFaults() *Base[int64] {
	return New(Meta{
		Label:       "minor_faults",
		Description: "page faults serviced without I/O",
		Unit:        "1",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return readUsage().minflt })
}

// NewMajorFaults 创建主缺页次数组件（SUM）。
func NewMajorFaults() *Base[int64] {
	return New(Meta{
		Label:       "major_faults",
		Description: "page faults requiring I/O",
		Unit:        "1",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return readUsage().majflt })
}

// NewBlockInput 创建块输入次数组件（SUM）。
func NewBlockInput() *Base[int64] {
	return New(Meta{
		Label:       "block_in",
		Description: "filesystem block input operations",
		Unit:        "1",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return readUsage().inblock })
}

// NewBlockOutput 创建块输出次数组件（SUM）。
func NewBlockOutput() *Base[int64] {
	return New(Meta{
		Label:       "block_out",
		Description: "filesystem block output operations",
		Unit:        "1",
		Policy:      PolicySum,
		Mode:        ModeDelta,
	}, func() int64 { return readUsage().oublock })
}
