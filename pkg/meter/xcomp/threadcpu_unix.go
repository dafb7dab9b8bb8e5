//go:build linux || darwin

package xcomp

import "golang.org/x/sys/unix"

var clockGettime = unix.ClockGettime

// threadCPU 读取当前 OS 线程的 CPU 时间；失败时返回 0。
func threadCPU() int64 {
	var ts unix.Timespec
	if err := clockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}
