//go:build unix

package xcomp

import "golang.org/x/sys/unix"

// getrusage 是系统调用的包级变量，测试中替换以覆盖失败路径。
var getrusage = unix.Getrusage

// readUsage 读取进程资源使用；失败时返回全零。
func readUsage() usage {
	var ru unix.Rusage
	if err := getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return usage{}
	}
	return usage{
		utime:   ru.Utime.Nano(),
		stime:   ru.Stime.Nano(),
		maxRSS:  int64(ru.Maxrss) * maxRSSUnit,
		minflt:  int64(ru.Minflt),
		majflt:  int64(ru.Majflt),
		inblock: int64(ru.Inblock),
		oublock: int64(ru.Oublock),
	}
}
