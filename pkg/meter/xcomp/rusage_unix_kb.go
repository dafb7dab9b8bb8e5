//go:build unix && !darwin

package xcomp

// Linux 与 BSD 的 ru_maxrss 以 KB 为单位。
const maxRSSUnit = 1024
