//go:build darwin

package xcomp

// Darwin 的 ru_maxrss 以字节为单位。
const maxRSSUnit = 1
