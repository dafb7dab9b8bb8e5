//go:build !linux && !darwin

package xcomp

func threadCPU() int64 { return 0 }
