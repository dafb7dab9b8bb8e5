//go:build !unix

package xcomp

// readUsage 在不支持 getrusage 的平台恒返回全零。
func readUsage() usage { return usage{} }
