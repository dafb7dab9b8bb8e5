// xmeterctl 运行带测量的参考负载并输出调用图报告。
//
// 用法:
//
//	xmeterctl [全局选项] <命令> [命令参数]
//
// 命令:
//
//	run            运行参考负载（total 包裹 fib(n)，blank bundle 以 nested 重复启动）
//	components     列出组件类型目录
//	help           显示帮助信息
//
// run 支持三种模式:
//
//	单 rank（默认）
//	--ranks N      进程内模拟 N 个 rank，经通信组汇总到根 rank
//	--redis ADDR   本进程作为一个 rank，经 Redis 与其他进程汇总（配合 --rank/--ranks/--session）
//
// 退出码:
//
//	0: 成功
//	1: 运行失败（分布式合并失败时仍输出本地报告）
//	2: 参数或配置错误
//
// 示例:
//
//	xmeterctl run --fib 30
//	xmeterctl run -c xmeter.yaml --format json -o report.json
//	xmeterctl run --components wall,peak_rss --ranks 4
//	xmeterctl run --redis 127.0.0.1:6379 --rank 1 --ranks 2 --session job-7
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandler(cancel)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xmeterctl",
		Usage:     "运行带测量的负载并输出调用图报告",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createRunCommand(),
			createComponentsCommand(),
		},
		// 退出码由 run 统一映射，不让 cli 直接 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}

// usageError 表示参数或配置错误（退出码 2）。
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// isCLIUsageError 识别 cli 框架自身产生的参数错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"flag provided but not defined",
		"flag needs an argument",
		"invalid value",
		"Required flag",
		"No help topic",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
