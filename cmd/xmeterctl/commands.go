package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xmeter/pkg/config/xconf"
	"github.com/omeyang/xmeter/pkg/meter/xdist"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
	"github.com/omeyang/xmeter/pkg/meter/xmeter"
	"github.com/omeyang/xmeter/pkg/meter/xreport"
	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

const defaultFib = 30

func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "运行参考负载并输出报告",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "配置文件（yaml/json）"},
			&cli.StringSliceFlag{Name: "components", Aliases: []string{"k"}, Usage: "启用的组件类型，逗号分隔"},
			&cli.IntFlag{Name: "fib", Aliases: []string{"n"}, Usage: "fib 参数", Value: defaultFib},
			&cli.IntFlag{Name: "repeat", Usage: "nested 作用域重复次数", Value: 1},
			&cli.StringFlag{Name: "reuse", Usage: "blank bundle 复用策略（reset|accumulate）"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "报告格式（text|json）"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "报告输出文件，- 表示标准输出"},
			&cli.StringFlag{Name: "log-level", Usage: "日志级别"},
			&cli.IntFlag{Name: "ranks", Aliases: []string{"r"}, Usage: "rank 总数"},
			&cli.IntFlag{Name: "rank", Usage: "本进程的 rank（Redis 模式）"},
			&cli.IntFlag{Name: "root", Usage: "汇总报告的 rank"},
			&cli.StringFlag{Name: "redis", Usage: "Redis 地址，启用跨进程汇总"},
			&cli.StringFlag{Name: "session", Usage: "跨进程汇总的会话名"},
			&cli.DurationFlag{Name: "timeout", Usage: "汇总超时"},
		},
		Action: runAction,
	}
}

func createComponentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "components",
		Usage: "列出组件类型目录",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "输出格式（text|json）", Value: xconf.ReportText},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return listComponents(cmd.Root().Writer, cmd.String("format"))
		},
	}
}

// loadSettings 读取配置文件（如指定）并用命令行参数覆盖。
func loadSettings(cmd *cli.Command) (*xconf.Settings, error) {
	s := xconf.DefaultSettings()
	if path := cmd.String("config"); path != "" {
		loaded, err := xconf.LoadSettings(path)
		if err != nil {
			return nil, &usageError{err: err}
		}
		s = *loaded
	}

	if cmd.IsSet("components") {
		s.Components = splitList(cmd.StringSlice("components"))
	}
	setString := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	setString("reuse", &s.Reuse)
	setString("format", &s.Report.Format)
	setString("output", &s.Report.Output)
	setString("log-level", &s.Log.Level)
	setString("session", &s.Distributed.Session)

	d := &s.Distributed
	if cmd.IsSet("ranks") {
		d.Size = cmd.Int("ranks")
		d.Enabled = d.Enabled || d.Size > 1
	}
	if cmd.IsSet("rank") {
		d.Rank = cmd.Int("rank")
	}
	if cmd.IsSet("root") {
		d.Root = cmd.Int("root")
	}
	if cmd.IsSet("redis") {
		d.RedisAddr = cmd.String("redis")
		d.Enabled = true
	}
	if cmd.IsSet("timeout") {
		d.Timeout = cmd.Duration("timeout")
	}

	if err := s.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return &s, nil
}

// splitList 展开 "a,b" 形式的参数并去掉空白项。
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// runConfig 是一次运行解析后的参数。
type runConfig struct {
	settings *xconf.Settings
	kinds    []xmeter.Kind
	reuse    xmeter.ReusePolicy
	logger   xlog.Logger
	fib      int
	repeat   int
}

func (rc *runConfig) managerOptions() []xmeter.Option {
	return []xmeter.Option{
		xmeter.WithName(rc.settings.Name),
		xmeter.WithKinds(rc.kinds...),
		xmeter.WithReusePolicy(rc.reuse),
		xmeter.WithLogger(rc.logger),
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	rc := &runConfig{settings: s, fib: cmd.Int("fib"), repeat: cmd.Int("repeat")}
	if rc.fib < 0 || rc.repeat < 0 {
		return usagef("fib and repeat must be non-negative")
	}
	if len(s.Components) > 0 {
		if rc.kinds, err = xmeter.LookupKinds(s.Components); err != nil {
			return &usageError{err: err}
		}
	}
	if rc.reuse, err = xmeter.ParseReusePolicy(s.Reuse); err != nil {
		return &usageError{err: err}
	}

	root := cmd.Root()
	logger, closeLog, err := s.Log.Logger(root.ErrWriter, slog.String("run_id", uuid.NewString()))
	if err != nil {
		return &usageError{err: err}
	}
	defer func() { _ = closeLog() }()
	rc.logger = logger

	sink, closeSink, err := openSink(s.Report, root.Writer)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	var rep *xreport.Report
	switch d := s.Distributed; {
	case d.Enabled && d.RedisAddr != "":
		rep, err = runRedis(ctx, rc)
	case d.Enabled && d.Size > 1:
		rep, err = runLocal(ctx, rc)
	default:
		rep, err = runSingle(ctx, rc, 0, xmeter.NewManager(rc.managerOptions()...))
	}
	if rep == nil {
		return err
	}
	if werr := sink.Write(ctx, rep); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}

// runSingle 在一个线程上执行负载并终结 m。
func runSingle(ctx context.Context, rc *runConfig, rank int, m *xmeter.Manager) (*xreport.Report, error) {
	th := m.Thread(xmeter.WithThreadName("main"))
	ans := workload(th, rc.fib, rc.repeat)
	th.Exit()
	rc.logger.Info(ctx, "workload done", xlog.Rank(rank), slog.Int("answer", ans))
	return m.Finalize(ctx)
}

// runLocal 在进程内模拟多个 rank，每个 rank 使用独立的标签注册表。
func runLocal(ctx context.Context, rc *runConfig) (*xreport.Report, error) {
	d := rc.settings.Distributed
	group, err := xdist.NewLocalGroup(d.Size)
	if err != nil {
		return nil, &usageError{err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	reports := make([]*xreport.Report, d.Size)
	g, gctx := errgroup.WithContext(ctx)
	for rank, comm := range group.Members() {
		opts := append(rc.managerOptions(),
			xmeter.WithRegistry(xhash.New()),
			xmeter.WithCommunicator(comm, d.Root))
		g.Go(func() error {
			rep, err := runSingle(xlog.WithAttrs(gctx, xlog.Rank(rank)), rc, rank, xmeter.NewManager(opts...))
			reports[rank] = rep
			return err
		})
	}
	err = g.Wait()
	return reports[d.Root], err
}

// runRedis 作为一个 rank 运行，经 Redis 与其他进程汇总。
func runRedis(ctx context.Context, rc *runConfig) (*xreport.Report, error) {
	d := rc.settings.Distributed
	client := redis.NewClient(&redis.Options{Addr: d.RedisAddr})
	defer func() { _ = client.Close() }()

	comm, err := xdist.NewRedis(client, d.Rank, d.Size,
		xdist.WithSession(d.Session),
		xdist.WithGatherTimeout(d.Timeout))
	if err != nil {
		return nil, &usageError{err: err}
	}
	m := xmeter.NewManager(append(rc.managerOptions(), xmeter.WithCommunicator(comm, d.Root))...)
	return runSingle(xlog.WithAttrs(ctx, xlog.Rank(d.Rank)), rc, d.Rank, m)
}

// workload 是参考负载：total 包裹 fib(n)，nested 包裹 fib(n+1)。
func workload(th *xmeter.Thread, n, repeat int) int {
	total := th.Start("total")
	defer total.Stop()

	ans := fib(n)
	nested := th.Blank()
	for range repeat {
		_ = nested.Restart("nested")
		ans += fib(n + 1)
		nested.Stop()
	}
	return ans
}

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

// openSink 按报告配置打开输出端，返回的函数关闭输出文件。
func openSink(r xconf.ReportSettings, stdout io.Writer) (xreport.Sink, func() error, error) {
	w, closeFn := stdout, func() error { return nil }
	if r.Output != "" && r.Output != "-" {
		f, err := os.Create(r.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("open report output: %w", err)
		}
		w, closeFn = f, f.Close
	}
	if strings.EqualFold(r.Format, xconf.ReportJSON) {
		return xreport.NewJSONSink(w), closeFn, nil
	}
	return xreport.NewTextSink(w), closeFn, nil
}

// componentInfo 是 components 命令的 JSON 输出项。
type componentInfo struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Policy      string `json:"policy"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func listComponents(w io.Writer, format string) error {
	kinds := xmeter.Kinds()
	infos := make([]componentInfo, 0, len(kinds))
	for _, k := range kinds {
		m := k.Meta()
		infos = append(infos, componentInfo{
			Name:        k.Name(),
			Unit:        m.Unit,
			Policy:      m.Policy.String(),
			Mode:        m.Mode.String(),
			Description: m.Description,
		})
	}

	switch strings.ToLower(format) {
	case xconf.ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case xconf.ReportText, "":
	default:
		return usagef("unknown format %q", format)
	}

	rows := make([][]string, 0, len(infos))
	for _, c := range infos {
		rows = append(rows, []string{c.Name, c.Unit, c.Policy, c.Mode, c.Description})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("name", "unit", "policy", "mode", "description").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

