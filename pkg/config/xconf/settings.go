package xconf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// Settings 是 xmeter 运行配置。
type Settings struct {
	// Name 报告名称。
	Name string `koanf:"name"`
	// Components 启用的组件类型名，为空时使用默认组件集。
	Components []string `koanf:"components"`
	// Reuse Blank Bundle 的复用策略：reset 或 accumulate。
	Reuse string `koanf:"reuse"`

	Log         LogSettings         `koanf:"log"`
	Report      ReportSettings      `koanf:"report"`
	Distributed DistributedSettings `koanf:"distributed"`
}

// LogSettings 日志配置。File 非空时输出到按大小轮转的文件。
type LogSettings struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// ReportSettings 报告输出配置。Output 为空或 "-" 表示标准输出。
type ReportSettings struct {
	Format string `koanf:"format"`
	Output string `koanf:"output"`
}

// DistributedSettings 分布式合并配置。RedisAddr 为空时使用进程内通信组模拟多个 rank。
type DistributedSettings struct {
	Enabled   bool          `koanf:"enabled"`
	Rank      int           `koanf:"rank"`
	Size      int           `koanf:"size"`
	Root      int           `koanf:"root"`
	Session   string        `koanf:"session"`
	RedisAddr string        `koanf:"redis_addr"`
	Timeout   time.Duration `koanf:"timeout"`
}

// 报告格式。
const (
	ReportJSON = "json"
	ReportText = "text"
)

// DefaultSettings 返回默认配置。
func DefaultSettings() Settings {
	return Settings{
		Name:   "xmeter",
		Reuse:  "reset",
		Log:    LogSettings{Level: "info", Format: "text", MaxSizeMB: 100, MaxBackups: 3},
		Report: ReportSettings{Format: ReportText, Output: "-"},
		Distributed: DistributedSettings{
			Size:    1,
			Session: "default",
			Timeout: 30 * time.Second,
		},
	}
}

// Validate 校验配置，返回全部问题的合并错误。
func (s *Settings) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSettings}, args...)...))
	}

	if strings.TrimSpace(s.Name) == "" {
		bad("name is empty")
	}
	for _, c := range s.Components {
		if strings.TrimSpace(c) == "" {
			bad("empty component name")
		}
	}
	switch strings.ToLower(s.Reuse) {
	case "", "reset", "accumulate":
	default:
		bad("reuse %q", s.Reuse)
	}
	if _, err := xlog.ParseLevel(s.Log.Level); err != nil {
		bad("log.level: %v", err)
	}
	if !slices.Contains([]string{"", "text", "json"}, strings.ToLower(s.Log.Format)) {
		bad("log.format %q", s.Log.Format)
	}
	if !slices.Contains([]string{ReportJSON, ReportText}, strings.ToLower(s.Report.Format)) {
		bad("report.format %q", s.Report.Format)
	}

	d := s.Distributed
	if d.Size < 1 {
		bad("distributed.size %d", d.Size)
	}
	if d.Enabled {
		if d.Rank < 0 || d.Rank >= d.Size {
			bad("distributed.rank %d not in [0, %d)", d.Rank, d.Size)
		}
		if d.Root < 0 || d.Root >= d.Size {
			bad("distributed.root %d not in [0, %d)", d.Root, d.Size)
		}
		if d.Timeout <= 0 {
			bad("distributed.timeout %s", d.Timeout)
		}
		if d.Session == "" {
			bad("distributed.session is empty")
		}
	}
	return errors.Join(errs...)
}

// LoadSettings 从文件加载并校验配置，缺省的键使用默认值。
func LoadSettings(path string, opts ...Option) (*Settings, error) {
	cfg, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	return SettingsFrom(cfg)
}

// LoadSettingsBytes 从字节数据加载并校验配置。
func LoadSettingsBytes(data []byte, format Format, opts ...Option) (*Settings, error) {
	cfg, err := NewFromBytes(data, format, opts...)
	if err != nil {
		return nil, err
	}
	return SettingsFrom(cfg)
}

// SettingsFrom 从已加载的配置解码运行配置。
func SettingsFrom(cfg Config) (*Settings, error) {
	s := DefaultSettings()
	if err := cfg.Unmarshal("", &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logger 按日志配置构建 Logger。w 为默认输出（File 为空时使用）。
func (l LogSettings) Logger(w io.Writer, attrs ...slog.Attr) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(w).
		SetLevelString(l.Level).
		SetFormat(l.Format).
		SetAttrs(attrs...)
	if l.File != "" {
		b.SetRotation(l.File, xlog.WithMaxSize(l.MaxSizeMB), xlog.WithMaxBackups(l.MaxBackups))
	}
	return b.Build()
}
