package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 是配置数据格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 是已加载的配置。基础读取操作直接使用 Client 返回的 koanf 实例。
type Config interface {
	// Client 返回当前 koanf 实例。Reload 后旧实例仍可读，但内容过期。
	Client() *koanf.Koanf
	// Unmarshal 把 path 下的配置解码到 target，path 为空时解码全部。
	Unmarshal(path string, target any) error
	// Reload 重新读取配置文件，解析失败时保留旧配置。
	Reload() error
	// Path 返回配置文件路径，字节配置返回空串。
	Path() string
	// Format 返回配置格式。
	Format() Format
}

type koanfConfig struct {
	k      atomic.Pointer[koanf.Koanf]
	path   string
	format Format
	opts   *options

	reloadMu sync.Mutex
}

// New 从文件加载配置，按扩展名（.yaml/.yml/.json）识别格式。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	c := &koanfConfig{path: path, format: format, opts: applyOptions(opts)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从字节数据加载配置。空数据得到空配置。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	c := &koanfConfig{format: format, opts: applyOptions(opts)}
	k, err := parse(data, format, c.opts.delim)
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (c *koanfConfig) Client() *koanf.Koanf { return c.k.Load() }
func (c *koanfConfig) Path() string         { return c.path }
func (c *koanfConfig) Format() Format       { return c.format }

func (c *koanfConfig) Unmarshal(path string, target any) error {
	conf := koanf.UnmarshalConf{Tag: c.opts.tag, DecoderConfig: decoderConfig()}
	if err := c.k.Load().UnmarshalWithConf(path, target, conf); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// decoderConfig 在 koanf 默认钩子之外支持逗号分隔的字符串切片。
// koanf 每次解码都会写入 Result，因此每次调用返回新值。
func decoderConfig() *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
	}
}

func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := parse(data, c.format, c.opts.delim)
	if err != nil {
		return err
	}
	c.k.Store(k)
	return nil
}

// DetectFormat 按文件扩展名识别配置格式。
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

func parse(data []byte, format Format, delim string) (*koanf.Koanf, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	k := koanf.New(delim)
	if len(data) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}
