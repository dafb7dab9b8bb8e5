package xcomp

import (
	"fmt"
	"strconv"
	"strings"
)

// Number 是组件 RecordType 的约束：整数或浮点。
type Number interface {
	~int64 | ~float64
}

// Policy 表示同一组件类型两个统计值的合并策略。
type Policy uint8

const (
	// PolicySum 累加，适用于耗时、计数类组件。
	PolicySum Policy = iota
	// PolicyMax 取较大值，适用于峰值内存等高水位组件。
	PolicyMax
	// PolicyMin 取较小值。
	PolicyMin
)

// String 返回策略的小写名称。
func (p Policy) String() string {
	switch p {
	case PolicySum:
		return "sum"
	case PolicyMax:
		return "max"
	case PolicyMin:
		return "min"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Valid 报告策略是否为已定义的取值。
func (p Policy) Valid() bool {
	return p <= PolicyMin
}

// ParsePolicy 解析策略字符串（大小写不敏感，自动 TrimSpace）。
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return PolicySum, nil
	case "max":
		return PolicyMax, nil
	case "min":
		return PolicyMin, nil
	default:
		return PolicySum, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (p *Policy) UnmarshalText(data []byte) error {
	parsed, err := ParsePolicy(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Combine 按策略合并两个值。未知策略按 SUM 处理。
func Combine[T Number](p Policy, acc, v T) T {
	switch p {
	case PolicyMax:
		return max(acc, v)
	case PolicyMin:
		return min(acc, v)
	default:
		return acc + v
	}
}

// Mode 表示 Stop 如何从起止样本得到 value。
type Mode uint8

const (
	// ModeDelta value = 结束样本 - 起始样本。
	ModeDelta Mode = iota
	// ModeSample value = 结束样本（最新读数），用于高水位类组件。
	ModeSample
)

// String 返回模式名称。
func (m Mode) String() string {
	switch m {
	case ModeDelta:
		return "delta"
	case ModeSample:
		return "sample"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode 解析模式字符串。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delta":
		return ModeDelta, nil
	case "sample":
		return ModeSample, nil
	default:
		return ModeDelta, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Meta 是组件类型的静态元数据。
type Meta struct {
	// Label 组件类型的短名称，同时作为类型目录中的键（如 "wall"）。
	Label string
	// Description 人类可读描述。
	Description string
	// Unit 单位（如 "ns"、"bytes"、"1"）。
	Unit string
	// Policy 同一作用域多次进入以及跨线程/跨 rank 合并时的策略。
	Policy Policy
	// Mode Stop 时 value 的取值方式。
	Mode Mode
}
