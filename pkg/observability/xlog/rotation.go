package xlog

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationOption 配置 lumberjack 轮转参数。
type RotationOption func(*lumberjack.Logger)

// WithMaxSize 单个文件最大 MB 数，默认 100。
func WithMaxSize(mb int) RotationOption {
	return func(l *lumberjack.Logger) {
		if mb > 0 {
			l.MaxSize = mb
		}
	}
}

// WithMaxBackups 保留的旧文件数，默认 5。
func WithMaxBackups(n int) RotationOption {
	return func(l *lumberjack.Logger) {
		if n >= 0 {
			l.MaxBackups = n
		}
	}
}

// WithMaxAge 旧文件保留天数，0 表示不按时间清理。
func WithMaxAge(days int) RotationOption {
	return func(l *lumberjack.Logger) {
		if days >= 0 {
			l.MaxAge = days
		}
	}
}

// WithCompress 是否 gzip 压缩旧文件，默认开启。
func WithCompress(enable bool) RotationOption {
	return func(l *lumberjack.Logger) { l.Compress = enable }
}

func newRotator(filename string, opts ...RotationOption) (*lumberjack.Logger, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	l := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 5,
		Compress:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}
