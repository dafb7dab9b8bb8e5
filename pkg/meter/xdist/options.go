package xdist

import "time"

const (
	defaultPrefix       = "xmeter"
	defaultSession      = "default"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 20 * time.Millisecond
	defaultKeyTTL       = 10 * time.Minute
)

// RedisOption 配置 [Redis] 通信器。
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix       string
	session      string
	timeout      time.Duration
	pollInterval time.Duration
	keyTTL       time.Duration
}

func defaultRedisOptions() redisOptions {
	return redisOptions{
		prefix:       defaultPrefix,
		session:      defaultSession,
		timeout:      defaultTimeout,
		pollInterval: defaultPollInterval,
		keyTTL:       defaultKeyTTL,
	}
}

// WithKeyPrefix 设置键前缀，默认 "xmeter"。空字符串被忽略。
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithSession 设置会话名，同一次分布式运行的全部 rank 必须一致。
func WithSession(session string) RedisOption {
	return func(o *redisOptions) {
		if session != "" {
			o.session = session
		}
	}
}

// WithGatherTimeout 设置根 rank 等待全部负载的最长时间，默认 30s。
// ctx 的截止时间更早时以 ctx 为准。
func WithGatherTimeout(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithPollInterval 设置根 rank 的轮询间隔，默认 20ms。
func WithPollInterval(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithKeyTTL 设置聚合键的过期时间，防止异常退出后残留，默认 10m。
func WithKeyTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d > 0 {
			o.keyTTL = d
		}
	}
}
