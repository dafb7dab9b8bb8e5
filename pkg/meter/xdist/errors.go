package xdist

import "errors"

var (
	// ErrInvalidSize 表示通信组大小不合法。
	ErrInvalidSize = errors.New("xdist: invalid group size")

	// ErrInvalidRank 表示 rank 超出通信组范围。
	ErrInvalidRank = errors.New("xdist: invalid rank")

	// ErrInvalidRoot 表示根 rank 超出范围或与同一轮其他成员不一致。
	ErrInvalidRoot = errors.New("xdist: invalid root rank")

	// ErrGatherTimeout 表示在截止时间前没有收齐全部 rank。
	ErrGatherTimeout = errors.New("xdist: gather timed out")

	// ErrNilClient 表示未提供 Redis 客户端。
	ErrNilClient = errors.New("xdist: nil redis client")

	// ErrDuplicateRank 表示同一轮中同一 rank 提交了两次。
	ErrDuplicateRank = errors.New("xdist: duplicate contribution")
)
