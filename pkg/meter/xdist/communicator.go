package xdist

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=communicator.go -destination=../xmeter/mock_communicator_test.go -package=xmeter

// Communicator 是分布式合并所需的最小集合通信接口。
//
// 同一通信组的全部成员必须以相同的 root 和相同的调用次序调用 Gather。
type Communicator interface {
	// Rank 返回本成员的编号，范围 [0, Size)。
	Rank() int
	// Size 返回通信组大小。
	Size() int
	// Gather 提交 payload。root 成员返回长度为 Size 的切片，第 i 项是 rank i 的负载；
	// 其他成员返回 nil。
	Gather(ctx context.Context, root int, payload []byte) ([][]byte, error)
}

func checkRoot(root, size int) error {
	if root < 0 || root >= size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidRoot, root, size)
	}
	return nil
}

func checkMembership(rank, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if rank < 0 || rank >= size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidRank, rank, size)
	}
	return nil
}

// timeoutError 把 ctx 的取消原因包装为 ErrGatherTimeout。
func timeoutError(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrGatherTimeout, context.Cause(ctx))
}
