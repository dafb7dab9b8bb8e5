package xmeter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
	"github.com/omeyang/xmeter/pkg/observability/xlog"
)

// rankPayload 是一个 rank 交给根 rank 的数据。调用图快照自带标签表，ID 不跨进程。
type rankPayload struct {
	Rank  int           `cbor:"rank"`
	Kinds []kindPayload `cbor:"kinds"`
}

type kindPayload struct {
	Name     string       `cbor:"name"`
	Policy   xcomp.Policy `cbor:"policy"`
	Snapshot []byte       `cbor:"snapshot"`
}

func (m *Manager) encodeRoots() ([]byte, error) {
	p := rankPayload{Rank: m.comm.Rank()}
	for _, k := range m.reportKinds() {
		st, ok := m.roots[k]
		if !ok {
			continue
		}
		data, err := st.encode()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k.Name(), err)
		}
		p.Kinds = append(p.Kinds, kindPayload{Name: k.Name(), Policy: k.Meta().Policy, Snapshot: data})
	}
	return cbor.Marshal(p)
}

// mergeDistributed 把各 rank 的调用图汇总到根 rank，返回本 rank 的报告是否包含其他 rank 的数据。
func (m *Manager) mergeDistributed(ctx context.Context) (bool, error) {
	payload, err := m.encodeRoots()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDistributedMerge, err)
	}
	parts, err := m.comm.Gather(ctx, m.root, payload)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDistributedMerge, err)
	}
	self := m.comm.Rank()
	if self != m.root {
		return false, nil
	}

	merged := make(forest)
	for rank, part := range parts {
		if rank == self {
			mergeForest(merged, m.roots, m.logger)
			continue
		}
		m.foldRank(ctx, merged, rank, part)
	}
	m.roots = merged
	m.logger.Debug(ctx, "distributed merge complete", xlog.Rank(self), xlog.Count(len(parts)))
	return true, nil
}

// foldRank 把一个远端 rank 的数据按标签路径折叠进 dst。无法解码或无法识别的部分被跳过。
func (m *Manager) foldRank(ctx context.Context, dst forest, rank int, data []byte) {
	var p rankPayload
	if err := cbor.Unmarshal(data, &p); err != nil {
		m.logger.Warn(ctx, "rank payload skipped", xlog.Rank(rank), xlog.Err(err))
		return
	}
	for _, kp := range p.Kinds {
		k, ok := m.resolveKind(kp.Name)
		if !ok {
			m.logger.Warn(ctx, "unknown kind from rank skipped", xlog.Rank(rank), xlog.Kind(kp.Name))
			continue
		}
		if kp.Policy != k.Meta().Policy {
			m.logger.Warn(ctx, "kind policy differs from rank, skipped", xlog.Rank(rank), xlog.Kind(kp.Name),
				slog.String("remote", kp.Policy.String()), slog.String("local", k.Meta().Policy.String()))
			continue
		}
		st, existed := dst[k]
		if !existed {
			st = k.newStorage()
		}
		if err := st.mergeEncoded(kp.Snapshot, m.registry.Intern); err != nil {
			m.logger.Warn(ctx, "kind from rank skipped", xlog.Rank(rank), xlog.Kind(kp.Name), xlog.Err(err))
			continue
		}
		dst[k] = st
	}
}

// resolveKind 依次在 Manager 组件集、本地已有数据与全局目录中按名称查找。
func (m *Manager) resolveKind(name string) (Kind, bool) {
	match := func(k Kind) bool { return strings.EqualFold(k.Name(), name) }
	if i := slices.IndexFunc(m.kinds, match); i >= 0 {
		return m.kinds[i], true
	}
	for k := range m.roots {
		if match(k) {
			return k, true
		}
	}
	return LookupKind(name)
}
