package xgraph

import (
	"fmt"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
)

// Snapshot 是与进程无关的调用图表示。节点按先序排列，标签通过 Labels 表引用。
type Snapshot[T xcomp.Number] struct {
	Policy xcomp.Policy      `cbor:"policy" json:"policy"`
	Labels []string          `cbor:"labels" json:"labels"`
	Nodes  []SnapshotNode[T] `cbor:"nodes" json:"nodes"`
}

// SnapshotNode 是快照中的一个节点。
type SnapshotNode[T xcomp.Number] struct {
	// Parent 父节点在 Nodes 中的下标，-1 表示根下的顶层作用域。
	Parent int32 `cbor:"p" json:"p"`
	// Label 标签在 Labels 中的下标。
	Label uint32 `cbor:"l" json:"l"`
	Value T      `cbor:"v" json:"v"`
	Count uint64 `cbor:"c" json:"c"`
	Min   T      `cbor:"lo" json:"lo"`
	Max   T      `cbor:"hi" json:"hi"`
}

// Snapshot 导出当前图的快照，g 不变。
func (g *Graph[T]) Snapshot() *Snapshot[T] {
	s := &Snapshot[T]{
		Policy: g.policy,
		Nodes:  make([]SnapshotNode[T], 0, len(g.nodes)-1),
	}
	labelIdx := make(map[string]uint32)
	// 图下标 -> 快照下标
	pos := make([]int32, len(g.nodes))
	pos[RootIndex] = -1

	var visit func(i NodeIndex)
	visit = func(i NodeIndex) {
		n := &g.nodes[i]
		li, ok := labelIdx[n.Label]
		if !ok {
			li = uint32(len(s.Labels))
			labelIdx[n.Label] = li
			s.Labels = append(s.Labels, n.Label)
		}
		pos[i] = int32(len(s.Nodes))
		s.Nodes = append(s.Nodes, SnapshotNode[T]{
			Parent: pos[n.Parent],
			Label:  li,
			Value:  n.Stats.Value,
			Count:  n.Stats.Count,
			Min:    n.Stats.Min,
			Max:    n.Stats.Max,
		})
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, c := range g.nodes[RootIndex].Children {
		visit(c)
	}
	return s
}

// Validate 检查快照结构：父节点必须在自身之前，标签下标不能越界。
func (s *Snapshot[T]) Validate() error {
	for i, n := range s.Nodes {
		if n.Parent < -1 || int(n.Parent) >= i {
			return fmt.Errorf("%w: node %d has parent %d", ErrInvalidSnapshot, i, n.Parent)
		}
		if int(n.Label) >= len(s.Labels) {
			return fmt.Errorf("%w: node %d has label %d of %d", ErrInvalidSnapshot, i, n.Label, len(s.Labels))
		}
	}
	return nil
}

// MergeSnapshot 用 intern 把快照标签重新映射为本地 ID，再按路径折叠进 g。
// 快照不合法或策略不一致时返回错误，g 不变。
func (g *Graph[T]) MergeSnapshot(s *Snapshot[T], intern func(string) xhash.ID) error {
	if s == nil {
		return nil
	}
	if s.Policy != g.policy {
		return fmt.Errorf("%w: %s into %s", ErrPolicyMismatch, s.Policy, g.policy)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	ids := make([]xhash.ID, len(s.Labels))
	for i, l := range s.Labels {
		ids[i] = intern(l)
	}
	mapped := make([]NodeIndex, len(s.Nodes))
	for i, n := range s.Nodes {
		parent := RootIndex
		if n.Parent >= 0 {
			parent = mapped[n.Parent]
		}
		di := g.Child(parent, ids[n.Label], s.Labels[n.Label])
		g.nodes[di].Stats.Merge(g.policy, Stats[T]{Value: n.Value, Count: n.Count, Min: n.Min, Max: n.Max})
		mapped[i] = di
	}
	return nil
}
