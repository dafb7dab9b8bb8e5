package xgraph

import "fmt"

// Merge 把 src 按作用域 ID 路径折叠进 g：匹配的节点合并统计，
// 只存在于 src 的子树整棵移入 g 的对应位置。子树内没有任何观测的节点
// （作用域尚未结束）不会进入 g。完成后 src 被重置为空根。
//
// 两棵图必须使用同一个注册表分配 ID。策略不一致时返回 [ErrPolicyMismatch]，g 与 src 均不变。
func (g *Graph[T]) Merge(src *Graph[T]) error {
	if src == nil || src == g {
		return nil
	}
	if src.policy != g.policy {
		return fmt.Errorf("%w: %s into %s", ErrPolicyMismatch, src.policy, g.policy)
	}
	live := src.observed()
	for _, c := range src.nodes[RootIndex].Children {
		g.mergeNode(RootIndex, src, c, live)
	}
	src.Reset()
	return nil
}

// observed 标记自身或任一后代有观测的节点。子节点下标总大于父节点，逆序一遍即可。
func (g *Graph[T]) observed() []bool {
	live := make([]bool, len(g.nodes))
	for i := len(g.nodes) - 1; i > 0; i-- {
		if g.nodes[i].Stats.Count > 0 {
			live[i] = true
		}
		if live[i] {
			live[g.nodes[i].Parent] = true
		}
	}
	return live
}

func (g *Graph[T]) mergeNode(parent NodeIndex, src *Graph[T], si NodeIndex, live []bool) {
	if !live[si] {
		return
	}
	sn := &src.nodes[si]
	di, ok := g.index[edge{parent, sn.ID}]
	if !ok {
		g.graft(parent, src, si, live)
		return
	}
	g.nodes[di].Stats.Merge(g.policy, sn.Stats)
	for _, c := range sn.Children {
		g.mergeNode(di, src, c, live)
	}
}

func (g *Graph[T]) graft(parent NodeIndex, src *Graph[T], si NodeIndex, live []bool) {
	sn := &src.nodes[si]
	di := g.Child(parent, sn.ID, sn.Label)
	g.nodes[di].Stats = sn.Stats
	for _, c := range sn.Children {
		if live[c] {
			g.graft(di, src, c, live)
		}
	}
}
