package xgraph

import (
	"slices"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
)

// NodeIndex 是节点在图内数组中的下标。
type NodeIndex int32

// RootIndex 是合成根节点的下标。
const RootIndex NodeIndex = 0

// Node 是调用图节点。
type Node[T xcomp.Number] struct {
	ID       xhash.ID
	Label    string
	Parent   NodeIndex
	Children []NodeIndex // 按首次插入顺序
	Stats    Stats[T]
}

type edge struct {
	parent NodeIndex
	id     xhash.ID
}

// Graph 是单个组件类型在单个线程上的调用图。
type Graph[T xcomp.Number] struct {
	policy xcomp.Policy
	nodes  []Node[T]
	index  map[edge]NodeIndex
	cursor NodeIndex
}

// New 创建只含根节点的空图。
func New[T xcomp.Number](policy xcomp.Policy) *Graph[T] {
	g := &Graph[T]{policy: policy}
	g.Reset()
	return g
}

// Policy 返回图的合并策略。
func (g *Graph[T]) Policy() xcomp.Policy { return g.policy }

// Len 返回节点数（含根）。
func (g *Graph[T]) Len() int { return len(g.nodes) }

// Empty 报告图中是否只有根节点。
func (g *Graph[T]) Empty() bool { return len(g.nodes) == 1 }

// Cursor 返回当前游标。
func (g *Graph[T]) Cursor() NodeIndex { return g.cursor }

// Node 返回 i 处节点。返回的指针在下一次插入节点前有效。
func (g *Graph[T]) Node(i NodeIndex) *Node[T] { return &g.nodes[i] }

// Reset 丢弃全部节点，只保留根。
func (g *Graph[T]) Reset() {
	g.nodes = append(g.nodes[:0], Node[T]{ID: xhash.RootID, Parent: RootIndex})
	g.index = make(map[edge]NodeIndex)
	g.cursor = RootIndex
}

// Child 查找 parent 下 id 对应的子节点，不存在时创建并追加到 parent 的子节点末尾。
func (g *Graph[T]) Child(parent NodeIndex, id xhash.ID, label string) NodeIndex {
	if i, ok := g.index[edge{parent, id}]; ok {
		return i
	}
	i := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, Node[T]{ID: id, Label: label, Parent: parent})
	g.nodes[parent].Children = append(g.nodes[parent].Children, i)
	g.index[edge{parent, id}] = i
	return i
}

// Enter 在当前游标下解析作用域节点，不移动游标。
func (g *Graph[T]) Enter(id xhash.ID, label string) NodeIndex {
	return g.Child(g.cursor, id, label)
}

// Push 把游标移到 i。
func (g *Graph[T]) Push(i NodeIndex) { g.cursor = i }

// Exit 记录一次观测并把游标恢复到 i 的父节点。
func (g *Graph[T]) Exit(i NodeIndex, v T) {
	g.nodes[i].Stats.Observe(g.policy, v)
	g.cursor = g.nodes[i].Parent
}

// Pop 把游标恢复到 i 的父节点，不记录观测。
func (g *Graph[T]) Pop(i NodeIndex) { g.cursor = g.nodes[i].Parent }

// Find 按标签路径查找节点。
func (g *Graph[T]) Find(path ...string) (NodeIndex, bool) {
	cur := RootIndex
	for _, label := range path {
		next, ok := NodeIndex(-1), false
		for _, c := range g.nodes[cur].Children {
			if g.nodes[c].Label == label {
				next, ok = c, true
				break
			}
		}
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// Walk 先序遍历除根以外的节点：父节点先于子节点，子节点按插入顺序。
// path 在回调之间复用，需要保留时调用方自行复制。fn 返回 false 时停止遍历。
func (g *Graph[T]) Walk(fn func(path []string, n *Node[T]) bool) {
	path := make([]string, 0, 16)
	var visit func(i NodeIndex) bool
	visit = func(i NodeIndex) bool {
		n := &g.nodes[i]
		path = append(path, n.Label)
		defer func() { path = path[:len(path)-1] }()
		if !fn(path, n) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	for _, c := range g.nodes[RootIndex].Children {
		if !visit(c) {
			return
		}
	}
}

// Entry 是扁平化后的一条节点记录。
type Entry[T xcomp.Number] struct {
	Path  []string
	Depth int
	Stats Stats[T]
}

// Flatten 按 [Graph.Walk] 的顺序导出全部节点。顶层作用域深度为 0。
func (g *Graph[T]) Flatten() []Entry[T] {
	out := make([]Entry[T], 0, len(g.nodes)-1)
	g.Walk(func(path []string, n *Node[T]) bool {
		out = append(out, Entry[T]{Path: slices.Clone(path), Depth: len(path) - 1, Stats: n.Stats})
		return true
	})
	return out
}
