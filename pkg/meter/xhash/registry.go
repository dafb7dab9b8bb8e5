package xhash

import (
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ID 是作用域标签的数值标识。
type ID uint64

// RootID 保留给合成根节点，不会分配给任何标签。
const RootID ID = 0

// Registry 是并发安全的只增标签注册表。零值不可用，使用 [New] 创建。
type Registry struct {
	ids sync.Map // string -> ID

	mu     sync.Mutex
	labels map[ID]string
}

// New 创建空注册表。
func New() *Registry {
	return &Registry{labels: make(map[ID]string)}
}

var defaultRegistry = New()

// Default 返回进程级默认注册表。
func Default() *Registry { return defaultRegistry }

// Intern 返回 label 的 ID，首次出现时注册。
func (r *Registry) Intern(label string) ID {
	if v, ok := r.ids.Load(label); ok {
		return v.(ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.ids.Load(label); ok {
		return v.(ID)
	}

	id := ID(xxhash.Sum64String(label))
	for {
		if id == RootID {
			id++
			continue
		}
		if _, taken := r.labels[id]; !taken {
			break
		}
		id++
	}
	r.labels[id] = label
	r.ids.Store(label, id)
	return id
}

// Lookup 返回已注册 label 的 ID，不注册新标签。
func (r *Registry) Lookup(label string) (ID, bool) {
	v, ok := r.ids.Load(label)
	if !ok {
		return 0, false
	}
	return v.(ID), true
}

// Label 返回 id 对应的标签。
func (r *Registry) Label(id ID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.labels[id]
	return l, ok
}

// Len 返回已注册标签数量。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.labels)
}

// Labels 返回按字典序排列的全部标签。
func (r *Registry) Labels() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.labels))
	for _, l := range r.labels {
		out = append(out, l)
	}
	r.mu.Unlock()
	slices.Sort(out)
	return out
}
