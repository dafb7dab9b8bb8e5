package xmeter

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
)

// Kind 是一种组件类型：元数据加上创建实例的工厂。
//
// Kind 以指针身份比较，同一个 Kind 值在 Manager、线程与 Bundle 之间共享。
type Kind interface {
	// Name 返回组件类型名（即 Meta().Label）。
	Name() string
	// Meta 返回组件类型元数据。
	Meta() xcomp.Meta

	newStorage() storage
}

type kind[T xcomp.Number] struct {
	meta    xcomp.Meta
	factory func() xcomp.Component[T]
}

// NewKind 用工厂函数定义组件类型。元数据从一次探测实例读取。
func NewKind[T xcomp.Number](factory func() xcomp.Component[T]) Kind {
	return &kind[T]{meta: factory().Meta(), factory: factory}
}

func (k *kind[T]) Name() string     { return k.meta.Label }
func (k *kind[T]) Meta() xcomp.Meta { return k.meta }
func (k *kind[T]) String() string   { return k.meta.Label }

// 内置组件类型。
var (
	WallClock            = NewKind(func() xcomp.Component[int64] { return xcomp.NewWallClock() })
	UserClock            = NewKind(func() xcomp.Component[int64] { return xcomp.NewUserClock() })
	SystemClock          = NewKind(func() xcomp.Component[int64] { return xcomp.NewSystemClock() })
	CPUClock             = NewKind(func() xcomp.Component[int64] { return xcomp.NewCPUClock() })
	ThreadCPUClock       = NewKind(func() xcomp.Component[int64] { return xcomp.NewThreadCPUClock() })
	PeakRSS              = NewKind(func() xcomp.Component[int64] { return xcomp.NewPeakRSS() })
	PageRSS              = NewKind(func() xcomp.Component[int64] { return xcomp.NewPageRSS() })
	MinorFaults          = NewKind(func() xcomp.Component[int64] { return xcomp.NewMinorFaults() })
	MajorFaults          = NewKind(func() xcomp.Component[int64] { return xcomp.NewMajorFaults() })
	BlockInput           = NewKind(func() xcomp.Component[int64] { return xcomp.NewBlockInput() })
	BlockOutput          = NewKind(func() xcomp.Component[int64] { return xcomp.NewBlockOutput() })
	VoluntaryCtxSwitch   = NewKind(func() xcomp.Component[int64] { return xcomp.NewVoluntaryCtxSwitch() })
	InvoluntaryCtxSwitch = NewKind(func() xcomp.Component[int64] { return xcomp.NewInvoluntaryCtxSwitch() })
	ReadBytes            = NewKind(func() xcomp.Component[int64] { return xcomp.NewReadBytes() })
	WrittenBytes         = NewKind(func() xcomp.Component[int64] { return xcomp.NewWrittenBytes() })
	HeapAlloc            = NewKind(func() xcomp.Component[int64] { return xcomp.NewHeapAlloc() })
	Goroutines           = NewKind(func() xcomp.Component[int64] { return xcomp.NewGoroutines() })
	CPUUtil              = NewKind(func() xcomp.Component[float64] { return xcomp.NewCPUUtil() })
)

// DefaultKinds 返回未配置时 Manager 使用的组件类型：wall、cpu、peak_rss。
func DefaultKinds() []Kind {
	return []Kind{WallClock, CPUClock, PeakRSS}
}

var catalog = struct {
	sync.RWMutex
	byName map[string]Kind
}{byName: make(map[string]Kind)}

func init() {
	for _, k := range []Kind{
		WallClock, UserClock, SystemClock, CPUClock, ThreadCPUClock,
		PeakRSS, PageRSS, MinorFaults, MajorFaults, BlockInput, BlockOutput,
		VoluntaryCtxSwitch, InvoluntaryCtxSwitch, ReadBytes, WrittenBytes,
		HeapAlloc, Goroutines, CPUUtil,
	} {
		catalog.byName[catalogKey(k.Name())] = k
	}
}

func catalogKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// RegisterKind 把自定义组件类型加入目录，使其可按名称配置，
// 并能在分布式合并时被根 rank 识别。重复注册同一个 Kind 是空操作。
func RegisterKind(k Kind) error {
	if k == nil {
		return ErrNilKind
	}
	catalog.Lock()
	defer catalog.Unlock()
	key := catalogKey(k.Name())
	if prev, ok := catalog.byName[key]; ok {
		if prev == k {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrDuplicateKind, k.Name())
	}
	catalog.byName[key] = k
	return nil
}

// LookupKind 按名称查找组件类型（大小写不敏感）。
func LookupKind(name string) (Kind, bool) {
	catalog.RLock()
	defer catalog.RUnlock()
	k, ok := catalog.byName[catalogKey(name)]
	return k, ok
}

// LookupKinds 按名称列表查找组件类型，保持顺序并去重。
func LookupKinds(names []string) ([]Kind, error) {
	out := make([]Kind, 0, len(names))
	for _, name := range names {
		k, ok := LookupKind(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
		}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Kinds 返回目录中全部组件类型，按名称排序。
func Kinds() []Kind {
	catalog.RLock()
	out := make([]Kind, 0, len(catalog.byName))
	for _, k := range catalog.byName {
		out = append(out, k)
	}
	catalog.RUnlock()
	slices.SortFunc(out, func(a, b Kind) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}
