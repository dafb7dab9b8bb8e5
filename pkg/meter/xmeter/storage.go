package xmeter

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
	"github.com/omeyang/xmeter/pkg/meter/xgraph"
	"github.com/omeyang/xmeter/pkg/meter/xhash"
	"github.com/omeyang/xmeter/pkg/meter/xreport"
)

// storage 是一个组件类型在一个线程（或 Manager 根）上的调用图，
// 对外隐藏具体的 RecordType。
type storage interface {
	kind() Kind
	newProbe(reuse ReusePolicy) probe
	// merge 把同类型的 src 折叠进来并消费 src。
	merge(src storage) error
	encode() ([]byte, error)
	mergeEncoded(data []byte, intern func(string) xhash.ID) error
	report() xreport.KindReport
	empty() bool
}

// probe 是 Bundle 中单个组件实例与其所在调用图的绑定。
type probe interface {
	enter(id xhash.ID, label string)
	start()
	push()
	stop()
	// commit 把组件值写入节点（record 为 false 时只恢复游标）。
	commit(record bool)
	value() float64
}

func (k *kind[T]) newStorage() storage {
	return &graphStorage[T]{k: k, g: xgraph.New[T](k.meta.Policy)}
}

type graphStorage[T xcomp.Number] struct {
	k *kind[T]
	g *xgraph.Graph[T]
}

func (s *graphStorage[T]) kind() Kind  { return s.k }
func (s *graphStorage[T]) empty() bool { return s.g.Empty() }

func (s *graphStorage[T]) newProbe(reuse ReusePolicy) probe {
	return &componentProbe[T]{st: s, c: s.k.factory(), reuse: reuse}
}

func (s *graphStorage[T]) merge(src storage) error {
	other, ok := src.(*graphStorage[T])
	if !ok || other.k != s.k {
		return fmt.Errorf("xmeter: cannot merge %s storage into %s", src.kind().Name(), s.k.Name())
	}
	return s.g.Merge(other.g)
}

func (s *graphStorage[T]) encode() ([]byte, error) {
	return cbor.Marshal(s.g.Snapshot())
}

func (s *graphStorage[T]) mergeEncoded(data []byte, intern func(string) xhash.ID) error {
	var snap xgraph.Snapshot[T]
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("xmeter: decode %s snapshot: %w", s.k.Name(), err)
	}
	return s.g.MergeSnapshot(&snap, intern)
}

func (s *graphStorage[T]) report() xreport.KindReport {
	kr := kindReport(s.k)
	for _, e := range s.g.Flatten() {
		kr.Records = append(kr.Records, xreport.Record{
			Path:  e.Path,
			Depth: e.Depth,
			Value: float64(e.Stats.Value),
			Count: e.Stats.Count,
			Min:   float64(e.Stats.Min),
			Max:   float64(e.Stats.Max),
		})
	}
	return kr
}

func kindReport(k Kind) xreport.KindReport {
	m := k.Meta()
	return xreport.KindReport{
		Kind:        k.Name(),
		Description: m.Description,
		Unit:        m.Unit,
		Policy:      m.Policy,
		Records:     []xreport.Record{},
	}
}

type componentProbe[T xcomp.Number] struct {
	st    *graphStorage[T]
	c     xcomp.Component[T]
	reuse ReusePolicy
	node  xgraph.NodeIndex

	carry   T
	carried bool
	last    T
}

func (p *componentProbe[T]) enter(id xhash.ID, label string) {
	p.node = p.st.g.Enter(id, label)
}

func (p *componentProbe[T]) start() {
	if p.reuse == ReuseReset {
		p.c.Reset()
	}
	p.c.Start()
}

func (p *componentProbe[T]) push() { p.st.g.Push(p.node) }

func (p *componentProbe[T]) stop() { p.c.Stop() }

func (p *componentProbe[T]) commit(record bool) {
	v := p.c.Value()
	if p.reuse == ReuseAccumulate {
		if p.carried {
			v = xcomp.Combine(p.st.k.meta.Policy, p.carry, v)
		}
		p.carry, p.carried = v, true
	}
	p.last = v
	if record {
		p.st.g.Exit(p.node, v)
		return
	}
	p.st.g.Pop(p.node)
}

func (p *componentProbe[T]) value() float64 { return float64(p.last) }
