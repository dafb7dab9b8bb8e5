package xreport

import (
	"slices"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
)

// Record 是调用图中一个节点的扁平记录。数值统一以 float64 表示。
type Record struct {
	// Path 从顶层作用域到本节点的标签路径。
	Path []string `json:"path"`
	// Depth 顶层作用域为 0。
	Depth int     `json:"depth"`
	Value float64 `json:"value"`
	Count uint64  `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Label 返回节点自身的标签。
func (r Record) Label() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// KindReport 是单个组件类型的全部记录。
type KindReport struct {
	Kind        string       `json:"kind"`
	Description string       `json:"description,omitempty"`
	Unit        string       `json:"unit"`
	Policy      xcomp.Policy `json:"policy"`
	Records     []Record     `json:"records"`
}

// Lookup 按标签路径查找记录。
func (k *KindReport) Lookup(path ...string) (Record, bool) {
	for _, r := range k.Records {
		if slices.Equal(r.Path, path) {
			return r, true
		}
	}
	return Record{}, false
}

// Report 是一次运行的合并结果。
type Report struct {
	// Name 运行名称。
	Name string `json:"name"`
	// Rank 生成本报告的 rank；单进程运行为 0。
	Rank int `json:"rank"`
	// Size 参与合并的 rank 数；单进程运行为 1。
	Size int `json:"size"`
	// Merged 报告是否包含其他 rank 的数据。
	Merged bool `json:"merged"`
	// Discarded 终结时仍在运行、未计入报告的 Bundle 数。
	Discarded int `json:"discarded"`
	// Kinds 按配置顺序排列的组件类型报告。
	Kinds []KindReport `json:"kinds"`
}

// Kind 返回名为 name 的组件类型报告。
func (r *Report) Kind(name string) (*KindReport, bool) {
	for i := range r.Kinds {
		if r.Kinds[i].Kind == name {
			return &r.Kinds[i], true
		}
	}
	return nil, false
}

// Lookup 在组件类型 kind 中按路径查找记录。
func (r *Report) Lookup(kind string, path ...string) (Record, bool) {
	k, ok := r.Kind(kind)
	if !ok {
		return Record{}, false
	}
	return k.Lookup(path...)
}

// Empty 报告是否没有任何记录。
func (r *Report) Empty() bool {
	for _, k := range r.Kinds {
		if len(k.Records) > 0 {
			return false
		}
	}
	return true
}
