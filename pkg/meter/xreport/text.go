package xreport

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// TextSink 以终端表格写出报告，每个组件类型一张表，标签按深度缩进。
type TextSink struct {
	w io.Writer
}

// NewTextSink 创建写入 w 的表格输出端。
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Write 写出报告。空的组件类型被跳过。
func (s *TextSink) Write(_ context.Context, r *Report) error {
	header := fmt.Sprintf("%s (rank %d/%d", r.Name, r.Rank, r.Size)
	if r.Discarded > 0 {
		header += fmt.Sprintf(", %d discarded", r.Discarded)
	}
	header += ")"
	if _, err := fmt.Fprintln(s.w, titleStyle.Render(header)); err != nil {
		return fmt.Errorf("xreport: write text: %w", err)
	}

	for _, k := range r.Kinds {
		if len(k.Records) == 0 {
			continue
		}
		rows := make([][]string, 0, len(k.Records))
		for _, rec := range k.Records {
			rows = append(rows, []string{
				strings.Repeat("  ", rec.Depth) + rec.Label(),
				strconv.FormatUint(rec.Count, 10),
				formatValue(rec.Value),
				formatValue(rec.Min),
				formatValue(rec.Max),
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("scope", "count", k.Kind+" ("+k.Unit+")", "min", "max").
			Rows(rows...)
		if _, err := fmt.Fprintf(s.w, "%s [%s]\n%s\n", titleStyle.Render(k.Kind), k.Policy, t.Render()); err != nil {
			return fmt.Errorf("xreport: write text: %w", err)
		}
	}
	return nil
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
