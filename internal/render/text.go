package render

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rusenback/ssreport/internal/model"
)

var parenName = regexp.MustCompile(`\((.*)\)`)

// cleanName turns a series key such as "42-(worker)" into "worker"
func cleanName(column string) string {
	if m := parenName.FindStringSubmatch(column); m != nil {
		return m[1]
	}
	return column
}

// ColumnSummary aggregates one metric column
type ColumnSummary struct {
	Column string
	Name   string
	Sum    float64
	Max    float64
	Count  int
}

// Avg returns the mean of the non-null cells
func (s ColumnSummary) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Summarize computes per-column sum, max and count, ordered by
// decreasing sum. The second result is the sum over all columns.
func Summarize(t model.Table) ([]ColumnSummary, float64) {
	cols := t.MetricColumns()
	out := make([]ColumnSummary, len(cols))
	for i, c := range cols {
		out[i] = ColumnSummary{Column: c, Name: cleanName(c)}
	}

	var total float64
	for _, r := range t.Rows {
		for i, c := range r.Cells {
			if c == nil || i >= len(out) {
				continue
			}
			s := &out[i]
			s.Sum += *c
			if s.Count == 0 || *c > s.Max {
				s.Max = *c
			}
			s.Count++
			total += *c
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Sum > out[j].Sum })
	return out, total
}

// Text writes a per-column summary: average, maximum and share of the
// total, heaviest column first.
type Text struct{}

func (Text) Extension() string { return ".txt" }

func (Text) Render(w io.Writer, metric string, t model.Table) error {
	summaries, total := Summarize(t)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"thread", "avg", "max", "%total"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for _, s := range summaries {
		share := 0.0
		if total != 0 {
			share = s.Sum * 100 / total
		}
		tw.AppendRow(table.Row{
			s.Name,
			FormatValue(metric, s.Avg()),
			FormatValue(metric, s.Max),
			fmt.Sprintf("%.2f", share),
		})
	}

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
