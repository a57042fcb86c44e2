package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rusenback/ssreport/internal/model"
)

// Catalog prints the file header and every schema with its fields
func Catalog(w io.Writer, h model.Header, schemas []model.RecordSchema) error {
	_, err := fmt.Fprintf(w, "File format version : %d\nCompressed : %t\n%d structs defined\n",
		h.Version, h.Compressed, len(schemas))
	if err != nil {
		return err
	}

	for _, s := range schemas {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.SetTitle("id: %d - name: '%s'", s.Tag, s.Name)
		tw.AppendHeader(table.Row{"field", "type"})
		for _, f := range s.Fields {
			tw.AppendRow(table.Row{f.Name, f.Kind.String()})
		}
		if _, err := io.WriteString(w, tw.Render()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Priorities prints the scheduling setup of tasks. idLabel is "pid" or "tid".
func Priorities(w io.Writer, idLabel string, tasks []model.TaskPriority) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{idLabel, "name", "policy", "priority", "nice", "rtpriority"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.Name, t.Policy.String(), t.Priority, t.Nice, t.RTPriority})
	}
	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

// Report prints the general statistics of an analysis run
func Report(w io.Writer, r model.Report) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%s / %s", r.Kind, r.Metric)
	tw.AppendRows([]table.Row{
		{"source", r.Source},
		{"columns", len(r.Table.MetricColumns())},
		{"rows", len(r.Table.Rows)},
		{"skipped samples", r.Table.Skipped},
		{"average acquisition time (acqduration)", fmt.Sprintf("%.0f us", r.AvgAcqMicros)},
		{"average acquisition time", fmt.Sprintf("%f ns", r.Acq.Mean)},
		{"standard deviation", fmt.Sprintf("%f ns", r.Acq.StdDev)},
		{"outlier threshold", fmt.Sprintf("%f ns", r.Acq.Threshold)},
	})
	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

// Series prints the timestamps and values of one stored column
func Series(w io.Writer, metric, column string, ts []int64, values []float64) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%s (%d samples)", column, len(values))
	tw.AppendHeader(table.Row{model.TimestampColumn, metric})
	for i, v := range values {
		tw.AppendRow(table.Row{ts[i], FormatValue(metric, v)})
	}
	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
