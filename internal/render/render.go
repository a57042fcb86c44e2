// internal/render/render.go
package render

import (
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rusenback/ssreport/internal/model"
)

// Renderer writes a materialized metric table in one output format
type Renderer interface {
	// Extension is the file extension the format is chosen by, e.g. ".csv"
	Extension() string
	Render(w io.Writer, metric string, t model.Table) error
}

var renderers = []Renderer{
	HTML{},
	CSV{},
	Text{},
}

// ForPath picks the renderer matching the extension of path
func ForPath(path string) (Renderer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, r := range renderers {
		if r.Extension() == ext {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unable to generate a file with extension %q", ext)
}

// newTable fills a go-pretty writer with the header and rows of t. Null
// cells are rendered as empty strings.
func newTable(t model.Table, format func(float64) string) table.Writer {
	tw := table.NewWriter()

	header := make(table.Row, 0, len(t.Columns))
	for _, c := range t.Columns {
		header = append(header, c)
	}
	tw.AppendHeader(header)

	for _, r := range t.Rows {
		row := make(table.Row, 0, len(r.Cells)+1)
		row = append(row, r.Timestamp)
		for _, c := range r.Cells {
			if c == nil {
				row = append(row, "")
				continue
			}
			row = append(row, format(*c))
		}
		tw.AppendRow(row)
	}
	return tw
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue renders a metric value for humans: percentages for load
// metrics, binary sizes for memory metrics (which are in KB).
func FormatValue(metric string, v float64) string {
	switch metric {
	case "cpuload", "idle", "load":
		return fmt.Sprintf("%.2f%%", v)
	case "vsize", "rss":
		return units.BytesSize(v * 1024)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// CSV writes comma separated values with a header line
type CSV struct{}

func (CSV) Extension() string { return ".csv" }

func (CSV) Render(w io.Writer, _ string, t model.Table) error {
	_, err := io.WriteString(w, newTable(t, formatRaw).RenderCSV()+"\n")
	return err
}

// HTML writes a standalone page holding the table
type HTML struct{}

func (HTML) Extension() string { return ".html" }

func (HTML) Render(w io.Writer, metric string, t model.Table) error {
	tw := newTable(t, formatRaw)
	tw.Style().HTML.CSSClass = "ssreport"

	title := html.EscapeString(metric)
	_, err := fmt.Fprintf(w, htmlPage, title, title, tw.RenderHTML())
	return err
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
td, th { border: 1px solid #ccc; padding: 2px 6px; text-align: right; }
</style>
</head>
<body>
<h1>%s</h1>
%s
</body>
</html>
`
