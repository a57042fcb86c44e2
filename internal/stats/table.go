package stats

import (
	"sort"

	"github.com/rusenback/ssreport/internal/model"
)

// MetricTable accumulates metric cells per timestamp. Columns keep the
// position of their first use.
type MetricTable struct {
	columns   []string
	index     map[string]int
	rows      map[int64]map[int]float64
	durations map[int64]int64
}

func NewMetricTable() *MetricTable {
	return &MetricTable{
		index:     make(map[string]int),
		rows:      make(map[int64]map[int]float64),
		durations: make(map[int64]int64),
	}
}

// AddCell stores value in column at timestamp ts
func (t *MetricTable) AddCell(column string, ts int64, value float64) {
	idx, ok := t.index[column]
	if !ok {
		idx = len(t.columns)
		t.index[column] = idx
		t.columns = append(t.columns, column)
	}

	row, ok := t.rows[ts]
	if !ok {
		row = make(map[int]float64)
		t.rows[ts] = row
	}
	row[idx] = value
}

// AddDuration records how long the acquisition stamped ts took, in ns
func (t *MetricTable) AddDuration(ts, duration int64) {
	t.durations[ts] = duration
}

// Columns returns the metric columns in registration order
func (t *MetricTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of timestamp rows
func (t *MetricTable) Len() int {
	return len(t.rows)
}

// Materialize returns the rows in timestamp order. With filterOutliers,
// rows whose acquisition took longer than mean + 3 stddev of the trimmed
// durations are left out.
func (t *MetricTable) Materialize(filterOutliers bool) (model.Table, error) {
	var threshold float64
	if filterOutliers {
		acq, err := t.AcqStats()
		if err != nil {
			return model.Table{}, err
		}
		threshold = acq.Threshold
	}

	stamps := make([]int64, 0, len(t.rows))
	for ts := range t.rows {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	out := model.Table{
		Columns: append([]string{model.TimestampColumn}, t.columns...),
		Rows:    make([]model.Row, 0, len(stamps)),
	}
	for _, ts := range stamps {
		if d, ok := t.durations[ts]; ok && filterOutliers && float64(d) > threshold {
			out.Skipped++
			continue
		}

		cells := make([]*float64, len(t.columns))
		for idx, v := range t.rows[ts] {
			v := v
			cells[idx] = &v
		}
		out.Rows = append(out.Rows, model.Row{Timestamp: ts, Cells: cells})
	}
	return out, nil
}
