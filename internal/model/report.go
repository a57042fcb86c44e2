package model

// TimestampColumn is always the first column of a materialized table
const TimestampColumn = "ts"

// Row is one timestamp of a metric table. A nil cell means no value was
// recorded for that column at this timestamp.
type Row struct {
	Timestamp int64
	Cells     []*float64
}

// Table is a materialized metric table
type Table struct {
	// Columns starts with TimestampColumn followed by metric columns in
	// registration order.
	Columns []string
	Rows    []Row
	// Skipped counts rows dropped by the outlier filter.
	Skipped int
}

// MetricColumns returns the columns without the leading timestamp column
func (t Table) MetricColumns() []string {
	if len(t.Columns) == 0 {
		return nil
	}
	return t.Columns[1:]
}

// Series returns the non-null values of one metric column in row order,
// together with their timestamps.
func (t Table) Series(column string) (ts []int64, values []float64) {
	idx := -1
	for i, c := range t.MetricColumns() {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	for _, r := range t.Rows {
		if idx < len(r.Cells) && r.Cells[idx] != nil {
			ts = append(ts, r.Timestamp)
			values = append(values, *r.Cells[idx])
		}
	}
	return ts, values
}

// AcqStats summarizes acquisition durations over the trimmed subset
type AcqStats struct {
	Mean      float64 // ns
	StdDev    float64 // ns, population
	Threshold float64 // ns, Mean + 3*StdDev
	Samples   int     // size of the untrimmed series
}

// Report is everything the reporting layers need from one analysis run
type Report struct {
	Source string
	Kind   string // record kind the metric was computed from
	Metric string // sample name, e.g. "cpuload"
	Table  Table
	Acq    AcqStats
	// AvgAcqMicros is the mean of acqduration records, 0 when none were seen.
	AvgAcqMicros float64
	Params       string
	Config       SystemConfig
}
