package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/ssreport/internal/model"
)

func TestMetricTable_Materialize(t *testing.T) {
	table := NewMetricTable()
	table.AddCell("b", 30, 3)
	table.AddCell("a", 10, 1)
	table.AddCell("b", 10, 2)
	table.AddCell("c", 20, 4)

	got, err := table.Materialize(false)
	require.NoError(t, err)

	assert.Equal(t, []string{"ts", "b", "a", "c"}, got.Columns)
	assert.Equal(t, []string{"b", "a", "c"}, got.MetricColumns())
	assert.Equal(t, []model.Row{
		{Timestamp: 10, Cells: []*float64{ptr(2), ptr(1), nil}},
		{Timestamp: 20, Cells: []*float64{nil, nil, ptr(4)}},
		{Timestamp: 30, Cells: []*float64{ptr(3), nil, nil}},
	}, got.Rows)
	assert.Zero(t, got.Skipped)

	ts, values := got.Series("b")
	assert.Equal(t, []int64{10, 30}, ts)
	assert.Equal(t, []float64{2, 3}, values)
}

func TestMetricTable_ZeroIsNotNull(t *testing.T) {
	table := NewMetricTable()
	table.AddCell("a", 1, 0)
	table.AddCell("b", 2, 5)

	got, err := table.Materialize(false)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	require.NotNil(t, got.Rows[0].Cells[0])
	assert.Equal(t, 0.0, *got.Rows[0].Cells[0])
	assert.Nil(t, got.Rows[0].Cells[1])
}

func tenDurations() []int64 {
	return []int64{100, 30, 10, 90, 50, 20, 80, 40, 70, 60}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, []float64{40, 50, 60, 70}, TrimmedSubset(tenDurations()))

	acq, err := Summarize(tenDurations())
	require.NoError(t, err)
	assert.InDelta(t, 55.0, acq.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(125), acq.StdDev, 1e-9)
	assert.InDelta(t, 88.54, acq.Threshold, 0.01)
	assert.Equal(t, 10, acq.Samples)
}

func TestSummarize_EmptySubset(t *testing.T) {
	for _, durations := range [][]int64{nil, {5}} {
		_, err := Summarize(durations)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	}

	acq, err := Summarize([]int64{5, 9})
	require.NoError(t, err)
	assert.Equal(t, 5.0, acq.Mean)
	assert.Zero(t, acq.StdDev)
}

func TestMetricTable_FilterOutliers(t *testing.T) {
	table := NewMetricTable()
	for i, d := range tenDurations() {
		ts := int64(i+1) * 1000
		table.AddCell("load", ts, float64(i))
		table.AddDuration(ts, d)
	}
	// a row without a recorded duration is never filtered
	table.AddCell("load", 99_000, 1)

	all, err := table.Materialize(false)
	require.NoError(t, err)
	assert.Len(t, all.Rows, 11)
	assert.Zero(t, all.Skipped)

	filtered, err := table.Materialize(true)
	require.NoError(t, err)
	// 90 and 100 exceed 55 + 3*11.18
	assert.Len(t, filtered.Rows, 9)
	assert.Equal(t, 2, filtered.Skipped)
	for _, r := range filtered.Rows {
		assert.NotEqual(t, int64(1000), r.Timestamp)
		assert.NotEqual(t, int64(4000), r.Timestamp)
	}

	before, err := table.AcqStats()
	require.NoError(t, err)
	assert.InDelta(t, 55.0, before.Mean, 1e-9, "filtering never changes the statistics")
}
