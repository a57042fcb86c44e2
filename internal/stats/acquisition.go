package stats

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/rusenback/ssreport/internal/model"
)

// TrimmedSubset returns the middle of the sorted durations, indices
// [n/3, 3n/4).
func TrimmedSubset(durations []int64) []float64 {
	sorted := append([]int64(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	lo, hi := n/3, n*3/4
	out := make([]float64, 0, hi-lo)
	for _, d := range sorted[lo:hi] {
		out = append(out, float64(d))
	}
	return out
}

// Summarize computes mean and population standard deviation over the
// trimmed subset of durations.
func Summarize(durations []int64) (model.AcqStats, error) {
	subset := TrimmedSubset(durations)
	if len(subset) == 0 {
		return model.AcqStats{}, fmt.Errorf("%d acquisition durations leave no trimmed subset: %w",
			len(durations), ErrDivisionByZero)
	}

	mean, err := stats.Mean(subset)
	if err != nil {
		return model.AcqStats{}, err
	}
	sd, err := stats.StandardDeviationPopulation(subset)
	if err != nil {
		return model.AcqStats{}, err
	}
	return model.AcqStats{
		Mean:      mean,
		StdDev:    sd,
		Threshold: mean + 3*sd,
		Samples:   len(durations),
	}, nil
}

// AcqStats summarizes the durations recorded in the table
func (t *MetricTable) AcqStats() (model.AcqStats, error) {
	durations := make([]int64, 0, len(t.durations))
	for _, d := range t.durations {
		durations = append(durations, d)
	}
	return Summarize(durations)
}
