package stats

import "github.com/rusenback/ssreport/internal/model"

// Metric derives one value from two consecutive samples of a series
type Metric struct {
	Name   string
	Derive func(prev, cur model.Record) (float64, error)
}

// SampleStore keeps the last raw sample of every series
type SampleStore struct {
	last map[string]model.Record
}

func NewSampleStore() *SampleStore {
	return &SampleStore{last: make(map[string]model.Record)}
}

// Handle feeds cur into the series key. The first sample of a series only
// primes it and returns ok=false. Later samples return one value per
// metric, derived from the previous and the current sample. cur always
// replaces the previous sample, also when a derivation fails.
func (s *SampleStore) Handle(key string, cur model.Record, metrics ...Metric) (values []float64, ok bool, err error) {
	prev, seen := s.last[key]
	s.last[key] = cur
	if !seen {
		return nil, false, nil
	}

	values = make([]float64, 0, len(metrics))
	for _, m := range metrics {
		v, err := m.Derive(prev, cur)
		if err != nil {
			return nil, false, &SeriesError{Key: key, Metric: m.Name, Err: err}
		}
		values = append(values, v)
	}
	return values, true, nil
}

// Len returns the number of known series
func (s *SampleStore) Len() int {
	return len(s.last)
}
