package stats

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero   = errors.New("stats: division by zero")
	ErrMissingConfig    = errors.New("stats: systemconfig record not seen yet")
	ErrDuplicateHandler = errors.New("stats: duplicate handler")
	ErrNotInCatalog     = errors.New("stats: not described by the log")
)

// SeriesError reports the series a metric computation failed for
type SeriesError struct {
	Key    string
	Metric string
	Err    error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("series %q: %s: %v", e.Key, e.Metric, e.Err)
}

func (e *SeriesError) Unwrap() error {
	return e.Err
}
