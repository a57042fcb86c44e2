// internal/stats/derive.go
package stats

import (
	"fmt"

	"github.com/rusenback/ssreport/internal/model"
)

// Sample names understood by the derived metric policy. Any other name
// is read from the record as-is.
const (
	SampleCPULoad = "cpuload"
	SampleIdle    = "idle"
	SampleVSize   = "vsize"
	SampleRSS     = "rss"
)

var (
	systemLoadFields  = []string{"utime", "nice", "stime", "irq", "softirq"}
	systemIdleFields  = []string{"idle", "iowait"}
	systemTotalFields = []string{"utime", "nice", "stime", "irq", "softirq", "idle", "iowait"}
	taskLoadFields    = []string{"utime", "stime"}
)

// HostConfig holds the systemconfig values once they have been seen
type HostConfig struct {
	cfg model.SystemConfig
	set bool
}

// Set records the host configuration
func (h *HostConfig) Set(cfg model.SystemConfig) {
	h.cfg = cfg
	h.set = true
}

// Get returns the configuration and whether it is known yet
func (h *HostConfig) Get() (model.SystemConfig, bool) {
	return h.cfg, h.set
}

func (h *HostConfig) require() (model.SystemConfig, error) {
	if h == nil || !h.set {
		return model.SystemConfig{}, ErrMissingConfig
	}
	return h.cfg, nil
}

// tickDelta returns sum(cur) - sum(prev) over fields
func tickDelta(prev, cur model.Record, fields []string) (int64, error) {
	var delta int64
	for _, f := range fields {
		c, err := cur.Int(f)
		if err != nil {
			return 0, err
		}
		p, err := prev.Int(f)
		if err != nil {
			return 0, err
		}
		delta += c - p
	}
	return delta, nil
}

// CPULoad is the share of one CPU spent in fields between two samples:
// 100 * ticks / CLK_TCK / seconds.
func CPULoad(host *HostConfig, fields []string) Metric {
	return Metric{
		Name: SampleCPULoad,
		Derive: func(prev, cur model.Record) (float64, error) {
			cfg, err := host.require()
			if err != nil {
				return 0, err
			}
			if cfg.ClockTicks == 0 {
				return 0, fmt.Errorf("clock ticks per second is 0: %w", ErrDivisionByZero)
			}

			ticks, err := tickDelta(prev, cur, fields)
			if err != nil {
				return 0, err
			}
			dt, err := tickDelta(prev, cur, []string{"ts"})
			if err != nil {
				return 0, err
			}
			if dt <= 0 {
				return 0, fmt.Errorf("timestamp did not increase (dt=%dns): %w", dt, ErrDivisionByZero)
			}

			load := float64(ticks) / float64(cfg.ClockTicks)
			load /= float64(dt) / 1e9
			return load * 100, nil
		},
	}
}

// SystemIdle is the share of idle and iowait ticks among all ticks
func SystemIdle() Metric {
	return Metric{
		Name: SampleIdle,
		Derive: func(prev, cur model.Record) (float64, error) {
			total, err := tickDelta(prev, cur, systemTotalFields)
			if err != nil {
				return 0, err
			}
			if total == 0 {
				return 0, fmt.Errorf("no ticks elapsed: %w", ErrDivisionByZero)
			}
			idle, err := tickDelta(prev, cur, systemIdleFields)
			if err != nil {
				return 0, err
			}
			return float64(idle) / float64(total) * 100, nil
		},
	}
}

// VSize is the current virtual size in KB
func VSize() Metric {
	return Metric{
		Name: SampleVSize,
		Derive: func(_, cur model.Record) (float64, error) {
			v, err := cur.Float("vsize")
			if err != nil {
				return 0, err
			}
			return v / 1024, nil
		},
	}
}

// RSS is the current resident set size in KB
func RSS(host *HostConfig) Metric {
	return Metric{
		Name: SampleRSS,
		Derive: func(_, cur model.Record) (float64, error) {
			cfg, err := host.require()
			if err != nil {
				return 0, err
			}
			pages, err := cur.Float("rss")
			if err != nil {
				return 0, err
			}
			return pages * float64(cfg.PageSize) / 1024, nil
		},
	}
}

// PassThrough reports the current raw value of field
func PassThrough(field string) Metric {
	return Metric{
		Name: field,
		Derive: func(_, cur model.Record) (float64, error) {
			return cur.Float(field)
		},
	}
}

// SystemMetric selects the metric for systemstats records
func SystemMetric(sample string, host *HostConfig) Metric {
	switch sample {
	case SampleCPULoad:
		return CPULoad(host, systemLoadFields)
	case SampleIdle:
		return SystemIdle()
	default:
		return PassThrough(sample)
	}
}

// TaskMetric selects the metric for processstats and threadstats records
func TaskMetric(sample string, host *HostConfig) Metric {
	switch sample {
	case SampleCPULoad:
		return CPULoad(host, taskLoadFields)
	case SampleVSize:
		return VSize()
	case SampleRSS:
		return RSS(host)
	default:
		return PassThrough(sample)
	}
}
