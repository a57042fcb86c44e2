package stats

import (
	"sort"

	"github.com/rusenback/ssreport/internal/model"
)

// PriorityCollector remembers the scheduling setup of each process and
// thread the first time it shows up.
type PriorityCollector struct {
	processes map[int64]model.TaskPriority
	threads   map[int64]model.TaskPriority
}

func NewPriorityCollector() *PriorityCollector {
	return &PriorityCollector{
		processes: make(map[int64]model.TaskPriority),
		threads:   make(map[int64]model.TaskPriority),
	}
}

// Processes handles processstats records
func (c *PriorityCollector) Processes() Handler {
	return HandlerFunc(func(rec model.Record) error {
		return collectPriority(rec, "pid", c.processes)
	})
}

// Threads handles threadstats records
func (c *PriorityCollector) Threads() Handler {
	return HandlerFunc(func(rec model.Record) error {
		return collectPriority(rec, "tid", c.threads)
	})
}

func collectPriority(rec model.Record, idField string, target map[int64]model.TaskPriority) error {
	id, err := rec.Int(idField)
	if err != nil {
		return err
	}
	if _, ok := target[id]; ok {
		return nil
	}
	p, err := model.TaskPriorityFrom(rec, idField)
	if err != nil {
		return err
	}
	target[id] = p
	return nil
}

// ProcessList returns the collected processes ordered by pid
func (c *PriorityCollector) ProcessList() []model.TaskPriority {
	return sortedPriorities(c.processes)
}

// ThreadList returns the collected threads ordered by tid
func (c *PriorityCollector) ThreadList() []model.TaskPriority {
	return sortedPriorities(c.threads)
}

func sortedPriorities(m map[int64]model.TaskPriority) []model.TaskPriority {
	out := make([]model.TaskPriority, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
