package stats

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rusenback/ssreport/internal/model"
)

// SystemSeriesKey is the series key of systemstats records
const SystemSeriesKey = "system"

// ParamsHandler keeps the recorder's invocation parameters
type ParamsHandler struct {
	logger *slog.Logger
	params string
}

func NewParamsHandler(logger *slog.Logger) *ParamsHandler {
	return &ParamsHandler{logger: logger}
}

func (h *ParamsHandler) Handle(rec model.Record) error {
	p, err := model.ProgramParametersFrom(rec)
	if err != nil {
		return err
	}
	h.params = p.Params
	h.logger.Info("file recorded with params", "params", p.Params)
	return nil
}

// Params returns the last parameters seen
func (h *ParamsHandler) Params() string {
	return h.params
}

// ConfigHandler feeds systemconfig records into the host configuration.
// The values are static for a recording: the first record wins.
type ConfigHandler struct {
	logger *slog.Logger
	host   *HostConfig
}

func NewConfigHandler(host *HostConfig, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{logger: logger, host: host}
}

func (h *ConfigHandler) Handle(rec model.Record) error {
	cfg, err := model.SystemConfigFrom(rec)
	if err != nil {
		return err
	}

	if prev, ok := h.host.Get(); ok {
		if prev != cfg {
			h.logger.Warn("ignoring changed system config",
				"clktck", cfg.ClockTicks, "pagesize", cfg.PageSize)
		}
		return nil
	}

	h.host.Set(cfg)
	h.logger.Info("got system config", "clktck", cfg.ClockTicks, "pagesize", cfg.PageSize)
	return nil
}

// AcqDurationHandler averages the acquisition cycle durations logged by
// the recorder itself.
type AcqDurationHandler struct {
	count       int
	totalMicros float64
}

func (h *AcqDurationHandler) Handle(rec model.Record) error {
	d, err := model.AcqDurationFrom(rec)
	if err != nil {
		return err
	}
	h.totalMicros += float64(d.End-d.Start) / 1000
	h.count++
	return nil
}

// Count returns the number of acqduration records seen
func (h *AcqDurationHandler) Count() int {
	return h.count
}

// AverageMicros returns the mean cycle duration in µs, 0 without records
func (h *AcqDurationHandler) AverageMicros() float64 {
	if h.count == 0 {
		return 0
	}
	return h.totalMicros / float64(h.count)
}

// SystemStatsHandler derives system-wide metrics. The cpuload sample
// yields both the "idle" and the "load" columns.
type SystemStatsHandler struct {
	store   *SampleStore
	table   *MetricTable
	columns []string
	metrics []Metric
}

func NewSystemStatsHandler(sample string, host *HostConfig, store *SampleStore, table *MetricTable) *SystemStatsHandler {
	h := &SystemStatsHandler{store: store, table: table}
	if sample == SampleCPULoad {
		h.columns = []string{"idle", "load"}
		h.metrics = []Metric{SystemIdle(), SystemMetric(SampleCPULoad, host)}
	} else {
		h.columns = []string{sample}
		h.metrics = []Metric{SystemMetric(sample, host)}
	}
	return h
}

func (h *SystemStatsHandler) Handle(rec model.Record) error {
	return recordSample(h.store, h.table, SystemSeriesKey, rec, h.columns, h.metrics)
}

// TaskStatsHandler derives per-process or per-thread metrics. Each task
// gets its own column named after its series key.
type TaskStatsHandler struct {
	idField string
	filter  []string
	store   *SampleStore
	table   *MetricTable
	metric  Metric
}

// NewTaskStatsHandler builds a handler keyed by idField ("pid" or "tid").
// A non-empty filter keeps only series whose key contains one of its
// entries.
func NewTaskStatsHandler(idField, sample string, filter []string, host *HostConfig, store *SampleStore, table *MetricTable) *TaskStatsHandler {
	return &TaskStatsHandler{
		idField: idField,
		filter:  filter,
		store:   store,
		table:   table,
		metric:  TaskMetric(sample, host),
	}
}

// SeriesKey returns "{id}-{name}" for a task record
func (h *TaskStatsHandler) SeriesKey(rec model.Record) (string, error) {
	id, err := rec.Int(h.idField)
	if err != nil {
		return "", err
	}
	name, err := rec.Text("name")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s", id, name), nil
}

func (h *TaskStatsHandler) selected(key string) bool {
	if len(h.filter) == 0 {
		return true
	}
	for _, f := range h.filter {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func (h *TaskStatsHandler) Handle(rec model.Record) error {
	key, err := h.SeriesKey(rec)
	if err != nil {
		return err
	}
	if !h.selected(key) {
		return nil
	}
	return recordSample(h.store, h.table, key, rec, []string{key}, []Metric{h.metric})
}

// recordSample runs rec through the store and writes the derived values
// and the acquisition duration into the table.
func recordSample(store *SampleStore, table *MetricTable, key string, rec model.Record, columns []string, metrics []Metric) error {
	values, ok, err := store.Handle(key, rec, metrics...)
	if err != nil || !ok {
		return err
	}

	ts, err := rec.Int("ts")
	if err != nil {
		return err
	}
	acqEnd, err := rec.Int("acqend")
	if err != nil {
		return err
	}

	for i, v := range values {
		table.AddCell(columns[i], ts, v)
	}
	table.AddDuration(ts, acqEnd-ts)
	return nil
}
