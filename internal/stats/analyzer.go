package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rusenback/ssreport/internal/logfile"
	"github.com/rusenback/ssreport/internal/model"
)

// Options selects what an Analyzer computes
type Options struct {
	// Kind is the record kind metrics are computed from: systemstats,
	// processstats or threadstats.
	Kind string
	// Sample is the metric name, e.g. cpuload, vsize, rss or a raw field.
	Sample string
	// Processes keeps only task series whose key contains one of these.
	Processes []string
	// FilterOutliers drops rows with unusually long acquisitions.
	FilterOutliers bool
	// Priorities also collects first-seen scheduling setups of tasks.
	Priorities bool
}

// Analyzer wires the standard handlers for one run over a log
type Analyzer struct {
	opts       Options
	logger     *slog.Logger
	host       HostConfig
	store      *SampleStore
	table      *MetricTable
	params     *ParamsHandler
	acq        *AcqDurationHandler
	priorities *PriorityCollector
	dispatcher *Dispatcher
}

// NewAnalyzer validates opts and builds the dispatch table
func NewAnalyzer(opts Options, logger *slog.Logger) (*Analyzer, error) {
	if opts.Sample == "" {
		opts.Sample = SampleCPULoad
	}

	a := &Analyzer{
		opts:       opts,
		logger:     logger,
		store:      NewSampleStore(),
		table:      NewMetricTable(),
		params:     NewParamsHandler(logger),
		acq:        &AcqDurationHandler{},
		priorities: NewPriorityCollector(),
	}

	routes := []Route{
		{Kind: model.KindProgramParameters, Handler: a.params},
		{Kind: model.KindSystemConfig, Handler: NewConfigHandler(&a.host, logger)},
		{Kind: model.KindAcqDuration, Handler: a.acq},
	}

	var (
		procHandler   Handler
		threadHandler Handler
	)
	switch opts.Kind {
	case model.KindSystemStats:
		routes = append(routes, Route{
			Kind:    model.KindSystemStats,
			Handler: NewSystemStatsHandler(opts.Sample, &a.host, a.store, a.table),
		})
	case model.KindProcessStats:
		procHandler = NewTaskStatsHandler("pid", opts.Sample, opts.Processes, &a.host, a.store, a.table)
	case model.KindThreadStats:
		threadHandler = NewTaskStatsHandler("tid", opts.Sample, opts.Processes, &a.host, a.store, a.table)
	default:
		return nil, fmt.Errorf("unhandled struct %q", opts.Kind)
	}

	if opts.Priorities {
		procHandler = chainOptional(procHandler, a.priorities.Processes())
		threadHandler = chainOptional(threadHandler, a.priorities.Threads())
	}
	if procHandler != nil {
		routes = append(routes, Route{Kind: model.KindProcessStats, Handler: procHandler})
	}
	if threadHandler != nil {
		routes = append(routes, Route{Kind: model.KindThreadStats, Handler: threadHandler})
	}

	d, err := NewDispatcher(routes...)
	if err != nil {
		return nil, err
	}
	a.dispatcher = d
	return a, nil
}

func chainOptional(h Handler, next Handler) Handler {
	if h == nil {
		return next
	}
	return Chain(h, next)
}

// Check verifies that cat describes the records this analyzer needs
func (a *Analyzer) Check(cat *logfile.Catalog) error {
	schema, ok := cat.ByName(a.opts.Kind)
	if !ok {
		return fmt.Errorf("struct %q: %w", a.opts.Kind, ErrNotInCatalog)
	}
	if !derivedSample(a.opts.Kind, a.opts.Sample) && schema.FieldIndex(a.opts.Sample) < 0 {
		return fmt.Errorf("sample %q of %s: %w", a.opts.Sample, a.opts.Kind, ErrNotInCatalog)
	}

	for _, s := range cat.Schemas() {
		if !a.dispatcher.Handles(s.Name) {
			a.logger.Debug("struct not analyzed", "struct", s.Name, "tag", s.Tag)
		}
	}
	return nil
}

func derivedSample(kind, sample string) bool {
	switch sample {
	case SampleCPULoad:
		return true
	case SampleIdle:
		return kind == model.KindSystemStats
	case SampleVSize, SampleRSS:
		return kind != model.KindSystemStats
	}
	return false
}

// Run processes every record of src
func (a *Analyzer) Run(ctx context.Context, src logfile.RecordSource) error {
	return Run(ctx, src, a.dispatcher)
}

// Table exposes the accumulated metric table
func (a *Analyzer) Table() *MetricTable {
	return a.table
}

// Priorities returns the collected scheduling setups
func (a *Analyzer) Priorities() *PriorityCollector {
	return a.priorities
}

// Report computes the acquisition statistics and materializes the table
func (a *Analyzer) Report(source string) (model.Report, error) {
	acq, err := a.table.AcqStats()
	if err != nil {
		return model.Report{}, err
	}
	table, err := a.table.Materialize(a.opts.FilterOutliers)
	if err != nil {
		return model.Report{}, err
	}
	a.logger.Debug("table materialized", "series", a.store.Len(), "rows", a.table.Len(), "columns", len(a.table.Columns()))
	if table.Skipped > 0 {
		a.logger.Info("samples skipped", "count", table.Skipped, "threshold_ns", acq.Threshold)
	}

	cfg, _ := a.host.Get()
	return model.Report{
		Source:       source,
		Kind:         a.opts.Kind,
		Metric:       a.opts.Sample,
		Table:        table,
		Acq:          acq,
		AvgAcqMicros: a.acq.AverageMicros(),
		Params:       a.params.Params(),
		Config:       cfg,
	}, nil
}
