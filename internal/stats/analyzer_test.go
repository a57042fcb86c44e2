package stats

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/ssreport/internal/logfile"
	"github.com/rusenback/ssreport/internal/model"
)

const second = uint64(1_000_000_000)

func writeProcessLog(t *testing.T, e *logfile.Encoder) {
	require.NoError(t, e.WriteRecord(model.KindProgramParameters, str("-p 1 -t")))
	require.NoError(t, e.WriteRecord(model.KindSystemConfig, u32(100), u32(4096)))

	for i := uint64(0); i < 6; i++ {
		ts := i * second
		require.NoError(t, e.WriteRecord(model.KindAcqDuration, u64(ts), u64(ts+2000)))
		require.NoError(t, e.WriteRecord(model.KindProcessStats, taskSample{
			ts: ts, acqend: ts + 100 + i, pid: 10, name: "(init)", utime: 10 * i, stime: 10 * i, priority: 20,
		}.values()...))
		require.NoError(t, e.WriteRecord(model.KindProcessStats, taskSample{
			ts: ts, acqend: ts + 100 + i, pid: 20, name: "(worker)", utime: 50 * i, policy: 1, priority: -2,
		}.values()...))
		require.NoError(t, e.WriteRecord(model.KindSystemStats, systemSample{ts: ts, utime: i}.values()...))
	}
}

func TestAnalyzer_ProcessCPULoad(t *testing.T) {
	a, err := NewAnalyzer(Options{Kind: model.KindProcessStats, Priorities: true}, discardLogger())
	require.NoError(t, err)

	dec := decoderFor(t, func(e *logfile.Encoder) { writeProcessLog(t, e) })
	require.NoError(t, a.Run(context.Background(), dec))

	report, err := a.Report("test.log")
	require.NoError(t, err)

	assert.Equal(t, SampleCPULoad, report.Metric)
	assert.Equal(t, "-p 1 -t", report.Params)
	assert.Equal(t, model.SystemConfig{ClockTicks: 100, PageSize: 4096}, report.Config)
	assert.InDelta(t, 2.0, report.AvgAcqMicros, 1e-9)

	assert.Equal(t, []string{"ts", "10-(init)", "20-(worker)"}, report.Table.Columns)
	require.Len(t, report.Table.Rows, 5, "first sample of each series only primes it")
	for _, r := range report.Table.Rows {
		assert.InDelta(t, 20.0, *r.Cells[0], 1e-9)
		assert.InDelta(t, 50.0, *r.Cells[1], 1e-9)
	}
	assert.Equal(t, 5, report.Acq.Samples)

	procs := a.Priorities().ProcessList()
	require.Len(t, procs, 2)
	assert.Equal(t, int64(10), procs[0].ID)
	assert.Equal(t, model.SchedPolicy(1), procs[1].Policy)
	assert.Equal(t, int64(-2), procs[1].Priority)
	assert.Empty(t, a.Priorities().ThreadList())
}

func TestAnalyzer_ProcessFilter(t *testing.T) {
	a, err := NewAnalyzer(Options{Kind: model.KindProcessStats, Sample: SampleVSize, Processes: []string{"work"}}, discardLogger())
	require.NoError(t, err)

	dec := decoderFor(t, func(e *logfile.Encoder) { writeProcessLog(t, e) })
	require.NoError(t, a.Run(context.Background(), dec))

	assert.Equal(t, []string{"20-(worker)"}, a.Table().Columns())
}

func TestAnalyzer_SystemStats(t *testing.T) {
	a, err := NewAnalyzer(Options{Kind: model.KindSystemStats}, discardLogger())
	require.NoError(t, err)

	dec := decoderFor(t, func(e *logfile.Encoder) {
		require.NoError(t, e.WriteRecord(model.KindSystemConfig, u32(100), u32(4096)))
		for i := uint64(0); i < 4; i++ {
			require.NoError(t, e.WriteRecord(model.KindSystemStats, systemSample{
				ts: i * second, acqend: i*second + 10, utime: 60 * i, idle: 40 * i,
			}.values()...))
		}
	})
	require.NoError(t, a.Run(context.Background(), dec))

	report, err := a.Report("sys.log")
	require.NoError(t, err)
	assert.Equal(t, []string{"ts", "idle", "load"}, report.Table.Columns)
	require.Len(t, report.Table.Rows, 3)
	assert.InDelta(t, 40.0, *report.Table.Rows[0].Cells[0], 1e-9)
	assert.InDelta(t, 60.0, *report.Table.Rows[0].Cells[1], 1e-9)
}

func TestAnalyzer_PassThroughSystemField(t *testing.T) {
	a, err := NewAnalyzer(Options{Kind: model.KindSystemStats, Sample: "ramfree"}, discardLogger())
	require.NoError(t, err)

	dec := decoderFor(t, func(e *logfile.Encoder) {
		for i := uint64(0); i < 3; i++ {
			require.NoError(t, e.WriteRecord(model.KindSystemStats, systemSample{ts: i, ramfree: 1000 + i}.values()...))
		}
	})
	require.NoError(t, a.Run(context.Background(), dec))
	assert.Equal(t, []string{"ramfree"}, a.Table().Columns())
}

func TestAnalyzer_MissingConfig(t *testing.T) {
	a, err := NewAnalyzer(Options{Kind: model.KindThreadStats, Sample: SampleRSS}, discardLogger())
	require.NoError(t, err)

	dec := decoderFor(t, func(e *logfile.Encoder) {
		for i := uint64(0); i < 2; i++ {
			require.NoError(t, e.WriteRecord(model.KindThreadStats, taskSample{ts: i, pid: 1, tid: 7, name: "t"}.values()...))
		}
	})
	err = a.Run(context.Background(), dec)
	require.ErrorIs(t, err, ErrMissingConfig)

	var serr *SeriesError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "7-t", serr.Key)
}

func TestNewAnalyzer_UnknownKind(t *testing.T) {
	_, err := NewAnalyzer(Options{Kind: "nope"}, discardLogger())
	assert.Error(t, err)
}

func TestAnalyzer_Check(t *testing.T) {
	dec := decoderFor(t, func(e *logfile.Encoder) {})

	tests := map[string]struct {
		opts    Options
		wantErr bool
	}{
		"process cpuload":      {opts: Options{Kind: model.KindProcessStats}},
		"thread rss":           {opts: Options{Kind: model.KindThreadStats, Sample: SampleRSS}},
		"system idle":          {opts: Options{Kind: model.KindSystemStats, Sample: SampleIdle}},
		"system raw field":     {opts: Options{Kind: model.KindSystemStats, Sample: "ramfree"}},
		"process raw field":    {opts: Options{Kind: model.KindProcessStats, Sample: "policy"}},
		"unknown field":        {opts: Options{Kind: model.KindProcessStats, Sample: "ramfree"}, wantErr: true},
		"idle is not per task": {opts: Options{Kind: model.KindThreadStats, Sample: SampleIdle}, wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := NewAnalyzer(test.opts, discardLogger())
			require.NoError(t, err)

			err = a.Check(dec.Catalog())
			if test.wantErr {
				assert.ErrorIs(t, err, ErrNotInCatalog)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzer_CheckMissingStruct(t *testing.T) {
	var buf bytes.Buffer
	enc := logfile.NewEncoder(&buf)
	require.NoError(t, enc.WriteHeader(model.Header{Version: 1}, []model.RecordSchema{configSchema, systemSchema}))
	require.NoError(t, enc.Flush())
	dec, err := logfile.NewDecoder(&buf)
	require.NoError(t, err)

	a, err := NewAnalyzer(Options{Kind: model.KindThreadStats}, discardLogger())
	require.NoError(t, err)
	assert.ErrorIs(t, a.Check(dec.Catalog()), ErrNotInCatalog)

	a, err = NewAnalyzer(Options{Kind: model.KindSystemStats}, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, a.Check(dec.Catalog()))
}
