package stats

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rusenback/ssreport/internal/logfile"
	"github.com/rusenback/ssreport/internal/model"
)

var (
	configSchema = model.RecordSchema{Tag: 1, Name: model.KindSystemConfig, Fields: []model.FieldDescriptor{
		{Name: "clktck", Kind: model.KindU32},
		{Name: "pagesize", Kind: model.KindU32},
	}}
	systemSchema = model.RecordSchema{Tag: 2, Name: model.KindSystemStats, Fields: []model.FieldDescriptor{
		{Name: "ts", Kind: model.KindU64},
		{Name: "acqend", Kind: model.KindU64},
		{Name: "utime", Kind: model.KindU64},
		{Name: "nice", Kind: model.KindU64},
		{Name: "stime", Kind: model.KindU64},
		{Name: "idle", Kind: model.KindU64},
		{Name: "iowait", Kind: model.KindU64},
		{Name: "irq", Kind: model.KindU64},
		{Name: "softirq", Kind: model.KindU64},
		{Name: "ramfree", Kind: model.KindU64},
	}}
	taskFields = []model.FieldDescriptor{
		{Name: "ts", Kind: model.KindU64},
		{Name: "acqend", Kind: model.KindU64},
		{Name: "pid", Kind: model.KindI32},
		{Name: "tid", Kind: model.KindI32},
		{Name: "name", Kind: model.KindString},
		{Name: "vsize", Kind: model.KindU64},
		{Name: "rss", Kind: model.KindU64},
		{Name: "utime", Kind: model.KindU64},
		{Name: "stime", Kind: model.KindU64},
		{Name: "policy", Kind: model.KindU32},
		{Name: "priority", Kind: model.KindI64},
		{Name: "nice", Kind: model.KindI64},
		{Name: "rtpriority", Kind: model.KindU32},
	}
	processSchema = model.RecordSchema{Tag: 3, Name: model.KindProcessStats, Fields: taskFields}
	threadSchema  = model.RecordSchema{Tag: 4, Name: model.KindThreadStats, Fields: taskFields}
	acqSchema     = model.RecordSchema{Tag: 5, Name: model.KindAcqDuration, Fields: []model.FieldDescriptor{
		{Name: "start", Kind: model.KindU64},
		{Name: "end", Kind: model.KindU64},
	}}
	paramsSchema = model.RecordSchema{Tag: 6, Name: model.KindProgramParameters, Fields: []model.FieldDescriptor{
		{Name: "params", Kind: model.KindString},
	}}

	allSchemas = []model.RecordSchema{configSchema, systemSchema, processSchema, threadSchema, acqSchema, paramsSchema}
)

func u32(v uint64) model.Value { return model.UintValue(model.KindU32, v) }
func u64(v uint64) model.Value { return model.UintValue(model.KindU64, v) }
func i32(v int64) model.Value  { return model.IntValue(model.KindI32, v) }
func i64(v int64) model.Value  { return model.IntValue(model.KindI64, v) }
func str(s string) model.Value { return model.StringValue(s) }

type systemSample struct {
	ts, acqend                                     uint64
	utime, nice, stime, idle, iowait, irq, softirq uint64
	ramfree                                        uint64
}

func (s systemSample) values() []model.Value {
	return []model.Value{
		u64(s.ts), u64(s.acqend), u64(s.utime), u64(s.nice), u64(s.stime),
		u64(s.idle), u64(s.iowait), u64(s.irq), u64(s.softirq), u64(s.ramfree),
	}
}

type taskSample struct {
	ts, acqend   uint64
	pid, tid     int64
	name         string
	vsize, rss   uint64
	utime, stime uint64
	policy       uint64
	priority     int64
	nice         int64
}

func (s taskSample) values() []model.Value {
	return []model.Value{
		u64(s.ts), u64(s.acqend), i32(s.pid), i32(s.tid), str(s.name),
		u64(s.vsize), u64(s.rss), u64(s.utime), u64(s.stime),
		u32(s.policy), i64(s.priority), i64(s.nice), u32(0),
	}
}

func mustRecord(t *testing.T, schema model.RecordSchema, values []model.Value) model.Record {
	t.Helper()
	rec, err := model.NewRecord(&schema, values)
	require.NoError(t, err)
	return rec
}

func configRecord(t *testing.T, clk, page uint64) model.Record {
	return mustRecord(t, configSchema, []model.Value{u32(clk), u32(page)})
}

// decoderFor encodes records into a log and returns a decoder over it
func decoderFor(t *testing.T, write func(e *logfile.Encoder)) *logfile.Decoder {
	t.Helper()

	var buf bytes.Buffer
	enc := logfile.NewEncoder(&buf)
	require.NoError(t, enc.WriteHeader(model.Header{Version: 1}, allSchemas))
	write(enc)
	require.NoError(t, enc.Flush())

	dec, err := logfile.NewDecoder(&buf)
	require.NoError(t, err)
	return dec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }
