package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/ssreport/internal/logfile"
	"github.com/rusenback/ssreport/internal/model"
	"github.com/rusenback/ssreport/internal/storage"
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
	}}
)

func u32(v uint64) model.Value { return model.UintValue(model.KindU32, v) }
func u64(v uint64) model.Value { return model.UintValue(model.KindU64, v) }

// writeLog writes five one-second systemstats samples at 50% load
func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.bin")

	var buf bytes.Buffer
	enc := logfile.NewEncoder(&buf)
	require.NoError(t, enc.WriteHeader(model.Header{Version: 1}, []model.RecordSchema{configSchema, systemSchema}))
	require.NoError(t, enc.WriteRecord(model.KindSystemConfig, u32(100), u32(4096)))
	for i := uint64(0); i < 5; i++ {
		ts := i * 1_000_000_000
		require.NoError(t, enc.WriteRecord(model.KindSystemStats,
			u64(ts), u64(ts+1000+i*10),
			u64(i*50), u64(0), u64(0), u64(i*50), u64(0), u64(0), u64(0),
		))
	}
	require.NoError(t, enc.Flush())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRunWritesCSV(t *testing.T) {
	input := writeLog(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-i", input, "-S", "systemstats", "-o", output, "--log-level", "error"}, &stdout, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.ToLower(string(data))), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "ts,idle,load", lines[0])
	assert.Equal(t, "1000000000,50,50", lines[1])

	assert.Contains(t, stdout.String(), "systemstats / cpuload")
}

func TestRunHeaderDump(t *testing.T) {
	input := writeLog(t)

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-i", input, "-H"}, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "2 structs defined")
	assert.Contains(t, stdout.String(), "systemstats")

	_, err = os.Stat(input + ".html")
	assert.True(t, os.IsNotExist(err))
}

func TestRunStoresAndReloads(t *testing.T) {
	input := writeLog(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "reports.db")

	args := []string{"-i", input, "-S", "systemstats", "-o", filepath.Join(dir, "out.txt"), "--db", db, "--log-level", "error"}
	require.NoError(t, run(context.Background(), args, io.Discard, io.Discard))

	var listing bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--db", db, "--list-runs"}, &listing, io.Discard))
	assert.Contains(t, listing.String(), input)
	assert.Contains(t, listing.String(), "cpuload")

	store, err := storage.NewStorage(db)
	require.NoError(t, err)
	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)
	id := runs[0].ID

	var columns bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--db", db, "--load-run", id, "--column", "load"}, &columns, io.Discard))
	assert.Contains(t, columns.String(), "load (4 samples)")
	assert.Contains(t, columns.String(), "50.00%")

	require.NoError(t, run(context.Background(), []string{"--db", db, "--delete-run", id}, io.Discard, io.Discard))
	assert.Error(t, run(context.Background(), []string{"--db", db, "--load-run", id}, io.Discard, io.Discard))
	assert.Error(t, run(context.Background(), []string{"--db", db, "--delete-run", id}, io.Discard, io.Discard))
}

func TestRunErrors(t *testing.T) {
	input := writeLog(t)
	tests := map[string][]string{
		"missing input":     {"-i", filepath.Join(t.TempDir(), "none.bin")},
		"bad extension":     {"-i", input, "-o", filepath.Join(t.TempDir(), "out.pdf")},
		"bad log level":     {"-i", input, "--log-level", "loud"},
		"unknown struct":    {"-i", input, "-S", "diskstats"},
		"struct not in log": {"-i", input, "-o", filepath.Join(t.TempDir(), "out.csv")},
		"sample not in log": {"-i", input, "-S", "systemstats", "-s", "ramfree", "-o", filepath.Join(t.TempDir(), "out.csv")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(context.Background(), args, io.Discard, io.Discard))
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--help"}, io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "--filter-outliers")
}
