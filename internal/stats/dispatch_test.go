package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/ssreport/internal/logfile"
	"github.com/rusenback/ssreport/internal/model"
)

func TestNewDispatcher_RejectsDuplicates(t *testing.T) {
	noop := HandlerFunc(func(model.Record) error { return nil })

	_, err := NewDispatcher(
		Route{Kind: model.KindSystemConfig, Handler: noop},
		Route{Kind: model.KindSystemConfig, Handler: noop},
	)
	assert.ErrorIs(t, err, ErrDuplicateHandler)

	_, err = NewDispatcher(Route{Kind: model.KindSystemConfig})
	assert.Error(t, err)
}

func TestDispatcher_Dispatch(t *testing.T) {
	var seen []string
	record := func(name string) Handler {
		return HandlerFunc(func(rec model.Record) error {
			seen = append(seen, name+":"+rec.Kind())
			return nil
		})
	}

	d, err := NewDispatcher(Route{Kind: model.KindSystemConfig, Handler: Chain(record("first"), record("second"))})
	require.NoError(t, err)
	assert.True(t, d.Handles(model.KindSystemConfig))
	assert.False(t, d.Handles(model.KindAcqDuration))

	require.NoError(t, d.Dispatch(configRecord(t, 100, 4096)))
	require.NoError(t, d.Dispatch(mustRecord(t, acqSchema, []model.Value{u64(1), u64(2)})))
	assert.Equal(t, []string{"first:systemconfig", "second:systemconfig"}, seen)
}

type cannedSource struct {
	results []logfile.Result
}

func (s *cannedSource) Next() logfile.Result {
	if len(s.results) == 0 {
		return logfile.Result{Kind: logfile.ResultEnd}
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r
}

func TestRun(t *testing.T) {
	boom := errors.New("boom")
	count := 0
	d, err := NewDispatcher(Route{Kind: model.KindSystemConfig, Handler: HandlerFunc(func(model.Record) error {
		count++
		return nil
	})})
	require.NoError(t, err)

	src := &cannedSource{results: []logfile.Result{
		{Kind: logfile.ResultRecord, Record: configRecord(t, 100, 4096)},
		{Kind: logfile.ResultRecord, Record: configRecord(t, 100, 4096)},
	}}
	require.NoError(t, Run(context.Background(), src, d))
	assert.Equal(t, 2, count)

	src = &cannedSource{results: []logfile.Result{
		{Kind: logfile.ResultRecord, Record: configRecord(t, 100, 4096)},
		{Kind: logfile.ResultError, Err: boom},
		{Kind: logfile.ResultRecord, Record: configRecord(t, 100, 4096)},
	}}
	assert.ErrorIs(t, Run(context.Background(), src, d), boom)
	assert.Equal(t, 3, count, "nothing is dispatched after an error")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Run(ctx, &cannedSource{}, d), context.Canceled)
}
