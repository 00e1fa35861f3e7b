package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func (j *countingJob) Name() string { return j.name }

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a schedule", &countingJob{name: "noop"})
	assert.Error(t, err)
}

func TestAddJobAcceptsStandardSchedules(t *testing.T) {
	s := New(zerolog.Nop())
	for _, schedule := range []string{"30 6 * * *", "@daily", "@every 12h"} {
		assert.NoError(t, s.AddJob(schedule, &countingJob{name: "noop"}), schedule)
	}
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "ok"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)

	failing := &countingJob{name: "fail", err: errors.New("boom")}
	assert.Error(t, s.RunNow(failing))
	assert.Equal(t, 1, failing.runs)
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context) error {
	f.calls++
	return f.err
}

func TestMarketDataRefreshJob(t *testing.T) {
	refresher := &fakeRefresher{}
	job := NewMarketDataRefreshJob(refresher, nil, zerolog.Nop())

	assert.Equal(t, "market_data_refresh", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, refresher.calls)

	refresher.err = errors.New("fetch failed")
	assert.Error(t, job.Run())
}
