package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failures {
		return errors.New("transient")
	}
	return nil
}

type countingJob struct {
	attempts atomic.Int32
}

func (j *countingJob) Name() string     { return "count" }
func (j *countingJob) Schedule() string { return "@every 1h" }

func (j *countingJob) Run(ctx context.Context) error {
	Count(ctx, "divisions_computed", 3)
	Count(ctx, "divisions_computed", 2)
	if j.attempts.Add(1) == 1 {
		Count(ctx, "divisions_failed", 1)
		return errors.New("transient")
	}
	return nil
}

func quickOptions() Options {
	return Options{MaxRetries: 2, RetryDelay: time.Millisecond, JobTimeout: time.Second}
}

func TestScheduler_AddAndRemove(t *testing.T) {
	s := New(logger.NewNop(), quickOptions())

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 */10 * * * *"}))
	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "c", schedule: "not a cron"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestScheduler_RunJobRetries(t *testing.T) {
	s := New(logger.NewNop(), quickOptions())
	job := &fakeJob{name: "flaky", schedule: "@every 1h", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestScheduler_RunJobGivesUp(t *testing.T) {
	s := New(logger.NewNop(), quickOptions())
	job := &fakeJob{name: "broken", schedule: "@every 1h", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Len(t, history.GetFailedResults(), 1)
	assert.Equal(t, 0.0, history.GetSuccessRate())

	_, err = s.RunJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestScheduler_CancelledContextStopsRetries(t *testing.T) {
	opts := quickOptions()
	opts.RetryDelay = time.Hour
	s := New(logger.NewNop(), opts)
	require.NoError(t, s.AddJob(&fakeJob{name: "slow", schedule: "@every 1h", failures: 100}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJob(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(logger.NewNop(), quickOptions())
	job := &fakeJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	assert.Eventually(t, func() bool { return job.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduler_RunJobCounts(t *testing.T) {
	s := New(logger.NewNop(), quickOptions())
	require.NoError(t, s.AddJob(&countingJob{}))

	result, err := s.RunJob(context.Background(), "count")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	// only the last attempt is kept
	assert.Equal(t, map[string]int{"divisions_computed": 5}, result.Counts)
	assert.Equal(t, []string{"divisions_computed"}, result.CountNames())

	assert.Equal(t, map[string]int{"divisions_computed": 5}, s.GetJobStats()["count"].LastCounts)

	history, err := s.GetJobHistory("count")
	require.NoError(t, err)
	assert.Equal(t, 5, history.Total("divisions_computed"))
	assert.Zero(t, history.Total("divisions_failed"))
}

func TestCount_OutsideRun(t *testing.T) {
	assert.NotPanics(t, func() { Count(context.Background(), "x", 1) })

	result, err := New(logger.NewNop(), quickOptions()).attempt(context.Background(), &fakeJob{name: "quiet"})
	require.NoError(t, err)
	assert.Nil(t, result, "no counters reported")
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Empty(t, h.GetLatestResults(5))
	assert.Equal(t, 0.0, h.GetSuccessRate())

	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
}

func TestFieldsOf(t *testing.T) {
	fields := fieldsOf([]interface{}{"entry", 3, "now", "t0", "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 3, "now": "t0"}, fields)
	assert.Empty(t, fieldsOf(nil))
}
