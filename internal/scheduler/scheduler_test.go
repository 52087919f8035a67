package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // 처음 N번 실패
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("upstream unavailable")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.NewNop(), WithRetry(2, time.Millisecond))
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 30 18 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	err := s.AddJob(&fakeJob{name: "a", schedule: "@daily"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a cron"})
	assert.ErrorContains(t, err, "failed to schedule")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestNextRun(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@hourly"}))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestRunNow_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunNow_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "upstream unavailable", result.Error)
	assert.Equal(t, int32(3), job.calls.Load())

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Equal(t, 0.0, history.GetSuccessRate())
	assert.Len(t, history.GetFailedResults(), 1)
}

func TestRunNow_CancelledContextStopsRetry(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(5, time.Hour))
	job := &fakeJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := s.RunNow(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestRunNow_UnknownJob(t *testing.T) {
	_, err := newTestScheduler().RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestJobHistory_KeepsLatest(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{JobName: "a", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}

func TestJobHistory_LastOutcome(t *testing.T) {
	base := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	h := &JobHistory{}
	assert.Nil(t, h.lastWith(true))

	h.AddResult(JobResult{JobName: "a", StartTime: base, Success: true})
	h.AddResult(JobResult{JobName: "a", StartTime: base.Add(24 * time.Hour), Success: false})
	h.AddResult(JobResult{JobName: "a", StartTime: base.Add(48 * time.Hour), Success: false})

	// 최근 실행이 실패여도 마지막 성공 시각은 유지
	require.NotNil(t, h.lastWith(true))
	assert.Equal(t, base, *h.lastWith(true))
	assert.Equal(t, base.Add(48*time.Hour), *h.lastWith(false))
}
