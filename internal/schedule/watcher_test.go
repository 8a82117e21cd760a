package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/payrank/internal/engine"
	"github.com/Veraticus/payrank/internal/ranking"
)

type fakePlanner struct {
	planErr  error
	plans    int
	commits  int
	changed  int
	approved int
}

func (f *fakePlanner) Plan(context.Context) (*engine.Run, error) {
	f.plans++
	if f.planErr != nil {
		return nil, f.planErr
	}
	return &engine.Run{Summary: ranking.Summary{ApprovedCount: f.approved}}, nil
}

func (f *fakePlanner) Commit(context.Context, *engine.Run) (int, error) {
	f.commits++
	return f.changed, nil
}

func TestNewWatcherRejectsBadSpec(t *testing.T) {
	_, err := NewWatcher(&fakePlanner{}, "not a cron")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")

	_, err = NewWatcher(nil, "@daily")
	require.Error(t, err)
}

func TestParseSpecAcceptsDescriptors(t *testing.T) {
	sched, err := ParseSpec("@daily")
	require.NoError(t, err)
	next := sched.Next(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), next)

	sched, err = ParseSpec(" 0 8 * * 1-5 ")
	require.NoError(t, err)
	next = sched.Next(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC), next)
}

func TestRunOnceCommitsOnlyOnPaymentRunDay(t *testing.T) {
	planner := &fakePlanner{approved: 2, changed: 2}
	clock := time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)

	var seen []*engine.Run
	w, err := NewWatcher(planner, "@daily",
		WithAutoCommit(true),
		WithWatcherClock(func() time.Time { return clock }),
		WithOnRun(func(run *engine.Run) { seen = append(seen, run) }))
	require.NoError(t, err)

	run, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, run.Summary.ApprovedCount)
	assert.Equal(t, 0, planner.commits)

	clock = time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, planner.commits)
	assert.Equal(t, 2, planner.plans)
	assert.Len(t, seen, 2)
}

func TestRunOnceWithoutAutoCommit(t *testing.T) {
	planner := &fakePlanner{}
	w, err := NewWatcher(planner, "@daily",
		WithWatcherClock(func() time.Time { return time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, planner.commits)
}

func TestRunOncePropagatesPlanError(t *testing.T) {
	planner := &fakePlanner{planErr: errors.New("database locked")}
	called := false
	w, err := NewWatcher(planner, "@hourly", WithOnRun(func(*engine.Run) { called = true }))
	require.NoError(t, err)

	_, err = w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database locked")
	assert.False(t, called)
}

func TestStartSchedulesNextTick(t *testing.T) {
	w, err := NewWatcher(&fakePlanner{}, "@hourly")
	require.NoError(t, err)
	assert.True(t, w.Next().IsZero())

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	next := w.Next()
	assert.False(t, next.IsZero())
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Hour)
}
