package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name string
		job  Job
	}{
		{"missing name", Job{Interval: time.Second, Run: noop}},
		{"missing task", Job{Name: "prune", Interval: time.Second}},
		{"zero interval", Job{Name: "prune", Run: noop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Register(tt.job), ErrInvalidConfig)
		})
	}

	require.NoError(t, s.Register(Job{Name: "prune", Interval: time.Second, Run: noop}))
	assert.ErrorIs(t, s.Register(Job{Name: "prune", Interval: time.Second, Run: noop}), ErrInvalidConfig)
	assert.Equal(t, []string{"prune"}, s.Jobs())

	state, err := s.State("prune")
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, state.Status)

	_, err = s.State("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	var calls atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "tick",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Run: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Register(Job{Name: "late", Interval: time.Second, Run: func(context.Context) error { return nil }}))

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())

	state, err := s.State("tick")
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, state.Status)
	assert.Equal(t, int(stopped), state.Runs)
	assert.Zero(t, state.Failures)
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	boom := errors.New("boom")
	var fail atomic.Bool
	require.NoError(t, s.Register(Job{
		Name:     "prune",
		Interval: time.Hour,
		Run: func(context.Context) error {
			if fail.Load() {
				return boom
			}
			return nil
		},
	}))
	require.NoError(t, s.Register(Job{
		Name:     "panics",
		Interval: time.Hour,
		Run:      func(context.Context) error { panic("bad state") },
	}))

	ctx := context.Background()
	assert.ErrorIs(t, s.RunNow(ctx, "prune"), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	assert.ErrorIs(t, s.RunNow(ctx, "missing"), ErrJobNotFound)
	require.NoError(t, s.RunNow(ctx, "prune"))

	fail.Store(true)
	assert.ErrorIs(t, s.RunNow(ctx, "prune"), boom)

	state, err := s.State("prune")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, state.Status)
	assert.Equal(t, 2, state.Runs)
	assert.Equal(t, 1, state.Failures)
	assert.Equal(t, "boom", state.LastError)
	require.NotNil(t, state.CompletedAt)

	err = s.RunNow(ctx, "panics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad state")
}

func TestScheduler_TimeoutCancelsRun(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	require.NoError(t, s.Register(Job{
		Name:     "slow",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	assert.ErrorIs(t, s.RunNow(ctx, "slow"), context.DeadlineExceeded)
}
