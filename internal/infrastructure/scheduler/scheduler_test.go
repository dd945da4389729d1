package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func counterTask(name string, interval time.Duration, n *atomic.Int32) Task {
	return Task{
		Name:     name,
		Interval: interval,
		Run: func(context.Context) error {
			n.Add(1)
			return nil
		},
	}
}

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), zap.NewNop())
	var n atomic.Int32

	require.NoError(t, s.Register(counterTask("sweep", time.Second, &n)))

	assert.ErrorIs(t, s.Register(counterTask("sweep", time.Second, &n)), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "no-interval", Run: TaskFunc(func() {})}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "no-func", Interval: time.Second}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Interval: time.Second, Run: TaskFunc(func() {})}), ErrInvalidTask)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()
	assert.ErrorIs(t, s.Register(counterTask("late", time.Second, &n)), ErrSchedulerRunning)
}

func TestScheduler_RunsTasksUntilStopped(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), nil)
	var fast, failing atomic.Int32

	require.NoError(t, s.Register(counterTask("fast", 5*time.Millisecond, &fast)))
	require.NoError(t, s.Register(Task{
		Name:     "failing",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			failing.Add(1)
			return errors.New("boom")
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	// second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool {
		return fast.Load() >= 3 && failing.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())

	stopped := fast.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, fast.Load())

	// stopping twice is harmless
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_Disabled(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Enabled: false}, zap.NewNop())
	var n atomic.Int32
	require.NoError(t, s.Register(counterTask("sweep", time.Millisecond, &n)))

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, n.Load())
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(SchedulerConfig{TaskTimeout: 50 * time.Millisecond}, zap.NewNop())
	var n atomic.Int32
	require.NoError(t, s.Register(counterTask("sweep", time.Hour, &n)))
	require.NoError(t, s.Register(Task{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))
	require.NoError(t, s.Register(Task{
		Name:     "panics",
		Interval: time.Hour,
		Run:      TaskFunc(func() { panic("bad state") }),
	}))

	require.NoError(t, s.RunNow(context.Background(), "sweep"))
	assert.Equal(t, int32(1), n.Load())

	assert.ErrorIs(t, s.RunNow(context.Background(), "slow"), context.DeadlineExceeded)

	err := s.RunNow(context.Background(), "panics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad state")

	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrTaskNotFound)
}

func TestScheduler_StopTimeout(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Enabled: true}, zap.NewNop())
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	require.NoError(t, s.Register(Task{
		Name:     "stuck",
		Interval: time.Millisecond,
		Run: func(context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			return nil
		},
	}))
	require.NoError(t, s.Start(context.Background()))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)

	close(release)
}
