package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrTaskNotFound is returned when no task carries the requested name
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTask is returned for tasks without a name, interval or func
	ErrInvalidTask = errors.New("invalid scheduler task")

	// ErrSchedulerRunning is returned when registering on a started scheduler
	ErrSchedulerRunning = errors.New("scheduler is already running")
)

// Task is a housekeeping job run on a fixed interval
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// TaskFunc adapts a func without a result to a Task body
func TaskFunc(fn func()) func(context.Context) error {
	return func(context.Context) error {
		fn()
		return nil
	}
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled bool
	// TaskTimeout bounds a single run; zero means no bound
	TaskTimeout time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:     true,
		TaskTimeout: time.Minute,
	}
}

// Scheduler runs registered tasks periodically until stopped
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger
	tasks  []Task

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		logger: logger,
	}
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(task Task) error {
	if task.Name == "" || task.Interval <= 0 || task.Run == nil {
		return fmt.Errorf("%w: %q", ErrInvalidTask, task.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	for _, t := range s.tasks {
		if t.Name == task.Name {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidTask, task.Name)
		}
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start starts one loop per registered task
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Housekeeping scheduler is disabled")
		return nil
	}
	s.isRunning = true
	tasks := append([]Task(nil), s.tasks...)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, task := range tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}

	s.logger.Info("Housekeeping scheduler started", zap.Int("tasks", len(tasks)))
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Wait for loops to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Housekeeping scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Housekeeping scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow executes the named task once on the caller's goroutine
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var (
		task  Task
		found bool
	)
	for _, t := range s.tasks {
		if t.Name == name {
			task, found = t, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	return s.execute(ctx, task)
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	s.logger.Debug("Task scheduled",
		zap.String("task", task.Name),
		zap.Duration("interval", task.Interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Task loop stopping", zap.String("task", task.Name))
			return
		case <-ticker.C:
			if err := s.execute(ctx, task); err != nil {
				s.logger.Error("Task failed",
					zap.String("task", task.Name),
					zap.Error(err),
				)
			}
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, task Task) (err error) {
	if s.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.TaskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", task.Name, r)
		}
	}()

	start := time.Now()
	err = task.Run(ctx)
	s.logger.Debug("Task finished",
		zap.String("task", task.Name),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return err
}
