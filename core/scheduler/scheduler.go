package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a sync run is already in progress")

// ErrNotRunning is returned by Stop when the scheduler is idle.
var ErrNotRunning = errors.New("scheduler is not running")

// Task is the unit of work the scheduler drives. The context is cancelled when
// the scheduler stops; tasks are expected to check it between steps.
type Task func(ctx context.Context) error

// Status describes the scheduler's current state.
type Status struct {
	Running   bool          `json:"running"`
	Busy      bool          `json:"busy"`
	Interval  time.Duration `json:"interval"`
	LastRun   time.Time     `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
}

// Scheduler runs a task on a fixed interval and on demand.
// Overlapping executions are rejected rather than queued: a new run must not
// start while a previous run is in flight.
type Scheduler struct {
	logger *zap.Logger

	mu       sync.Mutex
	running  bool
	busy     bool
	interval time.Duration
	lastRun  time.Time
	lastErr  string
	task     Task
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates an idle scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Start launches the interval loop. It returns an error when already started
// or when the interval is not positive.
func (s *Scheduler) Start(interval time.Duration, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already started")
	}
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	if task == nil {
		return errors.New("task must not be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.interval = interval
	s.task = task
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, interval)

	s.logger.Info("Scheduler started", zap.Duration("interval", interval))
	return nil
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.run(ctx); err != nil {
				if errors.Is(err, ErrBusy) {
					s.logger.Warn("Skipping scheduled run, previous run still in flight")
				} else {
					s.logger.Error("Scheduled run failed", zap.Error(err))
				}
			}
		}
	}
}

// run executes the task once, guarded by the busy flag.
func (s *Scheduler) run(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	task := s.task
	s.mu.Unlock()

	err := task(ctx)

	s.mu.Lock()
	s.busy = false
	s.lastRun = time.Now()
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()

	return err
}

// TriggerNow executes the task immediately on the caller's goroutine.
// Returns ErrBusy if a run is already in flight.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	task := s.task
	s.mu.Unlock()

	if task == nil {
		return errors.New("scheduler has no task configured")
	}
	return s.run(ctx)
}

// Stop halts the interval loop and waits for it to exit.
// An in-flight task is cancelled via its context but not force-aborted.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("Scheduler stopped")
	return nil
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Running:   s.running,
		Busy:      s.busy,
		Interval:  s.interval,
		LastRun:   s.lastRun,
		LastError: s.lastErr,
	}
}

// SetTask installs the task without starting the interval loop.
// This lets TriggerNow work in CLI-only deployments where no interval is set.
func (s *Scheduler) SetTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task = task
}
