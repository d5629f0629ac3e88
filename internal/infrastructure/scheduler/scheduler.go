package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is the work a job performs on each tick.
type Task func(ctx context.Context) error

// Job is a periodic maintenance task
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the interval.
	Timeout time.Duration
	// RunOnStart runs the job once as soon as the scheduler starts.
	RunOnStart bool
	Run        Task
}

// JobState is a snapshot of a job's run history
type JobState struct {
	Status      JobStatus
	Runs        int
	Failures    int
	LastError   string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

type entry struct {
	job   Job
	runMu sync.Mutex

	stateMu sync.Mutex
	state   JobState
}

// Scheduler runs registered jobs on fixed intervals until stopped
type Scheduler struct {
	logger *zap.Logger

	entries   map[string]*entry
	order     []string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler with no jobs
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register adds a job. Jobs must be registered before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: job needs a name, a task and a positive interval", ErrInvalidConfig)
	}
	if job.Timeout <= 0 {
		job.Timeout = job.Interval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("%w: cannot register %q while running", ErrInvalidConfig, job.Name)
	}
	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("%w: duplicate job %q", ErrInvalidConfig, job.Name)
	}
	s.entries[job.Name] = &entry{job: job, state: JobState{Status: JobStatusPending}}
	s.order = append(s.order, job.Name)
	return nil
}

// Jobs returns the registered job names in registration order
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Start starts one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, name := range s.order {
		s.wg.Add(1)
		go s.loop(ctx, s.entries[name])
	}

	s.logger.Info("Maintenance scheduler started", zap.Strings("jobs", s.order))
	return nil
}

// Stop cancels the job loops and waits for in-flight runs to finish
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

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Maintenance scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler has been started and not stopped
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow runs a job immediately and returns its error. A run already in
// progress for the same job finishes first.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	running := s.isRunning
	e, ok := s.entries[name]
	s.mu.Unlock()

	if !running {
		return ErrSchedulerNotRunning
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, e)
}

// State returns the run history of a job
func (s *Scheduler) State(name string) (JobState, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return JobState{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state, nil
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	if e.job.RunOnStart {
		_ = s.execute(ctx, e)
	}

	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Job loop stopping", zap.String("job", e.job.Name))
			return
		case <-ticker.C:
			_ = s.execute(ctx, e)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry) (err error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	started := time.Now()
	e.setState(func(st *JobState) {
		st.Status = JobStatusRunning
		st.StartedAt = &started
	})

	jobCtx, cancel := context.WithTimeout(ctx, e.job.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", e.job.Name, r)
		}
		completed := time.Now()
		e.setState(func(st *JobState) {
			st.Runs++
			st.CompletedAt = &completed
			if err != nil {
				st.Status = JobStatusFailed
				st.Failures++
				st.LastError = err.Error()
				return
			}
			st.Status = JobStatusSuccess
			st.LastError = ""
		})
		if err != nil {
			s.logger.Error("Maintenance job failed",
				zap.String("job", e.job.Name),
				zap.Duration("duration", completed.Sub(started)),
				zap.Error(err),
			)
			return
		}
		s.logger.Debug("Maintenance job completed",
			zap.String("job", e.job.Name),
			zap.Duration("duration", completed.Sub(started)),
		)
	}()

	return e.job.Run(jobCtx)
}

func (e *entry) setState(fn func(*JobState)) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	fn(&e.state)
}
