package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a job is triggered on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobNotFound is returned when a job name is not registered
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidConfig is returned when a job definition is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
