package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidSchedule is returned for a malformed "minute hour * * *" expression
	ErrInvalidSchedule = errors.New("invalid schedule")
)
