// Package scheduler runs background jobs at a fixed time of day.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// tickInterval is how often the loop checks whether the job is due
const tickInterval = time.Minute

// Job is the unit of work a DailyScheduler runs
type Job func(ctx context.Context) error

// DailyConfig holds configuration for a DailyScheduler
type DailyConfig struct {
	// Name identifies the job in logs
	Name string
	// Hour is the hour (0-23) to run
	Hour int
	// Minute is the minute (0-59) to run
	Minute int
	// JobTimeout bounds a single run
	JobTimeout time.Duration
}

// ParseSchedule reads "minute hour * * *". Only fixed minute and hour
// fields are supported; the remaining fields are ignored.
func ParseSchedule(expr string) (hour, minute int, err error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	if minute, err = strconv.Atoi(parts[0]); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %q", ErrInvalidSchedule, parts[0])
	}
	if hour, err = strconv.Atoi(parts[1]); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %q", ErrInvalidSchedule, parts[1])
	}
	return hour, minute, nil
}

// DailyScheduler runs one job once a day at the configured local time
type DailyScheduler struct {
	config DailyConfig
	job    Job
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewDailyScheduler creates a new DailyScheduler
func NewDailyScheduler(config DailyConfig, job Job, logger *zap.Logger) *DailyScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 30 * time.Minute
	}
	return &DailyScheduler{config: config, job: job, logger: logger, now: time.Now}
}

// Start launches the loop. Calling Start twice is a no-op.
func (s *DailyScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("scheduler started",
		zap.String("job", s.config.Name),
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.Timep("next_run_at", s.NextRunAt()),
	)
	return nil
}

// Stop cancels the loop and waits for a running job, bounded by ctx
func (s *DailyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped", zap.String("job", s.config.Name))
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", zap.String("job", s.config.Name))
		return ctx.Err()
	}
}

func (s *DailyScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.run(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

func (s *DailyScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.Hour && now.Minute() == s.config.Minute
}

func (s *DailyScheduler) calculateNextRunTime() {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, s.config.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// run executes the job once under the job timeout. Failures are logged; the
// next day's run is unaffected.
func (s *DailyScheduler) run(ctx context.Context) {
	started := s.now()
	s.mu.Lock()
	s.lastRunAt = &started
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			zap.String("job", s.config.Name),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("scheduled job completed",
		zap.String("job", s.config.Name),
		zap.Duration("elapsed", time.Since(started)),
	)
}

// TriggerNow runs the job immediately in the caller's goroutine
func (s *DailyScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	defer s.wg.Done()
	s.run(ctx)
	return nil
}

// NextRunAt returns when the next scheduled run will occur
func (s *DailyScheduler) NextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// LastRunAt returns when the last run started
func (s *DailyScheduler) LastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
