package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the work a scheduler runs on every tick.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// GetNextRunTime returns the next run time for a cron schedule
func GetNextRunTime(schedule string) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(time.Now()), nil
}

// ReseedScheduler periodically restores the provider's sample data.
type ReseedScheduler struct {
	schedule string
	job      Job

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewReseedScheduler creates a scheduler running job on schedule. An empty schedule
// leaves the scheduler disabled.
func NewReseedScheduler(schedule string, job Job) *ReseedScheduler {
	return &ReseedScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if a schedule is configured
func (s *ReseedScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("[SCHEDULER] disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	jobCtx := s.ctx
	entryID, err := s.cron.AddFunc(s.schedule, func() { s.run(jobCtx) })
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule reseed job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.schedule)
	log.Printf("[SCHEDULER] started with schedule '%s'. Next run: %v", s.schedule, nextRun)

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *ReseedScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopped := s.cron.Stop()
	<-stopped.Done()

	s.cron.Remove(s.entryID)
	s.cancel()
	s.isRunning = false

	log.Printf("[SCHEDULER] stopped")
}

// RunNow triggers an immediate reseed in the background
func (s *ReseedScheduler) RunNow() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *ReseedScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next reseed will occur
func (s *ReseedScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ReseedScheduler) run(ctx context.Context) {
	start := time.Now()
	if err := s.job(ctx); err != nil {
		log.Printf("[SCHEDULER] job failed: %v", err)
		return
	}
	log.Printf("[SCHEDULER] job finished in %v", time.Since(start).Round(time.Millisecond))
}
