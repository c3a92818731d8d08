// Package scheduler runs the cron jobs of the service. The only job today is
// the daily-reads rotation, which enqueues a task instead of doing the work
// inline so retries and status tracking come from the task queue.
//
// # Usage
//
//	s := scheduler.NewDailyReadsScheduler(taskClient, cfg.DailyReads)
//	if err := s.Start(ctx); err != nil { ... }
//	defer s.Stop()
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/log"
	"github.com/bookbrief/bookbrief/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer accepts background tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// DailyReadsScheduler periodically rotates the daily reads.
type DailyReadsScheduler struct {
	queue Enqueuer
	cfg   config.DailyReads

	cron       *cron.Cron
	schedule   cron.Schedule
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewDailyReadsScheduler(queue Enqueuer, cfg config.DailyReads) *DailyReadsScheduler {
	return &DailyReadsScheduler{
		queue: queue,
		cfg:   cfg,
		cron:  cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if rotation is enabled.
func (s *DailyReadsScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Info("Daily reads scheduler: disabled")
		return nil
	}

	schedule, err := parser.Parse(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.schedule = schedule
	s.entryID = s.cron.Schedule(schedule, cron.FuncJob(s.rotate))

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Info("Daily reads scheduler: started",
		zap.String("schedule", s.cfg.Schedule),
		zap.Time("next_run", schedule.Next(time.Now())))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *DailyReadsScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Info("Daily reads scheduler: stopped")
}

// Reschedule restarts the scheduler with a new configuration.
func (s *DailyReadsScheduler) Reschedule(cfg config.DailyReads) error {
	s.Stop()

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	return s.Start(context.Background())
}

// RunNow enqueues a rotation immediately and returns the task ID.
func (s *DailyReadsScheduler) RunNow(ctx context.Context) (string, error) {
	return s.enqueue(ctx)
}

func (s *DailyReadsScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next rotation will occur, or nil when stopped.
func (s *DailyReadsScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.schedule.Next(time.Now())
	return &next
}

func (s *DailyReadsScheduler) rotate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.enqueue(ctx); err != nil {
		log.Error("Daily reads scheduler: enqueue failed", zap.Error(err))
	}
}

func (s *DailyReadsScheduler) enqueue(ctx context.Context) (string, error) {
	s.mu.RLock()
	count := s.cfg.Count
	s.mu.RUnlock()

	id, err := s.queue.Enqueue(ctx, tasks.RotateDailyReadsTask{Count: count})
	if err != nil {
		return "", err
	}
	log.Info("Daily reads scheduler: rotation enqueued", zap.String("task_id", id))
	return id, nil
}
