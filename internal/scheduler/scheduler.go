package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Resetter rolls the exercise checklist over to the current day.
type Resetter interface {
	CheckDailyReset(ctx context.Context) (bool, error)
}

// Scheduler runs the daily reset at a fixed local wall-clock time so a
// session left open across midnight starts the new day empty.
type Scheduler struct {
	scheduler *gocron.Scheduler
	resetter  Resetter
	at        string
	timeout   time.Duration
}

// New creates a Scheduler that calls resetter every day at "HH:MM" local time.
func New(resetter Resetter, at string) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		resetter:  resetter,
		at:        at,
		timeout:   10 * time.Second,
	}
}

// Start schedules the reset job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	slog.Info("daily reset scheduled", "at", s.at)
	return nil
}

// RunNow triggers the reset job immediately, outside its schedule.
func (s *Scheduler) RunNow() {
	s.scheduler.RunAll()
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	reset, err := s.resetter.CheckDailyReset(ctx)
	if err != nil {
		slog.Warn("scheduler: daily reset not persisted", "error", err)
	}
	slog.Debug("scheduler: daily reset check", "reset", reset)
}
