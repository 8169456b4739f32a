package feed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// ErrInvalidSweepSchedule is returned when the cron schedule cannot be parsed.
var ErrInvalidSweepSchedule = errors.New("feed: invalid sweep schedule")

// Sweeper periodically purges expired notifications from storage.
type Sweeper struct {
	storage  Storage
	schedule string
	log      *slog.Logger
	cron     *cron.Cron
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepSchedule overrides the default "@every 10m" cron schedule.
func WithSweepSchedule(schedule string) SweeperOption {
	return func(s *Sweeper) {
		if schedule != "" {
			s.schedule = schedule
		}
	}
}

// WithSweeperLogger sets the logger for sweep results.
func WithSweeperLogger(log *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSweeper creates a sweeper over the given storage.
func NewSweeper(storage Storage, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		storage:  storage,
		schedule: "@every 10m",
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the sweep job and begins running it in the background.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.sweep(ctx) }); err != nil {
		return errors.Join(ErrInvalidSweepSchedule, err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep removes expired notifications once, outside of the schedule.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	return s.storage.DeleteExpired(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.storage.DeleteExpired(ctx)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "failed to purge expired notifications",
			logger.Error(err),
		)
		return
	}
	if removed > 0 {
		s.log.LogAttrs(ctx, slog.LevelInfo, "purged expired notifications",
			slog.Int("removed", removed),
		)
	}
}
