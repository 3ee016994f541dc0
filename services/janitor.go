package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Janitor periodically deletes matches whose candidate or project row is gone.
type Janitor struct {
	matches   MatchStore
	interval  time.Duration
	scheduler gocron.Scheduler
	logger    zerolog.Logger
}

func NewJanitor(matches MatchStore, interval time.Duration) (*Janitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("janitor interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Janitor{
		matches:   matches,
		interval:  interval,
		scheduler: sched,
		logger:    log.With().Str("service", "janitor").Logger(),
	}, nil
}

// Sweep runs one orphan cleanup pass and returns how many matches it removed.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	removed, err := j.matches.DeleteOrphans(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Info().Int64("removed", removed).Msg("orphaned matches deleted")
	}
	return removed, nil
}

// Start schedules Sweep every interval.
func (j *Janitor) Start() error {
	_, err := j.scheduler.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), j.interval)
			defer cancel()
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error().Err(err).Msg("orphan sweep failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule orphan sweep: %w", err)
	}
	j.scheduler.Start()
	return nil
}

func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}
