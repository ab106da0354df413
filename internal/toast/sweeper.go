package toast

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/meddot/meddot-backend/pkg/logger"
)

const defaultSweepInterval = 5 * time.Minute

// Sweeper periodically evicts idle centers from a Hub.
type Sweeper struct {
	hub       *Hub
	logg      *logger.Logger
	scheduler gocron.Scheduler
	interval  time.Duration
}

func NewSweeper(hub *Hub, interval time.Duration, logg *logger.Logger) (*Sweeper, error) {
	if hub == nil {
		return nil, fmt.Errorf("toast hub required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(hub.clock))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Sweeper{
		hub:       hub,
		logg:      logg,
		scheduler: scheduler,
		interval:  interval,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) { s.run(ctx) }),
		gocron.WithName("toast-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register sweep job: %w", err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.scheduler.Start()
}

func (s *Sweeper) Shutdown() error {
	return s.scheduler.Shutdown()
}

func (s *Sweeper) run(ctx context.Context) int {
	evicted := s.hub.Sweep()
	if evicted > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event":     "toast.sweep",
			"evicted":   evicted,
			"remaining": s.hub.Len(),
		})
		s.logg.Info(logCtx, "idle toast centers evicted")
	}
	return evicted
}
