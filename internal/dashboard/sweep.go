package dashboard

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"github.com/thesrcielos/PadelTracker/pkg/metrics"
	"go.uber.org/zap"
)

// Sweeper periodically refreshes the sessions of live clients whose access
// token is about to expire.
type Sweeper struct {
	registry  *Registry
	interval  time.Duration
	window    time.Duration
	log       *logger.Logger
	scheduler gocron.Scheduler
	now       func() time.Time
}

func NewSweeper(registry *Registry, interval, window time.Duration, log *logger.Logger) (*Sweeper, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		registry:  registry,
		interval:  interval,
		window:    window,
		log:       log,
		scheduler: sched,
		now:       time.Now,
	}, nil
}

func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			defer cancel()
			s.Sweep(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep refreshes every due client and returns how many were refreshed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	now := s.now()
	refreshed := 0
	for _, c := range s.registry.All() {
		if !c.NeedsRefresh(now, s.window) {
			continue
		}
		if _, err := c.Auth.RefreshSession(ctx); err != nil {
			metrics.SessionRefreshesTotal.WithLabelValues("error").Inc()
			s.log.Warn("background refresh failed", zap.String("client_id", c.ID), zap.Error(err))
			continue
		}
		metrics.SessionRefreshesTotal.WithLabelValues("ok").Inc()
		refreshed++
	}
	return refreshed
}
