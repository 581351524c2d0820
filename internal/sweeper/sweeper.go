// Package sweeper cancels confirmed reservations whose renters never showed up.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bike-rental-backend/config"
	"bike-rental-backend/internal/store"
)

// Notifier is told which bikes were freed by a sweep.
type Notifier interface {
	Dispatch(bikeID int64)
}

// Service periodically cancels no-show reservations.
type Service struct {
	cfg      config.SweeperConfig
	store    store.Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a sweeper. notifier may be nil.
func NewService(cfg config.SweeperConfig, st store.Store, notifier Notifier, log *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then every configured interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("sweeper is disabled, not starting")
		return
	}
	s.log.Info("starting no-show sweeper",
		zap.Duration("interval", s.cfg.Interval), zap.Duration("grace", s.cfg.NoShowGrace))

	s.SweepOnce(ctx, s.now())

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper shutting down")
			return
		case <-timer.C:
			s.SweepOnce(ctx, s.now())
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce cancels reservations that started more than the grace period before now
// without a pickup. It returns the freed bike IDs.
func (s *Service) SweepOnce(ctx context.Context, now time.Time) []int64 {
	cutoff := now.Add(-s.cfg.NoShowGrace)
	bikeIDs, err := s.store.CancelNoShows(ctx, cutoff)
	if err != nil {
		s.log.Error("no-show sweep failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return nil
	}
	if len(bikeIDs) == 0 {
		s.log.Debug("no-show sweep found nothing", zap.Time("cutoff", cutoff))
		return nil
	}

	s.log.Info("no-show sweep freed bikes", zap.Int64s("bike_ids", bikeIDs))
	if s.notifier != nil {
		for _, id := range bikeIDs {
			s.notifier.Dispatch(id)
		}
	}
	return bikeIDs
}
