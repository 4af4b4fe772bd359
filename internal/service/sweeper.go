package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

type expireStore interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type settingsLoader interface {
	Load(ctx context.Context) (*domain.GatewaySettings, error)
}

// ExpirySweeper periodically fails pending records whose invoice lifetime
// has long passed without a callback. The provider expires such invoices on
// its side; this sweep keeps local records from staying pending forever if
// the expiry callback is lost.
type ExpirySweeper struct {
	records  expireStore
	settings settingsLoader
	logger   *slog.Logger
	interval time.Duration
	grace    time.Duration
}

func NewExpirySweeper(records expireStore, settings settingsLoader, logger *slog.Logger, interval, grace time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		records:  records,
		settings: settings,
		logger:   logger,
		interval: interval,
		grace:    grace,
	}
}

func (s *ExpirySweeper) Start(ctx context.Context) {
	s.logger.Info("expiry sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load settings for sweep", "error", err)
		return
	}

	lifetime := time.Duration(settings.PaymentTimeoutMinutes) * time.Minute
	cutoff := time.Now().UTC().Add(-(lifetime + s.grace))

	n, err := s.records.ExpireStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to expire stale records", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired stale pending records", "count", n)
	}
}
