package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// HousekeepingService periodically purges expired tokens so the token
// tables do not grow without bound.
type HousekeepingService struct {
	Tokens   []*TokenService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(logger *slog.Logger, interval time.Duration, tokens ...*TokenService) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Tokens:   tokens,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress purge has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Purge immediately on startup
	_, _ = s.Purge(ctx)

	for {
		select {
		case <-ticker.C:
			_, _ = s.Purge(ctx)
		case <-s.stopCh:
			return
		}
	}
}

// Purge deletes expired tokens of every kind and returns how many were
// removed. A failure for one kind does not stop the others.
func (s *HousekeepingService) Purge(ctx context.Context) (int64, error) {
	var (
		total int64
		errs  []error
	)
	for _, svc := range s.Tokens {
		n, err := svc.PurgeExpiredTokens(ctx)
		if err != nil {
			s.Logger.Error("failed to purge expired tokens", "kind", svc.Kind.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		if n > 0 {
			s.Logger.Debug("purged expired tokens", "kind", svc.Kind.String(), "count", n)
		}
		total += n
	}

	s.Logger.Info("housekeeping purge completed", "deleted", total)
	return total, errors.Join(errs...)
}
