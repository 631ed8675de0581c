package service

import (
	"context"
	"time"

	"github.com/roguepikachu/vanish/internal/metrics"
	"github.com/roguepikachu/vanish/internal/repository"
	"github.com/roguepikachu/vanish/pkg/logger"
)

// RunJanitor sweeps unreadable pastes every interval until ctx is cancelled.
// It is optional: unreadable pastes stay unreadable whether swept or not.
func RunJanitor(ctx context.Context, sweeper repository.Sweeper, interval time.Duration, clock Clock) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.Sweep(ctx, clock.Now())
			if err != nil {
				logger.Error(ctx, "paste sweep failed: %v", err)
				continue
			}
			if n > 0 {
				metrics.PastesSwept.Add(float64(n))
				logger.WithField(ctx, "removed", n).Debug("swept unreadable pastes")
			}
		}
	}
}
