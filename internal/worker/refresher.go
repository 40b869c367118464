// Package worker runs the background directory refresh loop.
package worker

import (
	"context"
	"time"

	"freightbook/internal/domain"
	"freightbook/internal/logging"

	"github.com/rs/zerolog"
)

// Refresher periodically re-derives the contact directories. Each tick
// runs the refresh with backoff retries; a tick whose retries are all
// exhausted logs the failure and waits for the next tick.
type Refresher struct {
	target   domain.Refresher
	interval time.Duration
	policy   RetryPolicy
	logger   zerolog.Logger
}

func NewRefresher(target domain.Refresher, interval time.Duration, policy RetryPolicy, logger *zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{
		target:   target,
		interval: interval,
		policy:   policy,
		logger:   logging.Component(logger, "refresher"),
	}
}

// Run blocks until the context is cancelled. The first refresh happens
// immediately so the service does not wait a full interval for data.
func (r *Refresher) Run(ctx context.Context) {
	r.refreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	if err := r.policy.Do(ctx, r.target.Refresh); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error().Err(err).Msg("refresh failed after retries")
	}
}
