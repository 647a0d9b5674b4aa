package sched

import (
	"context"
	"time"

	"saman-gateway-mock/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// TokenSweeper is the slice of the token use case the worker needs.
type TokenSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// ExpiryWorker periodically expires overdue in-progress tokens. Resolution
// already reports expiry at read time; the sweeper closes abandoned tokens
// nobody ever resolves again.
type ExpiryWorker struct {
	interval time.Duration
	tokens   TokenSweeper
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, tokens TokenSweeper, logger *zerolog.Logger) *ExpiryWorker {
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		tokens:   tokens,
		log:      &l,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.tokens.SweepExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
			}
			if n > 0 {
				metrics.AddTokensSwept(n)
				w.log.Info().Int("count", n).Msg("expired tokens closed")
			}
		}
	}
}
