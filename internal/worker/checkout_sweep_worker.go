package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/checkout"
)

// CheckoutSweepWorker drops idle checkout sessions.
type CheckoutSweepWorker struct {
	sessions *checkout.Manager
	interval time.Duration
}

// NewCheckoutSweepWorker constructs a CheckoutSweepWorker.
func NewCheckoutSweepWorker(sessions *checkout.Manager, interval time.Duration) *CheckoutSweepWorker {
	return &CheckoutSweepWorker{sessions: sessions, interval: interval}
}

// Start sweeps on every tick until ctx is cancelled.
func (w *CheckoutSweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting checkout sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := w.sessions.Sweep(); n > 0 {
				log.Info().Int("expired", n).Int("open", w.sessions.Len()).Msg("Expired idle checkouts")
			}
		case <-ctx.Done():
			log.Info().Msg("Checkout sweep worker stopped")
			return
		}
	}
}
