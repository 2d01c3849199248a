package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/service"
)

// DashboardWorker periodically recomputes the back-office analytics.
type DashboardWorker struct {
	dashboard *service.DashboardService
	interval  time.Duration
}

// NewDashboardWorker constructs a DashboardWorker.
func NewDashboardWorker(dashboard *service.DashboardService, interval time.Duration) *DashboardWorker {
	return &DashboardWorker{
		dashboard: dashboard,
		interval:  interval,
	}
}

// Start refreshes immediately, then on every tick until ctx is cancelled.
func (w *DashboardWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting dashboard worker")

	w.run()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Dashboard worker stopped")
			return
		}
	}
}

func (w *DashboardWorker) run() {
	start := time.Now()
	a := w.dashboard.Refresh()
	log.Debug().
		Int64("total_sales", a.TotalSales).
		Int("total_transactions", a.TotalTransactions).
		Dur("duration", time.Since(start)).
		Msg("Dashboard analytics refreshed")
}
