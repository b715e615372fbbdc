package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/precifica/precifica_api/internal/service"
)

// PriceFeedWorker periodically refreshes the gold spot price. Fetch
// failures are logged and swallowed so the catalog keeps pricing against
// the previous value.
type PriceFeedWorker struct {
	feed     *service.PriceFeedService
	interval time.Duration
}

// NewPriceFeedWorker constructs a PriceFeedWorker.
func NewPriceFeedWorker(feed *service.PriceFeedService, interval time.Duration) *PriceFeedWorker {
	return &PriceFeedWorker{
		feed:     feed,
		interval: interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *PriceFeedWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting price feed worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Price feed worker stopped")
			return
		}
	}
}

func (w *PriceFeedWorker) run(ctx context.Context) {
	start := time.Now()
	if _, err := w.feed.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh gold price")
		return
	}

	log.Info().Dur("duration", time.Since(start)).Msg("Gold price refresh completed")
}
