package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/pricing"
	"github.com/precifica/precifica_api/pkg/goldapi"
)

// QuoteStore caches the last successful gold quote across restarts.
// Implemented by cache.QuoteCache.
type QuoteStore interface {
	SaveQuote(ctx context.Context, q *models.GoldQuote) error
	LoadQuote(ctx context.Context) (*models.GoldQuote, bool, error)
}

// PriceFeedService fetches the gold spot price and applies it to the
// pricing context. The feed quotes per troy ounce; prices are converted to
// per-gram before use. A failed fetch leaves the previous price in effect.
type PriceFeedService struct {
	client  *goldapi.Client
	catalog *CatalogService
	quotes  QuoteStore
	pair    string
}

// NewPriceFeedService constructs a PriceFeedService.
func NewPriceFeedService(client *goldapi.Client, catalog *CatalogService, quotes QuoteStore, pair string) *PriceFeedService {
	return &PriceFeedService{
		client:  client,
		catalog: catalog,
		quotes:  quotes,
		pair:    pair,
	}
}

// Restore applies the cached quote, if any, so products price against the
// last known value before the first live fetch completes.
func (s *PriceFeedService) Restore(ctx context.Context) {
	if s.quotes == nil {
		return
	}
	quote, ok, err := s.quotes.LoadQuote(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load cached gold quote")
		return
	}
	if !ok {
		return
	}
	s.catalog.SetGoldPrice(ctx, quote)
	log.Info().Float64("price_per_gram", quote.PricePerGram).Msg("Restored gold price from cache")
}

// Refresh fetches the current quote, converts it to price per gram and
// recomputes the whole catalog. The caller decides whether the error is
// surfaced (manual refresh) or just logged (background tick).
func (s *PriceFeedService) Refresh(ctx context.Context) (*models.GoldQuote, error) {
	q, err := s.client.GetQuote(ctx, s.pair)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gold quote: %w", err)
	}

	quote := &models.GoldQuote{
		PricePerGram: pricing.PerGram(q.Bid),
		BidPerOunce:  q.Bid,
		QuotedAt:     q.CreateDate,
		FetchedAt:    time.Now(),
	}
	s.catalog.SetGoldPrice(ctx, quote)

	if s.quotes != nil {
		if err := s.quotes.SaveQuote(ctx, quote); err != nil {
			log.Warn().Err(err).Msg("Failed to cache gold quote")
		}
	}

	log.Info().
		Float64("bid_per_ounce", quote.BidPerOunce).
		Float64("price_per_gram", quote.PricePerGram).
		Msg("Gold price updated")
	return quote, nil
}
