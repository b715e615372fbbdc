package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/precifica/precifica_api/internal/models"
)

const (
	quoteKey = "gold:quote:last"
	quoteTTL = 24 * time.Hour
)

// QuoteCache keeps the last successful gold quote in Redis so a restarted
// process prices against the most recent known value until the next live
// fetch succeeds.
type QuoteCache struct {
	redis *RedisClient
}

// NewQuoteCache creates a new QuoteCache.
func NewQuoteCache(redis *RedisClient) *QuoteCache {
	return &QuoteCache{redis: redis}
}

// SaveQuote stores the quote under a fixed key with a 24h TTL.
func (c *QuoteCache) SaveQuote(ctx context.Context, q *models.GoldQuote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return c.redis.Set(ctx, quoteKey, string(data), quoteTTL)
}

// LoadQuote returns the cached quote, or ok=false when none is stored.
func (c *QuoteCache) LoadQuote(ctx context.Context) (*models.GoldQuote, bool, error) {
	data, err := c.redis.Get(ctx, quoteKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var q models.GoldQuote
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &q, true, nil
}
