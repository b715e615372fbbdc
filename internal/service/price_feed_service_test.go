package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precifica/precifica_api/internal/store"
	"github.com/precifica/precifica_api/pkg/goldapi"
)

func TestRefreshAppliesQuoteAndRecomputes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"XAUBRL":{"bid":"400.00","create_date":"2024-05-01 10:00:00"}}`))
	}))
	defer srv.Close()

	catalog, _ := newTestCatalog()
	catalog.Create(context.Background(), store.CreateFields{SKU: "A", Weight: 2, Thickness: 5})

	quotes := &fakeQuoteStore{}
	feed := NewPriceFeedService(goldapi.NewClient(goldapi.Config{BaseURL: srv.URL}), catalog, quotes, "XAU-BRL")

	quote, err := feed.Refresh(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 12.8602, quote.PricePerGram, 0.0001)
	assert.Equal(t, 400.0, quote.BidPerOunce)
	assert.Equal(t, "2024-05-01 10:00:00", quote.QuotedAt)

	list := catalog.List("")
	require.Len(t, list, 1)
	assert.InDelta(t, 2*5*quote.PricePerGram*0.02, list[0].PlatingCost, 1e-9)

	require.NotNil(t, quotes.quote, "quote is cached for restarts")
	assert.Equal(t, quote.PricePerGram, quotes.quote.PricePerGram)
}

func TestRefreshFailureKeepsPreviousPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	catalog, _ := newTestCatalog()
	feed := NewPriceFeedService(goldapi.NewClient(goldapi.Config{BaseURL: srv.URL}), catalog, &fakeQuoteStore{}, "XAU-BRL")

	// Seed a previous price directly, then fail a refresh.
	prev := catalog.PricingContext()
	assert.Equal(t, 0.0, prev.GoldPricePerGram)

	_, err := feed.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, prev.GoldPricePerGram, catalog.PricingContext().GoldPricePerGram)
	assert.Nil(t, catalog.GoldQuote())
}

func TestRestoreAppliesCachedQuote(t *testing.T) {
	catalog, _ := newTestCatalog()
	catalog.Create(context.Background(), store.CreateFields{SKU: "A", Weight: 1, Thickness: 1})

	quotes := &fakeQuoteStore{}
	feed := NewPriceFeedService(goldapi.NewClient(goldapi.Config{}), catalog, quotes, "XAU-BRL")

	// Nothing cached: no-op.
	feed.Restore(context.Background())
	assert.Nil(t, catalog.GoldQuote())

	// Cached quote applies and reprices the grid.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"XAUBRL":{"bid":311.035,"create_date":"2024-05-01 10:00:00"}}`))
	}))
	defer srv.Close()
	warm := NewPriceFeedService(goldapi.NewClient(goldapi.Config{BaseURL: srv.URL}), catalog, quotes, "XAU-BRL")
	_, err := warm.Refresh(context.Background())
	require.NoError(t, err)

	cold, _ := newTestCatalog()
	cold.Create(context.Background(), store.CreateFields{SKU: "B", Weight: 1, Thickness: 1})
	NewPriceFeedService(goldapi.NewClient(goldapi.Config{}), cold, quotes, "XAU-BRL").Restore(context.Background())

	require.NotNil(t, cold.GoldQuote())
	assert.InDelta(t, 10.0, cold.GoldQuote().PricePerGram, 1e-9)
	assert.InDelta(t, 1*1*10*0.02, cold.List("")[0].PlatingCost, 1e-9)
}
