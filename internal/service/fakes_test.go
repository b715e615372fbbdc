package service

import (
	"context"
	"sync"

	"github.com/precifica/precifica_api/internal/models"
)

// fakeStateStore is an in-memory StateStore for tests.
type fakeStateStore struct {
	mu          sync.Mutex
	products    []*models.Product
	hasProducts bool
	factor      float64
	hasFactor   bool
	remote      models.RemoteDescriptor
	hasRemote   bool
	saves       int
}

func (f *fakeStateStore) SaveProducts(_ context.Context, products []*models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
	f.hasProducts = true
	f.saves++
	return nil
}

func (f *fakeStateStore) LoadProducts(context.Context) ([]*models.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, f.hasProducts, nil
}

func (f *fakeStateStore) SavePlatingFactor(_ context.Context, factor float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factor = factor
	f.hasFactor = true
	return nil
}

func (f *fakeStateStore) LoadPlatingFactor(context.Context) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.factor, f.hasFactor, nil
}

func (f *fakeStateStore) SaveRemote(_ context.Context, desc models.RemoteDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remote = desc
	f.hasRemote = true
	return nil
}

func (f *fakeStateStore) LoadRemote(context.Context) (models.RemoteDescriptor, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remote, f.hasRemote, nil
}

// fakeQuoteStore is an in-memory QuoteStore for tests.
type fakeQuoteStore struct {
	mu    sync.Mutex
	quote *models.GoldQuote
}

func (f *fakeQuoteStore) SaveQuote(_ context.Context, q *models.GoldQuote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quote = q
	return nil
}

func (f *fakeQuoteStore) LoadQuote(context.Context) (*models.GoldQuote, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quote, f.quote != nil, nil
}
