package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/pricing"
	"github.com/precifica/precifica_api/internal/store"
)

// StateStore persists the catalog's durable state: the full product list as
// one document plus individually keyed settings. Implemented by
// repository.StateRepository; tests substitute an in-memory fake.
type StateStore interface {
	SaveProducts(ctx context.Context, products []*models.Product) error
	LoadProducts(ctx context.Context) ([]*models.Product, bool, error)
	SavePlatingFactor(ctx context.Context, factor float64) error
	LoadPlatingFactor(ctx context.Context) (float64, bool, error)
	SaveRemote(ctx context.Context, desc models.RemoteDescriptor) error
	LoadRemote(ctx context.Context) (models.RemoteDescriptor, bool, error)
}

// CatalogService coordinates the product store, the shared pricing context
// and local persistence. Every mutation recomputes the affected products
// and mirrors the full list to the state store, the way the original
// mirrored to browser storage on every change.
//
// Persistence failures are logged and do not fail the mutation: the
// in-memory store stays the source of truth and the next successful write
// re-mirrors the whole list anyway.
type CatalogService struct {
	mu       sync.RWMutex // guards pctx and quote
	pctx     pricing.Context
	quote    *models.GoldQuote
	products *store.ProductStore
	states   StateStore
}

// NewCatalogService constructs a CatalogService with the default plating factor.
func NewCatalogService(products *store.ProductStore, states StateStore, defaultFactor float64) *CatalogService {
	if defaultFactor <= 0 {
		defaultFactor = pricing.DefaultPlatingFactor
	}
	return &CatalogService{
		pctx:     pricing.Context{PlatingFactor: defaultFactor},
		products: products,
		states:   states,
	}
}

// LoadState restores the persisted plating factor and product list. Called
// once at startup before the price feed starts.
func (s *CatalogService) LoadState(ctx context.Context) error {
	factor, ok, err := s.states.LoadPlatingFactor(ctx)
	if err != nil {
		return err
	}
	if ok && factor > 0 {
		s.mu.Lock()
		s.pctx.PlatingFactor = factor
		s.mu.Unlock()
	}

	list, ok, err := s.states.LoadProducts(ctx)
	if err != nil {
		return err
	}
	if ok {
		s.products.ReplaceAll(list, s.PricingContext())
		log.Info().Int("products", len(list)).Msg("Restored product list from local state")
	}
	return nil
}

// PricingContext returns a copy of the current pricing context.
func (s *CatalogService) PricingContext() pricing.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pctx
}

// GoldQuote returns the last applied gold quote, or nil before the first
// successful fetch.
func (s *CatalogService) GoldQuote() *models.GoldQuote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quote
}

// SetGoldPrice applies a new gold quote to the pricing context and
// recomputes every product.
func (s *CatalogService) SetGoldPrice(ctx context.Context, quote *models.GoldQuote) {
	s.mu.Lock()
	s.pctx.GoldPricePerGram = quote.PricePerGram
	s.quote = quote
	pctx := s.pctx
	s.mu.Unlock()

	s.products.RecomputeAll(pctx)
	s.persist(ctx)
}

// SetPlatingFactor updates the plating factor setting, recomputes every
// product and persists both the setting and the list.
func (s *CatalogService) SetPlatingFactor(ctx context.Context, factor float64) {
	s.mu.Lock()
	s.pctx.PlatingFactor = factor
	pctx := s.pctx
	s.mu.Unlock()

	s.products.RecomputeAll(pctx)
	if err := s.states.SavePlatingFactor(ctx, factor); err != nil {
		log.Warn().Err(err).Msg("Failed to persist plating factor")
	}
	s.persist(ctx)
}

// Create adds a new product at the head of the list.
func (s *CatalogService) Create(ctx context.Context, fields store.CreateFields) *models.Product {
	p := s.products.Create(fields, s.PricingContext())
	s.persist(ctx)
	return p
}

// UpdateField applies a single-field edit.
func (s *CatalogService) UpdateField(ctx context.Context, id, field, raw string) (*models.Product, error) {
	p, err := s.products.UpdateField(id, field, raw, s.PricingContext())
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return p, nil
}

// Delete removes one product by id; reports whether it existed.
func (s *CatalogService) Delete(ctx context.Context, id string) bool {
	ok := s.products.Delete(id)
	if ok {
		s.persist(ctx)
	}
	return ok
}

// DeleteMany removes the given ids and returns the number removed.
func (s *CatalogService) DeleteMany(ctx context.Context, ids []string) int {
	n := s.products.DeleteMany(ids)
	if n > 0 {
		s.persist(ctx)
	}
	return n
}

// List returns the filtered product view.
func (s *CatalogService) List(term string) []*models.Product {
	return s.products.List(term)
}

// Snapshot returns a deep copy of the full list.
func (s *CatalogService) Snapshot() []*models.Product {
	return s.products.Snapshot()
}

// ReplaceAll swaps the whole list (remote pull), recomputing against the
// current context.
func (s *CatalogService) ReplaceAll(ctx context.Context, products []*models.Product) {
	s.products.ReplaceAll(products, s.PricingContext())
	s.persist(ctx)
}

func (s *CatalogService) persist(ctx context.Context) {
	if err := s.states.SaveProducts(ctx, s.products.Snapshot()); err != nil {
		log.Warn().Err(err).Msg("Failed to persist product list")
	}
}
