package store

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/pricing"
)

var (
	// ErrProductNotFound is returned when an update targets an unknown id.
	// The original grid silently ignored such updates; callers that want
	// that behavior can discard this error, but the miss stays observable.
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")

	// ErrUnknownField is returned for a field name the product does not have.
	ErrUnknownField = errors.New("UNKNOWN_FIELD")
)

// CreateFields holds the optional initial values for a new product.
type CreateFields struct {
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	PlatingProvider string  `json:"platingProvider"`
	RawCost         float64 `json:"rawCost"`
	Weight          float64 `json:"weight"`
	Thickness       float64 `json:"thickness"`
}

// ProductStore is the in-memory ordered product list and the single source
// of truth for the catalog. New rows are inserted at the head, the whole
// list is replaced on a remote pull, and reads return copies so callers
// can never mutate the store behind its back.
//
// All methods are safe for concurrent use.
type ProductStore struct {
	mu       sync.RWMutex
	products []*models.Product
}

// New returns an empty ProductStore.
func New() *ProductStore {
	return &ProductStore{}
}

// Create builds a product with a fresh unique id and the standard defaults
// (markup 300%, automatic plating), inserts it at the head of the list and
// recomputes its derived fields against ctx.
func (s *ProductStore) Create(fields CreateFields, ctx pricing.Context) *models.Product {
	p := &models.Product{
		ID:              uuid.NewString(),
		SKU:             fields.SKU,
		Name:            fields.Name,
		Provider:        fields.Provider,
		PlatingProvider: fields.PlatingProvider,
		RawCost:         fields.RawCost,
		Weight:          fields.Weight,
		Thickness:       fields.Thickness,
		MarkupPercent:   pricing.DefaultMarkupPercent,
	}
	pricing.Recompute(p, ctx)

	s.mu.Lock()
	s.products = append([]*models.Product{p}, s.products...)
	s.mu.Unlock()

	return p.Clone()
}

// UpdateField applies a single-field edit using the grid's coercion rules:
// numeric fields parse as float and default to 0 on failure; platingCost
// has the manual-override semantics (empty input clears the override);
// text fields store the raw value. The product is recomputed against ctx
// before returning.
func (s *ProductStore) UpdateField(id, field, raw string, ctx pricing.Context) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(id)
	if p == nil {
		return nil, ErrProductNotFound
	}

	switch field {
	case "platingCost":
		if strings.TrimSpace(raw) == "" {
			// Cleared input reverts to automatic derivation.
			p.ManualPlating = false
		} else {
			p.ManualPlating = true
			p.PlatingCost = parseAmount(raw)
		}
	case "rawCost":
		p.RawCost = parseAmount(raw)
	case "weight":
		p.Weight = parseAmount(raw)
	case "thickness":
		p.Thickness = parseAmount(raw)
	case "markupPercent":
		p.MarkupPercent = parseAmount(raw)
	case "sku":
		p.SKU = raw
	case "name":
		p.Name = raw
	case "provider":
		p.Provider = raw
	case "platingProvider":
		p.PlatingProvider = raw
	default:
		return nil, ErrUnknownField
	}

	pricing.Recompute(p, ctx)
	return p.Clone(), nil
}

// Delete removes the product with the given id and reports whether it
// existed. Deleting an unknown id is a no-op.
func (s *ProductStore) Delete(id string) bool {
	return s.DeleteMany([]string{id}) == 1
}

// DeleteMany removes every product whose id is in ids and returns the
// number removed.
func (s *ProductStore) DeleteMany(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.products[:0]
	removed := 0
	for _, p := range s.products {
		if drop[p.ID] {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.products = kept
	return removed
}

// List returns copies of the products whose sku, name or provider contains
// term case-insensitively. An empty term returns the full list. Filtering
// never mutates the store.
func (s *ProductStore) List(term string) []*models.Product {
	term = strings.ToLower(strings.TrimSpace(term))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// Snapshot returns a deep copy of the full list in order, for
// serialization (local persistence, remote push).
func (s *ProductStore) Snapshot() []*models.Product {
	return s.List("")
}

// ReplaceAll swaps the entire list for products (remote pull) and
// recomputes every entry against ctx. The caller hands over ownership of
// the slice.
func (s *ProductStore) ReplaceAll(products []*models.Product, ctx pricing.Context) {
	pricing.RecomputeAll(products, ctx)

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

// RecomputeAll recomputes every product against ctx. Called on every
// pricing context change.
func (s *ProductStore) RecomputeAll(ctx pricing.Context) {
	s.mu.Lock()
	pricing.RecomputeAll(s.products, ctx)
	s.mu.Unlock()
}

// Len returns the number of products.
func (s *ProductStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// find returns the product with the given id, or nil. Caller must hold the lock.
func (s *ProductStore) find(id string) *models.Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func matches(p *models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.SKU), term) ||
		strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Provider), term)
}

// parseAmount parses a grid cell value as a float, coercing malformed or
// non-finite input to 0 rather than failing.
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
