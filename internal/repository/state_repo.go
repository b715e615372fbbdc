package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/precifica/precifica_api/internal/models"
)

// State keys. The store mirrors the same shape the original app kept in
// browser storage: the full product list as one JSON array plus a few
// individually keyed scalar settings.
const (
	keyProducts      = "products"
	keyPlatingFactor = "plating_factor"
	keyRemote        = "remote"
)

// StateRepository persists application state as keyed JSON documents in the
// app_state table. Writes are wholesale per key; the in-memory store stays
// the source of truth.
type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository constructs a StateRepository.
func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

// SaveProducts writes the full product list.
func (r *StateRepository) SaveProducts(ctx context.Context, products []*models.Product) error {
	return r.set(ctx, keyProducts, products)
}

// LoadProducts returns the persisted product list, or ok=false when none
// has been saved yet.
func (r *StateRepository) LoadProducts(ctx context.Context) ([]*models.Product, bool, error) {
	var products []*models.Product
	ok, err := r.get(ctx, keyProducts, &products)
	return products, ok, err
}

// SavePlatingFactor writes the plating factor setting.
func (r *StateRepository) SavePlatingFactor(ctx context.Context, factor float64) error {
	return r.set(ctx, keyPlatingFactor, factor)
}

// LoadPlatingFactor returns the persisted plating factor, or ok=false.
func (r *StateRepository) LoadPlatingFactor(ctx context.Context) (float64, bool, error) {
	var factor float64
	ok, err := r.get(ctx, keyPlatingFactor, &factor)
	return factor, ok, err
}

// SaveRemote writes the remote file store descriptor, including the last
// known version token.
func (r *StateRepository) SaveRemote(ctx context.Context, desc models.RemoteDescriptor) error {
	return r.set(ctx, keyRemote, desc)
}

// LoadRemote returns the persisted remote descriptor, or ok=false.
func (r *StateRepository) LoadRemote(ctx context.Context) (models.RemoteDescriptor, bool, error) {
	var desc models.RemoteDescriptor
	ok, err := r.get(ctx, keyRemote, &desc)
	return desc, ok, err
}

// set upserts a JSON document under key.
func (r *StateRepository) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal state %q: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// get reads the JSON document under key into dest. Returns false when the
// key does not exist.
func (r *StateRepository) get(ctx context.Context, key string, dest any) (bool, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT value FROM app_state WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load state %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal state %q: %w", key, err)
	}
	return true, nil
}
