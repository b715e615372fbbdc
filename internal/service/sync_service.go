package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/utils"
	"github.com/precifica/precifica_api/pkg/githubfs"
)

// SyncService reads and writes the entire product list as one JSON file in
// a remote file store, tracking the store's version token between calls so
// concurrent edits from another client surface as a conflict instead of
// being clobbered. Neither direction retries automatically; on conflict
// the caller pulls again and re-pushes.
type SyncService struct {
	mu      sync.Mutex
	client  *githubfs.Client
	catalog *CatalogService
	states  StateStore
	desc    models.RemoteDescriptor
}

// NewSyncService constructs a SyncService. defaults seed the descriptor on
// first boot; persisted values loaded by LoadState win afterwards.
func NewSyncService(client *githubfs.Client, catalog *CatalogService, states StateStore, defaults models.RemoteDescriptor) *SyncService {
	return &SyncService{
		client:  client,
		catalog: catalog,
		states:  states,
		desc:    defaults,
	}
}

// LoadState restores the persisted remote descriptor, if any.
func (s *SyncService) LoadState(ctx context.Context) error {
	desc, ok, err := s.states.LoadRemote(ctx)
	if err != nil {
		return err
	}
	if ok {
		s.mu.Lock()
		s.desc = desc
		s.mu.Unlock()
	}
	return nil
}

// Descriptor returns a copy of the current remote descriptor.
func (s *SyncService) Descriptor() models.RemoteDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// UpdateDescriptor replaces the connection settings and persists them.
// Changing the file coordinates invalidates the held version token.
func (s *SyncService) UpdateDescriptor(ctx context.Context, owner, repo, path, token string) error {
	s.mu.Lock()
	if owner != s.desc.Owner || repo != s.desc.Repo || path != s.desc.Path {
		s.desc.LastSHA = ""
	}
	s.desc.Owner = owner
	s.desc.Repo = repo
	s.desc.Path = path
	s.desc.Token = token
	desc := s.desc
	s.mu.Unlock()

	return s.states.SaveRemote(ctx, desc)
}

// PullResult reports the outcome of a successful pull.
type PullResult struct {
	Products int    `json:"products"`
	Warning  string `json:"warning,omitempty"`
}

// Pull fetches the remote file, decodes it and replaces the whole product
// list, recomputing against the current pricing context. The store is left
// untouched on any failure. A recognized-but-unexpected document shape
// degrades to an empty list with a warning rather than an error.
func (s *SyncService) Pull(ctx context.Context) (*PullResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.desc.Configured() {
		return nil, utils.ErrRemoteNotConfigured
	}

	file, err := s.client.GetFile(ctx, s.desc.Owner, s.desc.Repo, s.desc.Path, s.desc.Token)
	if err != nil {
		return nil, err
	}

	products, warning, err := decodeProductDocument(file.Content)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		log.Warn().Str("warning", warning).Msg("Remote file shape not recognized")
	}

	s.catalog.ReplaceAll(ctx, products)
	s.desc.LastSHA = file.SHA
	s.persistDescriptor(ctx)

	log.Info().Int("products", len(products)).Str("sha", file.SHA).Msg("Pulled product list from remote")
	return &PullResult{Products: len(products), Warning: warning}, nil
}

// Push serializes the full product list as pretty-printed JSON and uploads
// it with the last known version token. On success the returned token is
// recorded for the next write. A stale token surfaces as
// githubfs.ErrConflict; the caller must pull and retry.
func (s *SyncService) Push(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.desc.Configured() {
		return "", utils.ErrRemoteNotConfigured
	}

	data, err := json.MarshalIndent(s.catalog.Snapshot(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize products: %w", err)
	}

	message := "Update pricing data - " + time.Now().Format("2006-01-02 15:04:05")
	newSHA, err := s.client.PutFile(ctx, s.desc.Owner, s.desc.Repo, s.desc.Path, s.desc.Token, message, data, s.desc.LastSHA)
	if err != nil {
		return "", err
	}

	s.desc.LastSHA = newSHA
	s.persistDescriptor(ctx)

	log.Info().Str("sha", newSHA).Msg("Pushed product list to remote")
	return newSHA, nil
}

func (s *SyncService) persistDescriptor(ctx context.Context) {
	if err := s.states.SaveRemote(ctx, s.desc); err != nil {
		log.Warn().Err(err).Msg("Failed to persist remote descriptor")
	}
}

// decodeProductDocument parses a remote file body. Three shapes are
// accepted for backward compatibility: a bare array, {"products": [...]}
// and {"data": [...]}. Anything else that is still valid JSON fails closed
// to an empty list plus a warning; a body that is not JSON at all is an
// error. Entries with neither a sku nor a name are discarded.
func decodeProductDocument(raw []byte) ([]*models.Product, string, error) {
	const badShape = "remote file has an unrecognized shape; loaded an empty list"

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return []*models.Product{}, badShape, nil
	}

	var arr json.RawMessage
	switch trimmed[0] {
	case '[':
		arr = trimmed
	case '{':
		var wrapper struct {
			Products json.RawMessage `json:"products"`
			Data     json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, "", fmt.Errorf("failed to parse remote file: %w", err)
		}
		switch {
		case len(wrapper.Products) > 0 && wrapper.Products[0] == '[':
			arr = wrapper.Products
		case len(wrapper.Data) > 0 && wrapper.Data[0] == '[':
			arr = wrapper.Data
		default:
			return []*models.Product{}, badShape, nil
		}
	default:
		if !json.Valid(raw) {
			return nil, "", fmt.Errorf("failed to parse remote file: not valid JSON")
		}
		return []*models.Product{}, badShape, nil
	}

	var wire []wireProduct
	if err := json.Unmarshal(arr, &wire); err != nil {
		// Distinguish corrupt JSON (a truncated upload must never wipe the
		// store) from valid JSON that just isn't a product array.
		if !json.Valid(arr) {
			return nil, "", fmt.Errorf("failed to parse remote file: %w", err)
		}
		return []*models.Product{}, badShape, nil
	}

	products := make([]*models.Product, 0, len(wire))
	for _, w := range wire {
		p := w.toProduct()
		if p.SKU == "" && p.Name == "" {
			continue
		}
		products = append(products, p)
	}
	return products, "", nil
}
