package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/store"
	"github.com/precifica/precifica_api/internal/utils"
	"github.com/precifica/precifica_api/pkg/githubfs"
)

func newTestCatalog() (*CatalogService, *fakeStateStore) {
	states := &fakeStateStore{}
	return NewCatalogService(store.New(), states, 0.02), states
}

func testDescriptor() models.RemoteDescriptor {
	return models.RemoteDescriptor{Owner: "acme", Repo: "pricing", Path: "precifica_db.json", Token: "tok"}
}

// fileStoreStub emulates the hosted file API for one file.
type fileStoreStub struct {
	content []byte
	sha     string
	lastPut struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	getStatus int // non-zero forces GET failures
	putStatus int // non-zero forces PUT failures
}

func (s *fileStoreStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if s.getStatus != 0 {
				w.WriteHeader(s.getStatus)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString(s.content),
				"sha":     s.sha,
			})
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &s.lastPut)
			if s.putStatus != 0 {
				w.WriteHeader(s.putStatus)
				return
			}
			raw, _ := base64.StdEncoding.DecodeString(s.lastPut.Content)
			s.content = raw
			s.sha = "sha-" + s.lastPut.SHA + "-next"
			json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]string{"sha": s.sha},
			})
		}
	})
}

func newSyncFixture(t *testing.T, stub *fileStoreStub) (*SyncService, *CatalogService) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	catalog, states := newTestCatalog()
	client := githubfs.NewClient(githubfs.Config{BaseURL: srv.URL})
	return NewSyncService(client, catalog, states, testDescriptor()), catalog
}

func TestPullReplacesStoreAndRecomputes(t *testing.T) {
	stub := &fileStoreStub{sha: "abc123"}
	stub.content, _ = json.Marshal([]map[string]any{
		{"id": 1712345678, "sku": "RING-01", "name": "Ring", "rawCost": 10, "weight": 2, "thickness": 5, "markupPercent": 300},
		{"id": "x2", "sku": "", "name": ""}, // no sku and no name: discarded
	})

	sync, catalog := newSyncFixture(t, stub)
	catalog.SetGoldPrice(context.Background(), &models.GoldQuote{PricePerGram: 12.8602})

	result, err := sync.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Products)
	assert.Empty(t, result.Warning)
	assert.Equal(t, "abc123", sync.Descriptor().LastSHA)

	list := catalog.List("")
	require.Len(t, list, 1)
	assert.Equal(t, "RING-01", list[0].SKU)
	assert.Equal(t, "1712345678", list[0].ID, "numeric ids from old files survive as strings")
	assert.InDelta(t, 2*5*12.8602*0.02, list[0].PlatingCost, 1e-9)
	assert.InDelta(t, 10+list[0].PlatingCost, list[0].TotalCost, 1e-9)
}

func TestPullWrappedShapes(t *testing.T) {
	for _, wrap := range []string{"products", "data"} {
		t.Run(wrap, func(t *testing.T) {
			stub := &fileStoreStub{sha: "s1"}
			stub.content, _ = json.Marshal(map[string]any{
				wrap: []map[string]any{{"sku": "A", "name": "Item"}},
			})

			sync, catalog := newSyncFixture(t, stub)
			result, err := sync.Pull(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, result.Products)
			assert.Len(t, catalog.List(""), 1)
		})
	}
}

func TestPullUnrecognizedShapeYieldsWarningAndEmptyList(t *testing.T) {
	stub := &fileStoreStub{sha: "s1", content: []byte(`{"totally":"different"}`)}

	sync, catalog := newSyncFixture(t, stub)
	catalog.Create(context.Background(), store.CreateFields{SKU: "LOCAL"})

	result, err := sync.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Products)
	assert.NotEmpty(t, result.Warning)
	assert.Len(t, catalog.List(""), 0, "unrecognized shape degrades to an empty list")
}

func TestPullCorruptBodyLeavesStoreUntouched(t *testing.T) {
	stub := &fileStoreStub{sha: "s1", content: []byte(`[{"sku":"A","name":"Ring"},{"sku":`)}

	sync, catalog := newSyncFixture(t, stub)
	catalog.Create(context.Background(), store.CreateFields{SKU: "LOCAL"})

	_, err := sync.Pull(context.Background())
	require.Error(t, err)
	assert.Len(t, catalog.List(""), 1, "truncated remote file must not wipe the grid")
	assert.Empty(t, sync.Descriptor().LastSHA)
}

func TestPullRemoteErrorLeavesStoreUntouched(t *testing.T) {
	stub := &fileStoreStub{getStatus: http.StatusNotFound}

	sync, catalog := newSyncFixture(t, stub)
	catalog.Create(context.Background(), store.CreateFields{SKU: "LOCAL"})

	_, err := sync.Pull(context.Background())
	var remoteErr *githubfs.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	assert.Len(t, catalog.List(""), 1, "store unchanged on failed pull")
	assert.Empty(t, sync.Descriptor().LastSHA)
}

func TestPullPushRoundTrip(t *testing.T) {
	stub := &fileStoreStub{sha: "v1"}
	stub.content, _ = json.Marshal([]map[string]any{
		{"id": "p1", "sku": "RING-01", "name": "Ring", "rawCost": 10, "weight": 2, "thickness": 5, "markupPercent": 300},
		{"id": "p2", "sku": "CHN-02", "name": "Chain", "manualPlating": true, "platingCost": 7.5, "markupPercent": 150},
	})

	sync, catalog := newSyncFixture(t, stub)
	catalog.SetGoldPrice(context.Background(), &models.GoldQuote{PricePerGram: 12.8602})

	_, err := sync.Pull(context.Background())
	require.NoError(t, err)
	before := catalog.Snapshot()

	sha, err := sync.Push(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stub.sha, sha)
	assert.Equal(t, "v1", stub.lastPut.SHA, "push carries the token from the pull")
	assert.NotEmpty(t, stub.lastPut.Message)

	// The uploaded document decodes back to the same list.
	products, warning, err := decodeProductDocument(stub.content)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, products, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, products[i].ID)
		assert.Equal(t, before[i].SKU, products[i].SKU)
		assert.InDelta(t, before[i].PlatingCost, products[i].PlatingCost, 1e-9)
		assert.Equal(t, before[i].ManualPlating, products[i].ManualPlating)
	}
}

func TestPushConflict(t *testing.T) {
	stub := &fileStoreStub{putStatus: http.StatusConflict}

	sync, catalog := newSyncFixture(t, stub)
	catalog.Create(context.Background(), store.CreateFields{SKU: "A", Name: "Item"})

	_, err := sync.Push(context.Background())
	assert.ErrorIs(t, err, githubfs.ErrConflict)
}

func TestSyncNotConfigured(t *testing.T) {
	catalog, states := newTestCatalog()
	sync := NewSyncService(githubfs.NewClient(githubfs.Config{BaseURL: "http://127.0.0.1:0"}), catalog, states, models.RemoteDescriptor{})

	_, err := sync.Pull(context.Background())
	assert.ErrorIs(t, err, utils.ErrRemoteNotConfigured)

	_, err = sync.Push(context.Background())
	assert.ErrorIs(t, err, utils.ErrRemoteNotConfigured)
}

func TestUpdateDescriptorInvalidatesToken(t *testing.T) {
	catalog, states := newTestCatalog()
	desc := testDescriptor()
	desc.LastSHA = "old-sha"
	sync := NewSyncService(githubfs.NewClient(githubfs.Config{}), catalog, states, desc)

	// Same coordinates keep the token.
	require.NoError(t, sync.UpdateDescriptor(context.Background(), desc.Owner, desc.Repo, desc.Path, "new-token"))
	assert.Equal(t, "old-sha", sync.Descriptor().LastSHA)

	// New file coordinates drop it.
	require.NoError(t, sync.UpdateDescriptor(context.Background(), desc.Owner, "other-repo", desc.Path, "new-token"))
	assert.Empty(t, sync.Descriptor().LastSHA)
	assert.True(t, states.hasRemote, "descriptor changes are persisted")
}

func TestDecodeProductDocument(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		products, warning, err := decodeProductDocument([]byte(`[{"sku":"A","name":"Item","rawCost":"12.5"}]`))
		require.NoError(t, err)
		assert.Empty(t, warning)
		require.Len(t, products, 1)
		assert.Equal(t, 12.5, products[0].RawCost, "numeric strings coerce")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, _, err := decodeProductDocument([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("truncated array", func(t *testing.T) {
		_, _, err := decodeProductDocument([]byte(`[{"sku":"A","name":"Ring"},{"sku":`))
		assert.Error(t, err)
	})

	t.Run("array of scalars", func(t *testing.T) {
		products, warning, err := decodeProductDocument([]byte(`[1,2,3]`))
		require.NoError(t, err)
		assert.NotEmpty(t, warning)
		assert.Empty(t, products)
	})

	t.Run("scalar document", func(t *testing.T) {
		products, warning, err := decodeProductDocument([]byte(`42`))
		require.NoError(t, err)
		assert.NotEmpty(t, warning)
		assert.Empty(t, products)
	})

	t.Run("wrapped non-array", func(t *testing.T) {
		products, warning, err := decodeProductDocument([]byte(`{"products":"oops"}`))
		require.NoError(t, err)
		assert.NotEmpty(t, warning)
		assert.Empty(t, products)
	})

	t.Run("entries without sku and name are discarded", func(t *testing.T) {
		products, _, err := decodeProductDocument([]byte(`[{"id":1},{"sku":"A"},{"name":"B"}]`))
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})
}
