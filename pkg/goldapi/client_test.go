package goldapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuoteStringBid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/last/XAU-BRL", r.URL.Path)
		w.Write([]byte(`{"XAUBRL":{"bid":"403.25","create_date":"2024-05-01 10:00:00"}}`))
	}))
	defer srv.Close()

	q, err := NewClient(Config{BaseURL: srv.URL}).GetQuote(context.Background(), "XAU-BRL")
	require.NoError(t, err)
	assert.Equal(t, 403.25, q.Bid)
	assert.Equal(t, "2024-05-01 10:00:00", q.CreateDate)
}

func TestGetQuoteNumericBid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"XAUBRL":{"bid":403.25,"create_date":"x"}}`))
	}))
	defer srv.Close()

	q, err := NewClient(Config{BaseURL: srv.URL}).GetQuote(context.Background(), "XAU-BRL")
	require.NoError(t, err)
	assert.Equal(t, 403.25, q.Bid)
}

func TestGetQuoteErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(Config{BaseURL: srv.URL}).GetQuote(context.Background(), "XAU-BRL")
		assert.Error(t, err)
	})

	t.Run("pair missing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"USDBRL":{"bid":"5.00"}}`))
		}))
		defer srv.Close()

		_, err := NewClient(Config{BaseURL: srv.URL}).GetQuote(context.Background(), "XAU-BRL")
		assert.Error(t, err)
	})

	t.Run("unparseable bid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"XAUBRL":{"bid":"abc"}}`))
		}))
		defer srv.Close()

		_, err := NewClient(Config{BaseURL: srv.URL}).GetQuote(context.Background(), "XAU-BRL")
		assert.Error(t, err)
	})
}
