package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/prices/gasoline", r.URL.Path)
		assert.Equal(t, "SP", r.URL.Query().Get("region"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fuel":"gasoline","price":6.19,"region":"SP","updated_at":"2026-10-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret", "SP")
	q, err := c.CurrentPrice(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 6.19, q.Price, 1e-9)
	assert.Equal(t, "gasoline", q.Fuel)
	assert.Equal(t, 2026, q.UpdatedAt.Year())
}

func TestCurrentPriceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusBadGateway, `upstream down`},
		{"malformed body", http.StatusOK, `{"price":`},
		{"zero price", http.StatusOK, `{"price":0}`},
		{"negative price", http.StatusOK, `{"price":-3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, "", "").CurrentPrice(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCurrentPriceContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price":5}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPClient(srv.URL, "", "").CurrentPrice(ctx)
	assert.Error(t, err)
}
