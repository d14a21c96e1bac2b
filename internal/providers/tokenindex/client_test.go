package tokenindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
)

const wifMint = "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(httpx.New(5*time.Second, 0), server.URL)
}

func TestSearchExactSymbolMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "wif" {
			t.Errorf("query = %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": wifMint, "symbol": "WIFOUT", "decimals": 9},
			{"id": wifMint, "symbol": "WIF", "decimals": 6},
		})
	})
	c := newTestClient(t, mux)

	token, err := c.Search(context.Background(), "wif")
	if err != nil {
		t.Fatal(err)
	}
	if token.Symbol != "WIF" {
		t.Fatalf("symbol = %q", token.Symbol)
	}
	if token.Address != wifMint {
		t.Fatalf("address = %q", token.Address)
	}
	if token.Decimals != 6 {
		t.Fatalf("decimals = %d", token.Decimals)
	}
}

func TestSearchSkipsRowsWithoutValidMint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "not-an-address", "symbol": "WIF", "decimals": 6},
			{"id": wifMint, "symbol": " WIF ", "decimals": 6},
		})
	})
	c := newTestClient(t, mux)

	token, err := c.Search(context.Background(), "WIF")
	if err != nil {
		t.Fatal(err)
	}
	if token.Address != wifMint {
		t.Fatalf("address = %q", token.Address)
	}
}

func TestSearchMissIsResolveError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": wifMint, "symbol": "WIFFY", "decimals": 6},
		})
	})
	c := newTestClient(t, mux)

	_, err := c.Search(context.Background(), "WIF")
	if !clierr.HasCode(err, clierr.CodeResolve) {
		t.Fatalf("want resolve error, got %v", err)
	}
}

func TestNewDefaultBase(t *testing.T) {
	if c := New(nil, " "); c.baseURL != defaultBase {
		t.Fatalf("baseURL = %s", c.baseURL)
	}
	if c := New(nil, "https://example.com/tokens/"); c.baseURL != "https://example.com/tokens" {
		t.Fatalf("baseURL = %s", c.baseURL)
	}
}
