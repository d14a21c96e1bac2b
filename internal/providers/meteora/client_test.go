package meteora

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ggonzalez94/solagent/internal/builders"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(httpx.New(5*time.Second, 0), server.URL)
}

func TestBuildAdd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/txs/add-liquidity", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req["pair"] != "pool" || req["amountX"] != "0" || req["amountY"] != "100000000" {
			t.Errorf("request = %v", req)
		}
		if req["rangeInterval"] != float64(10) {
			t.Errorf("rangeInterval = %v", req["rangeInterval"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"transactions": []string{"dHgx"}})
	})
	c := newTestClient(t, mux)

	txs, err := c.BuildAdd(context.Background(), builders.MeteoraAddRequest{
		Owner: "owner", Pool: "pool",
		AmountX: "0", AmountY: "100000000", RangeInterval: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("txs = %v", txs)
	}
}

func TestBuildRemoveEmptyResponseIsUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/txs/remove-liquidity", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"transactions": []string{}})
	})
	c := newTestClient(t, mux)

	_, err := c.BuildRemove(context.Background(), "owner", "pool", "position", 10000)
	if !clierr.HasCode(err, clierr.CodeUnavailable) {
		t.Fatalf("want unavailable error, got %v", err)
	}
}

func TestPoolMints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pair/pool-address", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"mint_x": "mintX", "mint_y": "mintY"})
	})
	c := newTestClient(t, mux)

	x, y, err := c.PoolMints(context.Background(), "pool-address")
	if err != nil {
		t.Fatal(err)
	}
	if x != "mintX" || y != "mintY" {
		t.Fatalf("mints = %q %q", x, y)
	}
}

func TestPoolMintsMissingIsResolveError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pair/bad-pool", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"mint_x": "mintX"})
	})
	c := newTestClient(t, mux)

	_, _, err := c.PoolMints(context.Background(), "bad-pool")
	if !clierr.HasCode(err, clierr.CodeResolve) {
		t.Fatalf("want resolve error, got %v", err)
	}
}

func TestPositions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/position/owner/owner-address", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"address": "pos", "pair_address": "pool", "fee_apy_24h": "0.12"},
		})
	})
	c := newTestClient(t, mux)

	out, err := c.Positions(context.Background(), "owner-address")
	if err != nil {
		t.Fatal(err)
	}
	rows, ok := out.([]position)
	if !ok || len(rows) != 1 {
		t.Fatalf("out = %#v", out)
	}
	if rows[0].PairAddress != "pool" {
		t.Fatalf("position = %+v", rows[0])
	}
}
