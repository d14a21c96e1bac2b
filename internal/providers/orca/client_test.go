package orca

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

func TestBuildOpenPosition(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/whirlpools/txs/open-position", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req["whirlpool"] != "pool" || req["amountA"] != "1000000000" {
			t.Errorf("request = %v", req)
		}
		if req["tickLower"] != float64(-443636) || req["tickUpper"] != float64(443636) {
			t.Errorf("ticks = %v %v", req["tickLower"], req["tickUpper"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"transactions": []string{"dHgx"}})
	})
	c := newTestClient(t, mux)

	txs, err := c.BuildOpenPosition(context.Background(), builders.OrcaOpenRequest{
		Owner: "owner", Whirlpool: "pool",
		AmountA: "1000000000", AmountB: "0",
		TickLower: -443636, TickUpper: 443636, SlippageBps: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("txs = %v", txs)
	}
}

func TestBuildDecreaseEmptyResponseIsUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/whirlpools/txs/decrease-liquidity", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"transactions": []string{}})
	})
	c := newTestClient(t, mux)

	_, err := c.BuildDecrease(context.Background(), "owner", "position", 100, 50)
	if !clierr.HasCode(err, clierr.CodeUnavailable) {
		t.Fatalf("want unavailable error, got %v", err)
	}
}

func TestPoolMints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/whirlpools/pool-address", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"tokenMintA": "mintA", "tokenMintB": "mintB"},
		})
	})
	c := newTestClient(t, mux)

	a, b, err := c.PoolMints(context.Background(), "pool-address")
	if err != nil {
		t.Fatal(err)
	}
	if a != "mintA" || b != "mintB" {
		t.Fatalf("mints = %q %q", a, b)
	}
}

func TestPoolMintsMissingIsResolveError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/whirlpools/bad-pool", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	})
	c := newTestClient(t, mux)

	_, _, err := c.PoolMints(context.Background(), "bad-pool")
	if !clierr.HasCode(err, clierr.CodeResolve) {
		t.Fatalf("want resolve error, got %v", err)
	}
}

func TestPositions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/positions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("owner"); got != "owner" {
			t.Errorf("owner = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"positionMint": "pm", "whirlpool": "wp", "liquidity": "123", "inRange": true},
			},
		})
	})
	c := newTestClient(t, mux)

	out, err := c.Positions(context.Background(), "owner")
	if err != nil {
		t.Fatal(err)
	}
	rows, ok := out.([]position)
	if !ok || len(rows) != 1 {
		t.Fatalf("out = %#v", out)
	}
	if rows[0].PositionMint != "pm" || !rows[0].InRange {
		t.Fatalf("position = %+v", rows[0])
	}
}
