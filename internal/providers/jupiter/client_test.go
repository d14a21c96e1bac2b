package jupiter

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

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New(httpx.New(5*time.Second, 0), "", "")
	c.baseURL = server.URL
	return c, server
}

func TestQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("dexes"); got != "Whirlpool" {
			t.Errorf("dexes = %q", got)
		}
		if got := r.URL.Query().Get("slippageBps"); got != "50" {
			t.Errorf("slippageBps = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"outAmount":      "987000",
			"priceImpactPct": "0.0012",
			"routePlan": []map[string]any{
				{"swapInfo": map[string]string{"label": "Whirlpool"}},
				{"swapInfo": map[string]string{"label": "Whirlpool"}},
				{"swapInfo": map[string]string{"label": "Meteora DLMM"}},
			},
		})
	})
	c, _ := newTestClient(t, mux)

	quote, err := c.Quote(context.Background(), builders.SwapQuoteRequest{
		InputMint: "in", OutputMint: "out", Amount: "1000000", SlippageBps: 50,
		Dexes: []string{"Whirlpool"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if quote.OutAmount != "987000" {
		t.Fatalf("outAmount = %s", quote.OutAmount)
	}
	if quote.PriceImpactPct != 0.0012 {
		t.Fatalf("priceImpactPct = %f", quote.PriceImpactPct)
	}
	// Adjacent duplicate hops collapse.
	if quote.Route != "Whirlpool > Meteora DLMM" {
		t.Fatalf("route = %q", quote.Route)
	}
	if len(quote.Raw) == 0 {
		t.Fatal("raw quote must be preserved for the swap build")
	}
}

func TestQuoteRestrictedMissIsRouteError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Could not find any route"}`, http.StatusBadRequest)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Quote(context.Background(), builders.SwapQuoteRequest{
		InputMint: "in", OutputMint: "out", Amount: "1", Dexes: []string{"Whirlpool"},
	})
	if !clierr.HasCode(err, clierr.CodeRoute) {
		t.Fatalf("want route error, got %v", err)
	}

	// Without a restriction, the same miss stays a plain client error.
	_, err = c.Quote(context.Background(), builders.SwapQuoteRequest{
		InputMint: "in", OutputMint: "out", Amount: "1",
	})
	if clierr.HasCode(err, clierr.CodeRoute) {
		t.Fatalf("unrestricted miss should not map to a route error: %v", err)
	}
}

func TestQuoteEmptyOutAmountIsRouteError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"outAmount": ""})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Quote(context.Background(), builders.SwapQuoteRequest{InputMint: "in", OutputMint: "out", Amount: "1"})
	if !clierr.HasCode(err, clierr.CodeRoute) {
		t.Fatalf("want route error, got %v", err)
	}
}

func TestBuildSwapTransaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuoteResponse           json.RawMessage `json:"quoteResponse"`
			UserPublicKey           string          `json:"userPublicKey"`
			WrapAndUnwrapSol        bool            `json:"wrapAndUnwrapSol"`
			DynamicComputeUnitLimit bool            `json:"dynamicComputeUnitLimit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.UserPublicKey != "payer-address" {
			t.Errorf("userPublicKey = %q", req.UserPublicKey)
		}
		if string(req.QuoteResponse) != `{"outAmount":"1"}` {
			t.Errorf("quoteResponse = %s", req.QuoteResponse)
		}
		if !req.WrapAndUnwrapSol || !req.DynamicComputeUnitLimit {
			t.Error("default swap options not set")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"swapTransaction": "c2lnbmVk"})
	})
	c, _ := newTestClient(t, mux)

	tx, err := c.BuildSwapTransaction(context.Background(), builders.SwapQuote{
		Raw: json.RawMessage(`{"outAmount":"1"}`),
	}, "payer-address", builders.ComputeBudget{})
	if err != nil {
		t.Fatal(err)
	}
	if tx != "c2lnbmVk" {
		t.Fatalf("tx = %q", tx)
	}
}

func TestBuildSwapTransactionEmptyResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.BuildSwapTransaction(context.Background(), builders.SwapQuote{Raw: json.RawMessage(`{}`)}, "p", builders.ComputeBudget{})
	if !clierr.HasCode(err, clierr.CodeUnavailable) {
		t.Fatalf("want unavailable error, got %v", err)
	}
}

func TestNewBaseSelection(t *testing.T) {
	if c := New(nil, "", ""); c.baseURL != defaultLiteBase {
		t.Fatalf("baseURL = %s", c.baseURL)
	}
	if c := New(nil, "", "key"); c.baseURL != defaultProBase {
		t.Fatalf("baseURL = %s", c.baseURL)
	}
	if c := New(nil, "https://example.com/v1/", "key"); c.baseURL != "https://example.com/v1" {
		t.Fatalf("baseURL = %s", c.baseURL)
	}
}
