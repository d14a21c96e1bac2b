// Package jupiter routes swaps through the Jupiter aggregator. The same
// client serves unrestricted routing and dex-restricted routing for
// protocol-scoped swaps.
package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ggonzalez94/solagent/internal/builders"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
)

const (
	defaultLiteBase = "https://lite-api.jup.ag/swap/v1"
	defaultProBase  = "https://api.jup.ag/swap/v1"
)

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
}

// New picks the lite endpoint without a key and the pro endpoint with one.
func New(httpClient *httpx.Client, baseURL, apiKey string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultLiteBase
		if apiKey != "" {
			baseURL = defaultProBase
		}
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type quoteResponse struct {
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
	RoutePlan      []struct {
		SwapInfo struct {
			Label string `json:"label"`
		} `json:"swapInfo"`
	} `json:"routePlan"`
}

func (c *Client) Quote(ctx context.Context, req builders.SwapQuoteRequest) (builders.SwapQuote, error) {
	vals := url.Values{}
	vals.Set("inputMint", req.InputMint)
	vals.Set("outputMint", req.OutputMint)
	vals.Set("amount", req.Amount)
	vals.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	if len(req.Dexes) > 0 {
		vals.Set("dexes", strings.Join(req.Dexes, ","))
	}

	endpoint := fmt.Sprintf("%s/quote?%s", c.baseURL, vals.Encode())
	hReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return builders.SwapQuote{}, clierr.Wrap(clierr.CodeInternal, "build quote request", err)
	}
	if c.apiKey != "" {
		hReq.Header.Set("x-api-key", c.apiKey)
	}

	var raw json.RawMessage
	if _, err := c.http.DoJSON(ctx, hReq, &raw); err != nil {
		// The aggregator answers route misses with a client error; within a
		// dex restriction that reads as "no restricted route".
		if len(req.Dexes) > 0 && clierr.HasCode(err, clierr.CodeUnsupported) {
			return builders.SwapQuote{}, clierr.Wrap(clierr.CodeRoute,
				fmt.Sprintf("no route within dexes %v", req.Dexes), err)
		}
		return builders.SwapQuote{}, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return builders.SwapQuote{}, clierr.Wrap(clierr.CodeUnavailable, "decode quote response", err)
	}
	if strings.TrimSpace(resp.OutAmount) == "" {
		return builders.SwapQuote{}, clierr.New(clierr.CodeRoute, "quote returned no route")
	}
	return builders.SwapQuote{
		Raw:            raw,
		OutAmount:      resp.OutAmount,
		PriceImpactPct: parsePriceImpactPct(resp.PriceImpactPct),
		Route:          routeFromPlan(resp.RoutePlan),
	}, nil
}

type swapRequest struct {
	QuoteResponse                 json.RawMessage `json:"quoteResponse"`
	UserPublicKey                 string          `json:"userPublicKey"`
	WrapAndUnwrapSol              bool            `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit       bool            `json:"dynamicComputeUnitLimit"`
	ComputeUnitPriceMicroLamports *int            `json:"computeUnitPriceMicroLamports,omitempty"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildSwapTransaction exchanges an accepted quote for a serialized
// unsigned transaction with the caller as fee payer.
func (c *Client) BuildSwapTransaction(ctx context.Context, quote builders.SwapQuote, payer string, compute builders.ComputeBudget) (string, error) {
	body, err := json.Marshal(swapRequest{
		QuoteResponse:                 quote.Raw,
		UserPublicKey:                 payer,
		WrapAndUnwrapSol:              true,
		DynamicComputeUnitLimit:       compute.UnitLimit == nil,
		ComputeUnitPriceMicroLamports: compute.UnitPrice,
	})
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "encode swap request", err)
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-api-key"] = c.apiKey
	}
	var resp swapResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/swap", body, headers, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.SwapTransaction) == "" {
		return "", clierr.New(clierr.CodeUnavailable, "swap build returned no transaction")
	}
	return resp.SwapTransaction, nil
}

func parsePriceImpactPct(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func routeFromPlan(plan []struct {
	SwapInfo struct {
		Label string `json:"label"`
	} `json:"swapInfo"`
}) string {
	parts := make([]string, 0, len(plan))
	for _, hop := range plan {
		label := strings.TrimSpace(hop.SwapInfo.Label)
		if label == "" {
			continue
		}
		if len(parts) == 0 || parts[len(parts)-1] != label {
			parts = append(parts, label)
		}
	}
	if len(parts) == 0 {
		return "jupiter"
	}
	return strings.Join(parts, " > ")
}
