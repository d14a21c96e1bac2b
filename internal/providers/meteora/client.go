// Package meteora composes DLMM liquidity transactions through the Meteora
// DLMM API.
package meteora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ggonzalez94/solagent/internal/builders"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
)

const defaultBase = "https://dlmm-api.meteora.ag"

type Client struct {
	http    *httpx.Client
	baseURL string
}

func New(httpClient *httpx.Client, baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBase
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

type txResponse struct {
	Transactions []string `json:"transactions"`
}

func (c *Client) buildTxs(ctx context.Context, action string, payload any) ([]string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "encode "+action+" request", err)
	}
	endpoint := fmt.Sprintf("%s/txs/%s", c.baseURL, action)
	var resp txResponse
	if err := c.http.PostJSON(ctx, endpoint, body, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Transactions) == 0 {
		return nil, clierr.Newf(clierr.CodeUnavailable, "dlmm service returned no %s transactions", action)
	}
	return resp.Transactions, nil
}

// BuildAdd composes a balanced add around the active bin, rangeInterval
// bins to each side.
func (c *Client) BuildAdd(ctx context.Context, req builders.MeteoraAddRequest) ([]string, error) {
	return c.buildTxs(ctx, "add-liquidity", map[string]any{
		"owner":         req.Owner,
		"pair":          req.Pool,
		"amountX":       req.AmountX,
		"amountY":       req.AmountY,
		"rangeInterval": req.RangeInterval,
	})
}

func (c *Client) BuildRemove(ctx context.Context, owner, pool, position string, bpsToRemove int) ([]string, error) {
	return c.buildTxs(ctx, "remove-liquidity", map[string]any{
		"owner":       owner,
		"pair":        pool,
		"position":    position,
		"bpsToRemove": bpsToRemove,
	})
}

type position struct {
	Address     string `json:"address"`
	PairAddress string `json:"pair_address"`
	TotalFeeUSD string `json:"total_fee_usd_claimed"`
	FeeAPY      string `json:"fee_apy_24h"`
}

func (c *Client) Positions(ctx context.Context, owner string) (any, error) {
	endpoint := fmt.Sprintf("%s/position/owner/%s", c.baseURL, url.PathEscape(owner))
	var out []position
	if err := c.http.GetJSON(ctx, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PoolMints(ctx context.Context, pool string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/pair/%s", c.baseURL, url.PathEscape(pool))
	var resp struct {
		MintX string `json:"mint_x"`
		MintY string `json:"mint_y"`
	}
	if err := c.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return "", "", err
	}
	if resp.MintX == "" || resp.MintY == "" {
		return "", "", clierr.Newf(clierr.CodeResolve, "pair %s has no token mints", pool)
	}
	return resp.MintX, resp.MintY, nil
}

var _ builders.MeteoraDesk = (*Client)(nil)
