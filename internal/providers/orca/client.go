// Package orca composes Whirlpool position transactions through the Orca
// transaction service.
package orca

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

const defaultBase = "https://api.orca.so/v2/solana"

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
	endpoint := fmt.Sprintf("%s/whirlpools/txs/%s", c.baseURL, action)
	var resp txResponse
	if err := c.http.PostJSON(ctx, endpoint, body, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Transactions) == 0 {
		return nil, clierr.Newf(clierr.CodeUnavailable, "whirlpool service returned no %s transactions", action)
	}
	return resp.Transactions, nil
}

func (c *Client) BuildOpenPosition(ctx context.Context, req builders.OrcaOpenRequest) ([]string, error) {
	return c.buildTxs(ctx, "open-position", map[string]any{
		"owner":       req.Owner,
		"whirlpool":   req.Whirlpool,
		"amountA":     req.AmountA,
		"amountB":     req.AmountB,
		"tickLower":   req.TickLower,
		"tickUpper":   req.TickUpper,
		"slippageBps": req.SlippageBps,
	})
}

func (c *Client) BuildClosePosition(ctx context.Context, owner, positionMint string, slippageBps int) ([]string, error) {
	return c.buildTxs(ctx, "close-position", map[string]any{
		"owner":        owner,
		"positionMint": positionMint,
		"slippageBps":  slippageBps,
	})
}

func (c *Client) BuildHarvest(ctx context.Context, owner, positionMint string) ([]string, error) {
	return c.buildTxs(ctx, "harvest", map[string]any{
		"owner":        owner,
		"positionMint": positionMint,
	})
}

func (c *Client) BuildIncrease(ctx context.Context, req builders.OrcaIncreaseRequest) ([]string, error) {
	return c.buildTxs(ctx, "increase-liquidity", map[string]any{
		"owner":        req.Owner,
		"positionMint": req.PositionMint,
		"amountA":      req.AmountA,
		"amountB":      req.AmountB,
		"slippageBps":  req.SlippageBps,
	})
}

func (c *Client) BuildDecrease(ctx context.Context, owner, positionMint string, liquidityPct, slippageBps int) ([]string, error) {
	return c.buildTxs(ctx, "decrease-liquidity", map[string]any{
		"owner":        owner,
		"positionMint": positionMint,
		"liquidityPct": liquidityPct,
		"slippageBps":  slippageBps,
	})
}

type position struct {
	PositionMint string `json:"positionMint"`
	Whirlpool    string `json:"whirlpool"`
	Liquidity    string `json:"liquidity"`
	TickLower    int    `json:"tickLowerIndex"`
	TickUpper    int    `json:"tickUpperIndex"`
	InRange      bool   `json:"inRange"`
}

func (c *Client) Positions(ctx context.Context, owner string) (any, error) {
	endpoint := fmt.Sprintf("%s/positions?owner=%s", c.baseURL, url.QueryEscape(owner))
	var resp struct {
		Data []position `json:"data"`
	}
	if err := c.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// PoolMints answers the constituent mints for a whirlpool address or, when
// given a position mint, the pool backing that position.
func (c *Client) PoolMints(ctx context.Context, poolOrPosition string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/whirlpools/%s", c.baseURL, url.PathEscape(poolOrPosition))
	var resp struct {
		Data struct {
			TokenMintA string `json:"tokenMintA"`
			TokenMintB string `json:"tokenMintB"`
		} `json:"data"`
	}
	if err := c.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return "", "", err
	}
	if resp.Data.TokenMintA == "" || resp.Data.TokenMintB == "" {
		return "", "", clierr.Newf(clierr.CodeResolve, "whirlpool %s has no token mints", poolOrPosition)
	}
	return resp.Data.TokenMintA, resp.Data.TokenMintB, nil
}

var _ builders.OrcaDesk = (*Client)(nil)
