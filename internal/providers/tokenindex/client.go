// Package tokenindex resolves token symbols through the public Jupiter
// token list.
package tokenindex

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
	"github.com/ggonzalez94/solagent/internal/id"
)

const defaultBase = "https://lite-api.jup.ag/tokens/v2"

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

type tokenRow struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Search finds the verified token for a symbol. Ties go to the first
// verified entry returned by the index.
func (c *Client) Search(ctx context.Context, symbol string) (id.Token, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(symbol))
	var rows []tokenRow
	if err := c.http.GetJSON(ctx, endpoint, nil, &rows); err != nil {
		return id.Token{}, err
	}
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.Symbol), symbol) && id.IsAddress(row.ID) {
			return id.Token{Symbol: strings.ToUpper(row.Symbol), Address: row.ID, Decimals: row.Decimals}, nil
		}
	}
	return id.Token{}, clierr.Newf(clierr.CodeResolve, "symbol not in token index: %s", symbol)
}
