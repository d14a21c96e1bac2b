// Package kamino composes lending-market transactions through the Kamino
// transaction service.
package kamino

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

const defaultBase = "https://api.kamino.finance"

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

type txRequest struct {
	Owner  string `json:"owner"`
	Mint   string `json:"mint,omitempty"`
	Amount string `json:"amount,omitempty"`

	DepositMint   string `json:"depositMint,omitempty"`
	DepositAmount string `json:"depositAmount,omitempty"`
	BorrowMint    string `json:"borrowMint,omitempty"`
	BorrowAmount  string `json:"borrowAmount,omitempty"`
}

type txResponse struct {
	Transactions []string `json:"transactions"`
}

func (c *Client) buildTxs(ctx context.Context, action string, req txRequest) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "encode "+action+" request", err)
	}
	endpoint := fmt.Sprintf("%s/v2/lending/txs/%s", c.baseURL, action)
	var resp txResponse
	if err := c.http.PostJSON(ctx, endpoint, body, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Transactions) == 0 {
		return nil, clierr.Newf(clierr.CodeUnavailable, "lending service returned no %s transactions", action)
	}
	return resp.Transactions, nil
}

func (c *Client) BuildDeposit(ctx context.Context, owner, mint, amount string) ([]string, error) {
	return c.buildTxs(ctx, "deposit", txRequest{Owner: owner, Mint: mint, Amount: amount})
}

func (c *Client) BuildBorrow(ctx context.Context, owner, mint, amount string) ([]string, error) {
	return c.buildTxs(ctx, "borrow", txRequest{Owner: owner, Mint: mint, Amount: amount})
}

func (c *Client) BuildRepay(ctx context.Context, owner, mint, amount string) ([]string, error) {
	return c.buildTxs(ctx, "repay", txRequest{Owner: owner, Mint: mint, Amount: amount})
}

func (c *Client) BuildWithdraw(ctx context.Context, owner, mint, amount string) ([]string, error) {
	return c.buildTxs(ctx, "withdraw", txRequest{Owner: owner, Mint: mint, Amount: amount})
}

// BuildDepositAndBorrow asks for the combined flow; the service may answer
// with more than one transaction when the obligation needs setup first.
func (c *Client) BuildDepositAndBorrow(ctx context.Context, owner, depositMint, depositAmount, borrowMint, borrowAmount string) ([]string, error) {
	return c.buildTxs(ctx, "deposit-and-borrow", txRequest{
		Owner:         owner,
		DepositMint:   depositMint,
		DepositAmount: depositAmount,
		BorrowMint:    borrowMint,
		BorrowAmount:  borrowAmount,
	})
}

type obligationDeposit struct {
	Mint      string `json:"mint"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUsd"`
}

type obligationBorrow struct {
	Mint      string `json:"mint"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUsd"`
}

type obligation struct {
	Market   string              `json:"market"`
	LTV      string              `json:"ltv"`
	Deposits []obligationDeposit `json:"deposits"`
	Borrows  []obligationBorrow  `json:"borrows"`
}

// Obligation reads the lending position summary for one owner.
func (c *Client) Obligation(ctx context.Context, owner string) (any, error) {
	endpoint := fmt.Sprintf("%s/v2/lending/obligations?owner=%s", c.baseURL, url.QueryEscape(owner))
	var out []obligation
	if err := c.http.GetJSON(ctx, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ builders.LendingDesk = (*Client)(nil)
