// Package chain talks JSON-RPC to a cluster endpoint. Everything the rest
// of the engine needs from the chain goes through the Client interface so
// pipelines and workflows can be tested against fakes.
package chain

import (
	"context"
	"time"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
)

const tokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// SimulationOutcome is the per-transaction result of a preflight run.
type SimulationOutcome struct {
	OK            bool
	Err           string
	Logs          []string
	UnitsConsumed uint64
}

// TokenAccountInfo is one parsed token account row.
type TokenAccountInfo struct {
	Address        string
	Mint           string
	AmountRaw      string
	Decimals       int
	UIAmountString string
}

// StakeAccountInfo is one parsed stake account row.
type StakeAccountInfo struct {
	Address    string
	Lamports   uint64
	Voter      string
	State      string
	Activation string
}

type Client interface {
	GetBalance(ctx context.Context, owner string) (uint64, error)
	GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]TokenAccountInfo, error)
	GetMintDecimals(ctx context.Context, mint string) (int, error)
	GetLatestBlockhash(ctx context.Context) (string, error)
	GetStakeAccountsByWithdrawer(ctx context.Context, owner string) ([]StakeAccountInfo, error)
	SimulateTransaction(ctx context.Context, txBase64 string) (SimulationOutcome, error)
	SendTransaction(ctx context.Context, txBase64 string) (string, error)
	ConfirmTransaction(ctx context.Context, signature string) error
}

// RPCClient implements Client over the retrying HTTP layer.
type RPCClient struct {
	http         *httpx.Client
	url          string
	pollInterval time.Duration
	confirmWait  time.Duration
}

func NewRPCClient(http *httpx.Client, url string) *RPCClient {
	return &RPCClient{
		http:         http,
		url:          url,
		pollInterval: 2 * time.Second,
		confirmWait:  90 * time.Second,
	}
}

type contextValue[T any] struct {
	Value T `json:"value"`
}

func (c *RPCClient) GetBalance(ctx context.Context, owner string) (uint64, error) {
	var resp contextValue[uint64]
	if err := c.http.CallRPC(ctx, c.url, "getBalance", []any{owner}, &resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

type parsedTokenAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data struct {
			Parsed struct {
				Info struct {
					Mint        string `json:"mint"`
					TokenAmount struct {
						Amount         string `json:"amount"`
						Decimals       int    `json:"decimals"`
						UIAmountString string `json:"uiAmountString"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

func (c *RPCClient) GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]TokenAccountInfo, error) {
	filter := map[string]string{"programId": tokenProgramID}
	if mint != "" {
		filter = map[string]string{"mint": mint}
	}
	var resp contextValue[[]parsedTokenAccount]
	params := []any{owner, filter, map[string]string{"encoding": "jsonParsed"}}
	if err := c.http.CallRPC(ctx, c.url, "getTokenAccountsByOwner", params, &resp); err != nil {
		return nil, err
	}
	out := make([]TokenAccountInfo, 0, len(resp.Value))
	for _, row := range resp.Value {
		info := row.Account.Data.Parsed.Info
		out = append(out, TokenAccountInfo{
			Address:        row.Pubkey,
			Mint:           info.Mint,
			AmountRaw:      info.TokenAmount.Amount,
			Decimals:       info.TokenAmount.Decimals,
			UIAmountString: info.TokenAmount.UIAmountString,
		})
	}
	return out, nil
}

func (c *RPCClient) GetMintDecimals(ctx context.Context, mint string) (int, error) {
	type accountInfo struct {
		Data struct {
			Parsed struct {
				Info struct {
					Decimals int `json:"decimals"`
				} `json:"info"`
				Type string `json:"type"`
			} `json:"parsed"`
		} `json:"data"`
	}
	var resp contextValue[*accountInfo]
	params := []any{mint, map[string]string{"encoding": "jsonParsed"}}
	if err := c.http.CallRPC(ctx, c.url, "getAccountInfo", params, &resp); err != nil {
		return 0, err
	}
	if resp.Value == nil {
		return 0, clierr.Newf(clierr.CodeResolve, "mint account not found: %s", mint)
	}
	if resp.Value.Data.Parsed.Type != "mint" {
		return 0, clierr.Newf(clierr.CodeResolve, "account %s is not a token mint", mint)
	}
	return resp.Value.Data.Parsed.Info.Decimals, nil
}

func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	var resp contextValue[struct {
		Blockhash string `json:"blockhash"`
	}]
	if err := c.http.CallRPC(ctx, c.url, "getLatestBlockhash", nil, &resp); err != nil {
		return "", err
	}
	return resp.Value.Blockhash, nil
}

const stakeProgramID = "Stake11111111111111111111111111111111111111"

func (c *RPCClient) GetStakeAccountsByWithdrawer(ctx context.Context, owner string) ([]StakeAccountInfo, error) {
	type stakeAccount struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Lamports uint64 `json:"lamports"`
			Data     struct {
				Parsed struct {
					Type string `json:"type"`
					Info struct {
						Stake struct {
							Delegation struct {
								Voter              string `json:"voter"`
								ActivationEpoch    string `json:"activationEpoch"`
								DeactivationEpoch  string `json:"deactivationEpoch"`
								Stake              string `json:"stake"`
								WarmupCooldownRate any    `json:"warmupCooldownRate"`
							} `json:"delegation"`
						} `json:"stake"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	}
	// Withdraw authority lives at offset 44 of the stake account layout.
	params := []any{
		stakeProgramID,
		map[string]any{
			"encoding": "jsonParsed",
			"filters": []any{
				map[string]any{"memcmp": map[string]any{"offset": 44, "bytes": owner}},
			},
		},
	}
	var rows []stakeAccount
	if err := c.http.CallRPC(ctx, c.url, "getProgramAccounts", params, &rows); err != nil {
		return nil, err
	}
	out := make([]StakeAccountInfo, 0, len(rows))
	for _, row := range rows {
		delegation := row.Account.Data.Parsed.Info.Stake.Delegation
		out = append(out, StakeAccountInfo{
			Address:    row.Pubkey,
			Lamports:   row.Account.Lamports,
			Voter:      delegation.Voter,
			State:      row.Account.Data.Parsed.Type,
			Activation: delegation.ActivationEpoch,
		})
	}
	return out, nil
}

type simulationValue struct {
	Err           any      `json:"err"`
	Logs          []string `json:"logs"`
	UnitsConsumed uint64   `json:"unitsConsumed"`
}

func (c *RPCClient) SimulateTransaction(ctx context.Context, txBase64 string) (SimulationOutcome, error) {
	var resp contextValue[simulationValue]
	params := []any{txBase64, map[string]any{"encoding": "base64", "replaceRecentBlockhash": true}}
	if err := c.http.CallRPC(ctx, c.url, "simulateTransaction", params, &resp); err != nil {
		return SimulationOutcome{}, err
	}
	outcome := SimulationOutcome{
		OK:            resp.Value.Err == nil,
		Logs:          resp.Value.Logs,
		UnitsConsumed: resp.Value.UnitsConsumed,
	}
	if !outcome.OK {
		outcome.Err = formatChainError(resp.Value.Err)
	}
	return outcome, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, txBase64 string) (string, error) {
	var signature string
	params := []any{txBase64, map[string]any{"encoding": "base64", "skipPreflight": true}}
	if err := c.http.CallRPC(ctx, c.url, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// ConfirmTransaction polls signature status until the transaction reaches
// at least confirmed commitment, fails on-chain, or the wait budget runs
// out.
func (c *RPCClient) ConfirmTransaction(ctx context.Context, signature string) error {
	type status struct {
		ConfirmationStatus string `json:"confirmationStatus"`
		Err                any    `json:"err"`
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.confirmWait)
	defer cancel()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var resp contextValue[[]*status]
		params := []any{[]string{signature}, map[string]bool{"searchTransactionHistory": true}}
		err := c.http.CallRPC(waitCtx, c.url, "getSignatureStatuses", params, &resp)
		if err == nil && len(resp.Value) > 0 && resp.Value[0] != nil {
			st := resp.Value[0]
			if st.Err != nil {
				return clierr.Newf(clierr.CodeOnChain, "transaction %s failed on-chain: %s", signature, formatChainError(st.Err))
			}
			if st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized" {
				return nil
			}
		}
		// Transient polling failures are retried until the deadline.
		select {
		case <-waitCtx.Done():
			return clierr.Wrap(clierr.CodeUnavailable, "timed out waiting for confirmation of "+signature, waitCtx.Err())
		case <-ticker.C:
		}
	}
}
