package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/ggonzalez94/solagent/internal/id"
	"github.com/ggonzalez94/solagent/internal/model"
)

// Reader serves the read-only queries that need nothing beyond the cluster
// endpoint. Independent RPC calls for one query fan out concurrently.
type Reader struct {
	client Client
}

func NewReader(client Client) *Reader {
	return &Reader{client: client}
}

// Balance fetches the native balance and the token account set for one
// owner in parallel.
func (r *Reader) Balance(ctx context.Context, owner string) (model.BalanceResult, error) {
	var (
		lamports uint64
		accounts []TokenAccountInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := r.client.GetBalance(gctx, owner)
		if err != nil {
			return err
		}
		lamports = v
		return nil
	})
	g.Go(func() error {
		v, err := r.client.GetTokenAccountsByOwner(gctx, owner, "")
		if err != nil {
			return err
		}
		accounts = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.BalanceResult{}, err
	}

	raw := strconv.FormatUint(lamports, 10)
	return model.BalanceResult{
		Address:     owner,
		Lamports:    raw,
		Sol:         id.RawToDecimal(raw, id.NativeDecimals),
		TokenCounts: len(accounts),
		Tokens:      tokenBalances(accounts),
	}, nil
}

// TokenAccounts lists token holdings for one owner, optionally restricted
// to a single mint.
func (r *Reader) TokenAccounts(ctx context.Context, owner, mint string) ([]model.TokenBalance, error) {
	accounts, err := r.client.GetTokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return nil, err
	}
	return tokenBalances(accounts), nil
}

func tokenBalances(accounts []TokenAccountInfo) []model.TokenBalance {
	out := make([]model.TokenBalance, 0, len(accounts))
	for _, acc := range accounts {
		decimal := acc.UIAmountString
		if decimal == "" {
			decimal = id.RawToDecimal(acc.AmountRaw, acc.Decimals)
		}
		out = append(out, model.TokenBalance{
			Mint:     acc.Mint,
			Raw:      acc.AmountRaw,
			Decimal:  decimal,
			Decimals: acc.Decimals,
		})
	}
	return out
}

// StakeAccounts lists stake accounts withdrawable by one owner.
func (r *Reader) StakeAccounts(ctx context.Context, owner string) ([]StakeAccountInfo, error) {
	return r.client.GetStakeAccountsByWithdrawer(ctx, owner)
}

// formatChainError renders the structured err field of an RPC response as a
// single line. The cluster returns either a string or a nested object.
func formatChainError(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(buf)
}
