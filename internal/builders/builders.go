// Package builders turns resolved intents into unsigned transactions.
// Native program actions are composed locally; protocol actions go through
// per-protocol composer services that return pre-serialized transactions.
package builders

import (
	"context"
	"encoding/json"
	"fmt"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/intent"
	"github.com/ggonzalez94/solagent/internal/model"
)

// UnsignedTx is one serialized, unsigned transaction with a human label
// for plans and logs.
type UnsignedTx struct {
	Label  string
	Base64 string
}

// ComputeBudget carries the optional per-run compute overrides.
type ComputeBudget struct {
	UnitLimit *int
	UnitPrice *int
}

// BuildResult is the ordered transaction set for one intent plus any
// routing metadata produced on the way.
type BuildResult struct {
	Transactions []UnsignedTx
	Route        *model.SwapRouteInfo
	Warnings     []string
}

// SwapQuoteRequest asks the router for a route, optionally restricted to a
// dex set.
type SwapQuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      string
	SlippageBps int
	Dexes       []string
}

// SwapQuote is a route the router will accept back verbatim when building
// the transaction.
type SwapQuote struct {
	Raw            json.RawMessage
	OutAmount      string
	PriceImpactPct float64
	Route          string
}

type SwapRouter interface {
	Quote(ctx context.Context, req SwapQuoteRequest) (SwapQuote, error)
	BuildSwapTransaction(ctx context.Context, quote SwapQuote, payer string, compute ComputeBudget) (string, error)
}

// LendingDesk composes lending-market transactions. Each call returns the
// ordered transaction list the protocol requires, possibly more than one.
type LendingDesk interface {
	BuildDeposit(ctx context.Context, owner, mint, amount string) ([]string, error)
	BuildBorrow(ctx context.Context, owner, mint, amount string) ([]string, error)
	BuildRepay(ctx context.Context, owner, mint, amount string) ([]string, error)
	BuildWithdraw(ctx context.Context, owner, mint, amount string) ([]string, error)
	BuildDepositAndBorrow(ctx context.Context, owner, depositMint, depositAmount, borrowMint, borrowAmount string) ([]string, error)
	Obligation(ctx context.Context, owner string) (any, error)
}

type OrcaOpenRequest struct {
	Owner       string
	Whirlpool   string
	AmountA     string
	AmountB     string
	TickLower   int
	TickUpper   int
	SlippageBps int
}

type OrcaIncreaseRequest struct {
	Owner        string
	PositionMint string
	AmountA      string
	AmountB      string
	SlippageBps  int
}

type OrcaDesk interface {
	BuildOpenPosition(ctx context.Context, req OrcaOpenRequest) ([]string, error)
	BuildClosePosition(ctx context.Context, owner, positionMint string, slippageBps int) ([]string, error)
	BuildHarvest(ctx context.Context, owner, positionMint string) ([]string, error)
	BuildIncrease(ctx context.Context, req OrcaIncreaseRequest) ([]string, error)
	BuildDecrease(ctx context.Context, owner, positionMint string, liquidityPct, slippageBps int) ([]string, error)
	Positions(ctx context.Context, owner string) (any, error)
	PoolMints(ctx context.Context, poolOrPosition string) (string, string, error)
}

type MeteoraAddRequest struct {
	Owner         string
	Pool          string
	AmountX       string
	AmountY       string
	RangeInterval int
}

type MeteoraDesk interface {
	BuildAdd(ctx context.Context, req MeteoraAddRequest) ([]string, error)
	BuildRemove(ctx context.Context, owner, pool, position string, bpsToRemove int) ([]string, error)
	Positions(ctx context.Context, owner string) (any, error)
	PoolMints(ctx context.Context, pool string) (string, string, error)
}

// Set bundles every composer the engine can dispatch to.
type Set struct {
	Native  *NativeBuilder
	Swap    SwapRouter
	Lending LendingDesk
	Orca    OrcaDesk
	Meteora MeteoraDesk
}

// Build produces the ordered unsigned transaction set for one mutating
// intent.
func (s *Set) Build(ctx context.Context, payer string, it intent.Intent, compute ComputeBudget) (BuildResult, error) {
	switch v := it.(type) {
	case intent.TransferNative:
		tx, err := s.Native.TransferNative(ctx, payer, v, compute)
		return single("transfer", tx, err)
	case intent.TransferSPL:
		tx, err := s.Native.TransferSPL(ctx, payer, v, compute)
		return single("token-transfer", tx, err)

	case intent.SwapJupiter, intent.SwapOrca, intent.SwapRaydium:
		return s.buildSwap(ctx, payer, it, compute)

	case intent.LendDeposit:
		return many(ctx, "lend-deposit", func() ([]string, error) {
			return s.Lending.BuildDeposit(ctx, payer, v.Mint, v.Amount)
		})
	case intent.LendBorrow:
		return many(ctx, "lend-borrow", func() ([]string, error) {
			return s.Lending.BuildBorrow(ctx, payer, v.Mint, v.Amount)
		})
	case intent.LendRepay:
		return many(ctx, "lend-repay", func() ([]string, error) {
			return s.Lending.BuildRepay(ctx, payer, v.Mint, v.Amount)
		})
	case intent.LendWithdraw:
		return many(ctx, "lend-withdraw", func() ([]string, error) {
			return s.Lending.BuildWithdraw(ctx, payer, v.Mint, v.Amount)
		})
	case intent.LendDepositAndBorrow:
		return many(ctx, "lend-deposit-borrow", func() ([]string, error) {
			return s.Lending.BuildDepositAndBorrow(ctx, payer, v.DepositMint, v.DepositAmount, v.BorrowMint, v.BorrowAmount)
		})

	case intent.StakeCreate:
		tx, err := s.Native.StakeCreate(ctx, payer, v, compute)
		return single("stake-create", tx, err)
	case intent.StakeDelegate:
		tx, err := s.Native.StakeDelegate(ctx, payer, v, compute)
		return single("stake-delegate", tx, err)
	case intent.StakeAuthorize:
		tx, err := s.Native.StakeAuthorize(ctx, payer, v, compute)
		return single("stake-authorize", tx, err)
	case intent.StakeDeactivate:
		tx, err := s.Native.StakeDeactivate(ctx, payer, v, compute)
		return single("stake-deactivate", tx, err)
	case intent.StakeWithdraw:
		tx, err := s.Native.StakeWithdraw(ctx, payer, v, compute)
		return single("stake-withdraw", tx, err)

	case intent.OrcaOpenPosition:
		return many(ctx, "orca-open-position", func() ([]string, error) {
			return s.Orca.BuildOpenPosition(ctx, OrcaOpenRequest{
				Owner: payer, Whirlpool: v.Whirlpool,
				AmountA: v.AmountA, AmountB: v.AmountB,
				TickLower: v.TickLower, TickUpper: v.TickUpper, SlippageBps: v.SlippageBps,
			})
		})
	case intent.OrcaClosePosition:
		return many(ctx, "orca-close-position", func() ([]string, error) {
			return s.Orca.BuildClosePosition(ctx, payer, v.PositionMint, v.SlippageBps)
		})
	case intent.OrcaHarvest:
		return many(ctx, "orca-harvest", func() ([]string, error) {
			return s.Orca.BuildHarvest(ctx, payer, v.PositionMint)
		})
	case intent.OrcaIncrease:
		return many(ctx, "orca-increase", func() ([]string, error) {
			return s.Orca.BuildIncrease(ctx, OrcaIncreaseRequest{
				Owner: payer, PositionMint: v.PositionMint,
				AmountA: v.AmountA, AmountB: v.AmountB, SlippageBps: v.SlippageBps,
			})
		})
	case intent.OrcaDecrease:
		return many(ctx, "orca-decrease", func() ([]string, error) {
			return s.Orca.BuildDecrease(ctx, payer, v.PositionMint, v.LiquidityPct, v.SlippageBps)
		})

	case intent.MeteoraAdd:
		return many(ctx, "meteora-add", func() ([]string, error) {
			return s.Meteora.BuildAdd(ctx, MeteoraAddRequest{
				Owner: payer, Pool: v.Pool,
				AmountX: v.AmountX, AmountY: v.AmountY, RangeInterval: v.RangeInterval,
			})
		})
	case intent.MeteoraRemove:
		return many(ctx, "meteora-remove", func() ([]string, error) {
			return s.Meteora.BuildRemove(ctx, payer, v.Pool, v.Position, v.BpsToRemove)
		})
	}
	return BuildResult{}, clierr.Newf(clierr.CodeUnsupported, "no transaction composer for %s", it.Kind())
}

// buildSwap quotes within the protocol's dex restriction and, when the
// caller opted in, re-quotes without the restriction if no restricted
// route exists.
func (s *Set) buildSwap(ctx context.Context, payer string, it intent.Intent, compute ComputeBudget) (BuildResult, error) {
	var params intent.SwapParams
	switch v := it.(type) {
	case intent.SwapJupiter:
		params = v.SwapParams
	case intent.SwapOrca:
		params = v.SwapParams
	case intent.SwapRaydium:
		params = v.SwapParams
	}

	restricted := intent.RestrictedDexes(it)
	routeSource := routeSourceFor(it.Kind())
	fallbackApplied := false

	quote, err := s.Swap.Quote(ctx, SwapQuoteRequest{
		InputMint:   params.InputMint,
		OutputMint:  params.OutputMint,
		Amount:      params.Amount,
		SlippageBps: params.SlippageBps,
		Dexes:       restricted,
	})
	if err != nil {
		if len(restricted) == 0 || !clierr.HasCode(err, clierr.CodeRoute) {
			return BuildResult{}, err
		}
		if !intent.AllowsRouteFallback(it) {
			return BuildResult{}, clierr.Wrap(clierr.CodeRoute,
				fmt.Sprintf("no route within %v and fallback not enabled", restricted), err)
		}
		quote, err = s.Swap.Quote(ctx, SwapQuoteRequest{
			InputMint:   params.InputMint,
			OutputMint:  params.OutputMint,
			Amount:      params.Amount,
			SlippageBps: params.SlippageBps,
		})
		if err != nil {
			return BuildResult{}, err
		}
		fallbackApplied = true
		routeSource = "jupiter-fallback"
	}

	txBase64, err := s.Swap.BuildSwapTransaction(ctx, quote, payer, compute)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{
		Transactions: []UnsignedTx{{Label: "swap", Base64: txBase64}},
		Route: &model.SwapRouteInfo{
			RouteSource:     routeSource,
			FallbackApplied: fallbackApplied,
			RestrictedDexes: restricted,
			Route:           quote.Route,
			OutAmount:       quote.OutAmount,
			PriceImpactPct:  quote.PriceImpactPct,
		},
	}, nil
}

func routeSourceFor(kind intent.Kind) string {
	switch kind {
	case intent.KindSwapOrca:
		return "orca"
	case intent.KindSwapRaydium:
		return "raydium"
	default:
		return "jupiter"
	}
}

func single(label, tx string, err error) (BuildResult, error) {
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Transactions: []UnsignedTx{{Label: label, Base64: tx}}}, nil
}

func many(_ context.Context, label string, build func() ([]string, error)) (BuildResult, error) {
	txs, err := build()
	if err != nil {
		return BuildResult{}, err
	}
	if len(txs) == 0 {
		return BuildResult{}, clierr.Newf(clierr.CodeUnavailable, "%s composer returned no transactions", label)
	}
	out := make([]UnsignedTx, 0, len(txs))
	for i, tx := range txs {
		l := label
		if len(txs) > 1 {
			l = fmt.Sprintf("%s-%d", label, i+1)
		}
		out = append(out, UnsignedTx{Label: l, Base64: tx})
	}
	return BuildResult{Transactions: out}, nil
}

// PoolDirectory answers pool constituent queries by asking the liquidity
// desks in turn.
type PoolDirectory struct {
	Orca    OrcaDesk
	Meteora MeteoraDesk
}

func (d *PoolDirectory) PoolMints(ctx context.Context, poolOrPosition string) (string, string, error) {
	if d.Orca != nil {
		if a, b, err := d.Orca.PoolMints(ctx, poolOrPosition); err == nil {
			return a, b, nil
		}
	}
	if d.Meteora != nil {
		if a, b, err := d.Meteora.PoolMints(ctx, poolOrPosition); err == nil {
			return a, b, nil
		}
	}
	return "", "", clierr.Newf(clierr.CodeResolve, "no liquidity desk recognizes pool %s", poolOrPosition)
}
