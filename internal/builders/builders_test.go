package builders

import (
	"context"
	"errors"
	"testing"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/intent"
)

const payer = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

// scriptedRouter answers restricted quotes differently from unrestricted
// ones so fallback behavior can be observed.
type scriptedRouter struct {
	restrictedErr   error
	unrestrictedErr error
	quotes          []SwapQuoteRequest
	builds          int
}

func (r *scriptedRouter) Quote(_ context.Context, req SwapQuoteRequest) (SwapQuote, error) {
	r.quotes = append(r.quotes, req)
	if len(req.Dexes) > 0 {
		if r.restrictedErr != nil {
			return SwapQuote{}, r.restrictedErr
		}
		return SwapQuote{OutAmount: "900", Route: "Whirlpool"}, nil
	}
	if r.unrestrictedErr != nil {
		return SwapQuote{}, r.unrestrictedErr
	}
	return SwapQuote{OutAmount: "1000", Route: "Meteora DLMM > Whirlpool"}, nil
}

func (r *scriptedRouter) BuildSwapTransaction(context.Context, SwapQuote, string, ComputeBudget) (string, error) {
	r.builds++
	return "dHg=", nil
}

func swapOrcaIntent(fallback bool) intent.Intent {
	return intent.SwapOrca{
		SwapParams: intent.SwapParams{
			InputMint:   "So11111111111111111111111111111111111111112",
			OutputMint:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			Amount:      "1000000000",
			SlippageBps: 50,
		},
		FallbackToJupiterOnNoRoute: fallback,
	}
}

func TestBuildSwapRestrictedRoute(t *testing.T) {
	router := &scriptedRouter{}
	set := &Set{Swap: router}

	result, err := set.Build(context.Background(), payer, swapOrcaIntent(false), ComputeBudget{})
	if err != nil {
		t.Fatal(err)
	}
	if len(router.quotes) != 1 {
		t.Fatalf("quotes = %d, want 1", len(router.quotes))
	}
	if got := router.quotes[0].Dexes; len(got) != 1 || got[0] != "Whirlpool" {
		t.Fatalf("dex restriction = %v", got)
	}
	if result.Route == nil || result.Route.RouteSource != "orca" || result.Route.FallbackApplied {
		t.Fatalf("route = %+v", result.Route)
	}
	if result.Route.OutAmount != "900" {
		t.Fatalf("outAmount = %s", result.Route.OutAmount)
	}
}

func TestBuildSwapFallbackRequote(t *testing.T) {
	router := &scriptedRouter{restrictedErr: clierr.New(clierr.CodeRoute, "no route within dex set")}
	set := &Set{Swap: router}

	result, err := set.Build(context.Background(), payer, swapOrcaIntent(true), ComputeBudget{})
	if err != nil {
		t.Fatal(err)
	}
	if len(router.quotes) != 2 {
		t.Fatalf("quotes = %d, want 2", len(router.quotes))
	}
	if len(router.quotes[1].Dexes) != 0 {
		t.Fatal("fallback quote must be unrestricted")
	}
	if !result.Route.FallbackApplied {
		t.Fatal("fallbackApplied not set")
	}
	if result.Route.RouteSource != "jupiter-fallback" {
		t.Fatalf("routeSource = %s", result.Route.RouteSource)
	}
	// The restriction that was attempted stays visible.
	if len(result.Route.RestrictedDexes) != 1 || result.Route.RestrictedDexes[0] != "Whirlpool" {
		t.Fatalf("restrictedDexes = %v", result.Route.RestrictedDexes)
	}
}

func TestBuildSwapNoFallbackWithoutOptIn(t *testing.T) {
	router := &scriptedRouter{restrictedErr: clierr.New(clierr.CodeRoute, "no route within dex set")}
	set := &Set{Swap: router}

	_, err := set.Build(context.Background(), payer, swapOrcaIntent(false), ComputeBudget{})
	if !clierr.HasCode(err, clierr.CodeRoute) {
		t.Fatalf("want route error, got %v", err)
	}
	if len(router.quotes) != 1 {
		t.Fatalf("quotes = %d, a re-quote must not happen without opt-in", len(router.quotes))
	}
}

func TestBuildSwapNonRouteErrorsDoNotFallBack(t *testing.T) {
	router := &scriptedRouter{restrictedErr: clierr.New(clierr.CodeUnavailable, "quote service down")}
	set := &Set{Swap: router}

	_, err := set.Build(context.Background(), payer, swapOrcaIntent(true), ComputeBudget{})
	if !clierr.HasCode(err, clierr.CodeUnavailable) {
		t.Fatalf("want unavailable error, got %v", err)
	}
	if len(router.quotes) != 1 {
		t.Fatal("transport errors must not trigger a fallback re-quote")
	}
}

func TestBuildSwapUnrestrictedNeverFallsBack(t *testing.T) {
	router := &scriptedRouter{unrestrictedErr: clierr.New(clierr.CodeRoute, "no route")}
	set := &Set{Swap: router}
	it := intent.SwapJupiter{SwapParams: swapOrcaIntent(false).(intent.SwapOrca).SwapParams}

	_, err := set.Build(context.Background(), payer, it, ComputeBudget{})
	if !clierr.HasCode(err, clierr.CodeRoute) {
		t.Fatalf("want route error, got %v", err)
	}
	if len(router.quotes) != 1 {
		t.Fatal("jupiter swaps have nothing to fall back to")
	}
}

type stubLending struct{ txs []string }

func (s stubLending) BuildDeposit(context.Context, string, string, string) ([]string, error) {
	return s.txs, nil
}
func (s stubLending) BuildBorrow(context.Context, string, string, string) ([]string, error) {
	return s.txs, nil
}
func (s stubLending) BuildRepay(context.Context, string, string, string) ([]string, error) {
	return s.txs, nil
}
func (s stubLending) BuildWithdraw(context.Context, string, string, string) ([]string, error) {
	return s.txs, nil
}
func (s stubLending) BuildDepositAndBorrow(context.Context, string, string, string, string, string) ([]string, error) {
	return s.txs, nil
}
func (s stubLending) Obligation(context.Context, string) (any, error) { return nil, nil }

func TestBuildLendLabelsMultipleTransactions(t *testing.T) {
	set := &Set{Lending: stubLending{txs: []string{"dA==", "dB==", "dC=="}}}
	it := intent.LendDepositAndBorrow{
		DepositMint: "a", DepositAmount: "1", BorrowMint: "b", BorrowAmount: "2",
	}
	result, err := set.Build(context.Background(), payer, it, ComputeBudget{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("transactions = %d", len(result.Transactions))
	}
	if result.Transactions[0].Label != "lend-deposit-borrow-1" || result.Transactions[2].Label != "lend-deposit-borrow-3" {
		t.Fatalf("labels = %v", result.Transactions)
	}
}

func TestBuildLendSingleTransactionKeepsBareLabel(t *testing.T) {
	set := &Set{Lending: stubLending{txs: []string{"dA=="}}}
	result, err := set.Build(context.Background(), payer, intent.LendDeposit{Mint: "a", Amount: "1"}, ComputeBudget{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Transactions[0].Label != "lend-deposit" {
		t.Fatalf("label = %s", result.Transactions[0].Label)
	}
}

func TestBuildEmptyComposerResult(t *testing.T) {
	set := &Set{Lending: stubLending{}}
	_, err := set.Build(context.Background(), payer, intent.LendDeposit{Mint: "a", Amount: "1"}, ComputeBudget{})
	if !clierr.HasCode(err, clierr.CodeUnavailable) {
		t.Fatalf("want unavailable error, got %v", err)
	}
}

type stubPoolDesk struct {
	mintA, mintB string
	err          error
}

func (s stubPoolDesk) PoolMints(context.Context, string) (string, string, error) {
	return s.mintA, s.mintB, s.err
}

type stubOrcaDesk struct{ stubPoolDesk }

func (stubOrcaDesk) BuildOpenPosition(context.Context, OrcaOpenRequest) ([]string, error) {
	return nil, nil
}
func (stubOrcaDesk) BuildClosePosition(context.Context, string, string, int) ([]string, error) {
	return nil, nil
}
func (stubOrcaDesk) BuildHarvest(context.Context, string, string) ([]string, error) { return nil, nil }
func (stubOrcaDesk) BuildIncrease(context.Context, OrcaIncreaseRequest) ([]string, error) {
	return nil, nil
}
func (stubOrcaDesk) BuildDecrease(context.Context, string, string, int, int) ([]string, error) {
	return nil, nil
}
func (stubOrcaDesk) Positions(context.Context, string) (any, error) { return nil, nil }

type stubMeteoraDesk struct{ stubPoolDesk }

func (stubMeteoraDesk) BuildAdd(context.Context, MeteoraAddRequest) ([]string, error) {
	return nil, nil
}
func (stubMeteoraDesk) BuildRemove(context.Context, string, string, string, int) ([]string, error) {
	return nil, nil
}
func (stubMeteoraDesk) Positions(context.Context, string) (any, error) { return nil, nil }

func TestPoolDirectoryFallsThrough(t *testing.T) {
	dir := &PoolDirectory{
		Orca:    stubOrcaDesk{stubPoolDesk{err: errors.New("unknown pool")}},
		Meteora: stubMeteoraDesk{stubPoolDesk{mintA: "x", mintB: "y"}},
	}
	a, b, err := dir.PoolMints(context.Background(), "pool")
	if err != nil {
		t.Fatal(err)
	}
	if a != "x" || b != "y" {
		t.Fatalf("mints = (%s, %s)", a, b)
	}

	dir = &PoolDirectory{Orca: stubOrcaDesk{stubPoolDesk{err: errors.New("nope")}}}
	if _, _, err := dir.PoolMints(context.Background(), "pool"); !clierr.HasCode(err, clierr.CodeResolve) {
		t.Fatalf("want resolve error, got %v", err)
	}
}
