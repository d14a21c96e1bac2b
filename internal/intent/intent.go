package intent

import "slices"

// Kind names one canonical action. Every kind maps to exactly one variant
// struct below; per-variant fields are a compile-time fact, not optional
// members of a shared bag.
type Kind string

const (
	KindTransferNative Kind = "solana.transfer.native"
	KindTransferSPL    Kind = "solana.transfer.spl"

	KindSwapJupiter Kind = "solana.swap.jupiter"
	KindSwapOrca    Kind = "solana.swap.orca"
	KindSwapRaydium Kind = "solana.swap.raydium"

	KindLendDeposit          Kind = "solana.lend.deposit"
	KindLendBorrow           Kind = "solana.lend.borrow"
	KindLendRepay            Kind = "solana.lend.repay"
	KindLendWithdraw         Kind = "solana.lend.withdraw"
	KindLendDepositAndBorrow Kind = "solana.lend.depositAndBorrow"

	KindStakeCreate     Kind = "solana.stake.create"
	KindStakeDelegate   Kind = "solana.stake.delegate"
	KindStakeAuthorize  Kind = "solana.stake.authorize"
	KindStakeDeactivate Kind = "solana.stake.deactivate"
	KindStakeWithdraw   Kind = "solana.stake.withdraw"

	KindOrcaOpenPosition  Kind = "solana.liquidity.orca.openPosition"
	KindOrcaClosePosition Kind = "solana.liquidity.orca.closePosition"
	KindOrcaHarvest       Kind = "solana.liquidity.orca.harvest"
	KindOrcaIncrease      Kind = "solana.liquidity.orca.increase"
	KindOrcaDecrease      Kind = "solana.liquidity.orca.decrease"

	KindMeteoraAdd    Kind = "solana.liquidity.meteora.add"
	KindMeteoraRemove Kind = "solana.liquidity.meteora.remove"

	KindReadBalance            Kind = "solana.read.balance"
	KindReadTokenAccounts      Kind = "solana.read.tokenAccounts"
	KindReadLendObligation     Kind = "solana.read.lendObligation"
	KindReadStakeAccounts      Kind = "solana.read.stakeAccounts"
	KindReadLiquidityPositions Kind = "solana.read.liquidityPositions"
)

// Intent is the fully-resolved, canonical description of one requested
// action. All addresses are validated base58 strings and all amounts are
// minimal-unit integer strings; an Intent is immutable once constructed.
type Intent interface {
	Kind() Kind
	// Readonly intents never require confirmation and have no broadcast
	// phase.
	Readonly() bool
	sealed()
}

type base struct{}

func (base) sealed() {}

type readonly struct{ base }

func (readonly) Readonly() bool { return true }

type mutating struct{ base }

func (mutating) Readonly() bool { return false }

// Transfers.

type TransferNative struct {
	mutating
	To       string `json:"to"`
	Lamports string `json:"lamports"`
}

func (TransferNative) Kind() Kind { return KindTransferNative }

type TransferSPL struct {
	mutating
	To     string `json:"to"`
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

func (TransferSPL) Kind() Kind { return KindTransferSPL }

// Swaps. Protocol-scoped variants carry the dex restriction implied by the
// protocol; the routing collaborator enforces it at quote time.

type SwapParams struct {
	InputMint   string `json:"input_mint"`
	OutputMint  string `json:"output_mint"`
	Amount      string `json:"amount"`
	SlippageBps int    `json:"slippage_bps"`
}

type SwapJupiter struct {
	mutating
	SwapParams
}

func (SwapJupiter) Kind() Kind { return KindSwapJupiter }

type SwapOrca struct {
	mutating
	SwapParams
	FallbackToJupiterOnNoRoute bool `json:"fallback_to_jupiter_on_no_route"`
}

func (SwapOrca) Kind() Kind { return KindSwapOrca }

type SwapRaydium struct {
	mutating
	SwapParams
	FallbackToJupiterOnNoRoute bool `json:"fallback_to_jupiter_on_no_route"`
}

func (SwapRaydium) Kind() Kind { return KindSwapRaydium }

// RestrictedDexes returns the dex set a protocol-scoped swap is limited to,
// or nil for unrestricted routing.
func RestrictedDexes(it Intent) []string {
	switch it.Kind() {
	case KindSwapOrca:
		return []string{"Whirlpool"}
	case KindSwapRaydium:
		return []string{"Raydium", "Raydium CLMM"}
	default:
		return nil
	}
}

// AllowsRouteFallback reports whether the caller opted into re-quoting
// without the dex restriction when no restricted route exists.
func AllowsRouteFallback(it Intent) bool {
	switch v := it.(type) {
	case SwapOrca:
		return v.FallbackToJupiterOnNoRoute
	case SwapRaydium:
		return v.FallbackToJupiterOnNoRoute
	default:
		return false
	}
}

// Lending (Kamino).

type LendDeposit struct {
	mutating
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

func (LendDeposit) Kind() Kind { return KindLendDeposit }

type LendBorrow struct {
	mutating
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

func (LendBorrow) Kind() Kind { return KindLendBorrow }

type LendRepay struct {
	mutating
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

func (LendRepay) Kind() Kind { return KindLendRepay }

type LendWithdraw struct {
	mutating
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

func (LendWithdraw) Kind() Kind { return KindLendWithdraw }

type LendDepositAndBorrow struct {
	mutating
	DepositMint   string `json:"deposit_mint"`
	DepositAmount string `json:"deposit_amount"`
	BorrowMint    string `json:"borrow_mint"`
	BorrowAmount  string `json:"borrow_amount"`
}

func (LendDepositAndBorrow) Kind() Kind { return KindLendDepositAndBorrow }

// Native staking.

type StakeCreate struct {
	mutating
	Lamports string `json:"lamports"`
	// VoteAccount, when set, delegates the new stake account in the same
	// transaction.
	VoteAccount string `json:"vote_account,omitempty"`
}

func (StakeCreate) Kind() Kind { return KindStakeCreate }

type StakeDelegate struct {
	mutating
	StakeAccount string `json:"stake_account"`
	VoteAccount  string `json:"vote_account"`
}

func (StakeDelegate) Kind() Kind { return KindStakeDelegate }

type StakeAuthorize struct {
	mutating
	StakeAccount  string `json:"stake_account"`
	NewAuthority  string `json:"new_authority"`
	AuthorityType string `json:"authority_type"`
}

func (StakeAuthorize) Kind() Kind { return KindStakeAuthorize }

type StakeDeactivate struct {
	mutating
	StakeAccount string `json:"stake_account"`
}

func (StakeDeactivate) Kind() Kind { return KindStakeDeactivate }

type StakeWithdraw struct {
	mutating
	StakeAccount string `json:"stake_account"`
	To           string `json:"to"`
	Lamports     string `json:"lamports"`
}

func (StakeWithdraw) Kind() Kind { return KindStakeWithdraw }

// Liquidity, Orca Whirlpool.

type OrcaOpenPosition struct {
	mutating
	Whirlpool   string `json:"whirlpool"`
	AmountA     string `json:"amount_a"`
	AmountB     string `json:"amount_b"`
	TickLower   int    `json:"tick_lower"`
	TickUpper   int    `json:"tick_upper"`
	SlippageBps int    `json:"slippage_bps"`
}

func (OrcaOpenPosition) Kind() Kind { return KindOrcaOpenPosition }

type OrcaClosePosition struct {
	mutating
	PositionMint string `json:"position_mint"`
	SlippageBps  int    `json:"slippage_bps"`
}

func (OrcaClosePosition) Kind() Kind { return KindOrcaClosePosition }

type OrcaHarvest struct {
	mutating
	PositionMint string `json:"position_mint"`
}

func (OrcaHarvest) Kind() Kind { return KindOrcaHarvest }

type OrcaIncrease struct {
	mutating
	PositionMint string `json:"position_mint"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SlippageBps  int    `json:"slippage_bps"`
}

func (OrcaIncrease) Kind() Kind { return KindOrcaIncrease }

type OrcaDecrease struct {
	mutating
	PositionMint string `json:"position_mint"`
	// LiquidityPct is the share of position liquidity to remove, 1..100.
	LiquidityPct int `json:"liquidity_pct"`
	SlippageBps  int `json:"slippage_bps"`
}

func (OrcaDecrease) Kind() Kind { return KindOrcaDecrease }

// Liquidity, Meteora DLMM.

type MeteoraAdd struct {
	mutating
	Pool string `json:"pool"`
	// AmountX/AmountY are minimal-unit amounts per pool side; one side may
	// be zero for a single-sided add.
	AmountX       string `json:"amount_x"`
	AmountY       string `json:"amount_y"`
	RangeInterval int    `json:"range_interval"`
}

func (MeteoraAdd) Kind() Kind { return KindMeteoraAdd }

type MeteoraRemove struct {
	mutating
	Pool        string `json:"pool"`
	Position    string `json:"position"`
	BpsToRemove int    `json:"bps_to_remove"`
}

func (MeteoraRemove) Kind() Kind { return KindMeteoraRemove }

// Read-only queries.

type ReadBalance struct {
	readonly
	Owner string `json:"owner"`
}

func (ReadBalance) Kind() Kind { return KindReadBalance }

type ReadTokenAccounts struct {
	readonly
	Owner string `json:"owner"`
	Mint  string `json:"mint,omitempty"`
}

func (ReadTokenAccounts) Kind() Kind { return KindReadTokenAccounts }

type ReadLendObligation struct {
	readonly
	Owner string `json:"owner"`
}

func (ReadLendObligation) Kind() Kind { return KindReadLendObligation }

type ReadStakeAccounts struct {
	readonly
	Owner string `json:"owner"`
}

func (ReadStakeAccounts) Kind() Kind { return KindReadStakeAccounts }

type ReadLiquidityPositions struct {
	readonly
	Owner    string `json:"owner"`
	Protocol string `json:"protocol,omitempty"`
}

func (ReadLiquidityPositions) Kind() Kind { return KindReadLiquidityPositions }

// Kinds lists every canonical action kind in catalog order.
func Kinds() []Kind {
	return []Kind{
		KindTransferNative, KindTransferSPL,
		KindSwapJupiter, KindSwapOrca, KindSwapRaydium,
		KindLendDeposit, KindLendBorrow, KindLendRepay, KindLendWithdraw, KindLendDepositAndBorrow,
		KindStakeCreate, KindStakeDelegate, KindStakeAuthorize, KindStakeDeactivate, KindStakeWithdraw,
		KindOrcaOpenPosition, KindOrcaClosePosition, KindOrcaHarvest, KindOrcaIncrease, KindOrcaDecrease,
		KindMeteoraAdd, KindMeteoraRemove,
		KindReadBalance, KindReadTokenAccounts, KindReadLendObligation, KindReadStakeAccounts, KindReadLiquidityPositions,
	}
}

// ReadonlyKind reports whether k names a read-only query.
func ReadonlyKind(k Kind) bool {
	switch k {
	case KindReadBalance, KindReadTokenAccounts, KindReadLendObligation, KindReadStakeAccounts, KindReadLiquidityPositions:
		return true
	}
	return false
}

// KnownKind reports whether v names a canonical action.
func KnownKind(v string) bool {
	return slices.Contains(Kinds(), Kind(v))
}
