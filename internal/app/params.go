package app

import (
	"github.com/spf13/cobra"

	"github.com/ggonzalez94/solagent/internal/builders"
	"github.com/ggonzalez94/solagent/internal/intent"
)

// paramFlags holds the flat flag union for structured intent fields. Only
// flags the caller actually changed become "provided" values, so the merge
// with text-parsed fields can tell unset from zero.
type paramFlags struct {
	intentType string

	to        string
	amountSol string

	tokenMint string
	amountUi  string
	amountRaw string

	inputMint   string
	outputMint  string
	slippageBps int
	fallback    bool

	depositMint      string
	depositAmountUi  string
	depositAmountRaw string
	borrowMint       string
	borrowAmountUi   string
	borrowAmountRaw  string

	stakeAccount  string
	voteAccount   string
	newAuthority  string
	authorityType string

	pool          string
	positionMint  string
	position      string
	amountAMint   string
	amountAUi     string
	amountARaw    string
	amountBMint   string
	amountBUi     string
	amountBRaw    string
	tickLower     int
	tickUpper     int
	rangeInterval int
	bpsToRemove   int
	liquidityPct  int

	owner    string
	protocol string

	computeUnitLimit int
	computeUnitPrice int
}

func (p *paramFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.intentType, "intent-type", "", "Canonical action type (e.g. solana.transfer.native)")

	f.StringVar(&p.to, "to", "", "Recipient address")
	f.StringVar(&p.amountSol, "amount-sol", "", "Native amount in SOL")

	f.StringVar(&p.tokenMint, "token-mint", "", "Token mint address or symbol")
	f.StringVar(&p.amountUi, "amount-ui", "", "Token amount in UI units")
	f.StringVar(&p.amountRaw, "amount-raw", "", "Token amount in minimal units")

	f.StringVar(&p.inputMint, "input-mint", "", "Swap input mint or symbol")
	f.StringVar(&p.outputMint, "output-mint", "", "Swap output mint or symbol")
	f.IntVar(&p.slippageBps, "slippage-bps", 0, "Slippage tolerance in basis points")
	f.BoolVar(&p.fallback, "fallback-to-jupiter", false, "Re-quote via unrestricted routing when the protocol has no route")

	f.StringVar(&p.depositMint, "deposit-mint", "", "Combined lend: deposit mint or symbol")
	f.StringVar(&p.depositAmountUi, "deposit-amount-ui", "", "Combined lend: deposit amount in UI units")
	f.StringVar(&p.depositAmountRaw, "deposit-amount-raw", "", "Combined lend: deposit amount in minimal units")
	f.StringVar(&p.borrowMint, "borrow-mint", "", "Combined lend: borrow mint or symbol")
	f.StringVar(&p.borrowAmountUi, "borrow-amount-ui", "", "Combined lend: borrow amount in UI units")
	f.StringVar(&p.borrowAmountRaw, "borrow-amount-raw", "", "Combined lend: borrow amount in minimal units")

	f.StringVar(&p.stakeAccount, "stake-account", "", "Stake account address")
	f.StringVar(&p.voteAccount, "vote-account", "", "Validator vote account address")
	f.StringVar(&p.newAuthority, "new-authority", "", "New stake authority address")
	f.StringVar(&p.authorityType, "authority-type", "", "Stake authority to rotate (staker|withdrawer)")

	f.StringVar(&p.pool, "pool", "", "Liquidity pool address")
	f.StringVar(&p.positionMint, "position-mint", "", "Position mint address")
	f.StringVar(&p.position, "position", "", "Position address")
	f.StringVar(&p.amountAMint, "amount-a-mint", "", "Side A mint for UI amounts")
	f.StringVar(&p.amountAUi, "amount-a-ui", "", "Side A amount in UI units")
	f.StringVar(&p.amountARaw, "amount-a-raw", "", "Side A amount in minimal units")
	f.StringVar(&p.amountBMint, "amount-b-mint", "", "Side B mint for UI amounts")
	f.StringVar(&p.amountBUi, "amount-b-ui", "", "Side B amount in UI units")
	f.StringVar(&p.amountBRaw, "amount-b-raw", "", "Side B amount in minimal units")
	f.IntVar(&p.tickLower, "tick-lower", 0, "Lower tick bound")
	f.IntVar(&p.tickUpper, "tick-upper", 0, "Upper tick bound")
	f.IntVar(&p.rangeInterval, "range-interval", 0, "Bins per side around the active bin")
	f.IntVar(&p.bpsToRemove, "bps-to-remove", 0, "Share of position liquidity to remove, in bps")
	f.IntVar(&p.liquidityPct, "liquidity-pct", 0, "Share of position liquidity to remove, 1-100")

	f.StringVar(&p.owner, "owner", "", "Owner address for reads")
	f.StringVar(&p.protocol, "protocol", "", "Liquidity protocol filter (orca|meteora)")

	f.IntVar(&p.computeUnitLimit, "compute-unit-limit", 0, "Compute unit limit override")
	f.IntVar(&p.computeUnitPrice, "compute-unit-price", 0, "Priority fee in micro-lamports per compute unit")
}

// extract maps changed flags into Params. Unchanged optional numerics stay
// nil so text-parsed or default values survive the merge.
func (p *paramFlags) extract(cmd *cobra.Command) intent.Params {
	params := intent.Params{
		IntentType:       p.intentType,
		To:               p.to,
		AmountSol:        p.amountSol,
		TokenMint:        p.tokenMint,
		AmountUi:         p.amountUi,
		AmountRaw:        p.amountRaw,
		InputMint:        p.inputMint,
		OutputMint:       p.outputMint,
		DepositMint:      p.depositMint,
		DepositAmountUi:  p.depositAmountUi,
		DepositAmountRaw: p.depositAmountRaw,
		BorrowMint:       p.borrowMint,
		BorrowAmountUi:   p.borrowAmountUi,
		BorrowAmountRaw:  p.borrowAmountRaw,
		StakeAccount:     p.stakeAccount,
		VoteAccount:      p.voteAccount,
		NewAuthority:     p.newAuthority,
		AuthorityType:    p.authorityType,
		Pool:             p.pool,
		PositionMint:     p.positionMint,
		Position:         p.position,
		AmountAMint:      p.amountAMint,
		AmountAUi:        p.amountAUi,
		AmountARaw:       p.amountARaw,
		AmountBMint:      p.amountBMint,
		AmountBUi:        p.amountBUi,
		AmountBRaw:       p.amountBRaw,
		Owner:            p.owner,
		Protocol:         p.protocol,
	}
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if changed("slippage-bps") {
		params.SlippageBps = intPtr(p.slippageBps)
	}
	if changed("fallback-to-jupiter") {
		params.FallbackToJupiterOnNoRoute = boolPtr(p.fallback)
	}
	if changed("tick-lower") {
		params.TickLower = intPtr(p.tickLower)
	}
	if changed("tick-upper") {
		params.TickUpper = intPtr(p.tickUpper)
	}
	if changed("range-interval") {
		params.RangeInterval = intPtr(p.rangeInterval)
	}
	if changed("bps-to-remove") {
		params.BpsToRemove = intPtr(p.bpsToRemove)
	}
	if changed("liquidity-pct") {
		params.LiquidityPct = intPtr(p.liquidityPct)
	}
	if changed("compute-unit-limit") {
		params.ComputeUnitLimit = intPtr(p.computeUnitLimit)
	}
	if changed("compute-unit-price") {
		params.ComputeUnitPrice = intPtr(p.computeUnitPrice)
	}
	return params
}

func (p *paramFlags) computeBudget(cmd *cobra.Command) builders.ComputeBudget {
	var budget builders.ComputeBudget
	if cmd.Flags().Changed("compute-unit-limit") {
		budget.UnitLimit = intPtr(p.computeUnitLimit)
	}
	if cmd.Flags().Changed("compute-unit-price") {
		budget.UnitPrice = intPtr(p.computeUnitPrice)
	}
	return budget
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
