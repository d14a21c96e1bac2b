package intent

// Params is the flat union of every per-action-type field the exposed
// operation accepts. Empty strings and nil pointers mean "not provided";
// the merge rule below treats any provided value as authoritative over its
// text-parsed counterpart.
type Params struct {
	IntentType string `json:"intent_type,omitempty"`

	// Transfer.
	To        string `json:"to,omitempty"`
	AmountSol string `json:"amount_sol,omitempty"`

	// Generic token amount, used by transfers, lending and side-inferred
	// liquidity adds.
	TokenMint string `json:"token_mint,omitempty"`
	AmountUi  string `json:"amount_ui,omitempty"`
	AmountRaw string `json:"amount_raw,omitempty"`

	// Swap.
	InputMint                  string `json:"input_mint,omitempty"`
	OutputMint                 string `json:"output_mint,omitempty"`
	SlippageBps                *int   `json:"slippage_bps,omitempty"`
	FallbackToJupiterOnNoRoute *bool  `json:"fallback_to_jupiter_on_no_route,omitempty"`

	// Combined lend deposit+borrow.
	DepositMint      string `json:"deposit_mint,omitempty"`
	DepositAmountUi  string `json:"deposit_amount_ui,omitempty"`
	DepositAmountRaw string `json:"deposit_amount_raw,omitempty"`
	BorrowMint       string `json:"borrow_mint,omitempty"`
	BorrowAmountUi   string `json:"borrow_amount_ui,omitempty"`
	BorrowAmountRaw  string `json:"borrow_amount_raw,omitempty"`

	// Staking.
	StakeAccount  string `json:"stake_account,omitempty"`
	VoteAccount   string `json:"vote_account,omitempty"`
	NewAuthority  string `json:"new_authority,omitempty"`
	AuthorityType string `json:"authority_type,omitempty"`

	// Liquidity.
	Pool          string `json:"pool,omitempty"`
	PositionMint  string `json:"position_mint,omitempty"`
	Position      string `json:"position,omitempty"`
	AmountAMint   string `json:"amount_a_mint,omitempty"`
	AmountAUi     string `json:"amount_a_ui,omitempty"`
	AmountARaw    string `json:"amount_a_raw,omitempty"`
	AmountBMint   string `json:"amount_b_mint,omitempty"`
	AmountBUi     string `json:"amount_b_ui,omitempty"`
	AmountBRaw    string `json:"amount_b_raw,omitempty"`
	TickLower     *int   `json:"tick_lower,omitempty"`
	TickUpper     *int   `json:"tick_upper,omitempty"`
	RangeInterval *int   `json:"range_interval,omitempty"`
	BpsToRemove   *int   `json:"bps_to_remove,omitempty"`
	LiquidityPct  *int   `json:"liquidity_pct,omitempty"`

	// Reads.
	Owner    string `json:"owner,omitempty"`
	Protocol string `json:"protocol,omitempty"`

	// Compute budget, passed through to instruction builders.
	ComputeUnitLimit *int `json:"compute_unit_limit,omitempty"`
	ComputeUnitPrice *int `json:"compute_unit_price,omitempty"`
}

// Merge overlays explicit values on top of text-parsed values. An explicitly
// provided, non-undefined field always wins; unset fields fall back to the
// parsed value.
func Merge(explicit, parsed Params) Params {
	out := parsed
	overlayString(&out.IntentType, explicit.IntentType)
	overlayString(&out.To, explicit.To)
	overlayString(&out.AmountSol, explicit.AmountSol)
	overlayString(&out.TokenMint, explicit.TokenMint)
	overlayString(&out.AmountUi, explicit.AmountUi)
	overlayString(&out.AmountRaw, explicit.AmountRaw)
	overlayString(&out.InputMint, explicit.InputMint)
	overlayString(&out.OutputMint, explicit.OutputMint)
	overlayInt(&out.SlippageBps, explicit.SlippageBps)
	overlayBool(&out.FallbackToJupiterOnNoRoute, explicit.FallbackToJupiterOnNoRoute)
	overlayString(&out.DepositMint, explicit.DepositMint)
	overlayString(&out.DepositAmountUi, explicit.DepositAmountUi)
	overlayString(&out.DepositAmountRaw, explicit.DepositAmountRaw)
	overlayString(&out.BorrowMint, explicit.BorrowMint)
	overlayString(&out.BorrowAmountUi, explicit.BorrowAmountUi)
	overlayString(&out.BorrowAmountRaw, explicit.BorrowAmountRaw)
	overlayString(&out.StakeAccount, explicit.StakeAccount)
	overlayString(&out.VoteAccount, explicit.VoteAccount)
	overlayString(&out.NewAuthority, explicit.NewAuthority)
	overlayString(&out.AuthorityType, explicit.AuthorityType)
	overlayString(&out.Pool, explicit.Pool)
	overlayString(&out.PositionMint, explicit.PositionMint)
	overlayString(&out.Position, explicit.Position)
	overlayString(&out.AmountAMint, explicit.AmountAMint)
	overlayString(&out.AmountAUi, explicit.AmountAUi)
	overlayString(&out.AmountARaw, explicit.AmountARaw)
	overlayString(&out.AmountBMint, explicit.AmountBMint)
	overlayString(&out.AmountBUi, explicit.AmountBUi)
	overlayString(&out.AmountBRaw, explicit.AmountBRaw)
	overlayInt(&out.TickLower, explicit.TickLower)
	overlayInt(&out.TickUpper, explicit.TickUpper)
	overlayInt(&out.RangeInterval, explicit.RangeInterval)
	overlayInt(&out.BpsToRemove, explicit.BpsToRemove)
	overlayInt(&out.LiquidityPct, explicit.LiquidityPct)
	overlayString(&out.Owner, explicit.Owner)
	overlayString(&out.Protocol, explicit.Protocol)
	overlayInt(&out.ComputeUnitLimit, explicit.ComputeUnitLimit)
	overlayInt(&out.ComputeUnitPrice, explicit.ComputeUnitPrice)
	return out
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayInt(dst **int, v *int) {
	if v != nil {
		*dst = v
	}
}

func overlayBool(dst **bool, v *bool) {
	if v != nil {
		*dst = v
	}
}
