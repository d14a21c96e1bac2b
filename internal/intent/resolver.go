package intent

import (
	"context"
	"strings"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/id"
	"github.com/ggonzalez94/solagent/internal/token"
)

// Parsed carries the text parser's best guess into resolution.
type Parsed struct {
	Kind                Kind
	Params              Params
	AmbiguousCategories []string
}

// PoolInfoSource resolves the two constituent mints of a liquidity pool (or
// the pool backing a position mint), used for automatic side inference on
// two-sided actions.
type PoolInfoSource interface {
	PoolMints(ctx context.Context, poolOrPosition string) (mintA, mintB string, err error)
}

const (
	defaultSlippageBps = 50
	maxSlippageBps     = 10000

	// Whirlpool full-range tick bounds.
	fullRangeTickLower = -443636
	fullRangeTickUpper = 443636

	maxComputeUnitLimit = 1_400_000
)

// Resolver merges parsed-text fields with explicit structured fields,
// disambiguates the action type, validates field completeness per action
// type and produces one canonical Intent.
type Resolver struct {
	tokens *token.Resolver
	pools  PoolInfoSource
}

func NewResolver(tokens *token.Resolver, pools PoolInfoSource) *Resolver {
	return &Resolver{tokens: tokens, pools: pools}
}

// Resolve produces the canonical Intent for one call. Explicit fields win
// over text-parsed fields; the action type comes from an explicit
// intentType, then unambiguous shape inference, then the parser's
// suggestion.
func (r *Resolver) Resolve(ctx context.Context, explicit Params, parsed Parsed, signer string) (Intent, error) {
	merged := Merge(explicit, parsed.Params)

	kind, err := r.resolveKind(merged, parsed)
	if err != nil {
		return nil, err
	}

	if err := r.checkOwner(merged, signer, kind); err != nil {
		return nil, err
	}

	switch kind {
	case KindTransferNative:
		return r.buildTransferNative(ctx, merged)
	case KindTransferSPL:
		return r.buildTransferSPL(ctx, merged)
	case KindSwapJupiter, KindSwapOrca, KindSwapRaydium:
		return r.buildSwap(ctx, kind, merged)
	case KindLendDeposit, KindLendBorrow, KindLendRepay, KindLendWithdraw:
		return r.buildLendSingle(ctx, kind, merged)
	case KindLendDepositAndBorrow:
		return r.buildLendCombined(ctx, merged)
	case KindStakeCreate:
		return r.buildStakeCreate(merged)
	case KindStakeDelegate:
		return r.buildStakeDelegate(merged)
	case KindStakeAuthorize:
		return r.buildStakeAuthorize(merged)
	case KindStakeDeactivate:
		return r.buildStakeDeactivate(merged)
	case KindStakeWithdraw:
		return r.buildStakeWithdraw(merged, signer)
	case KindOrcaOpenPosition:
		return r.buildOrcaOpen(ctx, merged)
	case KindOrcaClosePosition:
		return r.buildOrcaClose(merged)
	case KindOrcaHarvest:
		return r.buildOrcaHarvest(merged)
	case KindOrcaIncrease:
		return r.buildOrcaIncrease(ctx, merged)
	case KindOrcaDecrease:
		return r.buildOrcaDecrease(merged)
	case KindMeteoraAdd:
		return r.buildMeteoraAdd(ctx, merged)
	case KindMeteoraRemove:
		return r.buildMeteoraRemove(merged)
	case KindReadBalance, KindReadTokenAccounts, KindReadLendObligation, KindReadStakeAccounts, KindReadLiquidityPositions:
		return r.buildRead(ctx, kind, merged, signer)
	}
	return nil, clierr.Newf(clierr.CodeUsage, "unsupported intentType: %s", kind)
}

func (r *Resolver) resolveKind(merged Params, parsed Parsed) (Kind, error) {
	if t := strings.TrimSpace(merged.IntentType); t != "" {
		if !KnownKind(t) {
			return "", clierr.Newf(clierr.CodeUsage, "unknown intentType: %s", t)
		}
		return Kind(t), nil
	}
	// A kind committed by the text parser outranks shape inference: venue
	// words like "on orca" carry routing semantics the field shape alone
	// cannot recover.
	if parsed.Kind != "" {
		return parsed.Kind, nil
	}
	if kind := inferKind(merged); kind != "" {
		return kind, nil
	}
	if len(parsed.AmbiguousCategories) > 1 {
		return "", clierr.Newf(clierr.CodeAmbiguous,
			"intentType is required: text matches multiple action families (%s)",
			strings.Join(parsed.AmbiguousCategories, ", "))
	}
	return "", clierr.New(clierr.CodeUsage, "intentType is required")
}

// inferKind infers the action type from which fields are present, only when
// the shape is unambiguous.
func inferKind(p Params) Kind {
	switch {
	case p.PositionMint != "" && p.Pool == "" && p.LiquidityPct != nil:
		return KindOrcaDecrease
	case p.PositionMint != "" && p.Pool == "" && hasAnyAmount(p):
		return KindOrcaIncrease
	case p.InputMint != "" && p.OutputMint != "":
		return KindSwapJupiter
	case p.DepositMint != "" && p.BorrowMint != "":
		return KindLendDepositAndBorrow
	case p.To != "" && p.TokenMint == "" && p.AmountSol != "" && p.AmountRaw == "" && p.AmountUi == "":
		return KindTransferNative
	case p.To != "" && p.TokenMint != "":
		return KindTransferSPL
	}
	return ""
}

func hasAnyAmount(p Params) bool {
	return p.AmountRaw != "" || p.AmountUi != "" ||
		p.AmountARaw != "" || p.AmountAUi != "" ||
		p.AmountBRaw != "" || p.AmountBUi != ""
}

// checkOwner enforces the signer-identity invariant: an explicitly given
// owner must equal the active signer. A mismatch is a hard error, never a
// silent override.
func (r *Resolver) checkOwner(p Params, signer string, kind Kind) error {
	owner := strings.TrimSpace(p.Owner)
	if owner == "" {
		return nil
	}
	if strings.HasPrefix(string(kind), "solana.read.") {
		// Reads may query any owner.
		return nil
	}
	if signer != "" && owner != signer {
		return clierr.Newf(clierr.CodeOwner, "owner %s does not match active signer %s", owner, signer)
	}
	return nil
}

// nativeAmount resolves a lamport amount in strict priority: raw minimal
// units, then a UI decimal, then the native SOL decimal, all at the fixed
// native decimal count.
func nativeAmount(p Params) (string, error) {
	if p.AmountRaw != "" {
		return id.NormalizeAmount(p.AmountRaw, "", 0, id.AmountOptions{})
	}
	if p.AmountUi != "" {
		return id.NormalizeAmount("", p.AmountUi, id.NativeDecimals, id.AmountOptions{})
	}
	if p.AmountSol != "" {
		return id.NormalizeAmount("", p.AmountSol, id.NativeDecimals, id.AmountOptions{})
	}
	return "", clierr.New(clierr.CodeUsage, "amount is required")
}

func (r *Resolver) buildTransferNative(_ context.Context, p Params) (Intent, error) {
	to, err := id.ParseAddress("toAddress", p.To)
	if err != nil {
		return nil, err
	}
	lamports, err := nativeAmount(p)
	if err != nil {
		return nil, err
	}
	return TransferNative{To: to, Lamports: lamports}, nil
}

func (r *Resolver) buildTransferSPL(ctx context.Context, p Params) (Intent, error) {
	to, err := id.ParseAddress("toAddress", p.To)
	if err != nil {
		return nil, err
	}
	tok, _, err := r.tokens.Resolve(ctx, p.TokenMint)
	if err != nil {
		return nil, err
	}
	amount, err := r.tokens.ResolveAmount(ctx, tok.Address, p.AmountRaw, p.AmountUi, id.AmountOptions{})
	if err != nil {
		return nil, err
	}
	return TransferSPL{To: to, Mint: tok.Address, Amount: amount}, nil
}

func (r *Resolver) slippage(p Params) (int, error) {
	if p.SlippageBps == nil {
		return defaultSlippageBps, nil
	}
	v := *p.SlippageBps
	if v < 0 || v > maxSlippageBps {
		return 0, clierr.Newf(clierr.CodeUsage, "slippageBps out of range [0,%d]: %d", maxSlippageBps, v)
	}
	return v, nil
}

func (r *Resolver) buildSwap(ctx context.Context, kind Kind, p Params) (Intent, error) {
	in, _, err := r.tokens.Resolve(ctx, p.InputMint)
	if err != nil {
		return nil, err
	}
	out, _, err := r.tokens.Resolve(ctx, p.OutputMint)
	if err != nil {
		return nil, err
	}
	if in.Address == out.Address {
		return nil, clierr.New(clierr.CodeUsage, "inputMint and outputMint must differ")
	}
	amount, err := r.tokens.ResolveAmount(ctx, in.Address, p.AmountRaw, p.AmountUi, id.AmountOptions{})
	if err != nil {
		return nil, err
	}
	slippage, err := r.slippage(p)
	if err != nil {
		return nil, err
	}
	params := SwapParams{InputMint: in.Address, OutputMint: out.Address, Amount: amount, SlippageBps: slippage}
	fallback := p.FallbackToJupiterOnNoRoute != nil && *p.FallbackToJupiterOnNoRoute
	switch kind {
	case KindSwapOrca:
		return SwapOrca{SwapParams: params, FallbackToJupiterOnNoRoute: fallback}, nil
	case KindSwapRaydium:
		return SwapRaydium{SwapParams: params, FallbackToJupiterOnNoRoute: fallback}, nil
	default:
		return SwapJupiter{SwapParams: params}, nil
	}
}

func (r *Resolver) buildLendSingle(ctx context.Context, kind Kind, p Params) (Intent, error) {
	tok, _, err := r.tokens.Resolve(ctx, p.TokenMint)
	if err != nil {
		return nil, err
	}
	amount, err := r.tokens.ResolveAmount(ctx, tok.Address, p.AmountRaw, p.AmountUi, id.AmountOptions{})
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLendDeposit:
		return LendDeposit{Mint: tok.Address, Amount: amount}, nil
	case KindLendBorrow:
		return LendBorrow{Mint: tok.Address, Amount: amount}, nil
	case KindLendRepay:
		return LendRepay{Mint: tok.Address, Amount: amount}, nil
	default:
		return LendWithdraw{Mint: tok.Address, Amount: amount}, nil
	}
}

func (r *Resolver) buildLendCombined(ctx context.Context, p Params) (Intent, error) {
	dep, _, err := r.tokens.Resolve(ctx, p.DepositMint)
	if err != nil {
		return nil, err
	}
	bor, _, err := r.tokens.Resolve(ctx, p.BorrowMint)
	if err != nil {
		return nil, err
	}
	if err := oneFormPerSide("deposit", p.DepositAmountRaw, p.DepositAmountUi); err != nil {
		return nil, err
	}
	if err := oneFormPerSide("borrow", p.BorrowAmountRaw, p.BorrowAmountUi); err != nil {
		return nil, err
	}
	depAmount, err := r.tokens.ResolveAmount(ctx, dep.Address, p.DepositAmountRaw, p.DepositAmountUi, id.AmountOptions{})
	if err != nil {
		return nil, err
	}
	borAmount, err := r.tokens.ResolveAmount(ctx, bor.Address, p.BorrowAmountRaw, p.BorrowAmountUi, id.AmountOptions{})
	if err != nil {
		return nil, err
	}
	return LendDepositAndBorrow{
		DepositMint: dep.Address, DepositAmount: depAmount,
		BorrowMint: bor.Address, BorrowAmount: borAmount,
	}, nil
}

func oneFormPerSide(side, raw, ui string) error {
	if raw != "" && ui != "" {
		return clierr.Newf(clierr.CodeUsage, "%s side accepts either a raw or a UI amount, not both", side)
	}
	return nil
}

func (r *Resolver) buildStakeCreate(p Params) (Intent, error) {
	lamports, err := nativeAmount(p)
	if err != nil {
		return nil, err
	}
	it := StakeCreate{Lamports: lamports}
	if p.VoteAccount != "" {
		vote, err := id.ParseAddress("voteAccount", p.VoteAccount)
		if err != nil {
			return nil, err
		}
		it.VoteAccount = vote
	}
	return it, nil
}

func (r *Resolver) buildStakeDelegate(p Params) (Intent, error) {
	stake, err := id.ParseAddress("stakeAccount", p.StakeAccount)
	if err != nil {
		return nil, err
	}
	vote, err := id.ParseAddress("voteAccount", p.VoteAccount)
	if err != nil {
		return nil, err
	}
	return StakeDelegate{StakeAccount: stake, VoteAccount: vote}, nil
}

func (r *Resolver) buildStakeAuthorize(p Params) (Intent, error) {
	stake, err := id.ParseAddress("stakeAccount", p.StakeAccount)
	if err != nil {
		return nil, err
	}
	auth, err := id.ParseAddress("newAuthority", p.NewAuthority)
	if err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(p.AuthorityType))
	if kind == "" {
		kind = "staker"
	}
	if kind != "staker" && kind != "withdrawer" {
		return nil, clierr.Newf(clierr.CodeUsage, "authorityType must be staker or withdrawer: %s", p.AuthorityType)
	}
	return StakeAuthorize{StakeAccount: stake, NewAuthority: auth, AuthorityType: kind}, nil
}

func (r *Resolver) buildStakeDeactivate(p Params) (Intent, error) {
	stake, err := id.ParseAddress("stakeAccount", p.StakeAccount)
	if err != nil {
		return nil, err
	}
	return StakeDeactivate{StakeAccount: stake}, nil
}

func (r *Resolver) buildStakeWithdraw(p Params, signer string) (Intent, error) {
	stake, err := id.ParseAddress("stakeAccount", p.StakeAccount)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSpace(p.To)
	if to == "" {
		to = signer
	}
	to, err = id.ParseAddress("toAddress", to)
	if err != nil {
		return nil, err
	}
	lamports, err := nativeAmount(p)
	if err != nil {
		return nil, err
	}
	return StakeWithdraw{StakeAccount: stake, To: to, Lamports: lamports}, nil
}

// sideAmounts resolves the two legs of a two-sided liquidity action.
// Exactly one addressing form is accepted per side: a raw amount, a UI
// amount plus per-side mint, or a single generic amount whose side is
// inferred by matching its mint against the pool's constituent mints.
func (r *Resolver) sideAmounts(ctx context.Context, p Params, pool string) (amountA, amountB string, err error) {
	perSide := p.AmountARaw != "" || p.AmountAUi != "" || p.AmountBRaw != "" || p.AmountBUi != ""
	generic := p.AmountRaw != "" || p.AmountUi != ""

	if perSide && generic {
		return "", "", clierr.New(clierr.CodeUsage, "provide per-side amounts or a single generic amount, not both")
	}

	if perSide {
		if err := oneFormPerSide("A", p.AmountARaw, p.AmountAUi); err != nil {
			return "", "", err
		}
		if err := oneFormPerSide("B", p.AmountBRaw, p.AmountBUi); err != nil {
			return "", "", err
		}
		zero := id.AmountOptions{AllowZero: true}
		amountA = "0"
		amountB = "0"
		if p.AmountARaw != "" || p.AmountAUi != "" {
			mintA, err := r.sideMint(ctx, p.AmountAMint, p.AmountAUi != "")
			if err != nil {
				return "", "", clierr.Wrap(clierr.CodeUsage, "side A", err)
			}
			amountA, err = r.tokens.ResolveAmount(ctx, mintA, p.AmountARaw, p.AmountAUi, zero)
			if err != nil {
				return "", "", err
			}
		}
		if p.AmountBRaw != "" || p.AmountBUi != "" {
			mintB, err := r.sideMint(ctx, p.AmountBMint, p.AmountBUi != "")
			if err != nil {
				return "", "", clierr.Wrap(clierr.CodeUsage, "side B", err)
			}
			amountB, err = r.tokens.ResolveAmount(ctx, mintB, p.AmountBRaw, p.AmountBUi, zero)
			if err != nil {
				return "", "", err
			}
		}
		if amountA == "0" && amountB == "0" {
			return "", "", clierr.New(clierr.CodeUsage, "at least one side amount must be greater than zero")
		}
		return amountA, amountB, nil
	}

	if !generic {
		return "", "", clierr.New(clierr.CodeUsage, "amount is required")
	}
	if strings.TrimSpace(p.TokenMint) == "" {
		return "", "", clierr.New(clierr.CodeUsage, "tokenMint is required to infer the side of a generic amount")
	}
	if r.pools == nil {
		return "", "", clierr.New(clierr.CodeUnsupported, "side inference requires pool metadata")
	}
	tok, _, err := r.tokens.Resolve(ctx, p.TokenMint)
	if err != nil {
		return "", "", err
	}
	mintA, mintB, err := r.pools.PoolMints(ctx, pool)
	if err != nil {
		return "", "", clierr.Wrap(clierr.CodeResolve, "resolve pool mints for "+pool, err)
	}
	amount, err := r.tokens.ResolveAmount(ctx, tok.Address, p.AmountRaw, p.AmountUi, id.AmountOptions{})
	if err != nil {
		return "", "", err
	}
	switch tok.Address {
	case mintA:
		return amount, "0", nil
	case mintB:
		return "0", amount, nil
	}
	return "", "", clierr.Newf(clierr.CodeUsage,
		"tokenMint %s matches neither pool mint (%s, %s)", tok.Address, mintA, mintB)
}

// sideMint returns the mint a per-side UI amount converts against. Raw
// amounts need no decimals, so the mint may be absent.
func (r *Resolver) sideMint(ctx context.Context, ref string, required bool) (string, error) {
	if strings.TrimSpace(ref) == "" {
		if required {
			return "", clierr.New(clierr.CodeUsage, "a UI amount requires its side mint")
		}
		return "", nil
	}
	tok, _, err := r.tokens.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return tok.Address, nil
}

func (r *Resolver) buildOrcaOpen(ctx context.Context, p Params) (Intent, error) {
	pool, err := id.ParseAddress("pool", p.Pool)
	if err != nil {
		return nil, err
	}
	amountA, amountB, err := r.sideAmounts(ctx, p, pool)
	if err != nil {
		return nil, err
	}
	slippage, err := r.slippage(p)
	if err != nil {
		return nil, err
	}
	lower, upper := fullRangeTickLower, fullRangeTickUpper
	if p.TickLower != nil {
		lower = *p.TickLower
	}
	if p.TickUpper != nil {
		upper = *p.TickUpper
	}
	if lower >= upper {
		return nil, clierr.Newf(clierr.CodeUsage, "tickLower must be below tickUpper (%d >= %d)", lower, upper)
	}
	return OrcaOpenPosition{
		Whirlpool: pool, AmountA: amountA, AmountB: amountB,
		TickLower: lower, TickUpper: upper, SlippageBps: slippage,
	}, nil
}

func (r *Resolver) buildOrcaClose(p Params) (Intent, error) {
	position, err := id.ParseAddress("positionMint", p.PositionMint)
	if err != nil {
		return nil, err
	}
	slippage, err := r.slippage(p)
	if err != nil {
		return nil, err
	}
	return OrcaClosePosition{PositionMint: position, SlippageBps: slippage}, nil
}

func (r *Resolver) buildOrcaHarvest(p Params) (Intent, error) {
	position, err := id.ParseAddress("positionMint", p.PositionMint)
	if err != nil {
		return nil, err
	}
	return OrcaHarvest{PositionMint: position}, nil
}

func (r *Resolver) buildOrcaIncrease(ctx context.Context, p Params) (Intent, error) {
	position, err := id.ParseAddress("positionMint", p.PositionMint)
	if err != nil {
		return nil, err
	}
	amountA, amountB, err := r.sideAmounts(ctx, p, position)
	if err != nil {
		return nil, err
	}
	slippage, err := r.slippage(p)
	if err != nil {
		return nil, err
	}
	return OrcaIncrease{PositionMint: position, AmountA: amountA, AmountB: amountB, SlippageBps: slippage}, nil
}

func (r *Resolver) buildOrcaDecrease(p Params) (Intent, error) {
	position, err := id.ParseAddress("positionMint", p.PositionMint)
	if err != nil {
		return nil, err
	}
	pct := 100
	if p.LiquidityPct != nil {
		pct = *p.LiquidityPct
	}
	if pct < 1 || pct > 100 {
		return nil, clierr.Newf(clierr.CodeUsage, "liquidityPct out of range [1,100]: %d", pct)
	}
	slippage, err := r.slippage(p)
	if err != nil {
		return nil, err
	}
	return OrcaDecrease{PositionMint: position, LiquidityPct: pct, SlippageBps: slippage}, nil
}

func (r *Resolver) buildMeteoraAdd(ctx context.Context, p Params) (Intent, error) {
	pool, err := id.ParseAddress("pool", p.Pool)
	if err != nil {
		return nil, err
	}
	amountX, amountY, err := r.sideAmounts(ctx, p, pool)
	if err != nil {
		return nil, err
	}
	interval := 10
	if p.RangeInterval != nil {
		interval = *p.RangeInterval
	}
	if interval < 1 || interval > 69 {
		return nil, clierr.Newf(clierr.CodeUsage, "rangeInterval out of range [1,69]: %d", interval)
	}
	return MeteoraAdd{Pool: pool, AmountX: amountX, AmountY: amountY, RangeInterval: interval}, nil
}

func (r *Resolver) buildMeteoraRemove(p Params) (Intent, error) {
	pool, err := id.ParseAddress("pool", p.Pool)
	if err != nil {
		return nil, err
	}
	position, err := id.ParseAddress("position", p.Position)
	if err != nil {
		return nil, err
	}
	bps := maxSlippageBps
	if p.BpsToRemove != nil {
		bps = *p.BpsToRemove
	}
	if bps < 1 || bps > maxSlippageBps {
		return nil, clierr.Newf(clierr.CodeUsage, "bpsToRemove out of range [1,%d]: %d", maxSlippageBps, bps)
	}
	return MeteoraRemove{Pool: pool, Position: position, BpsToRemove: bps}, nil
}

func (r *Resolver) buildRead(ctx context.Context, kind Kind, p Params, signer string) (Intent, error) {
	owner := strings.TrimSpace(p.Owner)
	if owner == "" {
		owner = signer
	}
	owner, err := id.ParseAddress("owner", owner)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindReadBalance:
		return ReadBalance{Owner: owner}, nil
	case KindReadTokenAccounts:
		mint := ""
		if strings.TrimSpace(p.TokenMint) != "" {
			tok, _, err := r.tokens.Resolve(ctx, p.TokenMint)
			if err != nil {
				return nil, err
			}
			mint = tok.Address
		}
		return ReadTokenAccounts{Owner: owner, Mint: mint}, nil
	case KindReadLendObligation:
		return ReadLendObligation{Owner: owner}, nil
	case KindReadStakeAccounts:
		return ReadStakeAccounts{Owner: owner}, nil
	default:
		protocol := strings.ToLower(strings.TrimSpace(p.Protocol))
		if protocol != "" && protocol != "orca" && protocol != "meteora" {
			return nil, clierr.Newf(clierr.CodeUsage, "unsupported liquidity protocol: %s", p.Protocol)
		}
		return ReadLiquidityPositions{Owner: owner, Protocol: protocol}, nil
	}
}

// ValidateComputeBudget range-checks the optional compute budget fields.
func ValidateComputeBudget(p Params) error {
	if p.ComputeUnitLimit != nil {
		v := *p.ComputeUnitLimit
		if v < 1 || v > maxComputeUnitLimit {
			return clierr.Newf(clierr.CodeUsage, "computeUnitLimit out of range [1,%d]: %d", maxComputeUnitLimit, v)
		}
	}
	if p.ComputeUnitPrice != nil && *p.ComputeUnitPrice < 0 {
		return clierr.Newf(clierr.CodeUsage, "computeUnitPrice must be >= 0: %d", *p.ComputeUnitPrice)
	}
	return nil
}
