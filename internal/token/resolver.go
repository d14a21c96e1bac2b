package token

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/id"
)

// Index is the remote token-index collaborator: best-effort symbol search.
// Failures are swallowed by the resolver and treated as "unresolved".
type Index interface {
	Search(ctx context.Context, symbol string) (id.Token, error)
}

// DecimalsSource reads a mint's decimal count from on-chain metadata.
type DecimalsSource interface {
	MintDecimals(ctx context.Context, mint string) (int, error)
}

// Resolver normalizes token references and amounts. Its caches are
// process-lifetime and append-only in effect: entries are immutable once
// written and keyed by stable identifiers, so concurrent calls are safe.
type Resolver struct {
	index    Index
	decimals DecimalsSource

	symbols  *lru.Cache[string, id.Token]
	mintInfo *lru.Cache[string, int]
}

const cacheEntries = 4096

func NewResolver(index Index, decimals DecimalsSource) *Resolver {
	symbols, _ := lru.New[string, id.Token](cacheEntries)
	mintInfo, _ := lru.New[string, int](cacheEntries)
	return &Resolver{index: index, decimals: decimals, symbols: symbols, mintInfo: mintInfo}
}

// Resolve turns a token reference (address, known symbol, or remote-lookup
// candidate) into a canonical token. Resolution order: static alias table,
// address shape, remote index.
func (r *Resolver) Resolve(ctx context.Context, ref string) (id.Token, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return id.Token{}, "", clierr.New(clierr.CodeUsage, "token reference is required")
	}

	if t, ok := id.KnownToken(ref); ok {
		return t, "alias", nil
	}
	if id.IsAddress(ref) {
		return id.Token{Address: ref, Decimals: -1}, "address", nil
	}
	if !id.LooksLikeSymbol(ref) {
		return id.Token{}, "", clierr.Newf(clierr.CodeResolve, "unresolvable token: %s", ref)
	}

	key := strings.ToUpper(strings.Trim(ref, "$"))
	if t, ok := r.symbols.Get(key); ok {
		return t, "index-cache", nil
	}
	if r.index != nil {
		t, err := r.index.Search(ctx, key)
		if err == nil && id.IsAddress(t.Address) {
			if t.Symbol == "" {
				t.Symbol = key
			}
			r.symbols.Add(key, t)
			if t.Decimals >= 0 {
				r.mintInfo.Add(t.Address, t.Decimals)
			}
			return t, "index", nil
		}
	}
	return id.Token{}, "", clierr.Newf(clierr.CodeResolve, "unresolvable token: %s", ref)
}

// MintDecimals returns the decimal count for a mint, consulting the cache
// before the on-chain metadata collaborator.
func (r *Resolver) MintDecimals(ctx context.Context, mint string) (int, error) {
	if d, ok := r.mintInfo.Get(mint); ok {
		return d, nil
	}
	if t, ok := id.KnownToken(mint); ok && t.Address == mint {
		r.mintInfo.Add(mint, t.Decimals)
		return t.Decimals, nil
	}
	for _, symbol := range []string{"SOL", "USDC", "USDT", "JUP", "JTO", "BONK", "MSOL", "JITOSOL"} {
		if t, ok := id.KnownToken(symbol); ok && t.Address == mint {
			r.mintInfo.Add(mint, t.Decimals)
			return t.Decimals, nil
		}
	}
	if r.decimals == nil {
		return 0, clierr.Newf(clierr.CodeResolve, "missing decimals metadata for mint %s", mint)
	}
	d, err := r.decimals.MintDecimals(ctx, mint)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeResolve, "fetch mint decimals for "+mint, err)
	}
	if d < 0 {
		return 0, clierr.Newf(clierr.CodeResolve, "missing decimals metadata for mint %s", mint)
	}
	r.mintInfo.Add(mint, d)
	return d, nil
}

// ResolveAmount normalizes an amount for a resolved mint in strict priority:
// explicit minimal-unit raw string, then a human-decimal string converted
// via the token's decimals.
func (r *Resolver) ResolveAmount(ctx context.Context, mint, raw, ui string, opts id.AmountOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	ui = strings.TrimSpace(ui)
	if raw != "" {
		return id.NormalizeAmount(raw, "", 0, opts)
	}
	if ui == "" {
		return "", clierr.New(clierr.CodeUsage, "amount is required")
	}
	decimals, err := r.MintDecimals(ctx, mint)
	if err != nil {
		return "", err
	}
	return id.NormalizeAmount("", ui, decimals, opts)
}

// CachedSymbols exposes cache size for diagnostics.
func (r *Resolver) CachedSymbols() int { return r.symbols.Len() }
