package token

import (
	"context"
	"errors"
	"testing"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/id"
)

type fakeIndex struct {
	tokens map[string]id.Token
	calls  int
}

func (f *fakeIndex) Search(_ context.Context, symbol string) (id.Token, error) {
	f.calls++
	t, ok := f.tokens[symbol]
	if !ok {
		return id.Token{}, errors.New("not found")
	}
	return t, nil
}

type fakeDecimals struct {
	decimals map[string]int
	calls    int
}

func (f *fakeDecimals) MintDecimals(_ context.Context, mint string) (int, error) {
	f.calls++
	d, ok := f.decimals[mint]
	if !ok {
		return 0, errors.New("mint not found")
	}
	return d, nil
}

const wifMint = "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm"

func TestResolveAlias(t *testing.T) {
	r := NewResolver(nil, nil)
	tok, by, err := r.Resolve(context.Background(), "usdc")
	if err != nil {
		t.Fatal(err)
	}
	if by != "alias" {
		t.Fatalf("resolvedBy = %s", by)
	}
	if tok.Decimals != 6 {
		t.Fatalf("decimals = %d", tok.Decimals)
	}
}

func TestResolveAddressPassthrough(t *testing.T) {
	r := NewResolver(nil, nil)
	tok, by, err := r.Resolve(context.Background(), wifMint)
	if err != nil {
		t.Fatal(err)
	}
	if by != "address" {
		t.Fatalf("resolvedBy = %s", by)
	}
	if tok.Address != wifMint || tok.Decimals != -1 {
		t.Fatalf("unexpected token %+v", tok)
	}
}

func TestResolveIndexPopulatesCache(t *testing.T) {
	index := &fakeIndex{tokens: map[string]id.Token{
		"WIF": {Symbol: "WIF", Address: wifMint, Decimals: 6},
	}}
	r := NewResolver(index, nil)

	tok, by, err := r.Resolve(context.Background(), "$wif")
	if err != nil {
		t.Fatal(err)
	}
	if by != "index" || tok.Address != wifMint {
		t.Fatalf("resolvedBy = %s, token = %+v", by, tok)
	}

	// Second lookup hits the cache, not the index.
	_, by, err = r.Resolve(context.Background(), "WIF")
	if err != nil {
		t.Fatal(err)
	}
	if by != "index-cache" {
		t.Fatalf("resolvedBy = %s, want index-cache", by)
	}
	if index.calls != 1 {
		t.Fatalf("index calls = %d, want 1", index.calls)
	}

	// The index result also seeds the decimals cache.
	d, err := r.MintDecimals(context.Background(), wifMint)
	if err != nil {
		t.Fatal(err)
	}
	if d != 6 {
		t.Fatalf("decimals = %d", d)
	}
}

func TestResolveUnresolvable(t *testing.T) {
	r := NewResolver(&fakeIndex{}, nil)
	_, _, err := r.Resolve(context.Background(), "NOSUCH")
	if !clierr.HasCode(err, clierr.CodeResolve) {
		t.Fatalf("want resolve error, got %v", err)
	}
	_, _, err = r.Resolve(context.Background(), "")
	if !clierr.HasCode(err, clierr.CodeUsage) {
		t.Fatalf("want usage error, got %v", err)
	}
}

func TestMintDecimalsFallsBackToChain(t *testing.T) {
	chain := &fakeDecimals{decimals: map[string]int{wifMint: 6}}
	r := NewResolver(nil, chain)

	d, err := r.MintDecimals(context.Background(), wifMint)
	if err != nil {
		t.Fatal(err)
	}
	if d != 6 {
		t.Fatalf("decimals = %d", d)
	}
	// Second call served from cache.
	if _, err := r.MintDecimals(context.Background(), wifMint); err != nil {
		t.Fatal(err)
	}
	if chain.calls != 1 {
		t.Fatalf("chain calls = %d, want 1", chain.calls)
	}
}

func TestMintDecimalsKnownMint(t *testing.T) {
	r := NewResolver(nil, nil)
	usdc, _ := id.KnownToken("USDC")
	d, err := r.MintDecimals(context.Background(), usdc.Address)
	if err != nil {
		t.Fatal(err)
	}
	if d != 6 {
		t.Fatalf("decimals = %d", d)
	}
}

func TestResolveAmountPriority(t *testing.T) {
	r := NewResolver(nil, &fakeDecimals{decimals: map[string]int{wifMint: 6}})

	// Raw wins without touching decimals metadata.
	got, err := r.ResolveAmount(context.Background(), wifMint, "1500", "", id.AmountOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "1500" {
		t.Fatalf("got %q", got)
	}

	got, err = r.ResolveAmount(context.Background(), wifMint, "", "2.5", id.AmountOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "2500000" {
		t.Fatalf("got %q", got)
	}

	if _, err := r.ResolveAmount(context.Background(), wifMint, "", "", id.AmountOptions{}); err == nil {
		t.Fatal("missing amount should fail")
	}
}
