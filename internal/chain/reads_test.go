package chain

import (
	"context"
	"errors"
	"testing"
)

type readFake struct {
	Client

	lamports   uint64
	balanceErr error
	accounts   []TokenAccountInfo
	stakes     []StakeAccountInfo
	mintSeen   string
}

func (f *readFake) GetBalance(context.Context, string) (uint64, error) {
	return f.lamports, f.balanceErr
}

func (f *readFake) GetTokenAccountsByOwner(_ context.Context, _ string, mint string) ([]TokenAccountInfo, error) {
	f.mintSeen = mint
	return f.accounts, nil
}

func (f *readFake) GetStakeAccountsByWithdrawer(context.Context, string) ([]StakeAccountInfo, error) {
	return f.stakes, nil
}

func TestBalanceCombinesNativeAndTokens(t *testing.T) {
	fake := &readFake{
		lamports: 2500000000,
		accounts: []TokenAccountInfo{
			{Mint: "m1", AmountRaw: "123000000", Decimals: 6, UIAmountString: "123"},
			{Mint: "m2", AmountRaw: "45", Decimals: 1},
		},
	}
	r := NewReader(fake)

	result, err := r.Balance(context.Background(), "owner")
	if err != nil {
		t.Fatal(err)
	}
	if result.Lamports != "2500000000" || result.Sol != "2.5" {
		t.Fatalf("native = %s / %s", result.Lamports, result.Sol)
	}
	if result.TokenCounts != 2 {
		t.Fatalf("tokenCounts = %d", result.TokenCounts)
	}
	// The parsed UI amount wins; a missing one is derived from the raw amount.
	if result.Tokens[0].Decimal != "123" || result.Tokens[1].Decimal != "4.5" {
		t.Fatalf("tokens = %+v", result.Tokens)
	}
}

func TestBalancePropagatesErrors(t *testing.T) {
	fake := &readFake{balanceErr: errors.New("node down")}
	if _, err := NewReader(fake).Balance(context.Background(), "owner"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTokenAccountsPassesMintFilter(t *testing.T) {
	fake := &readFake{accounts: []TokenAccountInfo{{Mint: "m1", AmountRaw: "1", Decimals: 0}}}
	r := NewReader(fake)

	tokens, err := r.TokenAccounts(context.Background(), "owner", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if fake.mintSeen != "m1" {
		t.Fatalf("mint filter = %q", fake.mintSeen)
	}
	if len(tokens) != 1 || tokens[0].Decimal != "1" {
		t.Fatalf("tokens = %+v", tokens)
	}
}
