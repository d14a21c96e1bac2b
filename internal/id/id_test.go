package id

import "testing"

func TestParseNetwork(t *testing.T) {
	cases := []struct {
		in   string
		want Network
	}{
		{"", NetworkMainnet},
		{"mainnet", NetworkMainnet},
		{"mainnet-beta", NetworkMainnet},
		{"MAINNET", NetworkMainnet},
		{" devnet ", NetworkDevnet},
		{"testnet", NetworkTestnet},
	}
	for _, tc := range cases {
		got, err := ParseNetwork(tc.in)
		if err != nil {
			t.Fatalf("ParseNetwork(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseNetwork(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseNetwork("ropsten"); err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestNetworkPrimaryAndExplorer(t *testing.T) {
	if !NetworkMainnet.IsPrimary() {
		t.Fatal("mainnet should be primary")
	}
	if NetworkDevnet.IsPrimary() {
		t.Fatal("devnet should not be primary")
	}
	if got := NetworkMainnet.ExplorerSuffix(); got != "" {
		t.Fatalf("mainnet explorer suffix = %q, want empty", got)
	}
	if got := NetworkDevnet.ExplorerSuffix(); got != "?cluster=devnet" {
		t.Fatalf("devnet explorer suffix = %q", got)
	}
}

func TestIsAddress(t *testing.T) {
	valid := []string{
		NativeMint,
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"11111111111111111111111111111111",
	}
	for _, v := range valid {
		if !IsAddress(v) {
			t.Fatalf("IsAddress(%q) = false, want true", v)
		}
	}

	invalid := []string{
		"",
		"USDC",
		"not-base58-0OIl",
		"abc",
		// Decodes to 44 bytes, not 32.
		"11111111111111111111111111111111111111111111",
	}
	for _, v := range invalid {
		if IsAddress(v) {
			t.Fatalf("IsAddress(%q) = true, want false", v)
		}
	}
}

func TestParseAddress(t *testing.T) {
	got, err := ParseAddress("to", "  "+NativeMint+" ")
	if err != nil {
		t.Fatal(err)
	}
	if got != NativeMint {
		t.Fatalf("got %q", got)
	}

	if _, err := ParseAddress("to", ""); err == nil {
		t.Fatal("expected error for empty address")
	}
	_, err = ParseAddress("to", "nope")
	if err == nil {
		t.Fatal("expected error for invalid address")
	}
}

func TestKnownToken(t *testing.T) {
	tok, ok := KnownToken(" usdc ")
	if !ok {
		t.Fatal("USDC should be a known token")
	}
	if tok.Decimals != 6 || tok.Address == "" {
		t.Fatalf("unexpected token %+v", tok)
	}
	if _, ok := KnownToken("NOPE123"); ok {
		t.Fatal("unexpected alias hit")
	}
}

func TestLooksLikeSymbol(t *testing.T) {
	for _, v := range []string{"SOL", "usdc", "$WIF", "Bonk"} {
		if !LooksLikeSymbol(v) {
			t.Fatalf("LooksLikeSymbol(%q) = false", v)
		}
	}
	for _, v := range []string{"", "with space", "waytoolongsymbol", NativeMint} {
		if LooksLikeSymbol(v) {
			t.Fatalf("LooksLikeSymbol(%q) = true", v)
		}
	}
}
