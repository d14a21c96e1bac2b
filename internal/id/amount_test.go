package id

import (
	"testing"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
)

func TestNormalizeAmountRaw(t *testing.T) {
	got, err := NormalizeAmount("1500000", "", 6, AmountOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "1500000" {
		t.Fatalf("got %q", got)
	}

	for _, raw := range []string{"-5", "+5", "1.5", "abc"} {
		if _, err := NormalizeAmount(raw, "", 6, AmountOptions{}); err == nil {
			t.Fatalf("raw %q: expected error", raw)
		}
	}
}

func TestNormalizeAmountDecimal(t *testing.T) {
	cases := []struct {
		decimal  string
		decimals int
		want     string
	}{
		{"1.5", 9, "1500000000"},
		{"0.000000001", 9, "1"},
		{"2", 6, "2000000"},
		{"1.25", 2, "125"},
		{"1000000", 0, "1000000"},
	}
	for _, tc := range cases {
		got, err := NormalizeAmount("", tc.decimal, tc.decimals, AmountOptions{})
		if err != nil {
			t.Fatalf("decimal %q: %v", tc.decimal, err)
		}
		if got != tc.want {
			t.Fatalf("decimal %q = %q, want %q", tc.decimal, got, tc.want)
		}
	}
}

func TestNormalizeAmountRejectsExcessPrecision(t *testing.T) {
	_, err := NormalizeAmount("", "1.1234567", 6, AmountOptions{})
	if err == nil {
		t.Fatal("expected precision error")
	}
	if !clierr.HasCode(err, clierr.CodeUsage) {
		t.Fatalf("want usage error, got %v", err)
	}
}

func TestNormalizeAmountZero(t *testing.T) {
	if _, err := NormalizeAmount("", "0", 6, AmountOptions{}); err == nil {
		t.Fatal("zero without AllowZero should fail")
	}
	got, err := NormalizeAmount("", "0.0", 6, AmountOptions{AllowZero: true})
	if err != nil {
		t.Fatal(err)
	}
	if got != "0" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeAmountExactlyOneForm(t *testing.T) {
	if _, err := NormalizeAmount("1", "1", 6, AmountOptions{}); err == nil {
		t.Fatal("both forms should fail")
	}
	if _, err := NormalizeAmount("", "", 6, AmountOptions{}); err == nil {
		t.Fatal("no form should fail")
	}
}

func TestRawToDecimal(t *testing.T) {
	cases := []struct {
		raw      string
		decimals int
		want     string
	}{
		{"1500000000", 9, "1.5"},
		{"1", 9, "0.000000001"},
		{"2000000", 6, "2"},
		{"0", 6, "0"},
		{"42", 0, "42"},
	}
	for _, tc := range cases {
		if got := RawToDecimal(tc.raw, tc.decimals); got != tc.want {
			t.Fatalf("RawToDecimal(%q, %d) = %q, want %q", tc.raw, tc.decimals, got, tc.want)
		}
	}
}

func TestSolToLamports(t *testing.T) {
	got, err := SolToLamports("0.1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "100000000" {
		t.Fatalf("got %q", got)
	}
}
