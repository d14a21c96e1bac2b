package id

import (
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// AmountOptions controls validation of a normalized amount.
type AmountOptions struct {
	// AllowZero permits a zero result, e.g. for one leg of a two-sided
	// liquidity add.
	AllowZero bool
}

// NormalizeAmount converts either a minimal-unit integer string or a
// human-decimal string into a minimal-unit integer string. Exactly one of
// raw/decimal must be set. Conversion is exact: a decimal with more
// fractional digits than the token supports is rejected.
func NormalizeAmount(raw, decimal string, decimals int, opts AmountOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	decimal = strings.TrimSpace(decimal)
	if raw != "" && decimal != "" {
		return "", clierr.New(clierr.CodeUsage, "provide either a raw amount or a decimal amount, not both")
	}
	if raw == "" && decimal == "" {
		return "", clierr.New(clierr.CodeUsage, "amount is required")
	}
	if decimals < 0 {
		return "", clierr.New(clierr.CodeUsage, "decimals must be >= 0")
	}

	if raw != "" {
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok || strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
			return "", clierr.Newf(clierr.CodeUsage, "raw amount must be a non-negative integer string: %s", raw)
		}
		return checkSign(n.String(), opts)
	}

	base, err := DecimalToRaw(decimal, decimals)
	if err != nil {
		return "", err
	}
	return checkSign(base, opts)
}

func checkSign(base string, opts AmountOptions) (string, error) {
	if base == "0" && !opts.AllowZero {
		return "", clierr.New(clierr.CodeUsage, "amount must be greater than zero")
	}
	return base, nil
}

// DecimalToRaw converts a decimal string into minimal units without floating
// point.
func DecimalToRaw(decimal string, decimals int) (string, error) {
	if !decimalPattern.MatchString(decimal) {
		return "", clierr.Newf(clierr.CodeUsage, "amount must be in decimal form like 1.25: %s", decimal)
	}
	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return "", clierr.Newf(clierr.CodeUsage, "decimal precision exceeds token decimals (%d)", decimals)
	}

	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return "0", nil
	}
	if _, ok := new(big.Int).SetString(combined, 10); !ok {
		return "", clierr.Newf(clierr.CodeUsage, "invalid decimal amount: %s", decimal)
	}
	return combined, nil
}

// RawToDecimal converts a minimal-unit integer string into a trimmed decimal
// string.
func RawToDecimal(raw string, decimals int) string {
	n := new(big.Int)
	if _, ok := n.SetString(raw, 10); !ok {
		return raw
	}
	if decimals == 0 {
		return n.String()
	}

	s := n.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// SolToLamports converts a decimal SOL amount into lamports.
func SolToLamports(sol string) (string, error) {
	return DecimalToRaw(strings.TrimSpace(sol), NativeDecimals)
}
