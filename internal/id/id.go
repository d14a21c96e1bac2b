package id

import (
	"strings"

	"github.com/mr-tron/base58"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
)

// Network is the closed set of supported Solana clusters. Mainnet is the
// primary network: money-moving actions on it require explicit confirmation.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
)

const NativeDecimals = 9

// NativeMint is the wrapped-SOL mint, used wherever a swap or pool leg
// addresses the native token by mint.
const NativeMint = "So11111111111111111111111111111111111111112"

var networkAliases = map[string]Network{
	"mainnet":      NetworkMainnet,
	"mainnet-beta": NetworkMainnet,
	"devnet":       NetworkDevnet,
	"testnet":      NetworkTestnet,
}

func ParseNetwork(input string) (Network, error) {
	raw := strings.ToLower(strings.TrimSpace(input))
	if raw == "" {
		return NetworkMainnet, nil
	}
	if n, ok := networkAliases[raw]; ok {
		return n, nil
	}
	return "", clierr.Newf(clierr.CodeUsage, "unsupported network: %s", input)
}

// IsPrimary reports whether the network is the production cluster on which
// actions are irreversible and therefore gated.
func (n Network) IsPrimary() bool { return n == NetworkMainnet }

func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkDevnet, NetworkTestnet:
		return true
	}
	return false
}

// ExplorerSuffix is appended to explorer URLs for non-primary clusters.
func (n Network) ExplorerSuffix() string {
	if n == NetworkMainnet {
		return ""
	}
	return "?cluster=" + string(n)
}

// IsAddress reports whether v decodes as a 32-byte base58 Solana public key.
func IsAddress(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) < 32 || len(v) > 44 {
		return false
	}
	raw, err := base58.Decode(v)
	if err != nil {
		return false
	}
	return len(raw) == 32
}

// ParseAddress validates v and returns it trimmed, naming the field on error.
func ParseAddress(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", clierr.Newf(clierr.CodeUsage, "%s is required", field)
	}
	if !IsAddress(v) {
		return "", clierr.Newf(clierr.CodeUsage, "%s is not a valid address: %s", field, v)
	}
	return v, nil
}

// Token is a resolved token identity.
type Token struct {
	Symbol   string `json:"symbol,omitempty"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

// Bootstrap alias table for mainnet tokens agents address by symbol. Remote
// token-index lookups extend this set at runtime through the resolver cache.
var tokenAliases = map[string]Token{
	"SOL":   {Symbol: "SOL", Address: NativeMint, Decimals: 9},
	"WSOL":  {Symbol: "SOL", Address: NativeMint, Decimals: 9},
	"USDC":  {Symbol: "USDC", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	"USDT":  {Symbol: "USDT", Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
	"JUP":   {Symbol: "JUP", Address: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Decimals: 6},
	"JTO":   {Symbol: "JTO", Address: "jtojtomepa8beP8AuQc6eXt5FriJwfFMwGQx2v2f9mCL", Decimals: 9},
	"BONK":  {Symbol: "BONK", Address: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Decimals: 5},
	"MSOL":  {Symbol: "MSOL", Address: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Decimals: 9},
	"JITOSOL": {
		Symbol: "JITOSOL", Address: "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", Decimals: 9,
	},
}

// KnownToken resolves a symbol through the static alias table.
func KnownToken(symbol string) (Token, bool) {
	t, ok := tokenAliases[strings.ToUpper(strings.TrimSpace(symbol))]
	return t, ok
}

// LooksLikeSymbol reports whether v is plausibly a short token symbol rather
// than an address or free text.
func LooksLikeSymbol(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > 12 {
		return false
	}
	for _, r := range v {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '$') {
			return false
		}
	}
	return !IsAddress(v)
}
