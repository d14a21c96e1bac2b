package textparse

import (
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

// parseTransfer matches "send 1.5 SOL to <addr>" and token-transfer
// variants. Keyword position beats the last-address fallback.
func parseTransfer(text string) (intent.Kind, intent.Params, bool) {
	lower := strings.ToLower(text)
	if !containsAny(lower, "send", "transfer", "pay") {
		return "", intent.Params{}, false
	}

	var p intent.Params
	amount, symbol := amountAndSymbol(text)
	if amount == "" {
		return "", intent.Params{}, false
	}

	to := addressAfter(text, "to")
	if to == "" {
		to = lastAddress(text)
	}
	if to == "" {
		return "", intent.Params{}, false
	}
	p.To = to

	if symbol == "" || isNativeSymbol(symbol) {
		p.AmountSol = amount
		return intent.KindTransferNative, p, true
	}
	p.AmountUi = amount
	p.TokenMint = strings.ToUpper(symbol)
	return intent.KindTransferSPL, p, true
}
