package textparse

import (
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

func parseLend(text string) (intent.Kind, intent.Params, bool) {
	lower := strings.ToLower(text)
	amount, symbol := amountAndSymbol(text)

	fill := func(p *intent.Params) bool {
		if amount == "" {
			return false
		}
		p.AmountUi = amount
		if symbol != "" {
			p.TokenMint = strings.ToUpper(symbol)
		}
		return p.TokenMint != ""
	}

	var p intent.Params
	switch {
	case containsAny(lower, "borrow"):
		if containsAny(lower, "deposit", "supply") {
			// Combined deposit+borrow reads as two amount/symbol pairs;
			// too positional to guess safely, leave to explicit fields.
			return "", intent.Params{}, false
		}
		if !fill(&p) {
			return "", intent.Params{}, false
		}
		return intent.KindLendBorrow, p, true

	case containsAny(lower, "repay"):
		if !fill(&p) {
			return "", intent.Params{}, false
		}
		return intent.KindLendRepay, p, true

	case containsAny(lower, "deposit", "supply", "lend"):
		if !fill(&p) {
			return "", intent.Params{}, false
		}
		return intent.KindLendDeposit, p, true

	case containsAny(lower, "withdraw") && containsAny(lower, "kamino", "lending", "lend"):
		if !fill(&p) {
			return "", intent.Params{}, false
		}
		return intent.KindLendWithdraw, p, true
	}
	return "", intent.Params{}, false
}
