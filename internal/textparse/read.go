package textparse

import (
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

func parseRead(text string) (intent.Kind, intent.Params, bool) {
	lower := strings.ToLower(text)
	var p intent.Params
	p.Owner = lastAddress(text)

	switch {
	case containsAny(lower, "balance", "balances", "holdings"):
		if containsAny(lower, "token", "tokens", "spl") {
			return intent.KindReadTokenAccounts, p, true
		}
		return intent.KindReadBalance, p, true

	case containsAny(lower, "obligation") || (containsAny(lower, "lending", "kamino") && containsAny(lower, "position", "positions")):
		return intent.KindReadLendObligation, p, true

	case containsAny(lower, "stake") && containsAny(lower, "accounts", "account", "position", "positions"):
		return intent.KindReadStakeAccounts, p, true

	case containsAny(lower, "liquidity", "lp", "whirlpool", "dlmm") && containsAny(lower, "position", "positions"):
		return intent.KindReadLiquidityPositions, p, true
	}
	return "", intent.Params{}, false
}
