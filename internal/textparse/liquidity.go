package textparse

import (
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

func parseLiquidity(text string) (intent.Kind, intent.Params, bool) {
	lower := strings.ToLower(text)
	var p intent.Params

	meteora := containsAny(lower, "meteora", "dlmm")

	switch {
	case containsAny(lower, "harvest", "collect") && containsAny(lower, "position", "fees", "rewards"):
		p.PositionMint = lastAddress(text)
		if p.PositionMint == "" {
			return "", intent.Params{}, false
		}
		return intent.KindOrcaHarvest, p, true

	case containsAny(lower, "close") && containsAny(lower, "position"):
		p.PositionMint = lastAddress(text)
		if p.PositionMint == "" {
			return "", intent.Params{}, false
		}
		return intent.KindOrcaClosePosition, p, true

	case containsAny(lower, "open") && containsAny(lower, "position"):
		p.Pool = lastAddress(text)
		if p.Pool == "" {
			return "", intent.Params{}, false
		}
		return intent.KindOrcaOpenPosition, p, true

	case containsAny(lower, "remove", "withdraw") && containsAny(lower, "liquidity"):
		if meteora {
			p.Pool = lastAddress(text)
			if p.Pool == "" {
				return "", intent.Params{}, false
			}
			return intent.KindMeteoraRemove, p, true
		}
		p.PositionMint = lastAddress(text)
		if p.PositionMint == "" {
			return "", intent.Params{}, false
		}
		return intent.KindOrcaDecrease, p, true

	case containsAny(lower, "add", "increase", "provide") && containsAny(lower, "liquidity"):
		addr := lastAddress(text)
		if addr == "" {
			return "", intent.Params{}, false
		}
		if amount, symbol := amountAndSymbol(text); amount != "" {
			p.AmountUi = amount
			if symbol != "" {
				p.TokenMint = strings.ToUpper(symbol)
			}
		}
		if meteora {
			p.Pool = addr
			return intent.KindMeteoraAdd, p, true
		}
		p.Pool = addr
		return intent.KindOrcaOpenPosition, p, true
	}
	return "", intent.Params{}, false
}
