package textparse

import (
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

func parseStake(text string) (intent.Kind, intent.Params, bool) {
	lower := strings.ToLower(text)
	var p intent.Params

	switch {
	case containsAny(lower, "deactivate", "unstake"):
		p.StakeAccount = lastAddress(text)
		if p.StakeAccount == "" {
			return "", intent.Params{}, false
		}
		return intent.KindStakeDeactivate, p, true

	case containsAny(lower, "delegate"):
		p.VoteAccount = addressAfter(text, "to", "validator")
		if p.VoteAccount == "" {
			p.VoteAccount = lastAddress(text)
		}
		addrs := addresses(text)
		if len(addrs) > 1 {
			p.StakeAccount = addrs[0]
		}
		if p.VoteAccount == "" {
			return "", intent.Params{}, false
		}
		return intent.KindStakeDelegate, p, true

	case containsAny(lower, "withdraw") && containsAny(lower, "stake"):
		p.StakeAccount = lastAddress(text)
		if amount, symbol := amountAndSymbol(text); amount != "" && (symbol == "" || isNativeSymbol(symbol)) {
			p.AmountSol = amount
		}
		if p.StakeAccount == "" {
			return "", intent.Params{}, false
		}
		return intent.KindStakeWithdraw, p, true

	case containsAny(lower, "stake", "restake"):
		amount, symbol := amountAndSymbol(text)
		if amount == "" || (symbol != "" && !isNativeSymbol(symbol)) {
			return "", intent.Params{}, false
		}
		p.AmountSol = amount
		if vote := addressAfter(text, "with", "validator", "to"); vote != "" {
			p.VoteAccount = vote
		}
		return intent.KindStakeCreate, p, true
	}
	return "", intent.Params{}, false
}
