package textparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ggonzalez94/solagent/internal/id"
	"github.com/ggonzalez94/solagent/internal/intent"
)

var (
	addressPattern = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)
	amountPattern  = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	symbolPattern  = regexp.MustCompile(`(?i)\$?[a-z][a-z0-9]{1,11}`)
	// field=value tokens, e.g. toAddress=..., amountSol=1.5.
	fieldTokenPattern = regexp.MustCompile(`([A-Za-z][A-Za-z0-9]*)=([^\s]+)`)
)

// extractFieldTokens lifts explicit field=value tokens out of the text.
// These take priority over every positional heuristic.
func extractFieldTokens(text string) intent.Params {
	var p intent.Params
	for _, m := range fieldTokenPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		value := strings.Trim(m[2], ".,;:!?\"'")
		switch name {
		case "intenttype":
			if intent.KnownKind(value) {
				p.IntentType = value
			}
		case "toaddress", "to":
			p.To = value
		case "amountsol":
			p.AmountSol = value
		case "amountui", "amount":
			p.AmountUi = value
		case "amountraw":
			p.AmountRaw = value
		case "tokenmint", "mint":
			p.TokenMint = value
		case "inputmint", "from":
			p.InputMint = value
		case "outputmint":
			p.OutputMint = value
		case "slippagebps":
			if n, err := strconv.Atoi(value); err == nil {
				p.SlippageBps = &n
			}
		case "owner":
			p.Owner = value
		case "pool", "whirlpool":
			p.Pool = value
		case "positionmint":
			p.PositionMint = value
		case "stakeaccount":
			p.StakeAccount = value
		case "voteaccount", "validator":
			p.VoteAccount = value
		}
	}
	return p
}

func stripFieldTokens(text string) string {
	return strings.TrimSpace(fieldTokenPattern.ReplaceAllString(text, " "))
}

// addresses returns every address-shaped token, in order of appearance.
func addresses(text string) []string {
	candidates := addressPattern.FindAllString(text, -1)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if id.IsAddress(c) {
			out = append(out, c)
		}
	}
	return out
}

// lastAddress is the lowest-priority fallback for destination extraction.
func lastAddress(text string) string {
	addrs := addresses(text)
	if len(addrs) == 0 {
		return ""
	}
	return addrs[len(addrs)-1]
}

// addressAfter returns the first address following any of the marker words.
func addressAfter(text string, markers ...string) string {
	lower := strings.ToLower(text)
	for _, marker := range markers {
		idx := strings.Index(lower, " "+marker+" ")
		if idx < 0 {
			continue
		}
		rest := text[idx+len(marker)+2:]
		for _, a := range addresses(rest) {
			return a
		}
	}
	return ""
}

// amountAndSymbol finds "<amount> <symbol>" pairs like "1.5 SOL".
func amountAndSymbol(text string) (amount, symbol string) {
	loc := amountPattern.FindStringIndex(text)
	if loc == nil {
		return "", ""
	}
	amount = text[loc[0]:loc[1]]
	rest := strings.TrimSpace(text[loc[1]:])
	fields := strings.Fields(rest)
	if len(fields) > 0 {
		cand := strings.Trim(fields[0], ".,;:!?\"'")
		if symbolPattern.MatchString(cand) && id.LooksLikeSymbol(strings.Trim(cand, "$")) {
			symbol = strings.Trim(cand, "$")
		}
	}
	return amount, symbol
}

func isNativeSymbol(symbol string) bool {
	return strings.EqualFold(symbol, "sol")
}

func containsAny(lower string, words ...string) bool {
	for _, w := range words {
		if containsWord(" "+lower+" ", w) {
			return true
		}
	}
	return false
}
