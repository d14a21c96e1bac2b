package textparse

import (
	"regexp"
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

var swapPairPattern = regexp.MustCompile(`(?i)(?:swap|exchange|convert|trade)\s+([0-9]+(?:\.[0-9]+)?)?\s*\$?([a-z0-9]{2,12}|[1-9A-HJ-NP-Za-km-z]{32,44})\s+(?:for|to|into)\s+\$?([a-z0-9]{2,12}|[1-9A-HJ-NP-Za-km-z]{32,44})`)

// parseSwap matches "swap 2 SOL for USDC [on orca]". The venue keyword
// selects the protocol-scoped variant; otherwise routing defaults to
// jupiter.
func parseSwap(text string) (intent.Kind, intent.Params, bool) {
	m := swapPairPattern.FindStringSubmatch(text)
	if m == nil {
		return "", intent.Params{}, false
	}

	var p intent.Params
	if m[1] != "" {
		p.AmountUi = m[1]
	}
	p.InputMint = normalizeTokenRef(m[2])
	p.OutputMint = normalizeTokenRef(m[3])
	if p.InputMint == "" || p.OutputMint == "" || strings.EqualFold(p.InputMint, p.OutputMint) {
		return "", intent.Params{}, false
	}

	kind := intent.KindSwapJupiter
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "orca", "whirlpool"):
		kind = intent.KindSwapOrca
	case containsAny(lower, "raydium"):
		kind = intent.KindSwapRaydium
	}
	return kind, p, true
}

func normalizeTokenRef(v string) string {
	v = strings.Trim(v, "$")
	if len(v) >= 32 {
		return v
	}
	return strings.ToUpper(v)
}
