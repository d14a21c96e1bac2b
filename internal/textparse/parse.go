// Package textparse extracts a best-guess partial field set from free-form
// text. It is a priority-ordered cascade of independent pure sub-parsers,
// one per action family, combined by a single precedence resolver. The
// package never returns errors: unparseable text yields an empty result and
// intent resolution falls through to requiring explicit fields.
package textparse

import (
	"sort"
	"strings"

	"github.com/ggonzalez94/solagent/internal/intent"
)

// Result is the outcome of one parse call. Kind is a suggestion only; the
// intent resolver owns the final action-type decision.
type Result struct {
	Kind   intent.Kind
	Params intent.Params
	// AmbiguousCategories is set when two or more keyword categories tie,
	// in which case no sub-parser result is committed.
	AmbiguousCategories []string
}

func (r Result) Empty() bool {
	return r.Kind == "" && r.Params == (intent.Params{}) && len(r.AmbiguousCategories) == 0
}

type family struct {
	name  string
	parse func(string) (intent.Kind, intent.Params, bool)
}

// Cascade order doubles as trial-parse priority.
var families = []family{
	{"swap", parseSwap},
	{"transfer", parseTransfer},
	{"stake", parseStake},
	{"lend", parseLend},
	{"liquidity", parseLiquidity},
	{"read", parseRead},
}

// Parse extracts a partial field set from text. Selection order:
// a canonical action name appearing verbatim, then keyword-category
// scoring, then trial-parsing each family in cascade order.
func Parse(text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}
	}

	explicit := extractFieldTokens(text)

	if kind, ok := verbatimKind(text); ok {
		_, params, _ := familyFor(kind)(stripFieldTokens(text))
		params.IntentType = string(kind)
		return Result{Kind: kind, Params: intent.Merge(explicit, params)}
	}

	body := stripFieldTokens(text)

	winner, tied := scoreCategories(body)
	if len(tied) > 1 {
		sort.Strings(tied)
		return Result{AmbiguousCategories: tied, Params: explicit}
	}
	if winner != "" {
		for _, f := range families {
			if f.name != winner {
				continue
			}
			if kind, params, ok := f.parse(body); ok {
				return Result{Kind: kind, Params: intent.Merge(explicit, params)}
			}
		}
	}

	for _, f := range families {
		if kind, params, ok := f.parse(body); ok {
			return Result{Kind: kind, Params: intent.Merge(explicit, params)}
		}
	}
	return Result{Params: explicit}
}

// verbatimKind matches an explicit canonical action name in the text.
func verbatimKind(text string) (intent.Kind, bool) {
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".,;:!?\"'")
		if intent.KnownKind(tok) {
			return intent.Kind(tok), true
		}
	}
	return "", false
}

func familyFor(kind intent.Kind) func(string) (intent.Kind, intent.Params, bool) {
	name := "read"
	switch {
	case strings.Contains(string(kind), ".swap."):
		name = "swap"
	case strings.Contains(string(kind), ".transfer."):
		name = "transfer"
	case strings.Contains(string(kind), ".stake."):
		name = "stake"
	case strings.Contains(string(kind), ".lend."):
		name = "lend"
	case strings.Contains(string(kind), ".liquidity."):
		name = "liquidity"
	}
	for _, f := range families {
		if f.name == name {
			return f.parse
		}
	}
	return parseRead
}

var categoryKeywords = map[string][]string{
	"swap":      {"swap", "exchange", "convert", "trade"},
	"transfer":  {"send", "transfer", "pay"},
	"stake":     {"stake", "unstake", "delegate", "deactivate", "validator", "restake"},
	"lend":      {"lend", "borrow", "repay", "supply", "deposit", "kamino", "loan"},
	"liquidity": {"liquidity", "pool", "position", "whirlpool", "dlmm", "lp", "harvest"},
	"read":      {"balance", "holdings", "show", "check", "query"},
}

// scoreCategories counts distinct category keywords. A single top scorer
// wins; a tie between two or more categories commits to nothing so that
// ambiguous text falls through to explicit fields.
func scoreCategories(text string) (winner string, tied []string) {
	lower := " " + strings.ToLower(text) + " "
	scores := map[string]int{}
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if containsWord(lower, w) {
				scores[cat]++
			}
		}
	}
	best := 0
	for _, n := range scores {
		if n > best {
			best = n
		}
	}
	if best == 0 {
		return "", nil
	}
	top := []string{}
	for cat, n := range scores {
		if n == best {
			top = append(top, cat)
		}
	}
	if len(top) == 1 {
		return top[0], nil
	}
	return "", top
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := haystack[i-1]
		afterIdx := i + len(word)
		var after byte = ' '
		if afterIdx < len(haystack) {
			after = haystack[afterIdx]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		idx = i + len(word)
		if idx >= len(haystack) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
