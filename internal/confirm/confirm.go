// Package confirm derives the deterministic confirmation token that gates
// mainnet execution. The token is a pure function of the run identity, the
// network and the fully-resolved intent, so the value shown at analysis
// time can be recomputed and checked at execution time without storing any
// server-side state.
package confirm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/id"
	"github.com/ggonzalez94/solagent/internal/intent"
)

// tokenLen is the number of hex characters exposed to the user. Half of a
// sha256 digest is far beyond collision concerns for a per-run gate while
// staying short enough to paste from a terminal.
const tokenLen = 16

// payload fixes the field order of the hashed material. Hashing a struct
// rather than a map keeps the JSON byte stream deterministic.
type payload struct {
	RunID   string        `json:"run_id"`
	Network id.Network    `json:"network"`
	Kind    intent.Kind   `json:"kind"`
	Intent  intent.Intent `json:"intent"`
}

// Derive computes the confirmation token for one (run, network, intent)
// triple. Identical inputs always produce the identical token; any change
// to the resolved intent, however small, produces a different one.
func Derive(runID string, network id.Network, it intent.Intent) (string, error) {
	raw, err := json.Marshal(payload{RunID: runID, Network: network, Kind: it.Kind(), Intent: it})
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "derive confirmation token", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:tokenLen], nil
}

// Required reports whether the approval gate applies: only mutating intents
// on the primary network need explicit confirmation. Reads and non-primary
// networks pass without a token.
func Required(network id.Network, it intent.Intent) bool {
	return network.IsPrimary() && !it.Readonly()
}

// Check recomputes the expected token from scratch and compares it with the
// supplied one. The gate fails closed: a missing or stale token is an
// approval error, never a downgrade to simulation.
func Check(runID string, network id.Network, it intent.Intent, supplied string, confirmFlag bool) error {
	if !Required(network, it) {
		return nil
	}
	if !confirmFlag {
		return clierr.New(clierr.CodeApproval,
			"mainnet execution requires explicit confirmation; re-run with --confirm-mainnet and the confirmation token from the analysis stage")
	}
	expected, err := Derive(runID, network, it)
	if err != nil {
		return err
	}
	if supplied == "" {
		return clierr.New(clierr.CodeApproval, "confirmation token is required for mainnet execution")
	}
	if supplied != expected {
		return clierr.New(clierr.CodeApproval,
			"confirmation token does not match this run's resolved intent; re-run the analysis stage and confirm the refreshed token")
	}
	return nil
}
