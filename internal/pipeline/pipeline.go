// Package pipeline carries signed transaction sets through simulation and
// broadcast. Simulation is all-or-nothing; broadcast is strictly sequential
// and stops at the first confirmed failure so partial progress is never
// hidden.
package pipeline

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/ggonzalez94/solagent/internal/builders"
	"github.com/ggonzalez94/solagent/internal/chain"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/model"
	"github.com/ggonzalez94/solagent/internal/signer"
)

// SignedTx pairs the wire payload with its plan label.
type SignedTx struct {
	Label  string
	Base64 string
}

// Sign signs every unsigned transaction with the fee payer key, preserving
// order.
func Sign(s signer.Signer, txs []builders.UnsignedTx) ([]SignedTx, error) {
	out := make([]SignedTx, 0, len(txs))
	for _, tx := range txs {
		raw, err := base64.StdEncoding.DecodeString(tx.Base64)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "decode transaction "+tx.Label, err)
		}
		signed, err := signer.SignTransaction(s, raw)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "sign transaction "+tx.Label, err)
		}
		out = append(out, SignedTx{Label: tx.Label, Base64: base64.StdEncoding.EncodeToString(signed)})
	}
	return out, nil
}

// Simulate runs every transaction through preflight and aggregates: the set
// is OK only when every transaction is OK. The first failure becomes the
// representative error, all logs are kept per transaction.
func Simulate(ctx context.Context, client chain.Client, txs []SignedTx) model.SimulateArtifact {
	artifact := model.SimulateArtifact{OK: true, Transactions: len(txs)}
	for i, tx := range txs {
		outcome, err := client.SimulateTransaction(ctx, tx.Base64)
		result := model.SimulationResult{Index: i, OK: outcome.OK}
		if err != nil {
			result.OK = false
			result.Error = err.Error()
		} else {
			result.Logs = outcome.Logs
			result.UnitsConsumed = outcome.UnitsConsumed
			if !outcome.OK {
				result.Error = outcome.Err
			}
		}
		artifact.UnitsConsumed += result.UnitsConsumed
		if !result.OK && artifact.OK {
			artifact.OK = false
			artifact.Error = simulationErrorLine(tx.Label, result.Error)
		}
		artifact.Results = append(artifact.Results, result)
	}
	return artifact
}

func simulationErrorLine(label, detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = "simulation failed"
	}
	return label + ": " + detail
}

// SubmitOptions tunes broadcast behavior.
type SubmitOptions struct {
	// WaitForConfirmation blocks on each transaction before sending the
	// next one. Skipping the wait still sends sequentially but reports
	// zero confirmed.
	WaitForConfirmation bool
}

// Submit broadcasts signed transactions one at a time, in order. A failure
// stops the sequence immediately; everything already confirmed is reported
// so the caller sees partial progress as the failure it is.
func Submit(ctx context.Context, client chain.Client, txs []SignedTx, opts SubmitOptions) model.ExecuteArtifact {
	artifact := model.ExecuteArtifact{Status: model.ExecuteStatusExecuted}
	for _, tx := range txs {
		signature, err := client.SendTransaction(ctx, tx.Base64)
		if err != nil {
			artifact.Status = model.ExecuteStatusFailed
			artifact.Error = tx.Label + ": " + err.Error()
			return artifact
		}
		artifact.Signatures = append(artifact.Signatures, signature)
		artifact.Submitted++

		if opts.WaitForConfirmation {
			if err := client.ConfirmTransaction(ctx, signature); err != nil {
				artifact.Status = model.ExecuteStatusFailed
				artifact.Error = tx.Label + ": " + err.Error()
				return artifact
			}
			artifact.Confirmed++
		}
	}
	return artifact
}
