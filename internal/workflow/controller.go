// Package workflow drives one run through its stages: resolve the intent,
// derive the confirmation token, build and simulate transactions, enforce
// the approval gate, broadcast, and emit monitoring references. The run
// mode bounds how far a run goes; every stage artifact produced on the way
// is kept in the bundle.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/ggonzalez94/solagent/internal/builders"
	"github.com/ggonzalez94/solagent/internal/chain"
	"github.com/ggonzalez94/solagent/internal/confirm"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/id"
	"github.com/ggonzalez94/solagent/internal/intent"
	"github.com/ggonzalez94/solagent/internal/journal"
	"github.com/ggonzalez94/solagent/internal/model"
	"github.com/ggonzalez94/solagent/internal/pipeline"
	"github.com/ggonzalez94/solagent/internal/signer"
	"github.com/ggonzalez94/solagent/internal/textparse"
)

const explorerBase = "https://explorer.solana.com/tx/"

// Controller wires the collaborators one run needs.
type Controller struct {
	Network  id.Network
	Resolver *intent.Resolver
	Builders *builders.Set
	Chain    chain.Client
	Reader   *chain.Reader
	Signer   signer.Signer
	Journal  *journal.Store
}

// Request is one staged run.
type Request struct {
	RunID             string
	Mode              model.RunMode
	Text              string
	Params            intent.Params
	Compute           builders.ComputeBudget
	ConfirmMainnet    bool
	ConfirmationToken string
	WaitForConfirm    bool
}

// Run executes the staged workflow up to the requested mode. The returned
// bundle carries every artifact produced before an error, so callers can
// render partial progress alongside the failure.
func (c *Controller) Run(ctx context.Context, req Request) (model.Bundle, error) {
	bundle := model.Bundle{
		RunID:   req.RunID,
		Network: string(c.Network),
		RunMode: req.Mode,
	}

	it, err := c.resolve(ctx, req)
	if err != nil {
		return bundle, err
	}
	if err := intent.ValidateComputeBudget(req.Params); err != nil {
		return bundle, err
	}

	analysis, err := c.analyze(req, it)
	if err != nil {
		return bundle, err
	}
	bundle.Analysis = &analysis

	defer c.record(&bundle, it)

	if !req.Mode.Includes(model.RunModeSimulate) {
		return bundle, nil
	}

	if it.Readonly() {
		return c.runRead(ctx, req, bundle, it)
	}
	return c.runMutating(ctx, req, bundle, it)
}

func (c *Controller) resolve(ctx context.Context, req Request) (intent.Intent, error) {
	var parsed intent.Parsed
	if strings.TrimSpace(req.Text) != "" {
		result := textparse.Parse(req.Text)
		parsed = intent.Parsed{
			Kind:                result.Kind,
			Params:              result.Params,
			AmbiguousCategories: result.AmbiguousCategories,
		}
	}
	signerAddr := ""
	if c.Signer != nil {
		signerAddr = c.Signer.Address()
	}
	return c.Resolver.Resolve(ctx, req.Params, parsed, signerAddr)
}

// analyze produces the analysis artifact, including the deterministic
// confirmation token when the approval gate applies.
func (c *Controller) analyze(req Request, it intent.Intent) (model.AnalysisArtifact, error) {
	artifact := model.AnalysisArtifact{
		IntentType: string(it.Kind()),
		Intent:     it,
		Readonly:   it.Readonly(),
		Plan:       planFor(it),
	}
	if confirm.Required(c.Network, it) {
		token, err := confirm.Derive(req.RunID, c.Network, it)
		if err != nil {
			return model.AnalysisArtifact{}, err
		}
		artifact.ConfirmationToken = token
		artifact.ApprovalRequired = true
	}
	return artifact, nil
}

func planFor(it intent.Intent) []string {
	if it.Readonly() {
		return []string{"resolve-intent", "read"}
	}
	return []string{
		"resolve-intent",
		"derive-confirmation",
		"build-transactions",
		"simulate",
		"approval-gate",
		"submit",
		"monitor",
	}
}

// runRead serves read intents. Simulation and execution converge for
// reads: both run the query; only the artifact it lands in differs.
func (c *Controller) runRead(ctx context.Context, req Request, bundle model.Bundle, it intent.Intent) (model.Bundle, error) {
	result, err := c.executeRead(ctx, it)
	if err != nil {
		return bundle, err
	}
	if req.Mode == model.RunModeExecute {
		bundle.Execute = &model.ExecuteArtifact{
			Status:     model.ExecuteStatusExecuted,
			ReadResult: result,
		}
	} else {
		bundle.Simulate = &model.SimulateArtifact{OK: true, ReadResult: result}
	}
	return bundle, nil
}

func (c *Controller) runMutating(ctx context.Context, req Request, bundle model.Bundle, it intent.Intent) (model.Bundle, error) {
	built, err := c.Builders.Build(ctx, c.Signer.Address(), it, req.Compute)
	if err != nil {
		return bundle, err
	}

	signed, err := pipeline.Sign(c.Signer, built.Transactions)
	if err != nil {
		return bundle, err
	}

	simulate := pipeline.Simulate(ctx, c.Chain, signed)
	bundle.Simulate = &simulate

	if req.Mode != model.RunModeExecute {
		if built.Route != nil {
			bundle.Analysis.Intent = withRoute(it, built.Route)
		}
		return bundle, nil
	}

	// The approval gate runs before any broadcast and fails closed: the
	// token is recomputed fresh from the resolved intent, never read back
	// from stored state.
	approval := model.ApprovalArtifact{Required: confirm.Required(c.Network, it)}
	if err := confirm.Check(req.RunID, c.Network, it, req.ConfirmationToken, req.ConfirmMainnet); err != nil {
		bundle.Approval = &approval
		return bundle, err
	}
	approval.Satisfied = true
	approval.Token = req.ConfirmationToken
	bundle.Approval = &approval

	if !simulate.OK {
		return bundle, clierr.Newf(clierr.CodeSimFailed, "simulation failed, not broadcasting: %s", simulate.Error)
	}

	execute := pipeline.Submit(ctx, c.Chain, signed, pipeline.SubmitOptions{WaitForConfirmation: req.WaitForConfirm})
	if built.Route != nil {
		bundle.Analysis.Intent = withRoute(it, built.Route)
	}
	bundle.Execute = &execute
	bundle.Monitor = c.monitor(execute.Signatures)

	if execute.Status == model.ExecuteStatusFailed {
		return bundle, clierr.Newf(clierr.CodeOnChain,
			"execution stopped after %d of %d transactions: %s",
			execute.Confirmed, len(signed), execute.Error)
	}
	return bundle, nil
}

func (c *Controller) monitor(signatures []string) *model.MonitorArtifact {
	if len(signatures) == 0 {
		return nil
	}
	refs := make([]string, 0, len(signatures))
	for _, sig := range signatures {
		refs = append(refs, explorerBase+sig+c.Network.ExplorerSuffix())
	}
	return &model.MonitorArtifact{References: refs}
}

// withRoute attaches swap routing metadata next to the resolved intent in
// the analysis artifact.
func withRoute(it intent.Intent, route *model.SwapRouteInfo) any {
	return struct {
		Intent intent.Intent        `json:"intent"`
		Route  *model.SwapRouteInfo `json:"route"`
	}{Intent: it, Route: route}
}

// record journals the finished bundle, best effort.
func (c *Controller) record(bundle *model.Bundle, it intent.Intent) {
	if c.Journal == nil || bundle.Analysis == nil {
		return
	}
	success := true
	if bundle.Simulate != nil && !bundle.Simulate.OK {
		success = false
	}
	if bundle.Execute != nil && bundle.Execute.Status == model.ExecuteStatusFailed {
		success = false
	}
	_ = c.Journal.Append(journal.Entry{
		RunID:      bundle.RunID,
		Network:    bundle.Network,
		RunMode:    string(bundle.RunMode),
		IntentType: string(it.Kind()),
		Success:    success,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Bundle:     *bundle,
	})
}
