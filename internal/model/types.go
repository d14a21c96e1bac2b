package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
}

// RunMode is the commitment level of a call.
type RunMode string

const (
	RunModeAnalysis RunMode = "analysis"
	RunModeSimulate RunMode = "simulate"
	RunModeExecute  RunMode = "execute"
)

func ParseRunMode(v string) (RunMode, bool) {
	switch RunMode(v) {
	case RunModeAnalysis, "":
		return RunModeAnalysis, true
	case RunModeSimulate:
		return RunModeSimulate, true
	case RunModeExecute:
		return RunModeExecute, true
	}
	return "", false
}

// Includes reports whether mode covers stage: analysis ⊂ simulate ⊂ execute.
func (m RunMode) Includes(stage RunMode) bool {
	rank := map[RunMode]int{RunModeAnalysis: 0, RunModeSimulate: 1, RunModeExecute: 2}
	return rank[m] >= rank[stage]
}

// Bundle is the sole return contract of the workflow: each stage artifact is
// populated only up to the requested run mode.
type Bundle struct {
	RunID    string            `json:"run_id"`
	Network  string            `json:"network"`
	RunMode  RunMode           `json:"run_mode"`
	Analysis *AnalysisArtifact `json:"analysis,omitempty"`
	Simulate *SimulateArtifact `json:"simulate,omitempty"`
	Approval *ApprovalArtifact `json:"approval,omitempty"`
	Execute  *ExecuteArtifact  `json:"execute,omitempty"`
	Monitor  *MonitorArtifact  `json:"monitor,omitempty"`
}

type AnalysisArtifact struct {
	IntentType        string   `json:"intent_type"`
	Intent            any      `json:"intent"`
	Readonly          bool     `json:"readonly"`
	Plan              []string `json:"plan"`
	ConfirmationToken string   `json:"confirmation_token,omitempty"`
	ApprovalRequired  bool     `json:"approval_required"`
}

type SimulateArtifact struct {
	OK            bool               `json:"ok"`
	Error         string             `json:"error,omitempty"`
	Transactions  int                `json:"transactions"`
	Results       []SimulationResult `json:"results,omitempty"`
	UnitsConsumed uint64             `json:"units_consumed"`
	ReadResult    any                `json:"read_result,omitempty"`
}

type SimulationResult struct {
	Index         int      `json:"index"`
	OK            bool     `json:"ok"`
	Error         string   `json:"error,omitempty"`
	Logs          []string `json:"logs,omitempty"`
	UnitsConsumed uint64   `json:"units_consumed"`
}

type ApprovalArtifact struct {
	Required  bool   `json:"required"`
	Satisfied bool   `json:"satisfied"`
	Token     string `json:"token,omitempty"`
}

type ExecuteArtifact struct {
	Status     string   `json:"status"`
	Signatures []string `json:"signatures,omitempty"`
	// Confirmed counts transactions that reached confirmation before any
	// failure; a value below Submitted surfaces partial success.
	Submitted  int    `json:"submitted"`
	Confirmed  int    `json:"confirmed"`
	Error      string `json:"error,omitempty"`
	ReadResult any    `json:"read_result,omitempty"`
}

type MonitorArtifact struct {
	References []string `json:"references,omitempty"`
}

const (
	ExecuteStatusExecuted  = "executed"
	ExecuteStatusSimulated = "simulated"
	ExecuteStatusFailed    = "failed"
)

// SwapRouteInfo reports where a swap route came from, including the
// dex-restriction fallback path.
type SwapRouteInfo struct {
	RouteSource     string   `json:"route_source"`
	FallbackApplied bool     `json:"fallback_applied"`
	RestrictedDexes []string `json:"restricted_dexes,omitempty"`
	Route           string   `json:"route,omitempty"`
	OutAmount       string   `json:"out_amount,omitempty"`
	PriceImpactPct  float64  `json:"price_impact_pct,omitempty"`
}

// Read-path payloads.

type BalanceResult struct {
	Address     string         `json:"address"`
	Lamports    string         `json:"lamports"`
	Sol         string         `json:"sol"`
	TokenCounts int            `json:"token_accounts"`
	Tokens      []TokenBalance `json:"tokens,omitempty"`
}

type TokenBalance struct {
	Mint     string `json:"mint"`
	Raw      string `json:"amount_raw"`
	Decimal  string `json:"amount_decimal"`
	Decimals int    `json:"decimals"`
}

type TokenResolution struct {
	Input      string `json:"input"`
	Symbol     string `json:"symbol,omitempty"`
	Address    string `json:"address"`
	Decimals   int    `json:"decimals"`
	ResolvedBy string `json:"resolved_by"`
}
