package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ggonzalez94/solagent/internal/builders"
	"github.com/ggonzalez94/solagent/internal/chain"
	"github.com/ggonzalez94/solagent/internal/config"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/httpx"
	"github.com/ggonzalez94/solagent/internal/id"
	"github.com/ggonzalez94/solagent/internal/intent"
	"github.com/ggonzalez94/solagent/internal/journal"
	"github.com/ggonzalez94/solagent/internal/model"
	"github.com/ggonzalez94/solagent/internal/out"
	"github.com/ggonzalez94/solagent/internal/providers/jupiter"
	"github.com/ggonzalez94/solagent/internal/providers/kamino"
	"github.com/ggonzalez94/solagent/internal/providers/meteora"
	"github.com/ggonzalez94/solagent/internal/providers/orca"
	"github.com/ggonzalez94/solagent/internal/providers/tokenindex"
	"github.com/ggonzalez94/solagent/internal/schema"
	"github.com/ggonzalez94/solagent/internal/signer"
	"github.com/ggonzalez94/solagent/internal/textparse"
	"github.com/ggonzalez94/solagent/internal/token"
	"github.com/ggonzalez94/solagent/internal/version"
	"github.com/ggonzalez94/solagent/internal/workflow"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{stdout: stdout, stderr: stderr, now: time.Now}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	root        *cobra.Command
	lastCommand string

	network    id.Network
	chain      chain.Client
	reader     *chain.Reader
	tokens     *token.Resolver
	resolver   *intent.Resolver
	builderSet *builders.Set
	journal    *journal.Store
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := normalizeRunError(root.Execute())
	if state.journal != nil {
		_ = state.journal.Close()
	}
	if err == nil {
		return 0
	}
	if _, rendered := err.(silentError); !rendered {
		state.renderError("", err)
	}
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Intent-driven workflow engine for on-chain actions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.lastCommand = trimRootPath(cmd.CommandPath())

			network, err := id.ParseNetwork(settings.Network)
			if err != nil {
				return err
			}
			s.network = network

			if s.chain == nil {
				httpClient := httpx.New(settings.Timeout, settings.Retries)
				rpcURL := settings.RPCEndpoints[string(network)]
				if strings.TrimSpace(rpcURL) == "" {
					return clierr.Newf(clierr.CodeUsage, "no RPC endpoint configured for network %s", network)
				}
				rpc := chain.NewRPCClient(httpClient, rpcURL)
				s.chain = rpc
				s.reader = chain.NewReader(rpc)

				index := tokenindex.New(httpClient, settings.TokenIndexURL)
				s.tokens = token.NewResolver(index, chain.NewDecimalsAdapter(rpc))

				orcaDesk := orca.New(httpClient, "")
				meteoraDesk := meteora.New(httpClient, "")
				s.builderSet = &builders.Set{
					Native:  builders.NewNativeBuilder(rpc),
					Swap:    jupiter.New(httpClient, settings.QuoteURL, settings.QuoteAPIKey),
					Lending: kamino.New(httpClient, ""),
					Orca:    orcaDesk,
					Meteora: meteoraDesk,
				}
				s.resolver = intent.NewResolver(s.tokens, &builders.PoolDirectory{Orca: orcaDesk, Meteora: meteoraDesk})
			}

			if settings.JournalEnabled && s.journal == nil && commandUsesJournal(s.lastCommand) {
				store, err := journal.Open(settings.JournalPath, settings.JournalLockPath)
				if err != nil {
					return clierr.Wrap(clierr.CodeInternal, "open run journal", err)
				}
				s.journal = store
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Endpoint request timeout")
	cmd.PersistentFlags().IntVar(&s.flags.Retries, "retries", -1, "Retries per endpoint request")
	cmd.PersistentFlags().StringVar(&s.flags.Network, "network", "", "Target network (mainnet|devnet|testnet)")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "RPC endpoint override for the target network")
	cmd.PersistentFlags().BoolVar(&s.flags.NoJournal, "no-journal", false, "Disable the run journal")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newActCommand())
	cmd.AddCommand(s.newResolveCommand())
	cmd.AddCommand(s.newParseCommand())
	cmd.AddCommand(s.newTokenCommand())
	cmd.AddCommand(s.newRunsCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// newActCommand is the staged entrypoint: analysis, simulate or execute,
// from free text, structured flags, or both.
func (s *runtimeState) newActCommand() *cobra.Command {
	var (
		params            paramFlags
		text              string
		mode              string
		runID             string
		confirmMainnet    bool
		confirmationToken string
		noWait            bool
	)
	cmd := &cobra.Command{
		Use:   "act",
		Short: "Resolve an intent and run it through the staged workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			runMode, ok := model.ParseRunMode(mode)
			if !ok {
				return clierr.Newf(clierr.CodeUsage, "invalid --mode: %s (expected analysis|simulate|execute)", mode)
			}
			if strings.TrimSpace(runID) == "" {
				runID = uuid.NewString()
			}

			controller, err := s.newController(runMode)
			if err != nil {
				return err
			}
			ctx, cancel := s.commandContext(cmd)
			defer cancel()

			bundle, err := controller.Run(ctx, workflow.Request{
				RunID:             runID,
				Mode:              runMode,
				Text:              text,
				Params:            params.extract(cmd),
				Compute:           params.computeBudget(cmd),
				ConfirmMainnet:    confirmMainnet,
				ConfirmationToken: confirmationToken,
				WaitForConfirm:    !noWait,
			})
			if err != nil {
				// Keep partial stage artifacts next to the failure.
				s.renderErrorWithData(trimRootPath(cmd.CommandPath()), err, bundle)
				return errAlreadyRendered{err}
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), bundle)
		},
	}
	params.register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "Free-text instruction")
	cmd.Flags().StringVar(&mode, "mode", "analysis", "Run mode (analysis|simulate|execute)")
	cmd.Flags().StringVar(&runID, "run-id", "", "Stable run id (generated when absent)")
	cmd.Flags().BoolVar(&confirmMainnet, "confirm-mainnet", false, "Acknowledge mainnet execution")
	cmd.Flags().StringVar(&confirmationToken, "confirmation-token", "", "Confirmation token from the analysis stage")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for on-chain confirmation between transactions")
	return cmd
}

// newResolveCommand resolves and reports without ever touching builders.
func (s *runtimeState) newResolveCommand() *cobra.Command {
	var (
		params paramFlags
		text   string
		runID  string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve an intent and print the analysis artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(runID) == "" {
				runID = uuid.NewString()
			}
			controller, err := s.newController(model.RunModeAnalysis)
			if err != nil {
				return err
			}
			ctx, cancel := s.commandContext(cmd)
			defer cancel()
			bundle, err := controller.Run(ctx, workflow.Request{
				RunID:  runID,
				Mode:   model.RunModeAnalysis,
				Text:   text,
				Params: params.extract(cmd),
			})
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), bundle)
		},
	}
	params.register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "Free-text instruction")
	cmd.Flags().StringVar(&runID, "run-id", "", "Stable run id (generated when absent)")
	return cmd
}

// newParseCommand exposes the text parser alone for debugging prompts.
func (s *runtimeState) newParseCommand() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse free text into candidate intent fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(text) == "" {
				return clierr.New(clierr.CodeUsage, "--text is required")
			}
			result := textparse.Parse(text)
			data := map[string]any{
				"kind":   result.Kind,
				"params": result.Params,
			}
			if len(result.AmbiguousCategories) > 0 {
				data["ambiguous_categories"] = result.AmbiguousCategories
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Free-text instruction")
	return cmd
}

func (s *runtimeState) newTokenCommand() *cobra.Command {
	root := &cobra.Command{Use: "token", Short: "Token identity helpers"}
	var ref string
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a token symbol or address to its canonical mint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(ref) == "" {
				return clierr.New(clierr.CodeUsage, "--ref is required")
			}
			ctx, cancel := s.commandContext(cmd)
			defer cancel()
			tok, resolvedBy, err := s.tokens.Resolve(ctx, ref)
			if err != nil {
				return err
			}
			decimals := tok.Decimals
			if decimals < 0 {
				if d, err := s.tokens.MintDecimals(ctx, tok.Address); err == nil {
					decimals = d
				}
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.TokenResolution{
				Input:      ref,
				Symbol:     tok.Symbol,
				Address:    tok.Address,
				Decimals:   decimals,
				ResolvedBy: resolvedBy,
			})
		},
	}
	resolve.Flags().StringVar(&ref, "ref", "", "Token symbol, $symbol, or mint address")
	root.AddCommand(resolve)
	return root
}

func (s *runtimeState) newRunsCommand() *cobra.Command {
	root := &cobra.Command{Use: "runs", Short: "Run journal"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.journal == nil {
				return clierr.New(clierr.CodeUsage, "run journal is disabled")
			}
			entries, err := s.journal.List(limit)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list runs", err)
			}
			summaries := make([]map[string]any, 0, len(entries))
			for _, e := range entries {
				summaries = append(summaries, map[string]any{
					"run_id":      e.RunID,
					"network":     e.Network,
					"run_mode":    e.RunMode,
					"intent_type": e.IntentType,
					"success":     e.Success,
					"created_at":  e.CreatedAt,
				})
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), summaries)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Number of runs to return")
	root.AddCommand(list)

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one journaled run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.journal == nil {
				return clierr.New(clierr.CodeUsage, "run journal is disabled")
			}
			entry, err := s.journal.Get(args[0])
			if err != nil {
				return clierr.Wrap(clierr.CodeResolve, "load run", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), entry)
		},
	}
	root.AddCommand(show)
	return root
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command and intent schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = strings.Join(args, " ")
			}
			data, err := schema.Build(s.root, path)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data)
		},
	}
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

// newController assembles the workflow for one run. The signing key is
// loaded lazily: analysis of a fully structured read works without one,
// anything that signs or defaults an owner needs it.
func (s *runtimeState) newController(mode model.RunMode) (*workflow.Controller, error) {
	var signingKey signer.Signer
	if key, err := signer.NewLocalSignerFromEnv(s.settings.SignerKeyPath); err == nil {
		signingKey = key
	} else if mode.Includes(model.RunModeSimulate) {
		return nil, clierr.Wrap(clierr.CodeAuth, "load signing key", err)
	}
	return &workflow.Controller{
		Network:  s.network,
		Resolver: s.resolver,
		Builders: s.builderSet,
		Chain:    s.chain,
		Reader:   s.reader,
		Signer:   signingKey,
		Journal:  s.journal,
	}, nil
}

func (s *runtimeState) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := s.settings.Timeout
	// Staged runs span several endpoint calls plus confirmation polling.
	if strings.HasPrefix(s.lastCommand, "act") {
		timeout = timeout*4 + 2*time.Minute
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func (s *runtimeState) emitSuccess(commandPath string, data any) error {
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: true,
		Data:    data,
		Meta: model.EnvelopeMeta{
			RequestID: uuid.NewString(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(commandPath string, err error) {
	s.renderErrorWithData(commandPath, err, nil)
}

func (s *runtimeState) renderErrorWithData(commandPath string, err error, data any) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
	}

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    data,
		Error: &model.ErrorBody{
			Code:    clierr.ExitCode(err),
			Type:    errTypeName(err),
			Message: message,
		},
		Meta: model.EnvelopeMeta{
			RequestID: uuid.NewString(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func errTypeName(err error) string {
	cErr, ok := clierr.As(err)
	if !ok {
		return "internal_error"
	}
	switch cErr.Code {
	case clierr.CodeUsage:
		return "usage_error"
	case clierr.CodeResolve:
		return "resolve_error"
	case clierr.CodeAmbiguous:
		return "ambiguous_intent"
	case clierr.CodeOwner:
		return "owner_mismatch"
	case clierr.CodeAuth:
		return "auth_error"
	case clierr.CodeRateLimited:
		return "rate_limited"
	case clierr.CodeUnavailable:
		return "endpoint_unavailable"
	case clierr.CodeUnsupported:
		return "unsupported"
	case clierr.CodeRoute:
		return "no_route"
	case clierr.CodeSimFailed:
		return "simulation_failed"
	case clierr.CodeApproval:
		return "approval_required"
	case clierr.CodeOnChain:
		return "onchain_failure"
	default:
		return "internal_error"
	}
}

// errAlreadyRendered carries the original error code upward after the
// envelope has been written with partial data attached.
type errAlreadyRendered struct{ err error }

func (e errAlreadyRendered) Error() string { return e.err.Error() }
func (e errAlreadyRendered) Unwrap() error { return e.err }

func trimRootPath(path string) string {
	return strings.TrimSpace(strings.TrimPrefix(path, version.CLIName))
}

func commandUsesJournal(path string) bool {
	return strings.HasPrefix(path, "act") || strings.HasPrefix(path, "runs")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	var rendered errAlreadyRendered
	if ok := asRendered(err, &rendered); ok {
		return silentError{rendered.err}
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	return clierr.Wrap(clierr.CodeUsage, "invalid invocation", err)
}

func asRendered(err error, target *errAlreadyRendered) bool {
	for err != nil {
		if e, ok := err.(errAlreadyRendered); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// silentError keeps the exit code but suppresses a second render.
type silentError struct{ err error }

func (e silentError) Error() string { return e.err.Error() }
func (e silentError) Unwrap() error { return e.err }
