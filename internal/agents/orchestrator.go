package agents

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/applyforge/internal/config"
)

// maxTimeoutAttempts is the total number of attempts against a single agent
// when every failure classifies as a timeout.
const maxTimeoutAttempts = 3

// Result is a successful backend execution.
type Result struct {
	Text    string
	AgentID string
	Model   string
}

// Orchestrator walks a task category's fallback chain in configured order,
// skipping disabled agents, verifying auth, policing daily spend, and
// applying the per-kind failure policy.
type Orchestrator struct {
	cfg      *config.AgentsConfig
	ledger   *Ledger
	backends map[string]Backend

	// seams for tests
	getenv     func(string) string
	fileExists func(string) bool
}

// New creates an orchestrator over the given configuration, ledger, and
// backend table.
func New(cfg *config.AgentsConfig, ledger *Ledger, backends map[string]Backend) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		ledger:   ledger,
		backends: backends,
		getenv:   os.Getenv,
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// EnsureAvailable fails fast when no agent in the category's chain is
// currently enabled.
func (o *Orchestrator) EnsureAvailable(category string) error {
	chain := o.cfg.Chain(category)
	if len(chain) == 0 {
		return &ChainNotConfiguredError{Category: category}
	}
	for _, id := range chain {
		if o.ledger.State(id).Enabled {
			return nil
		}
	}
	return &NoAgentsError{Category: category}
}

// Execute runs the prompt against the first agent in the chain that passes
// auth and budget checks, falling back in strict configured order. The agent
// table is persisted after every attempt, success or failure.
func (o *Orchestrator) Execute(ctx context.Context, category, prompt, modelOverride string) (*Result, error) {
	chain := o.cfg.Chain(category)
	if len(chain) == 0 {
		return nil, &ChainNotConfiguredError{Category: category}
	}

	var tried []string
	for _, id := range chain {
		state := o.ledger.State(id)
		if !state.Enabled {
			continue
		}
		agentCfg := o.cfg.Agents[id]

		// Auth: satisfied if any declared env var is set or any declared
		// credential file exists.
		if !o.authSatisfied(agentCfg.Auth) {
			o.ledger.Disable(id, authReason(agentCfg.Auth))
			_ = o.ledger.Persist(ctx)
			tried = append(tried, id)
			continue
		}

		// Budget: cost from the configured model rate; default one unit when
		// no override (the backend uses its own default model).
		cost := agentCfg.CostFor(modelOverride)
		if state.DailyUsage+cost > agentCfg.DailyBudget {
			o.ledger.Disable(id, "quota_exhausted: daily budget reached")
			_ = o.ledger.Persist(ctx)
			tried = append(tried, id)
			continue
		}

		result, advance, err := o.invoke(ctx, id, agentCfg, prompt, modelOverride, cost)
		if err == nil {
			return result, nil
		}
		if !advance {
			return nil, &ChainAbortedError{Category: category, AgentID: id, Err: err}
		}
		tried = append(tried, id)
	}

	return nil, &NoAgentsError{Category: category, Tried: tried}
}

// invoke runs the attempt loop against a single agent. It returns
// advance=true when the chain may continue with the next candidate and
// advance=false for systemic failures that abort the whole chain.
func (o *Orchestrator) invoke(ctx context.Context, id string, agentCfg config.AgentConfig, prompt, modelOverride string, cost float64) (*Result, bool, error) {
	backend, ok := o.backends[id]
	if !ok {
		o.ledger.Disable(id, "error: no backend constructed")
		_ = o.ledger.Persist(ctx)
		return nil, true, fmt.Errorf("no backend constructed for agent %s", id)
	}

	model := modelOverride
	if model == "" {
		model = agentCfg.DefaultModel
	}

	var lastErr error
	for attempt := 1; attempt <= maxTimeoutAttempts; attempt++ {
		text, err := backend.Generate(ctx, modelOverride, prompt)
		if err == nil {
			o.ledger.RecordUsage(id, cost)
			_ = o.ledger.Persist(ctx)
			return &Result{Text: text, AgentID: id, Model: model}, true, nil
		}

		lastErr = err
		kind := Classify(err)
		execErr := &ExecutionError{AgentID: id, Kind: kind, Err: err}

		switch kind {
		case KindTimeout:
			// Retry the same agent; disable only after exhausting retries.
			_ = o.ledger.Persist(ctx)
			continue
		case KindQuota:
			o.ledger.Disable(id, "quota_exhausted: "+err.Error())
			_ = o.ledger.Persist(ctx)
			return nil, true, execErr
		case KindAuth:
			// Systemic: a key rejected here will be rejected everywhere this
			// process can reach; stop the whole chain.
			o.ledger.Disable(id, "error: "+err.Error())
			_ = o.ledger.Persist(ctx)
			return nil, false, execErr
		default:
			o.ledger.Disable(id, "error: "+err.Error())
			_ = o.ledger.Persist(ctx)
			return nil, false, execErr
		}
	}

	o.ledger.Disable(id, fmt.Sprintf("error: timed out after %d attempts: %v", maxTimeoutAttempts, lastErr))
	_ = o.ledger.Persist(ctx)
	return nil, true, &ExecutionError{AgentID: id, Kind: KindTimeout, Err: lastErr}
}

// authSatisfied reports whether any declared env var is set or any declared
// credential file exists. An agent declaring no auth requirement passes.
func (o *Orchestrator) authSatisfied(auth config.AuthRequirement) bool {
	if len(auth.EnvVars) == 0 && len(auth.CredentialFiles) == 0 {
		return true
	}
	for _, name := range auth.EnvVars {
		if o.getenv(name) != "" {
			return true
		}
	}
	for _, path := range auth.CredentialFiles {
		if o.fileExists(path) {
			return true
		}
	}
	return false
}

// authReason formats the permanent-disable reason for a failed auth check.
func authReason(auth config.AuthRequirement) string {
	var parts []string
	if len(auth.EnvVars) > 0 {
		parts = append(parts, "missing_env:any_of:"+strings.Join(auth.EnvVars, ","))
	}
	if len(auth.CredentialFiles) > 0 {
		parts = append(parts, "missing_file:any_of:"+strings.Join(auth.CredentialFiles, ","))
	}
	return strings.Join(parts, "; ")
}
