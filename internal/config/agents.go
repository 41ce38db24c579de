package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// AgentKind distinguishes how a backend is invoked.
type AgentKind string

// Agent interface kinds.
const (
	KindAPI AgentKind = "api" // direct provider API
	KindCLI AgentKind = "cli" // external command-line tool
)

// AuthRequirement declares how an agent authenticates. The requirement is
// satisfied if ANY declared env var is set or ANY declared credential file
// exists (inclusive-OR within and across kinds).
type AuthRequirement struct {
	EnvVars         []string `json:"env_vars,omitempty"`
	CredentialFiles []string `json:"credential_files,omitempty"`
}

// AgentConfig declares one AI text-generation backend. The engine never
// mutates configuration; runtime state (usage, enabled flag) lives in the
// agent ledger.
type AgentConfig struct {
	Provider     string             `json:"provider" validate:"required"`
	Kind         AgentKind          `json:"kind" validate:"required,oneof=api cli"`
	DefaultModel string             `json:"default_model" validate:"required"`
	Auth         AuthRequirement    `json:"auth"`
	DailyBudget  float64            `json:"daily_budget" validate:"gte=0"`
	ModelRates   map[string]float64 `json:"model_rates,omitempty"`

	// CLI-kind settings
	Command        string   `json:"command,omitempty"`
	Args           []string `json:"args,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" validate:"gte=0"`
}

// CostFor returns the cost in budget units of a call with the given model
// override. Without an override the backend uses its own default model and
// the cost is one unit.
func (a *AgentConfig) CostFor(modelOverride string) float64 {
	if modelOverride == "" {
		return 1
	}
	if rate, ok := a.ModelRates[modelOverride]; ok {
		return rate
	}
	return 1
}

// AgentsConfig is the full agent table plus per-task fallback chains.
type AgentsConfig struct {
	Agents map[string]AgentConfig `json:"agents" validate:"required,min=1,dive"`
	Chains map[string][]string    `json:"chains" validate:"required,min=1"`
}

// LoadAgents reads and validates the agent configuration file. A chain entry
// referencing an undeclared agent id fails the load, not the first run that
// happens to reach it.
func LoadAgents(path string) (*AgentsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents config %s: %w", path, err)
	}

	var cfg AgentsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agents config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints and chain references.
func (c *AgentsConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("agents config invalid: %w", err)
	}

	for id, agent := range c.Agents {
		if agent.Kind == KindCLI && agent.Command == "" {
			return fmt.Errorf("agents config invalid: agent %q is cli kind but declares no command", id)
		}
	}

	for category, chain := range c.Chains {
		if len(chain) == 0 {
			return fmt.Errorf("agents config invalid: chain %q is empty", category)
		}
		for _, id := range chain {
			if _, ok := c.Agents[id]; !ok {
				return fmt.Errorf("agents config invalid: chain %q references unknown agent %q", category, id)
			}
		}
	}

	return nil
}

// Chain returns the ordered agent ids configured for a task category.
func (c *AgentsConfig) Chain(category string) []string {
	return c.Chains[category]
}
