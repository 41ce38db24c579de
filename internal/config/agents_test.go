package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAgents() *AgentsConfig {
	return &AgentsConfig{
		Agents: map[string]AgentConfig{
			"gemini": {Provider: "google", Kind: KindAPI, DefaultModel: "gemini-2.0-flash", DailyBudget: 100},
			"local":  {Provider: "local", Kind: KindCLI, DefaultModel: "llama3", DailyBudget: 50, Command: "ollama"},
		},
		Chains: map[string][]string{"generation": {"gemini", "local"}},
	}
}

func TestAgentsValidate_Valid(t *testing.T) {
	assert.NoError(t, validAgents().Validate())
}

func TestAgentsValidate_CLIWithoutCommand(t *testing.T) {
	cfg := validAgents()
	agent := cfg.Agents["local"]
	agent.Command = ""
	cfg.Agents["local"] = agent

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cli kind but declares no command")
}

func TestAgentsValidate_DanglingChainReference(t *testing.T) {
	cfg := validAgents()
	cfg.Chains["generation"] = []string{"gemini", "ghost"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `references unknown agent "ghost"`)
}

func TestAgentsValidate_EmptyChain(t *testing.T) {
	cfg := validAgents()
	cfg.Chains["generation"] = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestAgentsValidate_MissingProvider(t *testing.T) {
	cfg := validAgents()
	agent := cfg.Agents["gemini"]
	agent.Provider = ""
	cfg.Agents["gemini"] = agent

	assert.Error(t, cfg.Validate())
}

func TestLoadAgents_FileAndChainOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	data := `{
		"agents": {
			"primary":   {"provider": "google", "kind": "api", "default_model": "m1", "daily_budget": 10},
			"secondary": {"provider": "google", "kind": "api", "default_model": "m2", "daily_budget": 10}
		},
		"chains": {"generation": ["primary", "secondary"]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadAgents(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "secondary"}, cfg.Chain("generation"), "chain order is preserved as configured")
	assert.Nil(t, cfg.Chain("unknown"))
}

func TestLoadAgents_InvalidConfigFailsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	data := `{
		"agents": {"primary": {"provider": "google", "kind": "api", "default_model": "m1", "daily_budget": 10}},
		"chains": {"generation": ["primary", "ghost"]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadAgents(path)
	assert.Error(t, err, "a dangling chain reference fails the load, not the first run to reach it")
}

func TestCostFor(t *testing.T) {
	agent := AgentConfig{
		DefaultModel: "flash",
		ModelRates:   map[string]float64{"pro": 4},
	}
	assert.Equal(t, 1.0, agent.CostFor(""), "no override uses the default model at one unit")
	assert.Equal(t, 4.0, agent.CostFor("pro"))
	assert.Equal(t, 1.0, agent.CostFor("unlisted"))
}
