package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/applyforge/internal/config"
)

// Backend is one invokable text-generation provider. An empty model means
// the backend should use its configured default.
type Backend interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// BuildBackends constructs a backend per declared agent. Unsupported kinds
// fail here rather than at first use.
func BuildBackends(cfg *config.AgentsConfig, defaultTimeout time.Duration) (map[string]Backend, error) {
	backends := make(map[string]Backend, len(cfg.Agents))
	for id, agent := range cfg.Agents {
		timeout := defaultTimeout
		if agent.TimeoutSeconds > 0 {
			timeout = time.Duration(agent.TimeoutSeconds) * time.Second
		}

		switch agent.Kind {
		case config.KindAPI:
			backends[id] = newGeminiBackend(agent, timeout)
		case config.KindCLI:
			backends[id] = newCLIBackend(agent, timeout)
		default:
			return nil, fmt.Errorf("agent %q has unsupported kind %q", id, agent.Kind)
		}
	}
	return backends, nil
}
