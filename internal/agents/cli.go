package agents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jonathan/applyforge/internal/config"
)

// cliBackend invokes an external command-line AI tool. The prompt goes to
// stdin and raw output (which may carry the tool's own envelope) comes back
// on stdout; unwrapping is the recovery layer's job.
type cliBackend struct {
	cfg     config.AgentConfig
	timeout time.Duration
}

func newCLIBackend(cfg config.AgentConfig, timeout time.Duration) *cliBackend {
	return &cliBackend{cfg: cfg, timeout: timeout}
}

func (b *cliBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	args := make([]string, 0, len(b.cfg.Args)+2)
	args = append(args, b.cfg.Args...)
	if model != "" {
		args = append(args, "--model", model)
	}

	// CommandContext kills the process when the deadline fires; there is no
	// cooperative cancellation once the tool is running.
	cmd := exec.CommandContext(ctx, b.cfg.Command, args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("command %s timed out after %s: %w", b.cfg.Command, b.timeout, context.DeadlineExceeded)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("command %s failed: %s", b.cfg.Command, detail)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("command %s produced no output", b.cfg.Command)
	}
	return out, nil
}
