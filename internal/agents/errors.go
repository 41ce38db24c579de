// Package agents selects and invokes AI text-generation backends along
// configured fallback chains, policing auth, spend, and failure policy.
package agents

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a backend execution failure. Each kind drives a
// different orchestrator policy.
type ErrorKind string

// Execution error kinds.
const (
	KindTimeout  ErrorKind = "timeout"
	KindQuota    ErrorKind = "quota"
	KindAuth     ErrorKind = "auth"
	KindNotFound ErrorKind = "not_found"
	KindOther    ErrorKind = "other"
)

// ExecutionError wraps a backend failure with its classification and the
// agent that produced it.
type ExecutionError struct {
	AgentID string
	Kind    ErrorKind
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("agent %s failed (%s): %v", e.AgentID, e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NoAgentsError indicates every agent in a chain was tried (or skipped as
// disabled) without success.
type NoAgentsError struct {
	Category string
	Tried    []string
}

func (e *NoAgentsError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("no agents available for task %q: all chain agents are disabled", e.Category)
	}
	return fmt.Sprintf("no agents available for task %q (tried: %s)", e.Category, strings.Join(e.Tried, ", "))
}

// ChainAbortedError indicates a systemic failure (auth at call time, or an
// unclassified error) stopped the chain before later candidates were tried.
type ChainAbortedError struct {
	Category string
	AgentID  string
	Err      error
}

func (e *ChainAbortedError) Error() string {
	return fmt.Sprintf("task %q aborted at agent %s: %v", e.Category, e.AgentID, e.Err)
}

func (e *ChainAbortedError) Unwrap() error {
	return e.Err
}

// ChainNotConfiguredError indicates no fallback chain exists for a task
// category. This is a user-facing precondition error.
type ChainNotConfiguredError struct {
	Category string
}

func (e *ChainNotConfiguredError) Error() string {
	return fmt.Sprintf("no fallback chain configured for task %q", e.Category)
}
