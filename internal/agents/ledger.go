package agents

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// AgentState is the mutable runtime state of one agent: the reliability
// ledger entry. Configuration itself is never mutated.
type AgentState struct {
	Enabled    bool      `json:"enabled"`
	Reason     string    `json:"reason,omitempty"`
	DailyUsage float64   `json:"daily_usage"`
	UsageDate  string    `json:"usage_date"` // YYYY-MM-DD, usage resets on rollover
	UpdatedAt  time.Time `json:"updated_at"`
}

// StateStore persists the full agent state table.
type StateStore interface {
	LoadAgentStates(ctx context.Context) (map[string]AgentState, error)
	SaveAgentStates(ctx context.Context, states map[string]AgentState) error
}

// Ledger is the shared reliability ledger. Concurrent requests hitting the
// same agent race on usage counters; the design accepts eventual,
// last-write-wins consistency rather than serializing requests on a store
// transaction. Brief over-spend under concurrency is tolerated.
type Ledger struct {
	mu     sync.Mutex
	store  StateStore
	states map[string]AgentState
	now    func() time.Time
}

// NewLedger loads persisted state and initializes any agent missing from the
// store as enabled with zero usage.
func NewLedger(ctx context.Context, store StateStore, agentIDs []string) (*Ledger, error) {
	states, err := store.LoadAgentStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent states: %w", err)
	}
	if states == nil {
		states = make(map[string]AgentState)
	}

	l := &Ledger{store: store, states: states, now: time.Now}
	for _, id := range agentIDs {
		if _, ok := l.states[id]; !ok {
			l.states[id] = AgentState{Enabled: true, UsageDate: l.today(), UpdatedAt: l.now()}
		}
	}
	return l, nil
}

func (l *Ledger) today() string {
	return l.now().UTC().Format("2006-01-02")
}

// State returns the current state of an agent, rolling the daily usage
// counter over when the stored date is stale.
func (l *Ledger) State(id string) AgentState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rolled(id)
}

func (l *Ledger) rolled(id string) AgentState {
	st := l.states[id]
	if st.UsageDate != l.today() {
		st.DailyUsage = 0
		st.UsageDate = l.today()
		l.states[id] = st
	}
	return st
}

// Disable permanently disables an agent with a reason. Disabling an already
// disabled agent keeps the original reason.
func (l *Ledger) Disable(id, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.rolled(id)
	if !st.Enabled {
		return
	}
	st.Enabled = false
	st.Reason = reason
	st.UpdatedAt = l.now()
	l.states[id] = st
}

// RecordUsage adds a successful call's cost to the agent's daily usage.
func (l *Ledger) RecordUsage(id string, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.rolled(id)
	st.DailyUsage += cost
	st.UpdatedAt = l.now()
	l.states[id] = st
}

// Persist writes the full state table through the store. Called after every
// attempt, success or failure.
func (l *Ledger) Persist(ctx context.Context) error {
	l.mu.Lock()
	snapshot := make(map[string]AgentState, len(l.states))
	for id, st := range l.states {
		snapshot[id] = st
	}
	l.mu.Unlock()

	if err := l.store.SaveAgentStates(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist agent states: %w", err)
	}
	return nil
}

// States returns a snapshot of all agent states, for status display.
func (l *Ledger) States() map[string]AgentState {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]AgentState, len(l.states))
	for id := range l.states {
		out[id] = l.rolled(id)
	}
	return out
}
