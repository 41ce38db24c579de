package agents

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyforge/internal/config"
)

// memStore is an in-memory StateStore counting persistence calls.
type memStore struct {
	states map[string]AgentState
	saves  int
}

func (m *memStore) LoadAgentStates(_ context.Context) (map[string]AgentState, error) {
	return m.states, nil
}

func (m *memStore) SaveAgentStates(_ context.Context, states map[string]AgentState) error {
	m.states = states
	m.saves++
	return nil
}

// fakeBackend returns scripted responses per call.
type fakeBackend struct {
	calls int
	fn    func(call int) (string, error)
}

func (f *fakeBackend) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.fn(f.calls)
}

func always(text string, err error) *fakeBackend {
	return &fakeBackend{fn: func(int) (string, error) { return text, err }}
}

func twoAgentSetup(t *testing.T, a, b *fakeBackend) (*Orchestrator, *memStore) {
	t.Helper()
	cfg := &config.AgentsConfig{
		Agents: map[string]config.AgentConfig{
			"alpha": {Provider: "google", Kind: config.KindAPI, DefaultModel: "m1", DailyBudget: 100},
			"beta":  {Provider: "google", Kind: config.KindAPI, DefaultModel: "m2", DailyBudget: 100},
		},
		Chains: map[string][]string{"generation": {"alpha", "beta"}},
	}
	store := &memStore{}
	ledger, err := NewLedger(context.Background(), store, []string{"alpha", "beta"})
	require.NoError(t, err)

	orch := New(cfg, ledger, map[string]Backend{"alpha": a, "beta": b})
	return orch, store
}

func TestExecute_Success(t *testing.T) {
	a := always(`{"ok":true}`, nil)
	orch, store := twoAgentSetup(t, a, always("", errors.New("should not be called")))

	res, err := orch.Execute(context.Background(), "generation", "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, res.Text)
	assert.Equal(t, "alpha", res.AgentID)
	assert.Equal(t, "m1", res.Model)
	assert.Equal(t, 1.0, orch.ledger.State("alpha").DailyUsage)
	assert.GreaterOrEqual(t, store.saves, 1)
}

func TestExecute_TimeoutRetriesThenAdvances(t *testing.T) {
	a := always("", context.DeadlineExceeded)
	b := always("fallback", nil)
	orch, store := twoAgentSetup(t, a, b)

	res, err := orch.Execute(context.Background(), "generation", "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "beta", res.AgentID)
	assert.Equal(t, 3, a.calls, "timeouts get three total attempts against the same agent")
	assert.Equal(t, 1, b.calls)

	state := orch.ledger.State("alpha")
	assert.False(t, state.Enabled)
	assert.Contains(t, state.Reason, "error: timed out after 3 attempts")
	// One persist per attempt plus the success write.
	assert.GreaterOrEqual(t, store.saves, 4)
}

func TestExecute_QuotaDisablesWithoutRetry(t *testing.T) {
	a := always("", errors.New("429: rate limit exceeded"))
	b := always("fallback", nil)
	orch, _ := twoAgentSetup(t, a, b)

	res, err := orch.Execute(context.Background(), "generation", "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "beta", res.AgentID)
	assert.Equal(t, 1, a.calls, "quota failures are not retried")

	state := orch.ledger.State("alpha")
	assert.False(t, state.Enabled)
	assert.Contains(t, state.Reason, "quota_exhausted: ")
}

func TestExecute_AuthFailureAbortsChain(t *testing.T) {
	a := always("", errors.New("401 unauthorized: invalid api key"))
	b := always("never", nil)
	orch, _ := twoAgentSetup(t, a, b)

	_, err := orch.Execute(context.Background(), "generation", "prompt", "")

	var aborted *ChainAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "alpha", aborted.AgentID)
	assert.Equal(t, 0, b.calls, "systemic failures stop the chain before later candidates")
	assert.False(t, orch.ledger.State("alpha").Enabled)
	assert.True(t, orch.ledger.State("beta").Enabled)
}

func TestExecute_UnclassifiedErrorAbortsChain(t *testing.T) {
	a := always("", errors.New("connection reset by peer"))
	b := always("never", nil)
	orch, _ := twoAgentSetup(t, a, b)

	_, err := orch.Execute(context.Background(), "generation", "prompt", "")

	var aborted *ChainAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, 0, b.calls)
	assert.Contains(t, orch.ledger.State("alpha").Reason, "error: ")
}

func TestExecute_MissingAuthDisablesAndAdvances(t *testing.T) {
	cfg := &config.AgentsConfig{
		Agents: map[string]config.AgentConfig{
			"alpha": {
				Provider: "google", Kind: config.KindAPI, DefaultModel: "m1", DailyBudget: 100,
				Auth: config.AuthRequirement{EnvVars: []string{"ALPHA_KEY"}, CredentialFiles: []string{"/etc/alpha.json"}},
			},
			"beta": {Provider: "google", Kind: config.KindAPI, DefaultModel: "m2", DailyBudget: 100},
		},
		Chains: map[string][]string{"generation": {"alpha", "beta"}},
	}
	store := &memStore{}
	ledger, err := NewLedger(context.Background(), store, []string{"alpha", "beta"})
	require.NoError(t, err)

	a := always("never", nil)
	b := always("fallback", nil)
	orch := New(cfg, ledger, map[string]Backend{"alpha": a, "beta": b})
	orch.getenv = func(string) string { return "" }
	orch.fileExists = func(string) bool { return false }

	res, err := orch.Execute(context.Background(), "generation", "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "beta", res.AgentID)
	assert.Equal(t, 0, a.calls, "auth is checked before the backend is invoked")

	state := ledger.State("alpha")
	assert.False(t, state.Enabled)
	assert.Equal(t, "missing_env:any_of:ALPHA_KEY; missing_file:any_of:/etc/alpha.json", state.Reason)
}

func TestExecute_BudgetExhaustedDisablesAndAdvances(t *testing.T) {
	cfg := &config.AgentsConfig{
		Agents: map[string]config.AgentConfig{
			"alpha": {Provider: "google", Kind: config.KindAPI, DefaultModel: "m1", DailyBudget: 2},
			"beta":  {Provider: "google", Kind: config.KindAPI, DefaultModel: "m2", DailyBudget: 100},
		},
		Chains: map[string][]string{"generation": {"alpha", "beta"}},
	}
	store := &memStore{}
	ledger, err := NewLedger(context.Background(), store, []string{"alpha", "beta"})
	require.NoError(t, err)
	ledger.RecordUsage("alpha", 2)

	a := always("never", nil)
	b := always("fallback", nil)
	orch := New(cfg, ledger, map[string]Backend{"alpha": a, "beta": b})

	res, err := orch.Execute(context.Background(), "generation", "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "beta", res.AgentID)
	assert.Equal(t, 0, a.calls)
	assert.Equal(t, "quota_exhausted: daily budget reached", ledger.State("alpha").Reason)
}

func TestExecute_AllAgentsExhausted(t *testing.T) {
	a := always("", errors.New("quota exceeded"))
	b := always("", errors.New("rate limit"))
	orch, _ := twoAgentSetup(t, a, b)

	_, err := orch.Execute(context.Background(), "generation", "prompt", "")

	var noAgents *NoAgentsError
	require.ErrorAs(t, err, &noAgents)
	assert.Equal(t, []string{"alpha", "beta"}, noAgents.Tried)
}

func TestExecute_SkipsDisabledAgents(t *testing.T) {
	a := always("never", nil)
	b := always("fallback", nil)
	orch, _ := twoAgentSetup(t, a, b)
	orch.ledger.Disable("alpha", "error: broken")

	res, err := orch.Execute(context.Background(), "generation", "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "beta", res.AgentID)
	assert.Equal(t, 0, a.calls)
}

func TestExecute_UnknownCategory(t *testing.T) {
	orch, _ := twoAgentSetup(t, always("", nil), always("", nil))

	_, err := orch.Execute(context.Background(), "nope", "prompt", "")

	var notConfigured *ChainNotConfiguredError
	assert.ErrorAs(t, err, &notConfigured)
}

func TestEnsureAvailable(t *testing.T) {
	orch, _ := twoAgentSetup(t, always("", nil), always("", nil))

	assert.NoError(t, orch.EnsureAvailable("generation"))

	orch.ledger.Disable("alpha", "error: x")
	assert.NoError(t, orch.EnsureAvailable("generation"))

	orch.ledger.Disable("beta", "error: y")
	var noAgents *NoAgentsError
	assert.ErrorAs(t, orch.EnsureAvailable("generation"), &noAgents)

	var notConfigured *ChainNotConfiguredError
	assert.ErrorAs(t, orch.EnsureAvailable("missing"), &notConfigured)
}

func TestLedger_DailyUsageResetsOnRollover(t *testing.T) {
	store := &memStore{}
	ledger, err := NewLedger(context.Background(), store, []string{"alpha"})
	require.NoError(t, err)

	day := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return day }
	ledger.RecordUsage("alpha", 5)
	assert.Equal(t, 5.0, ledger.State("alpha").DailyUsage)

	ledger.now = func() time.Time { return day.Add(24 * time.Hour) }
	assert.Equal(t, 0.0, ledger.State("alpha").DailyUsage, "usage resets on UTC date rollover")
}

func TestLedger_DisableKeepsFirstReason(t *testing.T) {
	store := &memStore{}
	ledger, err := NewLedger(context.Background(), store, []string{"alpha"})
	require.NoError(t, err)

	ledger.Disable("alpha", "error: first")
	ledger.Disable("alpha", "error: second")

	assert.Equal(t, "error: first", ledger.State("alpha").Reason)
}

func TestLedger_LoadsPersistedState(t *testing.T) {
	store := &memStore{states: map[string]AgentState{
		"alpha": {Enabled: false, Reason: "quota_exhausted: daily budget reached", UsageDate: "2026-08-25"},
	}}
	ledger, err := NewLedger(context.Background(), store, []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.False(t, ledger.State("alpha").Enabled, "disabled agents stay disabled across restarts")
	assert.True(t, ledger.State("beta").Enabled, "unknown agents start enabled")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{context.DeadlineExceeded, KindTimeout},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), KindTimeout},
		{errors.New("request timed out"), KindTimeout},
		{errors.New("429 Too Many Requests"), KindQuota},
		{errors.New("RESOURCE_EXHAUSTED: quota exceeded"), KindQuota},
		{errors.New("401 Unauthorized"), KindAuth},
		{errors.New("invalid API key provided"), KindAuth},
		{errors.New("exec: \"claude\": executable file not found in $PATH"), KindNotFound},
		{errors.New("connection reset by peer"), KindOther},
		{nil, KindOther},
	}
	for _, tc := range cases {
		name := "nil"
		if tc.err != nil {
			name = tc.err.Error()
		}
		assert.Equal(t, tc.kind, Classify(tc.err), name)
	}
}
