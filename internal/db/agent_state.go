package db

import (
	"context"
	"fmt"

	"github.com/jonathan/applyforge/internal/agents"
)

// LoadAgentStates retrieves the full agent reliability table.
func (db *DB) LoadAgentStates(ctx context.Context) (map[string]agents.AgentState, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT agent_id, enabled, COALESCE(reason, ''), daily_usage, usage_date, updated_at
		 FROM agent_states`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]agents.AgentState)
	for rows.Next() {
		var (
			id string
			st agents.AgentState
		)
		if err := rows.Scan(&id, &st.Enabled, &st.Reason, &st.DailyUsage, &st.UsageDate, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent state: %w", err)
		}
		states[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load agent states: %w", err)
	}
	return states, nil
}

// SaveAgentStates upserts the full agent reliability table in one
// transaction. Writes happen after every attempt, so the table is small and a
// snapshot write keeps the store simple.
func (db *DB) SaveAgentStates(ctx context.Context, states map[string]agents.AgentState) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin agent state transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for id, st := range states {
		if _, err := tx.Exec(ctx,
			`INSERT INTO agent_states (agent_id, enabled, reason, daily_usage, usage_date, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (agent_id) DO UPDATE SET
			   enabled = $2, reason = $3, daily_usage = $4, usage_date = $5, updated_at = $6`,
			id, st.Enabled, st.Reason, st.DailyUsage, st.UsageDate, st.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to save agent state %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit agent states: %w", err)
	}
	return nil
}

var _ agents.StateStore = (*DB)(nil)
