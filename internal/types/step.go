package types

import "time"

// StepStatus is the execution status of a single workflow step.
type StepStatus string

// Step statuses. A step moves pending -> in_progress -> {completed|failed}.
const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// Step is one unit of work in a request's pipeline. Steps execute in the
// fixed order they were generated; at most one step is in_progress at a time.
type Step struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      StepStatus     `json:"status"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMs  *int           `json:"duration_ms,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Start marks the step in_progress and stamps its start time.
func (s *Step) Start(now time.Time) {
	s.Status = StepInProgress
	s.StartedAt = &now
}

// Complete marks the step completed and derives its duration.
func (s *Step) Complete(now time.Time, result map[string]any) {
	s.Status = StepCompleted
	s.CompletedAt = &now
	s.Result = result
	if s.StartedAt != nil {
		dur := int(now.Sub(*s.StartedAt).Milliseconds())
		s.DurationMs = &dur
	}
}

// Fail marks the step failed with a user-safe message.
func (s *Step) Fail(now time.Time, msg string) {
	s.Status = StepFailed
	s.CompletedAt = &now
	s.Error = msg
	if s.StartedAt != nil {
		dur := int(now.Sub(*s.StartedAt).Milliseconds())
		s.DurationMs = &dur
	}
}
