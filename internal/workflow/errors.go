package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/applyforge/internal/agents"
	"github.com/jonathan/applyforge/internal/recovery"
	"github.com/jonathan/applyforge/internal/types"
)

// maxRevisionsPerDocument caps reject-regenerate rounds per document type so
// a dissatisfied reviewer cannot burn unbounded agent budget.
const maxRevisionsPerDocument = 3

// NotFoundError indicates no request exists with the given ID.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request not found: %s", e.ID)
}

// NoProfileError indicates the collect-data step found no configured profile.
type NoProfileError struct{}

func (e *NoProfileError) Error() string {
	return "no profile configured; add profile data before generating documents"
}

// ReviewPendingError indicates the workflow cannot advance because a draft is
// waiting for human review.
type ReviewPendingError struct {
	ID uuid.UUID
}

func (e *ReviewPendingError) Error() string {
	return fmt.Sprintf("request %s is awaiting review; approve or reject the draft first", e.ID)
}

// NotAwaitingReviewError indicates a review operation was called while the
// request is not paused at a review gate.
type NotAwaitingReviewError struct {
	ID     uuid.UUID
	Status types.RequestStatus
}

func (e *NotAwaitingReviewError) Error() string {
	return fmt.Sprintf("request %s is not awaiting review (status: %s)", e.ID, e.Status)
}

// MaxRevisionsError indicates the reject-regenerate cap was reached for a
// document type.
type MaxRevisionsError struct {
	Type types.DocumentType
}

func (e *MaxRevisionsError) Error() string {
	return fmt.Sprintf("maximum revision attempts (%d) reached for %s", maxRevisionsPerDocument, e.Type)
}

// UnknownStepError indicates a persisted step id the engine does not
// recognize. Executing it would silently skip work, so it fails loudly.
type UnknownStepError struct {
	StepID string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown workflow step: %s", e.StepID)
}

// safeMessage maps an error to the text recorded on a failed step. Errors the
// engine classified itself pass through verbatim; anything else gets a
// generic message so internal details never leak into user-visible state.
func safeMessage(err error) string {
	var (
		notFound      *NotFoundError
		noProfile     *NoProfileError
		maxRevisions  *MaxRevisionsError
		unknownStep   *UnknownStepError
		parseErr      *recovery.ParseError
		noAgents      *agents.NoAgentsError
		chainAborted  *agents.ChainAbortedError
		notConfigured *agents.ChainNotConfiguredError
		execErr       *agents.ExecutionError
	)
	switch {
	case errors.As(err, &notFound),
		errors.As(err, &noProfile),
		errors.As(err, &maxRevisions),
		errors.As(err, &unknownStep),
		errors.As(err, &parseErr),
		errors.As(err, &noAgents),
		errors.As(err, &chainAborted),
		errors.As(err, &notConfigured),
		errors.As(err, &execErr):
		return err.Error()
	default:
		return "an internal error occurred while processing this step"
	}
}
