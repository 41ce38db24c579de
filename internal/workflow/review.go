package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/applyforge/internal/prompts"
	"github.com/jonathan/applyforge/internal/recovery"
	"github.com/jonathan/applyforge/internal/types"
)

// Draft is the content currently waiting at a review gate.
type Draft struct {
	Type    types.DocumentType `json:"type"`
	Content json.RawMessage    `json:"content"`
}

// activeReviewType returns the document type whose review gate currently
// holds the request: the latest completed review step with every later step
// still pending.
func activeReviewType(req *types.GenerationRequest) (types.DocumentType, bool) {
	for i := len(req.Steps) - 1; i >= 0; i-- {
		step := req.Steps[i]
		if !isReviewStep(step.ID) || step.Status != types.StepCompleted {
			continue
		}
		allPending := true
		for j := i + 1; j < len(req.Steps); j++ {
			if req.Steps[j].Status != types.StepPending {
				allPending = false
				break
			}
		}
		if allPending {
			docType, _ := stepDocType(step.ID)
			return docType, true
		}
	}
	return "", false
}

// GetDraftContent returns the draft paused at the active review gate.
// Intermediate content is visible only while the request awaits review.
func (e *Engine) GetDraftContent(ctx context.Context, id uuid.UUID) (*Draft, error) {
	req, err := e.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != types.StatusAwaitingReview {
		return nil, &NotAwaitingReviewError{ID: id, Status: req.Status}
	}

	docType, ok := activeReviewType(req)
	if !ok {
		return nil, fmt.Errorf("request %s has no active review gate", id)
	}
	content, ok := req.Intermediate[docType]
	if !ok {
		return nil, fmt.Errorf("no draft stored for %s", docType)
	}
	return &Draft{Type: docType, Content: content}, nil
}

// SubmitReview approves the active draft, optionally replacing it with
// reviewer-edited content, and resumes the workflow. Edited content is passed
// through the same recovery pipeline as agent output; only unparseable input
// is rejected.
func (e *Engine) SubmitReview(ctx context.Context, id uuid.UUID, edited json.RawMessage) (*types.GenerationRequest, error) {
	lock := e.requestLock(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != types.StatusAwaitingReview {
		return nil, &NotAwaitingReviewError{ID: id, Status: req.Status}
	}
	docType, ok := activeReviewType(req)
	if !ok {
		return nil, fmt.Errorf("request %s has no active review gate", id)
	}

	if len(edited) > 0 {
		canonical, err := recoverCanonical(docType, string(edited))
		if err != nil {
			return nil, err
		}
		if err := e.storeIntermediate(req, docType, canonical); err != nil {
			return nil, err
		}
	}

	req.Status = types.StatusProcessing
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// RejectReview regenerates the active draft from reviewer feedback. The
// request stays at the review gate with the fresh draft. Each document type
// allows a bounded number of revision rounds.
func (e *Engine) RejectReview(ctx context.Context, id uuid.UUID, feedback string) (*Draft, error) {
	lock := e.requestLock(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != types.StatusAwaitingReview {
		return nil, &NotAwaitingReviewError{ID: id, Status: req.Status}
	}
	docType, ok := activeReviewType(req)
	if !ok {
		return nil, fmt.Errorf("request %s has no active review gate", id)
	}
	if req.Revisions[docType] >= maxRevisionsPerDocument {
		return nil, &MaxRevisionsError{Type: docType}
	}

	items, err := e.profiles.ListContentItems(ctx, nil)
	if err != nil {
		return nil, err
	}
	basePrompt, err := e.buildBasePrompt(ctx, req, docType, items)
	if err != nil {
		return nil, err
	}

	var previous any
	if raw, ok := req.Intermediate[docType]; ok {
		if err := json.Unmarshal(raw, &previous); err != nil {
			return nil, fmt.Errorf("failed to decode stored draft: %w", err)
		}
	}
	prompt, err := prompts.BuildRevision(basePrompt, previous, feedback)
	if err != nil {
		return nil, err
	}

	switch docType {
	case types.DocumentResume:
		attempt, err := e.resumeRound(ctx, prompt, items)
		if err != nil {
			return nil, err
		}
		if err := e.storeIntermediate(req, docType, attempt.content); err != nil {
			return nil, err
		}
	case types.DocumentCoverLetter:
		res, err := e.orch.Execute(ctx, CategoryGeneration, prompt, "")
		if err != nil {
			return nil, err
		}
		content, _, err := recovery.RecoverCoverLetter(res.Text)
		if err != nil {
			return nil, err
		}
		if content.Signature == "" && req.PersonalInfo != nil {
			content.Signature = req.PersonalInfo.Name
		}
		if err := e.storeIntermediate(req, docType, content); err != nil {
			return nil, err
		}
	}

	if req.Revisions == nil {
		req.Revisions = make(map[types.DocumentType]int)
	}
	req.Revisions[docType]++

	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return &Draft{Type: docType, Content: req.Intermediate[docType]}, nil
}

// recoverCanonical normalizes reviewer-edited JSON into the canonical content
// type for a document.
func recoverCanonical(docType types.DocumentType, raw string) (any, error) {
	switch docType {
	case types.DocumentResume:
		content, _, err := recovery.RecoverResume(raw)
		return content, err
	case types.DocumentCoverLetter:
		content, _, err := recovery.RecoverCoverLetter(raw)
		return content, err
	default:
		return nil, fmt.Errorf("unsupported document type: %q", docType)
	}
}
