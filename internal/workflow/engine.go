// Package workflow drives a generation request through its step pipeline:
// collect profile data, generate and ground each document, pause at human
// review gates, and render accepted drafts into stored artifacts.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applyforge/internal/agents"
	"github.com/jonathan/applyforge/internal/grounding"
	"github.com/jonathan/applyforge/internal/pagefit"
	"github.com/jonathan/applyforge/internal/prompts"
	"github.com/jonathan/applyforge/internal/recovery"
	"github.com/jonathan/applyforge/internal/render"
	"github.com/jonathan/applyforge/internal/types"
)

// CategoryGeneration is the task category whose fallback chain serves
// document generation.
const CategoryGeneration = "generation"

// RequestStore persists generation requests and their artifact records.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *types.GenerationRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*types.GenerationRequest, error)
	UpdateRequest(ctx context.Context, req *types.GenerationRequest) error
	AddArtifact(ctx context.Context, rec types.ArtifactRecord) error
	ListArtifacts(ctx context.Context, requestID uuid.UUID) ([]types.ArtifactRecord, error)
	ListAwaitingReviewBefore(ctx context.Context, cutoff time.Time) ([]*types.GenerationRequest, error)
}

// ProfileStore serves the authoritative profile and its content items.
type ProfileStore interface {
	GetProfile(ctx context.Context) (*types.Profile, error)
	ListContentItems(ctx context.Context, filter *types.ItemFilter) ([]types.ContentItem, error)
}

// PromptStore serves prompt template overrides.
type PromptStore interface {
	GetTemplates(ctx context.Context) (prompts.Templates, error)
}

// Generator is the agent orchestrator surface the engine needs.
type Generator interface {
	EnsureAvailable(category string) error
	Execute(ctx context.Context, category, prompt, modelOverride string) (*agents.Result, error)
}

// CreateInput is the payload for a new generation request.
type CreateInput struct {
	Documents   types.DocumentSet
	Job         types.JobTarget
	Preferences *types.Preferences
	JobMatchID  *uuid.UUID
}

// Engine executes generation request workflows. Engines are safe for
// concurrent use; each request's single-flight invariant is held by a
// per-request lock.
type Engine struct {
	store    RequestStore
	profiles ProfileStore
	tplStore PromptStore
	renderer render.Renderer
	orch     Generator

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

// NewEngine assembles an engine over its stores, renderer, and orchestrator.
func NewEngine(store RequestStore, profiles ProfileStore, tplStore PromptStore, renderer render.Renderer, orch Generator) *Engine {
	return &Engine{
		store:    store,
		profiles: profiles,
		tplStore: tplStore,
		renderer: renderer,
		orch:     orch,
		locks:    make(map[uuid.UUID]*sync.Mutex),
		now:      time.Now,
	}
}

// requestLock returns the per-request mutex, creating it on first use.
func (e *Engine) requestLock(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

// CreateRequest validates the input, expands the step template for the
// document set, and persists the request in processing state.
func (e *Engine) CreateRequest(ctx context.Context, input CreateInput) (*types.GenerationRequest, error) {
	if !input.Documents.Valid() {
		return nil, fmt.Errorf("invalid document set: %q", input.Documents)
	}
	if input.Job.Role == "" || input.Job.Company == "" {
		return nil, fmt.Errorf("job role and company are required")
	}

	req := &types.GenerationRequest{
		ID:          uuid.New(),
		Documents:   input.Documents,
		Job:         input.Job,
		Preferences: input.Preferences,
		JobMatchID:  input.JobMatchID,
		Status:      types.StatusProcessing,
		Steps:       StepsForSet(input.Documents),
	}
	if err := e.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequest retrieves a request, translating absence into NotFoundError.
func (e *Engine) GetRequest(ctx context.Context, id uuid.UUID) (*types.GenerationRequest, error) {
	req, err := e.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{ID: id}
	}
	return req, nil
}

// RunNextStep executes the next runnable step of a request. It returns the
// executed step, or nil when the request is terminal and nothing ran.
// Completed requests are idempotent: repeat calls mutate nothing. A request
// paused at a review gate returns ReviewPendingError until the draft is
// approved or rejected.
func (e *Engine) RunNextStep(ctx context.Context, id uuid.UUID) (*types.Step, error) {
	lock := e.requestLock(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, nil
	}
	if req.Status == types.StatusAwaitingReview {
		return nil, &ReviewPendingError{ID: id}
	}

	idx := nextStepIndex(req.Steps)
	if idx < 0 {
		// Nothing left to run; settle the terminal status.
		req.Status = types.StatusCompleted
		if err := e.store.UpdateRequest(ctx, req); err != nil {
			return nil, err
		}
		return nil, nil
	}

	step := &req.Steps[idx]
	step.Start(e.now())
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}

	result, runErr := e.runStep(ctx, req, step)
	if runErr != nil {
		step.Fail(e.now(), safeMessage(runErr))
		req.Status = types.StatusFailed
		if err := e.store.UpdateRequest(ctx, req); err != nil {
			return nil, err
		}
		stepCopy := *step
		return &stepCopy, fmt.Errorf("step %s failed: %w", step.ID, runErr)
	}

	step.Complete(e.now(), result)
	switch {
	case isReviewStep(step.ID):
		req.Status = types.StatusAwaitingReview
	case nextStepIndex(req.Steps) < 0:
		req.Status = types.StatusCompleted
	}
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	stepCopy := *step
	return &stepCopy, nil
}

// RunToPause advances a request until it completes, fails, or pauses at a
// review gate. It returns the executed steps in order.
func (e *Engine) RunToPause(ctx context.Context, id uuid.UUID) ([]types.Step, error) {
	var ran []types.Step
	for {
		step, err := e.RunNextStep(ctx, id)
		if step != nil {
			ran = append(ran, *step)
		}
		if err != nil {
			var pending *ReviewPendingError
			if errors.As(err, &pending) {
				return ran, nil
			}
			return ran, err
		}
		if step == nil {
			return ran, nil
		}
		if isReviewStep(step.ID) {
			return ran, nil
		}
	}
}

// nextStepIndex returns the first step that is pending, or in_progress from
// an interrupted run. Generation steps are safe to re-run after a crash.
func nextStepIndex(steps []types.Step) int {
	for i := range steps {
		if steps[i].Status == types.StepPending || steps[i].Status == types.StepInProgress {
			return i
		}
	}
	return -1
}

func isReviewStep(stepID string) bool {
	if !strings.HasPrefix(stepID, stepReviewPrefix) {
		return false
	}
	_, ok := stepDocType(stepID)
	return ok
}

// runStep dispatches a step to its handler by id.
func (e *Engine) runStep(ctx context.Context, req *types.GenerationRequest, step *types.Step) (map[string]any, error) {
	switch {
	case step.ID == StepCollectData:
		return e.runCollectData(ctx, req)
	case step.ID == StepRenderPDF:
		return e.runRender(ctx, req)
	default:
		docType, ok := stepDocType(step.ID)
		if !ok {
			return nil, &UnknownStepError{StepID: step.ID}
		}
		if isReviewStep(step.ID) {
			// The gate itself is instantaneous; the pause happens through the
			// request status transition after completion.
			return map[string]any{"document": string(docType)}, nil
		}
		return e.runGenerate(ctx, req, docType)
	}
}

// runCollectData snapshots identity fields once and fails fast when no agent
// in the generation chain is available.
func (e *Engine) runCollectData(ctx context.Context, req *types.GenerationRequest) (map[string]any, error) {
	profile, err := e.profiles.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &NoProfileError{}
	}

	// The snapshot is captured once; later profile edits never leak into an
	// in-flight request.
	if req.PersonalInfo == nil {
		req.PersonalInfo = &types.PersonalInfo{
			Name:     profile.Name,
			Email:    profile.Email,
			Phone:    profile.Phone,
			Location: profile.Location,
			Website:  profile.Website,
			LinkedIn: profile.LinkedIn,
		}
	}

	if err := e.orch.EnsureAvailable(CategoryGeneration); err != nil {
		return nil, err
	}

	items, err := e.profiles.ListContentItems(ctx, nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"profile":       profile.Name,
		"content_items": len(items),
	}, nil
}

// runGenerate produces, recovers, and grounds one document draft, storing it
// as intermediate content for the review gate.
func (e *Engine) runGenerate(ctx context.Context, req *types.GenerationRequest, docType types.DocumentType) (map[string]any, error) {
	items, err := e.profiles.ListContentItems(ctx, nil)
	if err != nil {
		return nil, err
	}
	basePrompt, err := e.buildBasePrompt(ctx, req, docType, items)
	if err != nil {
		return nil, err
	}

	switch docType {
	case types.DocumentResume:
		return e.generateResume(ctx, req, basePrompt, items)
	case types.DocumentCoverLetter:
		return e.generateCoverLetter(ctx, req, basePrompt, items)
	default:
		return nil, fmt.Errorf("unsupported document type: %q", docType)
	}
}

func (e *Engine) buildBasePrompt(ctx context.Context, req *types.GenerationRequest, docType types.DocumentType, items []types.ContentItem) (string, error) {
	tpls, err := e.tplStore.GetTemplates(ctx)
	if err != nil {
		return "", err
	}
	tpl, err := tpls.ForType(docType)
	if err != nil {
		return "", err
	}
	return prompts.BuildGeneration(tpl, prompts.GenerationContext{
		Job:          req.Job,
		PersonalInfo: req.PersonalInfo,
		Items:        items,
		Preferences:  req.Preferences,
	})
}

// resumeAttempt is one generate-recover-ground-estimate round.
type resumeAttempt struct {
	content *types.ResumeContent
	repairs []string
	report  *grounding.Report
	fit     pagefit.Estimate
	agentID string
	model   string
}

func (e *Engine) resumeRound(ctx context.Context, prompt string, items []types.ContentItem) (*resumeAttempt, error) {
	res, err := e.orch.Execute(ctx, CategoryGeneration, prompt, "")
	if err != nil {
		return nil, err
	}
	content, repairs, err := recovery.RecoverResume(res.Text)
	if err != nil {
		return nil, err
	}
	grounded, report := grounding.GroundResume(content, items)
	return &resumeAttempt{
		content: grounded,
		repairs: repairs,
		report:  report,
		fit:     pagefit.EstimateResume(grounded),
		agentID: res.AgentID,
		model:   res.Model,
	}, nil
}

func (e *Engine) generateResume(ctx context.Context, req *types.GenerationRequest, basePrompt string, items []types.ContentItem) (map[string]any, error) {
	attempt, err := e.resumeRound(ctx, basePrompt, items)
	if err != nil {
		return nil, err
	}

	refitted := false
	if !attempt.fit.Fits {
		trimPrompt, err := pagefit.BuildTrimPrompt(attempt.content, attempt.fit.Overflow, pagefit.DefaultTrimBudgets())
		if err != nil {
			return nil, err
		}
		// One refit round only. A failed refit keeps the oversized first
		// attempt rather than failing the whole step.
		if second, err := e.resumeRound(ctx, trimPrompt, items); err == nil {
			if second.fit.Overflow < attempt.fit.Overflow {
				attempt = second
				refitted = true
			}
		}
	}

	if err := e.storeIntermediate(req, types.DocumentResume, attempt.content); err != nil {
		return nil, err
	}

	result := map[string]any{
		"agent":    attempt.agentID,
		"model":    attempt.model,
		"repairs":  attempt.repairs,
		"fits":     attempt.fit.Fits,
		"overflow": attempt.fit.Overflow,
		"refitted": refitted,
	}
	if n := len(attempt.report.DroppedExperience); n > 0 {
		result["dropped_experience"] = attempt.report.DroppedExperience
	}
	if n := len(attempt.report.DroppedSkills); n > 0 {
		result["dropped_skills"] = attempt.report.DroppedSkills
	}
	if n := len(attempt.report.DroppedProjects); n > 0 {
		result["dropped_projects"] = attempt.report.DroppedProjects
	}
	if attempt.report.ExperienceFallback {
		result["experience_fallback"] = true
	}
	if attempt.report.SkillsFallback != "" {
		result["skills_fallback"] = attempt.report.SkillsFallback
	}
	return result, nil
}

func (e *Engine) generateCoverLetter(ctx context.Context, req *types.GenerationRequest, basePrompt string, items []types.ContentItem) (map[string]any, error) {
	res, err := e.orch.Execute(ctx, CategoryGeneration, basePrompt, "")
	if err != nil {
		return nil, err
	}
	content, repairs, err := recovery.RecoverCoverLetter(res.Text)
	if err != nil {
		return nil, err
	}
	if content.Signature == "" && req.PersonalInfo != nil {
		content.Signature = req.PersonalInfo.Name
	}

	warnings := grounding.ScanCoverLetter(content, items, req.Job, req.PersonalInfo)

	if err := e.storeIntermediate(req, types.DocumentCoverLetter, content); err != nil {
		return nil, err
	}

	result := map[string]any{
		"agent":   res.AgentID,
		"model":   res.Model,
		"repairs": repairs,
	}
	if len(warnings) > 0 {
		result["grounding_warnings"] = warnings
	}
	return result, nil
}

func (e *Engine) storeIntermediate(req *types.GenerationRequest, docType types.DocumentType, content any) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal %s content: %w", docType, err)
	}
	if req.Intermediate == nil {
		req.Intermediate = make(map[types.DocumentType]json.RawMessage)
	}
	req.Intermediate[docType] = data
	return nil
}

// runRender renders every accepted draft concurrently and records an
// artifact per document.
func (e *Engine) runRender(ctx context.Context, req *types.GenerationRequest) (map[string]any, error) {
	name := ""
	if req.PersonalInfo != nil {
		name = req.PersonalInfo.Name
	}

	docTypes := req.Documents.Types()
	locators := make([]types.OutputLocator, len(docTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, docType := range docTypes {
		raw, ok := req.Intermediate[docType]
		if !ok {
			return nil, fmt.Errorf("no reviewed content stored for %s", docType)
		}
		g.Go(func() error {
			var content any
			if err := json.Unmarshal(raw, &content); err != nil {
				return fmt.Errorf("failed to decode %s content: %w", docType, err)
			}
			locator, err := e.renderer.Render(gctx, render.Input{
				RequestID: req.ID,
				Type:      docType,
				Name:      name,
				Company:   req.Job.Company,
				Role:      req.Job.Role,
				Content:   content,
			})
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", docType, err)
			}
			locators[i] = locator
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.Outputs == nil {
		req.Outputs = make(map[types.DocumentType]types.OutputLocator)
	}
	result := map[string]any{}
	for i, docType := range docTypes {
		req.Outputs[docType] = locators[i]
		if err := e.store.AddArtifact(ctx, types.ArtifactRecord{
			ID:        uuid.New(),
			RequestID: req.ID,
			Type:      docType,
			Locator:   locators[i],
			CreatedAt: e.now(),
		}); err != nil {
			return nil, err
		}
		result[string(docType)] = locators[i].Filename
	}
	return result, nil
}
