package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/applyforge/internal/types"
)

// Templates holds the current named-placeholder templates per document type,
// as served by the prompt store. Empty fields fall back to the embedded
// defaults.
type Templates struct {
	ResumeGeneration      string `json:"resumeGeneration"`
	CoverLetterGeneration string `json:"coverLetterGeneration"`
}

// ForType returns the template for a document type, falling back to the
// embedded default.
func (t Templates) ForType(docType types.DocumentType) (string, error) {
	switch docType {
	case types.DocumentResume:
		if t.ResumeGeneration != "" {
			return t.ResumeGeneration, nil
		}
		return Default("resumeGeneration")
	case types.DocumentCoverLetter:
		if t.CoverLetterGeneration != "" {
			return t.CoverLetterGeneration, nil
		}
		return Default("coverLetterGeneration")
	default:
		return "", fmt.Errorf("no template for document type %q", docType)
	}
}

// GenerationContext carries everything a generation prompt needs.
type GenerationContext struct {
	Job          types.JobTarget
	PersonalInfo *types.PersonalInfo
	Items        []types.ContentItem
	Preferences  *types.Preferences
}

// BuildGeneration renders a generation prompt from a template and context.
func BuildGeneration(template string, ctx GenerationContext) (string, error) {
	infoJSON, err := json.MarshalIndent(ctx.PersonalInfo, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal personal info: %w", err)
	}
	itemsJSON, err := json.MarshalIndent(ctx.Items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile items: %w", err)
	}

	prefs := "none"
	if ctx.Preferences != nil {
		prefsJSON, err := json.Marshal(ctx.Preferences)
		if err != nil {
			return "", fmt.Errorf("failed to marshal preferences: %w", err)
		}
		prefs = string(prefsJSON)
	}

	return Format(template, map[string]string{
		"Role":           ctx.Job.Role,
		"Company":        ctx.Job.Company,
		"Location":       ctx.Job.Location,
		"JobDescription": ctx.Job.Description,
		"PersonalInfo":   string(infoJSON),
		"ProfileItems":   string(itemsJSON),
		"Preferences":    prefs,
	}), nil
}

// BuildRevision renders the regeneration prompt used by the reject loop.
// Feedback is embedded verbatim.
func BuildRevision(basePrompt string, previousDraft any, feedback string) (string, error) {
	draftJSON, err := json.MarshalIndent(previousDraft, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal previous draft: %w", err)
	}

	template, err := Default("revision")
	if err != nil {
		return "", err
	}

	return Format(template, map[string]string{
		"Feedback":      feedback,
		"PreviousDraft": string(draftJSON),
		"BasePrompt":    basePrompt,
	}), nil
}
