package workflow

import (
	"strings"

	"github.com/jonathan/applyforge/internal/types"
)

// Step identifiers. Generation and review steps carry the document type as a
// suffix.
const (
	StepCollectData = "collect-data"
	StepRenderPDF   = "render-pdf"

	stepGeneratePrefix = "generate-"
	stepReviewPrefix   = "review-"
)

// GenerateStepID returns the generation step id for a document type.
func GenerateStepID(docType types.DocumentType) string {
	return stepGeneratePrefix + strings.ReplaceAll(string(docType), "_", "-")
}

// ReviewStepID returns the review step id for a document type.
func ReviewStepID(docType types.DocumentType) string {
	return stepReviewPrefix + strings.ReplaceAll(string(docType), "_", "-")
}

// stepDocType recovers the document type from a generate-* or review-* step
// id.
func stepDocType(stepID string) (types.DocumentType, bool) {
	suffix := ""
	switch {
	case strings.HasPrefix(stepID, stepGeneratePrefix):
		suffix = strings.TrimPrefix(stepID, stepGeneratePrefix)
	case strings.HasPrefix(stepID, stepReviewPrefix):
		suffix = strings.TrimPrefix(stepID, stepReviewPrefix)
	default:
		return "", false
	}
	docType := types.DocumentType(strings.ReplaceAll(suffix, "-", "_"))
	if docType != types.DocumentResume && docType != types.DocumentCoverLetter {
		return "", false
	}
	return docType, true
}

// StepsForSet expands a document set into its fixed step template. Every
// requested document gets a generation step followed by a human review gate;
// rendering happens once at the end for all accepted documents.
func StepsForSet(set types.DocumentSet) []types.Step {
	steps := []types.Step{{
		ID:          StepCollectData,
		Name:        "Collect profile data",
		Description: "Snapshot identity fields and verify agent availability",
		Status:      types.StepPending,
	}}

	for _, docType := range set.Types() {
		label := "resume"
		if docType == types.DocumentCoverLetter {
			label = "cover letter"
		}
		steps = append(steps,
			types.Step{
				ID:          GenerateStepID(docType),
				Name:        "Generate " + label,
				Description: "Generate, validate, and ground the " + label + " draft",
				Status:      types.StepPending,
			},
			types.Step{
				ID:          ReviewStepID(docType),
				Name:        "Review " + label,
				Description: "Pause for human review of the " + label + " draft",
				Status:      types.StepPending,
			},
		)
	}

	steps = append(steps, types.Step{
		ID:          StepRenderPDF,
		Name:        "Render documents",
		Description: "Render accepted drafts and store artifacts",
		Status:      types.StepPending,
	})
	return steps
}
