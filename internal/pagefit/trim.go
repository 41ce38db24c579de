package pagefit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/applyforge/internal/types"
)

// TrimBudgets are the hard numeric limits handed to the model for the single
// automatic refit round.
type TrimBudgets struct {
	MaxExperiences         int `json:"max_experiences"`
	MaxBulletsPerExperience int `json:"max_bullets_per_experience"`
	MaxSummaryWords        int `json:"max_summary_words"`
	MaxSkillCategories     int `json:"max_skill_categories"`
	MaxProjects            int `json:"max_projects"`
	MaxBulletsPerProject   int `json:"max_bullets_per_project"`
}

// DefaultTrimBudgets returns the budgets tuned for the one-page template.
func DefaultTrimBudgets() TrimBudgets {
	return TrimBudgets{
		MaxExperiences:          4,
		MaxBulletsPerExperience: 3,
		MaxSummaryWords:         50,
		MaxSkillCategories:      4,
		MaxProjects:             2,
		MaxBulletsPerProject:    2,
	}
}

// BuildTrimPrompt builds the "trim, do not rewrite" prompt for the refit
// round. The first attempt is carried verbatim so the model cuts rather than
// re-invents.
func BuildTrimPrompt(firstAttempt *types.ResumeContent, overflow float64, budgets TrimBudgets) (string, error) {
	attemptJSON, err := json.MarshalIndent(firstAttempt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal first attempt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("The resume JSON below overflows a one-page layout by an estimated ")
	sb.WriteString(fmt.Sprintf("%.1f lines.\n", overflow))
	sb.WriteString("TRIM it to fit. Do NOT rewrite, rephrase, or invent content; only remove or shorten.\n\n")
	sb.WriteString("Hard limits:\n")
	sb.WriteString(fmt.Sprintf("- at most %d experience entries\n", budgets.MaxExperiences))
	sb.WriteString(fmt.Sprintf("- at most %d bullets per experience\n", budgets.MaxBulletsPerExperience))
	sb.WriteString(fmt.Sprintf("- professional summary of at most %d words\n", budgets.MaxSummaryWords))
	sb.WriteString(fmt.Sprintf("- at most %d skill categories\n", budgets.MaxSkillCategories))
	sb.WriteString(fmt.Sprintf("- at most %d projects with at most %d bullets each\n", budgets.MaxProjects, budgets.MaxBulletsPerProject))
	sb.WriteString("\nReturn ONLY the trimmed JSON object, same schema, no markdown, no explanation.\n\n")
	sb.WriteString("Resume JSON:\n")
	sb.Write(attemptJSON)
	sb.WriteString("\n")

	return sb.String(), nil
}
