package pagefit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyforge/internal/types"
)

func compactResume() *types.ResumeContent {
	return &types.ResumeContent{
		ProfessionalSummary: "Backend engineer focused on data-heavy services.",
		Experience: []types.ExperienceEntry{
			{Company: "Acme", Highlights: []string{"Built the ingest pipeline", "Cut latency 40%"}},
			{Company: "Globex", Highlights: []string{"Maintained billing"}},
		},
		Skills: []types.SkillCategory{
			{Category: "Languages", Items: []string{"Go", "SQL"}},
		},
		Education: []types.EducationEntry{
			{Institution: "State University", Degree: "BSc"},
		},
	}
}

func TestEstimateResume_CompactContentFits(t *testing.T) {
	est := EstimateResume(compactResume())

	assert.True(t, est.Fits)
	assert.Equal(t, 0.0, est.Overflow)
	assert.Equal(t, 0.0, est.MainOverflow)
	assert.Equal(t, 0.0, est.SidebarOverflow)
}

func TestEstimateResume_EmptyContent(t *testing.T) {
	est := EstimateResume(&types.ResumeContent{})

	assert.True(t, est.Fits)
	assert.Equal(t, headerLines, est.MainLines)
	assert.Equal(t, sidebarContactLines, est.SidebarLines)
}

func TestEstimateResume_MainColumnOverflow(t *testing.T) {
	content := compactResume()
	longBullet := strings.Repeat("delivered measurable impact across teams ", 4)
	for i := 0; i < 10; i++ {
		content.Experience = append(content.Experience, types.ExperienceEntry{
			Company:    "Company",
			Highlights: []string{longBullet, longBullet, longBullet},
		})
	}

	est := EstimateResume(content)

	assert.False(t, est.Fits)
	assert.Greater(t, est.MainOverflow, 0.0)
	assert.Equal(t, est.MainOverflow, est.Overflow)
}

func TestEstimateResume_SidebarOverflowAlone(t *testing.T) {
	content := &types.ResumeContent{}
	for i := 0; i < 20; i++ {
		content.Education = append(content.Education, types.EducationEntry{Institution: "School"})
	}

	est := EstimateResume(content)

	assert.False(t, est.Fits, "either column overflowing fails the fit")
	assert.Equal(t, 0.0, est.MainOverflow)
	assert.Greater(t, est.SidebarOverflow, 0.0)
	assert.Equal(t, est.SidebarOverflow, est.Overflow)
}

func TestTextLines(t *testing.T) {
	assert.Equal(t, 0.0, textLines("", mainCharsPerLine))
	assert.Equal(t, 1.0, textLines("short", mainCharsPerLine), "non-empty text costs at least one line")
	assert.Equal(t, 1.5, textLines(strings.Repeat("a", 100), mainCharsPerLine), "half-line resolution")
}

func TestBuildTrimPrompt(t *testing.T) {
	content := compactResume()
	budgets := DefaultTrimBudgets()

	prompt, err := BuildTrimPrompt(content, 7.5, budgets)

	require.NoError(t, err)
	assert.Contains(t, prompt, "7.5 lines")
	assert.Contains(t, prompt, "TRIM")
	assert.Contains(t, prompt, "Do NOT rewrite")
	assert.Contains(t, prompt, "at most 4 experience entries")
	assert.Contains(t, prompt, "Acme", "the first attempt is carried verbatim")
}
