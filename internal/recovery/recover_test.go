package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverResume_CleanJSON(t *testing.T) {
	raw := `{
		"professionalSummary": "Backend engineer.",
		"experience": [{"company": "Acme", "role": "Engineer", "startDate": "2020-01", "endDate": null, "highlights": ["Built things"], "technologies": ["Go"]}],
		"skills": [{"category": "Languages", "items": ["Go", "SQL"]}],
		"projects": [],
		"education": []
	}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Empty(t, repairs)
	assert.Equal(t, "Backend engineer.", content.ProfessionalSummary)
	require.Len(t, content.Experience, 1)
	assert.Equal(t, "Acme", content.Experience[0].Company)
	assert.Nil(t, content.Experience[0].EndDate)
}

func TestRecoverResume_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"professionalSummary\": \"x\"}\n```"

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairStrippedFences)
	assert.Equal(t, "x", content.ProfessionalSummary)
}

func TestRecoverResume_ToolEnvelope(t *testing.T) {
	raw := `{"result": "{\"professionalSummary\": \"from envelope\"}"}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairUnwrappedEnvelope)
	assert.Equal(t, "from envelope", content.ProfessionalSummary)
}

func TestRecoverResume_SurroundingProse(t *testing.T) {
	raw := `Here is your resume:
{"professionalSummary": "extracted"}
Let me know if you want changes.`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairExtractedJSON)
	assert.Equal(t, "extracted", content.ProfessionalSummary)
}

func TestRecoverResume_BareStringSkills(t *testing.T) {
	raw := `{"skills": ["Go", "SQL", "Kubernetes"]}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairSkillsExpanded)
	require.Len(t, content.Skills, 1)
	assert.Equal(t, "Skills", content.Skills[0].Category)
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, content.Skills[0].Items)
}

func TestRecoverResume_ExperienceAliases(t *testing.T) {
	raw := `{"experience": [{"companyName": "Acme", "title": "Engineer", "bullets": ["Did work"]}]}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairExperienceAliases)
	require.Len(t, content.Experience, 1)
	assert.Equal(t, "Acme", content.Experience[0].Company)
	assert.Equal(t, "Engineer", content.Experience[0].Role)
	assert.Equal(t, []string{"Did work"}, content.Experience[0].Highlights)
}

func TestRecoverResume_PresentEndDateBecomesNull(t *testing.T) {
	raw := `{"experience": [{"company": "Acme", "endDate": "Present"}]}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairEndDatePresent)
	require.Len(t, content.Experience, 1)
	assert.Nil(t, content.Experience[0].EndDate)
}

func TestRecoverResume_SummaryRenamed(t *testing.T) {
	raw := `{"summary": "renamed"}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairSummaryRenamed)
	assert.Equal(t, "renamed", content.ProfessionalSummary)
}

func TestRecoverResume_TrailingCommaRepaired(t *testing.T) {
	raw := `{"professionalSummary": "x", "skills": [{"category": "A", "items": ["Go",]}],}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairJSONRepair)
	assert.Equal(t, "x", content.ProfessionalSummary)
}

func TestRecoverResume_NotJSONIsFatal(t *testing.T) {
	_, _, err := RecoverResume("I'm sorry, I cannot help with that request.")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestRecoverResume_DefaultsFillEverySection(t *testing.T) {
	content, _, err := RecoverResume(`{}`)

	require.NoError(t, err)
	assert.NotNil(t, content.Experience)
	assert.NotNil(t, content.Skills)
	assert.NotNil(t, content.Projects)
	assert.NotNil(t, content.Education)
	assert.Empty(t, content.Experience)
}

func TestRecoverResume_InvalidFieldDroppedNotFatal(t *testing.T) {
	// experience as a bare string violates the schema; the field is dropped
	// and refilled with its default rather than failing the request.
	raw := `{"professionalSummary": "kept", "experience": "ten years of stuff"}`

	content, repairs, err := RecoverResume(raw)

	require.NoError(t, err)
	assert.Equal(t, "kept", content.ProfessionalSummary)
	assert.Empty(t, content.Experience)
	found := false
	for _, r := range repairs {
		if len(r) >= len(RepairDroppedInvalid) && r[:len(RepairDroppedInvalid)] == RepairDroppedInvalid {
			found = true
		}
	}
	assert.True(t, found, "dropping an invalid field is recorded as a repair")
}

func TestRecoverCoverLetter_Clean(t *testing.T) {
	raw := `{"greeting": "Dear Team,", "bodyParagraphs": ["First.", "Second."], "closing": "Best,", "signature": "Ada"}`

	content, repairs, err := RecoverCoverLetter(raw)

	require.NoError(t, err)
	assert.Empty(t, repairs)
	assert.Equal(t, []string{"First.", "Second."}, content.BodyParagraphs)
}

func TestRecoverCoverLetter_BodyAsSingleString(t *testing.T) {
	raw := `{"body": "First paragraph.\n\nSecond paragraph."}`

	content, repairs, err := RecoverCoverLetter(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairBodyParagraphs)
	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, content.BodyParagraphs)
}

func TestRecoverCoverLetter_ParagraphObjects(t *testing.T) {
	raw := `{"bodyParagraphs": [{"text": "One."}, "Two.", {"content": "Three."}]}`

	content, repairs, err := RecoverCoverLetter(raw)

	require.NoError(t, err)
	assert.Contains(t, repairs, RepairBodyParagraphs)
	assert.Equal(t, []string{"One.", "Two.", "Three."}, content.BodyParagraphs)
}

func TestRecoverCoverLetter_Defaults(t *testing.T) {
	content, _, err := RecoverCoverLetter(`{"bodyParagraphs": ["Only paragraph."]}`)

	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,", content.Greeting)
	assert.Equal(t, "Sincerely,", content.Closing)
}
