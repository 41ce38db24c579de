package grounding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyforge/internal/types"
)

func TestScanCoverLetter_FlagsUnknownTerms(t *testing.T) {
	content := &types.CoverLetterContent{
		BodyParagraphs: []string{
			"I spent four years scaling services in Clojure at a hedge fund.",
		},
	}
	job := types.JobTarget{Company: "Acme Corp", Role: "Senior Engineer"}

	warnings := ScanCoverLetter(content, testItems(), job, nil)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"Clojure"`)
}

func TestScanCoverLetter_KnownTermsPass(t *testing.T) {
	content := &types.CoverLetterContent{
		BodyParagraphs: []string{
			"My experience with PostgreSQL and Kubernetes at Acme Corp maps directly to this role.",
		},
	}
	job := types.JobTarget{Company: "Acme Corp", Role: "Senior Engineer"}

	warnings := ScanCoverLetter(content, testItems(), job, nil)

	assert.Empty(t, warnings)
}

func TestScanCoverLetter_SentenceInitialWordsIgnored(t *testing.T) {
	content := &types.CoverLetterContent{
		BodyParagraphs: []string{
			"Throughout my career I have focused on reliability. Elsewhere, results followed.",
		},
	}

	warnings := ScanCoverLetter(content, testItems(), types.JobTarget{}, nil)

	assert.Empty(t, warnings, "sentence-initial capitalized words are grammar, not claims")
}

func TestScanCoverLetter_JobCompanyIsLegitimate(t *testing.T) {
	content := &types.CoverLetterContent{
		BodyParagraphs: []string{"I have long admired Hooli and its developer platform."},
	}
	job := types.JobTarget{Company: "Hooli", Role: "Engineer"}

	warnings := ScanCoverLetter(content, testItems(), job, nil)

	assert.Empty(t, warnings, "the target company itself may always be referenced")
}

func TestScanCoverLetter_DuplicateTermsWarnOnce(t *testing.T) {
	content := &types.CoverLetterContent{
		BodyParagraphs: []string{
			"I built systems in Erlang. My love for Erlang is boundless.",
		},
	}

	warnings := ScanCoverLetter(content, testItems(), types.JobTarget{}, nil)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"Erlang"`)
}
