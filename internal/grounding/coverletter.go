package grounding

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/applyforge/internal/types"
)

// properNounPattern matches capitalized tokens that look like product,
// company, or technology names (allows Go-style suffixes like C++ and .js).
var properNounPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9+#.]{2,}\b`)

// scanStopwords are capitalized words that are ordinary English, not claims.
var scanStopwords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"With": true, "While": true, "When": true, "Where": true, "What": true,
	"Your": true, "Their": true, "There": true, "Throughout": true,
	"Dear": true, "Sincerely": true, "Regards": true, "Thank": true,
	"During": true, "After": true, "Before": true, "Over": true,
	"Additionally": true, "Finally": true, "Furthermore": true, "However": true,
	"Having": true, "Working": true, "Building": true, "Leading": true,
}

// ScanCoverLetter heuristically checks a cover letter for company or
// technology terms absent from the authoritative profile. Cover letters keep
// creative latitude, so this emits operator-facing warnings instead of
// filtering.
func ScanCoverLetter(content *types.CoverLetterContent, items []types.ContentItem, job types.JobTarget, info *types.PersonalInfo) []string {
	corpus := buildCorpus(items, job, info)

	seen := make(map[string]bool)
	var warnings []string
	for _, paragraph := range content.BodyParagraphs {
		for _, match := range properNounPattern.FindAllStringIndex(paragraph, -1) {
			term := paragraph[match[0]:match[1]]
			if scanStopwords[term] || seen[term] {
				continue
			}
			// Sentence-initial words are usually just grammar.
			if match[0] == 0 || isSentenceStart(paragraph, match[0]) {
				continue
			}
			if strings.Contains(corpus, normalizeKey(term)) {
				continue
			}
			seen[term] = true
			warnings = append(warnings, fmt.Sprintf("cover letter mentions %q, which does not appear in the profile or job posting", term))
		}
	}
	return warnings
}

// buildCorpus collects every authoritative term the letter may legitimately
// reference: profile items, the job target, and the candidate's own identity.
func buildCorpus(items []types.ContentItem, job types.JobTarget, info *types.PersonalInfo) string {
	var sb strings.Builder
	add := func(parts ...string) {
		for _, p := range parts {
			if p != "" {
				sb.WriteString(normalizeKey(p))
				sb.WriteString(" ")
			}
		}
	}

	for _, item := range items {
		add(item.Title, item.Role, item.Description, item.Location)
		add(item.Skills...)
	}
	add(job.Company, job.Role, job.Description, job.Location, job.Site)
	if info != nil {
		add(info.Name, info.Location, info.Website, info.LinkedIn)
	}
	return sb.String()
}

// isSentenceStart reports whether the token at offset begins a sentence.
func isSentenceStart(text string, offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		ch := text[i]
		if ch == ' ' || ch == '\n' || ch == '\t' {
			continue
		}
		return ch == '.' || ch == '!' || ch == '?'
	}
	return true
}
