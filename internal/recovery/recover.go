package recovery

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"

	"github.com/jonathan/applyforge/internal/types"
)

// ParseError is the single unconditionally fatal recovery failure: the
// payload never became valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("generated output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parsePayload runs the shared front half of the pipeline: unwrap the tool
// envelope, strip markdown fences, extract the first balanced JSON object,
// and parse, with one jsonrepair pass before giving up.
func parsePayload(raw string) (map[string]any, []string, error) {
	var fired []string

	text, unwrapped := unwrapEnvelope(raw)
	if unwrapped {
		fired = append(fired, RepairUnwrappedEnvelope)
	}

	stripped := stripFences(text)
	if stripped != text {
		fired = append(fired, RepairStrippedFences)
	}

	candidate, extracted := extractJSONObject(stripped)
	if extracted {
		fired = append(fired, RepairExtractedJSON)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			return nil, fired, &ParseError{Err: err}
		}
		if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
			return nil, fired, &ParseError{Err: err}
		}
		fired = append(fired, RepairJSONRepair)
	}

	return doc, fired, nil
}

// RecoverResume recovers raw backend text into a canonical ResumeContent.
// The returned repair list is ordered by when each repair fired and is
// observability only.
func RecoverResume(raw string) (*types.ResumeContent, []string, error) {
	doc, fired, err := parsePayload(raw)
	if err != nil {
		return nil, fired, err
	}

	fired = append(fired, repairResumeMap(doc)...)

	pruned, err := validateAndPrune(doc, resumeSchema)
	if err != nil {
		return nil, fired, err
	}
	fired = append(fired, pruned...)

	var content types.ResumeContent
	if err := decodeInto(doc, &content); err != nil {
		return nil, fired, &ParseError{Err: err}
	}

	applyResumeDefaults(&content)
	return &content, fired, nil
}

// RecoverCoverLetter recovers raw backend text into a canonical
// CoverLetterContent.
func RecoverCoverLetter(raw string) (*types.CoverLetterContent, []string, error) {
	doc, fired, err := parsePayload(raw)
	if err != nil {
		return nil, fired, err
	}

	fired = append(fired, repairCoverLetterMap(doc)...)

	pruned, err := validateAndPrune(doc, coverLetterSchema)
	if err != nil {
		return nil, fired, err
	}
	fired = append(fired, pruned...)

	var content types.CoverLetterContent
	if err := decodeInto(doc, &content); err != nil {
		return nil, fired, &ParseError{Err: err}
	}

	applyCoverLetterDefaults(&content)
	return &content, fired, nil
}

// decodeInto round-trips the repaired map through JSON into the strict
// canonical type. A partially-repaired map never masquerades as validated;
// this is the typed boundary.
func decodeInto(doc map[string]any, target any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// applyResumeDefaults guarantees every field is populated: empty string,
// empty slice, or null per field type, never an omitted key.
func applyResumeDefaults(content *types.ResumeContent) {
	if content.Experience == nil {
		content.Experience = []types.ExperienceEntry{}
	}
	for i := range content.Experience {
		if content.Experience[i].Highlights == nil {
			content.Experience[i].Highlights = []string{}
		}
		if content.Experience[i].Technologies == nil {
			content.Experience[i].Technologies = []string{}
		}
	}
	if content.Skills == nil {
		content.Skills = []types.SkillCategory{}
	}
	for i := range content.Skills {
		if content.Skills[i].Items == nil {
			content.Skills[i].Items = []string{}
		}
	}
	if content.Projects == nil {
		content.Projects = []types.ProjectEntry{}
	}
	for i := range content.Projects {
		if content.Projects[i].Technologies == nil {
			content.Projects[i].Technologies = []string{}
		}
		if content.Projects[i].Highlights == nil {
			content.Projects[i].Highlights = []string{}
		}
	}
	if content.Education == nil {
		content.Education = []types.EducationEntry{}
	}
}

// applyCoverLetterDefaults fills conventional defaults for missing optional
// fields.
func applyCoverLetterDefaults(content *types.CoverLetterContent) {
	if content.BodyParagraphs == nil {
		content.BodyParagraphs = []string{}
	}
	if content.Greeting == "" {
		content.Greeting = "Dear Hiring Manager,"
	}
	if content.Closing == "" {
		content.Closing = "Sincerely,"
	}
}
