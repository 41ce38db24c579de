package recovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Canonical content schemas. Fields are optional (defaults fill the gaps
// afterward) but must have the right shape when present.
const resumeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "professionalSummary": {"type": "string"},
    "experience": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company": {"type": "string"},
          "role": {"type": "string"},
          "location": {"type": "string"},
          "startDate": {"type": "string"},
          "endDate": {"type": ["string", "null"]},
          "highlights": {"type": "array", "items": {"type": "string"}},
          "technologies": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "category": {"type": "string"},
          "items": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "technologies": {"type": "array", "items": {"type": "string"}},
          "highlights": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "institution": {"type": "string"},
          "degree": {"type": "string"},
          "field": {"type": "string"},
          "startDate": {"type": "string"},
          "endDate": {"type": "string"},
          "location": {"type": "string"}
        }
      }
    }
  }
}`

const coverLetterSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "greeting": {"type": "string"},
    "bodyParagraphs": {"type": "array", "items": {"type": "string"}},
    "closing": {"type": "string"},
    "signature": {"type": "string"}
  }
}`

// validateAndPrune validates the repaired document against the canonical
// schema. A malformed top-level field is pruned (defaults refill it) rather
// than rejecting the document; only the parse stage is allowed to be fatal.
func validateAndPrune(doc map[string]any, schema string) ([]string, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(docJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed during load: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	var fired []string
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			continue
		}
		top := strings.SplitN(field, ".", 2)[0]
		if _, present := doc[top]; present {
			delete(doc, top)
			fired = append(fired, RepairDroppedInvalid+":"+top)
		}
	}
	return fired, nil
}
