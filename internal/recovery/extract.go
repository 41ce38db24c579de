// Package recovery turns raw backend text into canonical schema-conformant
// content objects, repairing the malformations LLM output shows in practice.
// Only an unparseable payload is fatal; every other anomaly is repaired.
package recovery

import (
	"encoding/json"
	"strings"
)

// envelopeKeys are the field names command-line tools use to wrap their
// payload, tried in order.
var envelopeKeys = []string{"result", "response", "output"}

// unwrapEnvelope detects a tool envelope (a JSON object whose payload sits in
// a well-known string field) and returns the inner text.
func unwrapEnvelope(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw, false
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &outer); err != nil {
		return raw, false
	}

	for _, key := range envelopeKeys {
		field, ok := outer[key]
		if !ok {
			continue
		}
		var inner string
		if err := json.Unmarshal(field, &inner); err == nil && strings.TrimSpace(inner) != "" {
			return inner, true
		}
	}
	return raw, false
}

// stripFences removes markdown code block wrappers from JSON.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractJSONObject returns the first balanced top-level JSON object in the
// text. Text already starting with '{' is returned whole. The scan is
// string-aware so braces inside string values do not break the balance.
func extractJSONObject(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed, false
	}

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return trimmed, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(trimmed); i++ {
		ch := trimmed[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// skip structural characters inside strings
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return trimmed[start : i+1], true
			}
		}
	}

	// Unbalanced; hand the tail to the parser and let repair try its luck.
	return trimmed[start:], true
}
