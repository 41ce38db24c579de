package recovery

import "strings"

// Repair names recorded when a targeted repair fires. They feed step results
// for observability and never drive control flow.
const (
	RepairUnwrappedEnvelope  = "unwrapped_envelope"
	RepairStrippedFences     = "stripped_fences"
	RepairExtractedJSON      = "extracted_json_object"
	RepairJSONRepair         = "jsonrepair"
	RepairSkillsExpanded     = "skills_expanded_from_strings"
	RepairExperienceAliases  = "experience_field_aliases"
	RepairEndDatePresent     = "end_date_present_to_null"
	RepairSummaryRenamed     = "summary_to_professional_summary"
	RepairBodyParagraphs     = "body_paragraphs_normalized"
	RepairDroppedInvalid     = "dropped_invalid_field"
)

// experience field aliases, canonical name first.
var experienceAliases = map[string][]string{
	"company":    {"companyName", "employer"},
	"role":       {"title", "position"},
	"startDate":  {"start", "from"},
	"endDate":    {"end", "to"},
	"highlights": {"bullets", "achievements"},
}

// repairResumeMap applies targeted repairs to a parsed resume document in
// place and returns the ordered list of repairs that fired.
func repairResumeMap(doc map[string]any) []string {
	var fired []string

	// summary -> professionalSummary
	if _, ok := doc["professionalSummary"]; !ok {
		if summary, ok := doc["summary"]; ok {
			doc["professionalSummary"] = summary
			delete(doc, "summary")
			fired = append(fired, RepairSummaryRenamed)
		}
	}

	if repairSkills(doc) {
		fired = append(fired, RepairSkillsExpanded)
	}

	aliased, presentFixed := repairExperience(doc)
	if aliased {
		fired = append(fired, RepairExperienceAliases)
	}
	if presentFixed {
		fired = append(fired, RepairEndDatePresent)
	}

	return fired
}

// repairSkills expands a bare string list into the canonical
// {category, items} shape. Already-canonical lists are left alone.
func repairSkills(doc map[string]any) bool {
	raw, ok := doc["skills"].([]any)
	if !ok || len(raw) == 0 {
		return false
	}

	var bare []any
	for _, entry := range raw {
		if _, isString := entry.(string); isString {
			bare = append(bare, entry)
		}
	}
	if len(bare) == 0 {
		return false
	}

	// Mixed lists keep their object entries and collect the strings into one
	// general category.
	var categories []any
	for _, entry := range raw {
		if m, isMap := entry.(map[string]any); isMap {
			categories = append(categories, m)
		}
	}
	categories = append(categories, map[string]any{"category": "Skills", "items": bare})
	doc["skills"] = categories
	return true
}

// repairExperience maps alternate field names onto the canonical ones and
// coerces "present" end dates to null.
func repairExperience(doc map[string]any) (aliased, presentFixed bool) {
	entries, ok := doc["experience"].([]any)
	if !ok {
		return false, false
	}

	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		for canonical, aliases := range experienceAliases {
			if _, has := entry[canonical]; has {
				continue
			}
			for _, alias := range aliases {
				if v, has := entry[alias]; has {
					entry[canonical] = v
					delete(entry, alias)
					aliased = true
					break
				}
			}
		}

		if end, ok := entry["endDate"].(string); ok && strings.EqualFold(strings.TrimSpace(end), "present") {
			entry["endDate"] = nil
			presentFixed = true
		}
	}
	return aliased, presentFixed
}

// bodyParagraphFallbacks are the alternate keys tried, in order, when
// bodyParagraphs is absent.
var bodyParagraphFallbacks = []string{"body", "content", "paragraphs"}

// repairCoverLetterMap normalizes the body paragraphs of a parsed cover
// letter into a clean non-empty string list.
func repairCoverLetterMap(doc map[string]any) []string {
	raw, ok := doc["bodyParagraphs"]
	usedFallback := false
	if !ok {
		for _, key := range bodyParagraphFallbacks {
			if v, has := doc[key]; has {
				raw = v
				delete(doc, key)
				usedFallback = true
				break
			}
		}
	}
	if raw == nil {
		return nil
	}

	paragraphs := normalizeParagraphs(raw)
	already, wasList := raw.([]any)
	clean := wasList && len(already) == len(paragraphs) && allStrings(already) && !usedFallback

	doc["bodyParagraphs"] = toAnySlice(paragraphs)
	if clean {
		return nil
	}
	return []string{RepairBodyParagraphs}
}

// normalizeParagraphs accepts a bare string, a {text|content|paragraph}
// object, or a mixed array of either, and returns trimmed non-empty strings.
func normalizeParagraphs(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case string:
		for _, p := range strings.Split(v, "\n\n") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	case map[string]any:
		if text := paragraphText(v); text != "" {
			out = append(out, text)
		}
	case []any:
		for _, entry := range v {
			switch e := entry.(type) {
			case string:
				if trimmed := strings.TrimSpace(e); trimmed != "" {
					out = append(out, trimmed)
				}
			case map[string]any:
				if text := paragraphText(e); text != "" {
					out = append(out, text)
				}
			}
		}
	}
	return out
}

// paragraphText pulls the text out of a paragraph object, trying the known
// field names in order.
func paragraphText(obj map[string]any) string {
	for _, key := range []string{"text", "content", "paragraph"} {
		if s, ok := obj[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func allStrings(list []any) bool {
	for _, entry := range list {
		s, ok := entry.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

func toAnySlice(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
