// Package grounding is the last line of defense against invented employers,
// skills, and projects before a generated document reaches a human. It
// cross-checks AI content against the authoritative profile items and drops
// or repairs anything unverifiable.
package grounding

import (
	"strings"

	"github.com/jonathan/applyforge/internal/types"
)

// Report records what the filter changed, for operator display. Grounding
// never fails a request; exhausted sections fall back to authoritative data.
type Report struct {
	DroppedExperience []string `json:"dropped_experience,omitempty"`
	DroppedSkills     []string `json:"dropped_skills,omitempty"`
	DroppedProjects   []string `json:"dropped_projects,omitempty"`
	ExperienceFallback bool    `json:"experience_fallback,omitempty"`
	SkillsFallback     string  `json:"skills_fallback,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// workEntry pairs a work item with its highlight children.
type workEntry struct {
	item       types.ContentItem
	highlights []string
}

// GroundResume returns a new resume whose every factual claim traces to the
// authoritative items. The input content is not mutated.
func GroundResume(content *types.ResumeContent, items []types.ContentItem) (*types.ResumeContent, *Report) {
	report := &Report{}
	out := &types.ResumeContent{
		ProfessionalSummary: content.ProfessionalSummary,
		Experience:          []types.ExperienceEntry{},
		Skills:              []types.SkillCategory{},
		Projects:            []types.ProjectEntry{},
		Education:           []types.EducationEntry{},
	}

	work := buildWorkIndex(items)
	out.Experience = groundExperience(content.Experience, work, report)
	if len(out.Experience) == 0 && len(work) > 0 {
		// Never return zero experience: fall back to the full authoritative list.
		out.Experience = authoritativeExperience(items)
		report.ExperienceFallback = true
	}

	out.Skills = groundSkills(content.Skills, items, report)
	out.Projects = groundProjects(content.Projects, items, report)
	out.Education = enrichEducation(content.Education, items)

	return out, report
}

// normalizeKey canonicalizes a title or name for lookup.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func buildWorkIndex(items []types.ContentItem) map[string]workEntry {
	index := make(map[string]workEntry)
	for _, item := range types.FilterByKind(items, types.ItemWork) {
		entry := workEntry{item: item}
		for _, child := range types.ChildrenOf(items, item.ID) {
			if child.Kind == types.ItemHighlight && child.Description != "" {
				entry.highlights = append(entry.highlights, child.Description)
			}
		}
		index[normalizeKey(item.Title)] = entry
	}
	return index
}

// groundExperience drops entries naming unknown companies and, on a match,
// prefers authoritative fields unless the AI supplied non-empty ones.
// AI-supplied technologies are restricted to the intersection with the
// authoritative skill set for that entry; no partial trust.
func groundExperience(entries []types.ExperienceEntry, work map[string]workEntry, report *Report) []types.ExperienceEntry {
	out := []types.ExperienceEntry{}
	for _, entry := range entries {
		auth, ok := work[normalizeKey(entry.Company)]
		if !ok {
			report.DroppedExperience = append(report.DroppedExperience, entry.Company)
			continue
		}

		grounded := types.ExperienceEntry{
			Company:      auth.item.Title,
			Role:         preferAI(entry.Role, auth.item.Role),
			Location:     preferAI(entry.Location, auth.item.Location),
			StartDate:    preferAI(entry.StartDate, auth.item.StartDate),
			Highlights:   entry.Highlights,
			Technologies: intersect(entry.Technologies, auth.item.Skills),
		}
		grounded.EndDate = groundEndDate(entry.EndDate, auth.item.EndDate)
		if len(grounded.Highlights) == 0 {
			grounded.Highlights = append([]string{}, auth.highlights...)
		}
		if grounded.Highlights == nil {
			grounded.Highlights = []string{}
		}
		out = append(out, grounded)
	}
	return out
}

// preferAI keeps the AI value when non-empty, otherwise the authoritative one.
func preferAI(ai, auth string) string {
	if strings.TrimSpace(ai) != "" {
		return ai
	}
	return auth
}

// groundEndDate keeps the AI end date when present, otherwise maps the
// authoritative one ("" means a current position, i.e. null).
func groundEndDate(ai *string, auth string) *string {
	if ai != nil && strings.TrimSpace(*ai) != "" {
		return ai
	}
	if auth == "" {
		return nil
	}
	return &auth
}

// intersect returns the AI values literally present (case-insensitive) in
// the authoritative set.
func intersect(ai, auth []string) []string {
	set := make(map[string]bool, len(auth))
	for _, s := range auth {
		set[normalizeKey(s)] = true
	}
	out := []string{}
	for _, s := range ai {
		if set[normalizeKey(s)] {
			out = append(out, s)
		}
	}
	return out
}

// authoritativeExperience rebuilds the experience section wholesale from the
// profile items.
func authoritativeExperience(items []types.ContentItem) []types.ExperienceEntry {
	out := []types.ExperienceEntry{}
	for _, item := range types.FilterByKind(items, types.ItemWork) {
		entry := types.ExperienceEntry{
			Company:      item.Title,
			Role:         item.Role,
			Location:     item.Location,
			StartDate:    item.StartDate,
			Highlights:   []string{},
			Technologies: append([]string{}, item.Skills...),
		}
		if item.EndDate != "" {
			end := item.EndDate
			entry.EndDate = &end
		}
		for _, child := range types.ChildrenOf(items, item.ID) {
			if child.Kind == types.ItemHighlight && child.Description != "" {
				entry.Highlights = append(entry.Highlights, child.Description)
			}
		}
		out = append(out, entry)
	}
	return out
}

// groundSkills keeps only skills literally present in an item's skill list
// or the free text of a skills-tagged item. Emptied categories are dropped;
// if everything empties out, categories are rebuilt from skills items, and
// as a last resort every authoritative skill is flattened into one category.
func groundSkills(categories []types.SkillCategory, items []types.ContentItem, report *Report) []types.SkillCategory {
	known := make(map[string]bool)
	for _, item := range items {
		for _, s := range item.Skills {
			known[normalizeKey(s)] = true
		}
	}
	var freeText strings.Builder
	for _, item := range types.FilterByKind(items, types.ItemSkills) {
		freeText.WriteString(normalizeKey(item.Title))
		freeText.WriteString(" ")
		freeText.WriteString(normalizeKey(item.Description))
		freeText.WriteString(" ")
	}
	corpus := freeText.String()

	verifiable := func(skill string) bool {
		key := normalizeKey(skill)
		return key != "" && (known[key] || strings.Contains(corpus, key))
	}

	out := []types.SkillCategory{}
	for _, category := range categories {
		kept := []string{}
		for _, skill := range category.Items {
			if verifiable(skill) {
				kept = append(kept, skill)
			} else {
				report.DroppedSkills = append(report.DroppedSkills, skill)
			}
		}
		if len(kept) > 0 {
			out = append(out, types.SkillCategory{Category: category.Category, Items: kept})
		}
	}
	if len(out) > 0 {
		return out
	}

	// Rebuild from skills-tagged items.
	for _, item := range types.FilterByKind(items, types.ItemSkills) {
		if len(item.Skills) > 0 {
			out = append(out, types.SkillCategory{Category: item.Title, Items: append([]string{}, item.Skills...)})
		}
	}
	if len(out) > 0 {
		report.SkillsFallback = "skills_items"
		return out
	}

	// Last resort: one flat category from every authoritative skill.
	flat := []string{}
	seen := make(map[string]bool)
	for _, item := range items {
		for _, s := range item.Skills {
			if key := normalizeKey(s); !seen[key] {
				seen[key] = true
				flat = append(flat, s)
			}
		}
	}
	if len(flat) > 0 {
		report.SkillsFallback = "flattened"
		out = append(out, types.SkillCategory{Category: "Skills", Items: flat})
	}
	return out
}

// groundProjects requires an authoritative project-tagged match per entry.
// With no project items at all, the list is forced empty regardless of what
// the AI produced.
func groundProjects(projects []types.ProjectEntry, items []types.ContentItem, report *Report) []types.ProjectEntry {
	projectItems := types.FilterByKind(items, types.ItemProject)
	out := []types.ProjectEntry{}
	if len(projectItems) == 0 {
		for _, p := range projects {
			report.DroppedProjects = append(report.DroppedProjects, p.Name)
		}
		return out
	}

	index := make(map[string]types.ContentItem, len(projectItems))
	for _, item := range projectItems {
		index[normalizeKey(item.Title)] = item
	}

	for _, project := range projects {
		item, ok := index[normalizeKey(project.Name)]
		if !ok {
			report.DroppedProjects = append(report.DroppedProjects, project.Name)
			continue
		}
		grounded := types.ProjectEntry{
			Name:         item.Title,
			Description:  preferAI(project.Description, item.Description),
			Technologies: intersect(project.Technologies, item.Skills),
			Highlights:   project.Highlights,
		}
		if grounded.Highlights == nil {
			grounded.Highlights = []string{}
		}
		out = append(out, grounded)
	}
	return out
}

// enrichEducation merges authoritative institution, degree, and dates into
// AI entries on institution match. Education is enriched, not filtered.
func enrichEducation(entries []types.EducationEntry, items []types.ContentItem) []types.EducationEntry {
	index := make(map[string]types.ContentItem)
	for _, item := range types.FilterByKind(items, types.ItemEducation) {
		index[normalizeKey(item.Title)] = item
	}

	out := []types.EducationEntry{}
	for _, entry := range entries {
		item, ok := index[normalizeKey(entry.Institution)]
		if ok {
			entry.Institution = item.Title
			if item.Role != "" {
				entry.Degree = item.Role
			}
			if item.Description != "" && entry.Field == "" {
				entry.Field = item.Description
			}
			if item.StartDate != "" {
				entry.StartDate = item.StartDate
			}
			if item.EndDate != "" {
				entry.EndDate = item.EndDate
			}
			if item.Location != "" && entry.Location == "" {
				entry.Location = item.Location
			}
		}
		out = append(out, entry)
	}
	return out
}
