package types

import "github.com/google/uuid"

// Profile holds the canonical identity fields for the single profile owner.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Location string    `json:"location,omitempty"`
	Website  string    `json:"website,omitempty"`
	LinkedIn string    `json:"linkedin,omitempty"`
}

// ItemKind tags a content item with its section.
type ItemKind string

// Content item kinds.
const (
	ItemWork      ItemKind = "work"
	ItemEducation ItemKind = "education"
	ItemProject   ItemKind = "project"
	ItemSkills    ItemKind = "skills"
	ItemNarrative ItemKind = "narrative"
	ItemHighlight ItemKind = "highlight"
)

// ContentItem is one authoritative profile record: a job held, a degree, a
// project, a skill group, or free-form narrative. Highlight items attach to a
// parent item through ParentID.
type ContentItem struct {
	ID          uuid.UUID  `json:"id"`
	Kind        ItemKind   `json:"kind"`
	Title       string     `json:"title"`
	Role        string     `json:"role,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
	EndDate     string     `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
	Website     string     `json:"website,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

// ItemFilter narrows a content item listing.
type ItemFilter struct {
	Kind *ItemKind
}

// FilterByKind returns the items matching the given kind.
func FilterByKind(items []ContentItem, kind ItemKind) []ContentItem {
	var out []ContentItem
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// ChildrenOf returns the highlight items attached to the given parent.
func ChildrenOf(items []ContentItem, parent uuid.UUID) []ContentItem {
	var out []ContentItem
	for _, item := range items {
		if item.ParentID != nil && *item.ParentID == parent {
			out = append(out, item)
		}
	}
	return out
}
