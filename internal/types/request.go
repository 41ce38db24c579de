// Package types provides type definitions for structured data used throughout the applyforge engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocumentSet identifies which documents a request asks for.
type DocumentSet string

// Supported document sets.
const (
	DocumentSetResume      DocumentSet = "resume"
	DocumentSetCoverLetter DocumentSet = "cover_letter"
	DocumentSetBoth        DocumentSet = "both"
)

// DocumentType identifies a single generated document.
type DocumentType string

// Supported document types.
const (
	DocumentResume      DocumentType = "resume"
	DocumentCoverLetter DocumentType = "cover_letter"
)

// Types expands a document set into the concrete document types it covers,
// in generation order.
func (s DocumentSet) Types() []DocumentType {
	switch s {
	case DocumentSetResume:
		return []DocumentType{DocumentResume}
	case DocumentSetCoverLetter:
		return []DocumentType{DocumentCoverLetter}
	case DocumentSetBoth:
		return []DocumentType{DocumentResume, DocumentCoverLetter}
	default:
		return nil
	}
}

// Valid reports whether the document set is one of the supported values.
func (s DocumentSet) Valid() bool {
	return s == DocumentSetResume || s == DocumentSetCoverLetter || s == DocumentSetBoth
}

// RequestStatus is the lifecycle status of a generation request.
type RequestStatus string

// Request lifecycle statuses.
const (
	StatusProcessing     RequestStatus = "processing"
	StatusAwaitingReview RequestStatus = "awaiting_review"
	StatusCompleted      RequestStatus = "completed"
	StatusFailed         RequestStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobTarget describes the job a request is tailored to.
type JobTarget struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	Site        string `json:"site,omitempty"`
	PostingURL  string `json:"posting_url,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Preferences holds optional user steering for generation.
type Preferences struct {
	Tone              string   `json:"tone,omitempty"`
	EmphasizeSkills   []string `json:"emphasize_skills,omitempty"`
	ExtraInstructions string   `json:"extra_instructions,omitempty"`
}

// PersonalInfo is the identity snapshot captured once at collect-data time.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// OutputLocator points at a rendered artifact in storage.
type OutputLocator struct {
	StoragePath string `json:"storage_path"`
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"size_bytes"`
	PublicPath  string `json:"public_path"`
}

// GenerationRequest is the persistent record for one document-generation run.
// Steps are stored on the record itself so workflow state survives restarts.
type GenerationRequest struct {
	ID           uuid.UUID                           `json:"id"`
	Documents    DocumentSet                         `json:"documents"`
	Job          JobTarget                           `json:"job"`
	Preferences  *Preferences                        `json:"preferences,omitempty"`
	JobMatchID   *uuid.UUID                          `json:"job_match_id,omitempty"`
	Status       RequestStatus                       `json:"status"`
	PersonalInfo *PersonalInfo                       `json:"personal_info,omitempty"`
	Intermediate map[DocumentType]json.RawMessage    `json:"intermediate,omitempty"`
	Outputs      map[DocumentType]OutputLocator      `json:"outputs,omitempty"`
	Revisions    map[DocumentType]int                `json:"revisions,omitempty"`
	Steps        []Step                              `json:"steps"`
	CreatedAt    time.Time                           `json:"created_at"`
	UpdatedAt    time.Time                           `json:"updated_at"`
}

// ArtifactRecord describes one stored rendered document.
type ArtifactRecord struct {
	ID        uuid.UUID     `json:"id"`
	RequestID uuid.UUID     `json:"request_id"`
	Type      DocumentType  `json:"type"`
	Locator   OutputLocator `json:"locator"`
	CreatedAt time.Time     `json:"created_at"`
}
