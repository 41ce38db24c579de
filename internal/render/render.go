// Package render is the artifact sink: it turns an accepted canonical
// content object into a stored document and returns its locator. The engine
// treats it as opaque; PDF typesetting details live behind this boundary.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/applyforge/internal/types"
)

// Input is a fully-populated canonical content object plus the identity
// metadata the filename and document header need.
type Input struct {
	RequestID uuid.UUID
	Type      types.DocumentType
	Name      string
	Company   string
	Role      string
	Content   any
}

// Renderer persists a rendered document and reports where it landed.
type Renderer interface {
	Render(ctx context.Context, input Input) (types.OutputLocator, error)
}

// LocalRenderer writes rendered documents under a local directory.
type LocalRenderer struct {
	dir string
}

// NewLocalRenderer creates a renderer rooted at dir, creating it if needed.
func NewLocalRenderer(dir string) (*LocalRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalRenderer{dir: dir}, nil
}

// Render writes the canonical content as a document file and returns its
// locator.
func (r *LocalRenderer) Render(ctx context.Context, input Input) (types.OutputLocator, error) {
	if err := ctx.Err(); err != nil {
		return types.OutputLocator{}, err
	}

	data, err := json.MarshalIndent(input.Content, "", "  ")
	if err != nil {
		return types.OutputLocator{}, fmt.Errorf("failed to marshal content: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s_%s.json",
		slug(input.Name), slug(input.Company), string(input.Type), input.RequestID.String()[:8])
	path := filepath.Join(r.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.OutputLocator{}, fmt.Errorf("failed to write artifact: %w", err)
	}

	return types.OutputLocator{
		StoragePath: path,
		Filename:    filename,
		SizeBytes:   int64(len(data)),
		PublicPath:  "/artifacts/" + filename,
	}, nil
}

// slug reduces free text to a filesystem-safe token.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "document"
	}
	return sb.String()
}
