package render

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyforge/internal/types"
)

func TestLocalRenderer_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	r, err := NewLocalRenderer(dir)
	require.NoError(t, err)

	content := types.ResumeContent{ProfessionalSummary: "Engineer."}
	locator, err := r.Render(context.Background(), Input{
		RequestID: uuid.New(),
		Type:      types.DocumentResume,
		Name:      "Ada Lovelace",
		Company:   "Hooli Inc.",
		Role:      "Engineer",
		Content:   content,
	})
	require.NoError(t, err)

	assert.Contains(t, locator.Filename, "ada_lovelace")
	assert.Contains(t, locator.Filename, "hooli_inc")
	assert.Contains(t, locator.Filename, "resume")
	assert.Equal(t, "/artifacts/"+locator.Filename, locator.PublicPath)

	data, err := os.ReadFile(locator.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), locator.SizeBytes)

	var decoded types.ResumeContent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Engineer.", decoded.ProfessionalSummary)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "ada_lovelace", slug("  Ada Lovelace "))
	assert.Equal(t, "acme_corp", slug("Acme, Corp!"))
	assert.Equal(t, "document", slug("!!!"))
}
