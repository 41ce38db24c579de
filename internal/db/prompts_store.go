package db

import (
	"context"
	"fmt"

	"github.com/jonathan/applyforge/internal/prompts"
)

// GetTemplates retrieves prompt template overrides by name. Names absent from
// the table fall back to the embedded defaults downstream.
func (db *DB) GetTemplates(ctx context.Context) (prompts.Templates, error) {
	rows, err := db.pool.Query(ctx, `SELECT name, template FROM prompt_templates`)
	if err != nil {
		return prompts.Templates{}, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	defer rows.Close()

	var tpls prompts.Templates
	for rows.Next() {
		var name, template string
		if err := rows.Scan(&name, &template); err != nil {
			return prompts.Templates{}, fmt.Errorf("failed to scan prompt template: %w", err)
		}
		switch name {
		case "resumeGeneration":
			tpls.ResumeGeneration = template
		case "coverLetterGeneration":
			tpls.CoverLetterGeneration = template
		}
	}
	if err := rows.Err(); err != nil {
		return prompts.Templates{}, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return tpls, nil
}
