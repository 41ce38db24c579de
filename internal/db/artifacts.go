package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/applyforge/internal/types"
)

// AddArtifact records one rendered document for a request.
func (db *DB) AddArtifact(ctx context.Context, rec types.ArtifactRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	locatorJSON, err := json.Marshal(rec.Locator)
	if err != nil {
		return fmt.Errorf("failed to marshal locator: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (id, request_id, doc_type, locator, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.RequestID, string(rec.Type), locatorJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add artifact: %w", err)
	}
	return nil
}

// ListArtifacts retrieves the artifact records for a request, oldest first.
func (db *DB) ListArtifacts(ctx context.Context, requestID uuid.UUID) ([]types.ArtifactRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, request_id, doc_type, locator, created_at
		 FROM artifacts WHERE request_id = $1 ORDER BY created_at ASC`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var records []types.ArtifactRecord
	for rows.Next() {
		var (
			rec         types.ArtifactRecord
			docType     string
			locatorJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &docType, &locatorJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		rec.Type = types.DocumentType(docType)
		if err := json.Unmarshal(locatorJSON, &rec.Locator); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locator: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return records, nil
}
