package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applyforge/internal/types"
)

// CreateRequest inserts a new generation request. The caller assigns the ID
// and initial step list; timestamps are set here.
func (db *DB) CreateRequest(ctx context.Context, req *types.GenerationRequest) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	jobJSON, prefsJSON, infoJSON, intermediateJSON, outputsJSON, revisionsJSON, stepsJSON, err := marshalRequestColumns(req)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO generation_requests
		 (id, documents, job, preferences, job_match_id, status, personal_info,
		  intermediate, outputs, revisions, steps, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		req.ID, string(req.Documents), jobJSON, prefsJSON, req.JobMatchID, string(req.Status),
		infoJSON, intermediateJSON, outputsJSON, revisionsJSON, stepsJSON, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetRequest retrieves a generation request by ID. Returns nil if not found.
func (db *DB) GetRequest(ctx context.Context, id uuid.UUID) (*types.GenerationRequest, error) {
	var (
		req              types.GenerationRequest
		documents        string
		status           string
		jobJSON          []byte
		prefsJSON        []byte
		infoJSON         []byte
		intermediateJSON []byte
		outputsJSON      []byte
		revisionsJSON    []byte
		stepsJSON        []byte
	)

	err := db.pool.QueryRow(ctx,
		`SELECT id, documents, job, preferences, job_match_id, status, personal_info,
		        intermediate, outputs, revisions, steps, created_at, updated_at
		 FROM generation_requests WHERE id = $1`,
		id,
	).Scan(&req.ID, &documents, &jobJSON, &prefsJSON, &req.JobMatchID, &status,
		&infoJSON, &intermediateJSON, &outputsJSON, &revisionsJSON, &stepsJSON,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	req.Documents = types.DocumentSet(documents)
	req.Status = types.RequestStatus(status)
	if err := unmarshalRequestColumns(&req, jobJSON, prefsJSON, infoJSON, intermediateJSON, outputsJSON, revisionsJSON, stepsJSON); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateRequest writes back the mutable fields of a request: status, personal
// info snapshot, intermediate content, outputs, revision counters, and steps.
func (db *DB) UpdateRequest(ctx context.Context, req *types.GenerationRequest) error {
	req.UpdatedAt = time.Now().UTC()

	_, _, infoJSON, intermediateJSON, outputsJSON, revisionsJSON, stepsJSON, err := marshalRequestColumns(req)
	if err != nil {
		return err
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE generation_requests
		 SET status = $1, personal_info = $2, intermediate = $3, outputs = $4,
		     revisions = $5, steps = $6, updated_at = $7
		 WHERE id = $8`,
		string(req.Status), infoJSON, intermediateJSON, outputsJSON,
		revisionsJSON, stepsJSON, req.UpdatedAt, req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("request not found: %s", req.ID)
	}
	return nil
}

// ListAwaitingReviewBefore retrieves requests stuck in awaiting_review whose
// last update predates the cutoff. Used by the review reaper.
func (db *DB) ListAwaitingReviewBefore(ctx context.Context, cutoff time.Time) ([]*types.GenerationRequest, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM generation_requests
		 WHERE status = $1 AND updated_at < $2
		 ORDER BY updated_at ASC`,
		string(types.StatusAwaitingReview), cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale reviews: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list stale reviews: %w", err)
	}

	var out []*types.GenerationRequest
	for _, id := range ids {
		req, err := db.GetRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if req != nil {
			out = append(out, req)
		}
	}
	return out, nil
}

func marshalRequestColumns(req *types.GenerationRequest) (job, prefs, info, intermediate, outputs, revisions, steps []byte, err error) {
	job, err = json.Marshal(req.Job)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	if req.Preferences != nil {
		prefs, err = json.Marshal(req.Preferences)
		if err != nil {
			return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal preferences: %w", err)
		}
	}
	if req.PersonalInfo != nil {
		info, err = json.Marshal(req.PersonalInfo)
		if err != nil {
			return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal personal info: %w", err)
		}
	}
	if req.Intermediate != nil {
		intermediate, err = json.Marshal(req.Intermediate)
		if err != nil {
			return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal intermediate content: %w", err)
		}
	}
	if req.Outputs != nil {
		outputs, err = json.Marshal(req.Outputs)
		if err != nil {
			return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal outputs: %w", err)
		}
	}
	if req.Revisions != nil {
		revisions, err = json.Marshal(req.Revisions)
		if err != nil {
			return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal revisions: %w", err)
		}
	}
	steps, err = json.Marshal(req.Steps)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal steps: %w", err)
	}
	return job, prefs, info, intermediate, outputs, revisions, steps, nil
}

func unmarshalRequestColumns(req *types.GenerationRequest, job, prefs, info, intermediate, outputs, revisions, steps []byte) error {
	if err := json.Unmarshal(job, &req.Job); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if len(prefs) > 0 {
		req.Preferences = &types.Preferences{}
		if err := json.Unmarshal(prefs, req.Preferences); err != nil {
			return fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
	}
	if len(info) > 0 {
		req.PersonalInfo = &types.PersonalInfo{}
		if err := json.Unmarshal(info, req.PersonalInfo); err != nil {
			return fmt.Errorf("failed to unmarshal personal info: %w", err)
		}
	}
	if len(intermediate) > 0 {
		if err := json.Unmarshal(intermediate, &req.Intermediate); err != nil {
			return fmt.Errorf("failed to unmarshal intermediate content: %w", err)
		}
	}
	if len(outputs) > 0 {
		if err := json.Unmarshal(outputs, &req.Outputs); err != nil {
			return fmt.Errorf("failed to unmarshal outputs: %w", err)
		}
	}
	if len(revisions) > 0 {
		if err := json.Unmarshal(revisions, &req.Revisions); err != nil {
			return fmt.Errorf("failed to unmarshal revisions: %w", err)
		}
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &req.Steps); err != nil {
			return fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}
	return nil
}
