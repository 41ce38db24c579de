package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applyforge/internal/types"
)

// GetProfile retrieves the single profile owner. Returns nil when no profile
// has been configured yet.
func (db *DB) GetProfile(ctx context.Context) (*types.Profile, error) {
	var p types.Profile
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), COALESCE(location, ''),
		        COALESCE(website, ''), COALESCE(linkedin, '')
		 FROM profiles ORDER BY created_at ASC LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Location, &p.Website, &p.LinkedIn)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// ListContentItems retrieves authoritative profile items, optionally filtered
// by kind.
func (db *DB) ListContentItems(ctx context.Context, filter *types.ItemFilter) ([]types.ContentItem, error) {
	query := `SELECT id, kind, title, COALESCE(role, ''), COALESCE(location, ''),
	                 COALESCE(start_date, ''), COALESCE(end_date, ''),
	                 COALESCE(description, ''), skills, COALESCE(website, ''), parent_id
	          FROM content_items`
	args := []any{}
	if filter != nil && filter.Kind != nil {
		query += ` WHERE kind = $1`
		args = append(args, string(*filter.Kind))
	}
	query += ` ORDER BY start_date DESC NULLS LAST, title ASC`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	defer rows.Close()

	var items []types.ContentItem
	for rows.Next() {
		var (
			item types.ContentItem
			kind string
		)
		if err := rows.Scan(&item.ID, &kind, &item.Title, &item.Role, &item.Location,
			&item.StartDate, &item.EndDate, &item.Description, &item.Skills,
			&item.Website, &item.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		item.Kind = types.ItemKind(kind)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}
