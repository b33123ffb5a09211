package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
)

// CreateGroup inserts a group. A duplicate slug returns apperror.ErrConflict.
func (db *DB) CreateGroup(ctx context.Context, group *model.Group) error {
	var existing int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_groups WHERE slug = ?`, group.Slug,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("sqlite: checking group slug %s: %w", group.Slug, err)
	}
	if existing > 0 {
		return apperror.Conflict("group", group.Slug)
	}

	group.ID = xid.New().String()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO post_groups (id, title, slug, description) VALUES (?, ?, ?, ?)`,
		group.ID,
		group.Title,
		group.Slug,
		group.Description,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating group %s: %w", group.Slug, err)
	}

	return nil
}

// GetGroup returns the group with the given ID.
func (db *DB) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	return db.getGroup(ctx, "id", id)
}

// GetGroupBySlug returns the group with the given slug.
func (db *DB) GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	return db.getGroup(ctx, "slug", slug)
}

// getGroup looks a group up by a key column. column is always one of the
// literals above, never user input.
func (db *DB) getGroup(ctx context.Context, column, value string) (*model.Group, error) {
	var g model.Group

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, slug, description FROM post_groups WHERE `+column+` = ?`,
		value,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("group", value)
		}
		return nil, fmt.Errorf("sqlite: getting group %s: %w", value, err)
	}

	return &g, nil
}

// ListGroups returns every group ordered by title, for the post form's
// group picker.
func (db *DB) ListGroups(ctx context.Context) ([]model.Group, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, slug, description FROM post_groups ORDER BY title, slug`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("sqlite: scanning group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating groups: %w", err)
	}

	return groups, nil
}
