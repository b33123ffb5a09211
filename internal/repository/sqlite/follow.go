package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/yatube/internal/model"
)

// CreateFollow inserts the (user, author) edge if it is absent.
//
// ON CONFLICT DO NOTHING against the UNIQUE(user_id, author_id) constraint
// makes the insert idempotent in a single statement: a concurrent duplicate
// request writes nothing instead of failing. The returned bool tells the
// caller whether this call created the edge.
func (db *DB) CreateFollow(ctx context.Context, follow *model.Follow) (bool, error) {
	id := xid.New().String()
	createdAt := db.now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO follows (id, user_id, author_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, author_id) DO NOTHING`,
		id,
		follow.UserID,
		follow.AuthorID,
		createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: creating follow %s -> %s: %w", follow.UserID, follow.AuthorID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	follow.ID = id
	follow.CreatedAt = createdAt
	return true, nil
}

// DeleteFollow removes the edge. Deleting a missing edge is not an error.
func (db *DB) DeleteFollow(ctx context.Context, userID, authorID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE user_id = ? AND author_id = ?`,
		userID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting follow %s -> %s: %w", userID, authorID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// IsFollowing reports whether userID follows authorID.
func (db *DB) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = ? AND author_id = ?)`,
		userID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow %s -> %s: %w", userID, authorID, err)
	}
	return exists, nil
}

// CountFollows counts every edge in the table.
func (db *DB) CountFollows(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM follows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting follows: %w", err)
	}
	return n, nil
}
