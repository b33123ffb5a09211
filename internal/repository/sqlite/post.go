package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

// postColumns selects a post with its author and (optional) group in one row.
// The LEFT JOIN yields NULL group columns for posts without a group.
const postColumns = `
	p.id, p.text, p.created_at, p.author_id, p.group_id, p.image,
	u.username, u.avatar_url,
	g.title, g.slug, g.description
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

// CreatePost inserts a new post. ID is generated here; CreatedAt is set to
// now unless the caller already filled it (the seed tool back-dates posts).
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = db.now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, text, created_at, author_id, group_id, image)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Text,
		post.CreatedAt,
		post.AuthorID,
		nullString(post.GroupID),
		post.Image,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetPost returns the post with its author and group.
// Returns apperror.ErrNotFound when no post has that ID.
func (db *DB) GetPost(ctx context.Context, id string) (*model.Post, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+postColumns+` WHERE p.id = ?`, id)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return post, nil
}

// UpdatePost rewrites the editable fields (text, group, image).
// The author and creation time are never touched.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET text = ?, group_id = ?, image = ? WHERE id = ?`,
		post.Text,
		nullString(post.GroupID),
		post.Image,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// ListPosts returns one window of the filtered posts, newest first.
func (db *DB) ListPosts(ctx context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := postWhere(filter)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+where+`
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// CountPosts counts the posts matching filter.
func (db *DB) CountPosts(ctx context.Context, filter repository.PostFilter) (int, error) {
	where, args := postWhere(filter)

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// postWhere builds the WHERE clause for a filter. Values always travel as
// placeholders; only fixed SQL fragments are concatenated.
func postWhere(filter repository.PostFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.GroupID != "" {
		clauses = append(clauses, "p.group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.AuthorID != "" {
		clauses = append(clauses, "p.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.FollowerID != "" {
		clauses = append(clauses, "p.author_id IN (SELECT f.author_id FROM follows f WHERE f.user_id = ?)")
		args = append(args, filter.FollowerID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		p         model.Post
		author    model.User
		groupID   sql.NullString
		groupName sql.NullString
		groupSlug sql.NullString
		groupDesc sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Text, &p.CreatedAt, &p.AuthorID, &groupID, &p.Image,
		&author.Username, &author.AvatarURL,
		&groupName, &groupSlug, &groupDesc,
	)
	if err != nil {
		return nil, err
	}

	author.ID = p.AuthorID
	p.Author = &author

	if groupID.Valid {
		id := groupID.String
		p.GroupID = &id
		p.Group = &model.Group{
			ID:          id,
			Title:       groupName.String,
			Slug:        groupSlug.String,
			Description: groupDesc.String,
		}
	}

	return &p, nil
}

// nullString maps a nil or empty optional reference to SQL NULL.
func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
