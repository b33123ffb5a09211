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

const userColumns = `id, username, email, password_hash, github_id, avatar_url, created_at, updated_at`

// CreateUser inserts a new account. A taken username returns
// apperror.ErrConflict so signup can show a field error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	taken, err := db.usernameTaken(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("user", user.Username)
	}

	now := db.now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullGitHubID(user.GitHubID),
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// UpsertGitHubUser inserts or refreshes an account keyed by its GitHub ID.
//
// An existing account keeps its internal ID and username; only email and
// avatar are refreshed. A new account takes the GitHub login as username,
// suffixed with part of the new ID if a password account already uses it.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	var existingID, existingUsername string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID, &existingUsername)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.Username = existingUsername
		user.UpdatedAt = db.now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET email = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Email,
			user.AvatarURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	id := xid.New().String()
	taken, err := db.usernameTaken(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken {
		user.Username = user.Username + "-" + id[len(id)-6:]
	}

	now := db.now()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullGitHubID(user.GitHubID),
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetUserByUsername retrieves a user by username (profile URLs use it).
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, "username", username)
}

func (db *DB) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`,
		value,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&githubID,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", value, err)
	}
	u.GitHubID = githubID.Int64

	return &u, nil
}

func (db *DB) usernameTaken(ctx context.Context, username string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking username %s: %w", username, err)
	}
	return n > 0, nil
}

// nullGitHubID stores password-only accounts with a NULL github_id so the
// UNIQUE constraint does not collide on zero.
func nullGitHubID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
