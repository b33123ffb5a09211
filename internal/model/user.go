// Package model defines the records the blog stores: users, groups, posts,
// comments and follow edges.
package model

import "time"

// User is an account that can publish posts, comment and follow authors.
//
// Accounts are created either with a username/password signup or on first
// GitHub login. GitHubID is zero for password-only accounts; PasswordHash is
// empty for GitHub-only accounts.
type User struct {
	ID           string    `json:"id"           db:"id"`
	Username     string    `json:"username"     db:"username"`
	Email        string    `json:"email"        db:"email"`
	PasswordHash string    `json:"-"            db:"password_hash"`
	GitHubID     int64     `json:"githubId"     db:"github_id"`
	AvatarURL    string    `json:"avatarUrl"    db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}

func (u *User) String() string {
	return u.Username
}
