// Package repository declares the data-access contracts the service layer
// depends on. The SQLite implementation lives in repository/sqlite; service
// tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/yatube/internal/model"
)

// ListOptions is a LIMIT/OFFSET window over an ordered result set.
type ListOptions struct {
	Limit  int
	Offset int
}

// PostFilter narrows a post listing. At most one field is normally set;
// the zero value selects every post.
type PostFilter struct {
	GroupID    string // posts filed under this group
	AuthorID   string // posts written by this user
	FollowerID string // posts whose author this user follows (the feed)
}

// PostRepository stores posts. Listings are always newest first.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	ListPosts(ctx context.Context, filter PostFilter, opts ListOptions) ([]model.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int, error)
}

// GroupRepository stores groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, id string) (*model.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error)
	ListGroups(ctx context.Context) ([]model.Group, error)
}

// CommentRepository stores comments. Listings are oldest first.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, postID string) ([]model.Comment, error)
}

// FollowRepository stores follow edges.
type FollowRepository interface {
	// CreateFollow inserts the edge unless it already exists and reports
	// whether a row was written.
	CreateFollow(ctx context.Context, follow *model.Follow) (bool, error)
	// DeleteFollow removes the edge if present and reports whether it did.
	DeleteFollow(ctx context.Context, userID, authorID string) (bool, error)
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	CountFollows(ctx context.Context) (int, error)
}

// UserRepository stores user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Store bundles every repository; *sqlite.DB implements it.
type Store interface {
	PostRepository
	GroupRepository
	CommentRepository
	FollowRepository
	UserRepository
}
