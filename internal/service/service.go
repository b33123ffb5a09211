// Package service holds the blog's business rules.
//
// Handlers parse HTTP and render pages; services validate input, enforce
// authorship and follow rules and talk to the repository interfaces. Nothing
// here imports net/http or the SQLite package, so tests run against
// in-memory fakes.
package service

import (
	"context"
	"fmt"

	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/paginator"
	"github.com/sakif/yatube/internal/repository"
)

// postLister is the slice of PostRepository the list views need.
type postLister interface {
	ListPosts(ctx context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, error)
	CountPosts(ctx context.Context, filter repository.PostFilter) (int, error)
}

// listPage counts the filtered posts, clamps the requested page and loads
// only that window from the store.
func listPage(ctx context.Context, posts postLister, filter repository.PostFilter, perPage int, rawPage string) (*paginator.Page[model.Post], error) {
	total, err := posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	p := paginator.New(total, perPage)
	number, limit, offset := p.Window(rawPage)

	items, err := posts.ListPosts(ctx, filter, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	return paginator.NewPage(p, number, items), nil
}
