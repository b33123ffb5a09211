package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/metrics"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

// followStore is what FollowService needs from the repository.
type followStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	repository.FollowRepository
}

// FollowService creates and removes follow edges.
type FollowService struct {
	store  followStore
	logger *slog.Logger
}

// NewFollowService creates a FollowService.
func NewFollowService(store followStore, logger *slog.Logger) *FollowService {
	return &FollowService{store: store, logger: logger}
}

// Follow makes follower follow the author named username and returns the
// author. Following yourself is silently ignored and following twice keeps
// a single edge. An unknown username returns apperror.ErrNotFound.
func (s *FollowService) Follow(ctx context.Context, follower *model.User, username string) (*model.User, error) {
	if follower == nil {
		return nil, apperror.Unauthorized("login required")
	}

	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author.ID == follower.ID {
		return author, nil
	}

	created, err := s.store.CreateFollow(ctx, &model.Follow{UserID: follower.ID, AuthorID: author.ID})
	if err != nil {
		return nil, fmt.Errorf("service/follow: %s -> %s: %w", follower.Username, author.Username, err)
	}
	if created {
		metrics.RecordEvent(metrics.EventFollowCreated)
		s.logger.Info("follow created",
			slog.String("user", follower.Username),
			slog.String("author", author.Username),
		)
	}

	return author, nil
}

// Unfollow removes the edge from follower to the author named username if it
// exists. A missing edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, follower *model.User, username string) (*model.User, error) {
	if follower == nil {
		return nil, apperror.Unauthorized("login required")
	}

	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	deleted, err := s.store.DeleteFollow(ctx, follower.ID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("service/follow: removing %s -> %s: %w", follower.Username, author.Username, err)
	}
	if deleted {
		metrics.RecordEvent(metrics.EventFollowDeleted)
		s.logger.Info("follow deleted",
			slog.String("user", follower.Username),
			slog.String("author", author.Username),
		)
	}

	return author, nil
}
