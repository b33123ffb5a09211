package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/metrics"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

// commentStore is what CommentService needs from the repository.
type commentStore interface {
	GetPost(ctx context.Context, id string) (*model.Post, error)
	repository.CommentRepository
}

// CommentService appends comments to posts.
type CommentService struct {
	store  commentStore
	logger *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(store commentStore, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

// Add stores a comment by author on the post with postID.
// An unknown post returns apperror.ErrNotFound; blank text returns
// apperror.ErrValidation and writes nothing.
func (s *CommentService) Add(ctx context.Context, postID string, author *model.User, text string) (*model.Comment, error) {
	if author == nil {
		return nil, apperror.Unauthorized("login required")
	}

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "This field is required.")
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment on %s: %w", postID, err)
	}
	comment.Author = author

	metrics.RecordEvent(metrics.EventCommentCreated)
	s.logger.Info("comment created",
		slog.String("post", postID),
		slog.String("author", author.Username),
	)

	return comment, nil
}
