package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/metrics"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/paginator"
	"github.com/sakif/yatube/internal/repository"
)

// ImageStore persists validated uploads under media keys and deletes them
// again. *media.Store implements it.
type ImageStore interface {
	SavePostImage(img *media.Image) (string, error)
	Remove(key string) error
}

// PostInput is the validated content of a create or edit submission.
type PostInput struct {
	Text    string
	GroupID *string      // nil: no group
	Image   *media.Image // nil: no new upload
}

// GroupPage is a page of a group's posts.
type GroupPage struct {
	Group *model.Group
	Page  *paginator.Page[model.Post]
}

// ProfilePage is a page of an author's posts plus the viewer's relation to
// the author.
type ProfilePage struct {
	Author    *model.User
	Page      *paginator.Page[model.Post]
	PostCount int
	Following bool
	IsSelf    bool
}

// PostDetail is a post with its comments, oldest first.
type PostDetail struct {
	Post     *model.Post
	Comments []model.Comment
}

// PostService reads and writes posts.
type PostService struct {
	store    repository.Store
	images   ImageStore
	pageSize int
	logger   *slog.Logger
}

// NewPostService creates a PostService. pageSize is the global page size;
// a value below 1 falls back to paginator.DefaultPerPage.
func NewPostService(store repository.Store, images ImageStore, pageSize int, logger *slog.Logger) *PostService {
	if pageSize < 1 {
		pageSize = paginator.DefaultPerPage
	}
	return &PostService{
		store:    store,
		images:   images,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Index returns one page of all posts, newest first.
func (s *PostService) Index(ctx context.Context, rawPage string) (*paginator.Page[model.Post], error) {
	page, err := listPage(ctx, s.store, repository.PostFilter{}, s.pageSize, rawPage)
	if err != nil {
		return nil, fmt.Errorf("service/post: index: %w", err)
	}
	return page, nil
}

// GroupPosts returns one page of the posts filed under the group with slug.
// An unknown slug returns apperror.ErrNotFound.
func (s *PostService) GroupPosts(ctx context.Context, slug, rawPage string) (*GroupPage, error) {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page, err := listPage(ctx, s.store, repository.PostFilter{GroupID: group.ID}, s.pageSize, rawPage)
	if err != nil {
		return nil, fmt.Errorf("service/post: group %s: %w", slug, err)
	}

	return &GroupPage{Group: group, Page: page}, nil
}

// Profile returns one page of the author's posts. viewer may be nil for an
// anonymous request.
//
// Following is the result of the follow-edge lookup and is false for
// anonymous viewers and for authors looking at their own profile.
func (s *PostService) Profile(ctx context.Context, username string, viewer *model.User, rawPage string) (*ProfilePage, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	page, err := listPage(ctx, s.store, repository.PostFilter{AuthorID: author.ID}, s.pageSize, rawPage)
	if err != nil {
		return nil, fmt.Errorf("service/post: profile %s: %w", username, err)
	}

	result := &ProfilePage{Author: author, Page: page, PostCount: page.Total}
	if viewer == nil {
		return result, nil
	}
	if viewer.ID == author.ID {
		result.IsSelf = true
		return result, nil
	}

	following, err := s.store.IsFollowing(ctx, viewer.ID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("service/post: checking follow %s -> %s: %w", viewer.ID, author.ID, err)
	}
	result.Following = following

	return result, nil
}

// Feed returns one page of posts by authors the viewer follows.
func (s *PostService) Feed(ctx context.Context, viewer *model.User, rawPage string) (*paginator.Page[model.Post], error) {
	if viewer == nil {
		return nil, apperror.Unauthorized("login required")
	}

	page, err := listPage(ctx, s.store, repository.PostFilter{FollowerID: viewer.ID}, s.pageSize, rawPage)
	if err != nil {
		return nil, fmt.Errorf("service/post: feed of %s: %w", viewer.ID, err)
	}
	return page, nil
}

// Detail returns a post and its comments.
func (s *PostService) Detail(ctx context.Context, id string) (*PostDetail, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/post: comments of %s: %w", id, err)
	}

	return &PostDetail{Post: post, Comments: comments}, nil
}

// Groups lists every group, for the group select of the post form.
func (s *PostService) Groups(ctx context.Context) ([]model.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing groups: %w", err)
	}
	return groups, nil
}

// Create validates in and stores a new post written by author.
//
// Validation problems return apperror.ErrValidation with the failing field
// set; nothing is written in that case.
func (s *PostService) Create(ctx context.Context, author *model.User, in PostInput) (*model.Post, error) {
	if author == nil {
		return nil, apperror.Unauthorized("login required")
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	post := &model.Post{
		Text:     in.Text,
		AuthorID: author.ID,
		GroupID:  in.GroupID,
	}
	if in.Image != nil {
		key, err := s.images.SavePostImage(in.Image)
		if err != nil {
			return nil, fmt.Errorf("service/post: saving image: %w", err)
		}
		post.Image = key
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		s.removeImage(post.Image)
		s.logger.Error("failed to create post",
			slog.String("author", author.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}
	post.Author = author

	metrics.RecordEvent(metrics.EventPostCreated)
	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("author", author.Username),
	)

	return post, nil
}

// ForEdit loads a post for its edit form. Anyone but the author gets
// apperror.ErrForbidden.
func (s *PostService) ForEdit(ctx context.Context, id string, editor *model.User) (*model.Post, error) {
	if editor == nil {
		return nil, apperror.Unauthorized("login required")
	}

	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editor.ID {
		return nil, apperror.Forbidden("only the author may edit this post")
	}
	return post, nil
}

// Edit updates the text, group and image of a post in place. The author is
// never reassigned and the stored image is kept unless in carries a new one,
// in which case the old file is deleted after the update.
func (s *PostService) Edit(ctx context.Context, id string, editor *model.User, in PostInput) (*model.Post, error) {
	post, err := s.ForEdit(ctx, id, editor)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = nil
	if in.Image != nil {
		key, err := s.images.SavePostImage(in.Image)
		if err != nil {
			return nil, fmt.Errorf("service/post: saving image: %w", err)
		}
		post.Image = key
	}

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if post.Image != oldImage {
			s.removeImage(post.Image)
		}
		return nil, fmt.Errorf("service/post: updating %s: %w", id, err)
	}
	if post.Image != oldImage {
		s.removeImage(oldImage)
	}

	metrics.RecordEvent(metrics.EventPostEdited)
	s.logger.Info("post edited", slog.String("id", post.ID))

	return post, nil
}

// removeImage deletes a file no post points to. Errors are logged, not
// returned.
func (s *PostService) removeImage(key string) {
	if key == "" {
		return
	}
	if err := s.images.Remove(key); err != nil {
		s.logger.Warn("failed to remove image",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *PostService) validate(ctx context.Context, in PostInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return apperror.ValidationFailed("text", "This field is required.")
	}
	if in.GroupID == nil || *in.GroupID == "" {
		return nil
	}

	_, err := s.store.GetGroup(ctx, *in.GroupID)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.ValidationFailed("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	if err != nil {
		return fmt.Errorf("service/post: looking up group: %w", err)
	}
	return nil
}
