package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/yatube/internal/apperror"
)

func TestAddComment(t *testing.T) {
	store := newFakeStore()
	svc := NewCommentService(store, discardLogger())
	author := store.mustUser(t, "author")
	reader := store.mustUser(t, "reader")
	post := store.mustPost(t, author, "post")

	c, err := svc.Add(context.Background(), post.ID, reader, "nice")
	require.NoError(t, err)
	assert.Equal(t, reader.ID, c.AuthorID)
	assert.Equal(t, post.ID, c.PostID)
	assert.Equal(t, "reader", c.Author.Username)

	comments, _ := store.ListComments(context.Background(), post.ID)
	assert.Len(t, comments, 1)
}

func TestAddComment_Blank(t *testing.T) {
	store := newFakeStore()
	svc := NewCommentService(store, discardLogger())
	author := store.mustUser(t, "author")
	post := store.mustPost(t, author, "post")

	_, err := svc.Add(context.Background(), post.ID, author, "  \n ")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	comments, _ := store.ListComments(context.Background(), post.ID)
	assert.Empty(t, comments)
}

func TestAddComment_UnknownPost(t *testing.T) {
	store := newFakeStore()
	svc := NewCommentService(store, discardLogger())
	author := store.mustUser(t, "author")

	_, err := svc.Add(context.Background(), "missing", author, "hello")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestAddComment_Anonymous(t *testing.T) {
	store := newFakeStore()
	svc := NewCommentService(store, discardLogger())
	author := store.mustUser(t, "author")
	post := store.mustPost(t, author, "post")

	_, err := svc.Add(context.Background(), post.ID, nil, "hello")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}
