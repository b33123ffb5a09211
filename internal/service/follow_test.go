package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/yatube/internal/apperror"
)

func TestFollow_TwiceKeepsOneEdge(t *testing.T) {
	store := newFakeStore()
	svc := NewFollowService(store, discardLogger())
	reader := store.mustUser(t, "reader")
	store.mustUser(t, "author")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		author, err := svc.Follow(ctx, reader, "author")
		require.NoError(t, err)
		assert.Equal(t, "author", author.Username)
	}

	n, err := store.CountFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFollow_SelfIsIgnored(t *testing.T) {
	store := newFakeStore()
	svc := NewFollowService(store, discardLogger())
	me := store.mustUser(t, "me")

	_, err := svc.Follow(context.Background(), me, "me")
	require.NoError(t, err, "self-follow is a silent no-op, not an error")

	n, _ := store.CountFollows(context.Background())
	assert.Equal(t, 0, n)
}

func TestFollow_UnknownAuthor(t *testing.T) {
	store := newFakeStore()
	svc := NewFollowService(store, discardLogger())
	reader := store.mustUser(t, "reader")

	_, err := svc.Follow(context.Background(), reader, "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = svc.Unfollow(context.Background(), reader, "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUnfollow_WithoutEdgeIsNoop(t *testing.T) {
	store := newFakeStore()
	svc := NewFollowService(store, discardLogger())
	reader := store.mustUser(t, "reader")
	store.mustUser(t, "author")
	other := store.mustUser(t, "other")
	ctx := context.Background()

	_, err := svc.Follow(ctx, other, "author")
	require.NoError(t, err)

	_, err = svc.Unfollow(ctx, reader, "author")
	require.NoError(t, err)

	n, _ := store.CountFollows(ctx)
	assert.Equal(t, 1, n, "unrelated edges are untouched")
}

func TestUnfollow_RemovesEdge(t *testing.T) {
	store := newFakeStore()
	svc := NewFollowService(store, discardLogger())
	reader := store.mustUser(t, "reader")
	author := store.mustUser(t, "author")
	ctx := context.Background()

	_, err := svc.Follow(ctx, reader, "author")
	require.NoError(t, err)
	_, err = svc.Unfollow(ctx, reader, "author")
	require.NoError(t, err)

	following, _ := store.IsFollowing(ctx, reader.ID, author.ID)
	assert.False(t, following)
}

func TestFollow_Anonymous(t *testing.T) {
	store := newFakeStore()
	svc := NewFollowService(store, discardLogger())
	store.mustUser(t, "author")

	_, err := svc.Follow(context.Background(), nil, "author")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}
