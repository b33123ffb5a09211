package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/repository"
	"github.com/sakif/yatube/internal/repository/sqlite"
)

func TestRun(t *testing.T) {
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts := Options{
		Users:           4,
		Groups:          2,
		PostsPerUser:    3,
		CommentsPerPost: 2,
		FollowsPerUser:  2,
		Seed:            42,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(db, auth.NewPasswordServiceForTest(bcrypt.MinCost), opts, logger)

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &Summary{Users: 4, Groups: 2, Posts: 12, Comments: 24, Follows: 8}, sum)

	ctx := context.Background()
	posts, err := db.CountPosts(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 12, posts)

	follows, err := db.CountFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, follows)

	groups, err := db.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestRun_FollowsNeverIncludeSelf(t *testing.T) {
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// More follows requested than other users exist.
	opts := Options{Users: 3, FollowsPerUser: 10, Seed: 7}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sum, err := New(db, auth.NewPasswordServiceForTest(bcrypt.MinCost), opts, logger).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Follows)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cats", "cats"},
		{"Bird watching", "bird-watching"},
		{"  Rock & Roll!  ", "rock-roll"},
		{"3D printing", "3d-printing"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}
