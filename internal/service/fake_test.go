package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================

// fakeStore is an in-memory repository.Store. Posts get strictly increasing
// timestamps so newest-first ordering is deterministic.
type fakeStore struct {
	users    map[string]*model.User
	groups   map[string]*model.Group
	posts    map[string]*model.Post
	comments []model.Comment
	follows  map[[2]string]bool

	seq   int
	clock time.Time

	// listErr makes ListPosts fail, to exercise error wrapping.
	listErr error
	// writeErr makes CreatePost and UpdatePost fail.
	writeErr error
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*model.User),
		groups:  make(map[string]*model.Group),
		posts:   make(map[string]*model.Post),
		follows: make(map[[2]string]bool),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%03d", prefix, f.seq)
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// --- posts ---

func (f *fakeStore) CreatePost(_ context.Context, post *model.Post) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.users[post.AuthorID]; !ok {
		return errors.New("fake: unknown author")
	}
	post.ID = f.nextID("post")
	post.CreatedAt = f.tick()
	stored := *post
	stored.Author, stored.Group = nil, nil
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakeStore) GetPost(_ context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	return f.hydrate(*p), nil
}

func (f *fakeStore) UpdatePost(_ context.Context, post *model.Post) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	p, ok := f.posts[post.ID]
	if !ok {
		return apperror.NotFound("post", post.ID)
	}
	p.Text = post.Text
	p.GroupID = post.GroupID
	p.Image = post.Image
	return nil
}

func (f *fakeStore) ListPosts(_ context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	matched := f.filter(filter)
	if opts.Offset >= len(matched) {
		return []model.Post{}, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	out := make([]model.Post, 0, len(matched))
	for _, p := range matched {
		out = append(out, *f.hydrate(p))
	}
	return out, nil
}

func (f *fakeStore) CountPosts(_ context.Context, filter repository.PostFilter) (int, error) {
	return len(f.filter(filter)), nil
}

func (f *fakeStore) filter(filter repository.PostFilter) []model.Post {
	var out []model.Post
	for _, p := range f.posts {
		if filter.GroupID != "" && (p.GroupID == nil || *p.GroupID != filter.GroupID) {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.FollowerID != "" && !f.follows[[2]string{filter.FollowerID, p.AuthorID}] {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeStore) hydrate(p model.Post) *model.Post {
	if u, ok := f.users[p.AuthorID]; ok {
		author := *u
		p.Author = &author
	}
	if p.GroupID != nil {
		if g, ok := f.groups[*p.GroupID]; ok {
			group := *g
			p.Group = &group
		}
	}
	return &p
}

// --- groups ---

func (f *fakeStore) CreateGroup(_ context.Context, group *model.Group) error {
	for _, g := range f.groups {
		if g.Slug == group.Slug {
			return apperror.Conflict("group", group.Slug)
		}
	}
	group.ID = f.nextID("group")
	stored := *group
	f.groups[group.ID] = &stored
	return nil
}

func (f *fakeStore) GetGroup(_ context.Context, id string) (*model.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, apperror.NotFound("group", id)
	}
	out := *g
	return &out, nil
}

func (f *fakeStore) GetGroupBySlug(_ context.Context, slug string) (*model.Group, error) {
	for _, g := range f.groups {
		if g.Slug == slug {
			out := *g
			return &out, nil
		}
	}
	return nil, apperror.NotFound("group", slug)
}

func (f *fakeStore) ListGroups(_ context.Context) ([]model.Group, error) {
	out := make([]model.Group, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// --- comments ---

func (f *fakeStore) CreateComment(_ context.Context, comment *model.Comment) error {
	comment.ID = f.nextID("comment")
	comment.CreatedAt = f.tick()
	stored := *comment
	stored.Author = nil
	f.comments = append(f.comments, stored)
	return nil
}

func (f *fakeStore) ListComments(_ context.Context, postID string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			if u, ok := f.users[c.AuthorID]; ok {
				author := *u
				c.Author = &author
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// --- follows ---

func (f *fakeStore) CreateFollow(_ context.Context, follow *model.Follow) (bool, error) {
	if follow.UserID == follow.AuthorID {
		return false, errors.New("fake: CHECK constraint failed")
	}
	key := [2]string{follow.UserID, follow.AuthorID}
	if f.follows[key] {
		return false, nil
	}
	f.follows[key] = true
	return true, nil
}

func (f *fakeStore) DeleteFollow(_ context.Context, userID, authorID string) (bool, error) {
	key := [2]string{userID, authorID}
	if !f.follows[key] {
		return false, nil
	}
	delete(f.follows, key)
	return true, nil
}

func (f *fakeStore) IsFollowing(_ context.Context, userID, authorID string) (bool, error) {
	return f.follows[[2]string{userID, authorID}], nil
}

func (f *fakeStore) CountFollows(_ context.Context) (int, error) {
	return len(f.follows), nil
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
	}
	user.ID = f.nextID("user")
	user.CreatedAt = f.tick()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID != 0 && u.GitHubID == user.GitHubID {
			u.Email = user.Email
			u.AvatarURL = user.AvatarURL
			*user = *u
			return nil
		}
	}
	return f.CreateUser(ctx, user)
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

// =========================================================================
// FAKE IMAGE SAVER
// =========================================================================

type fakeImages struct {
	saved   []*media.Image
	removed []string
}

func (f *fakeImages) SavePostImage(img *media.Image) (string, error) {
	f.saved = append(f.saved, img)
	return fmt.Sprintf("posts/fake-%d.%s", len(f.saved), img.Format), nil
}

func (f *fakeImages) Remove(key string) error {
	f.removed = append(f.removed, key)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) mustUser(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	if err := f.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return u
}

func (f *fakeStore) mustGroup(t *testing.T, slug string) *model.Group {
	t.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug}
	if err := f.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("creating group %s: %v", slug, err)
	}
	return g
}

func (f *fakeStore) mustPost(t *testing.T, author *model.User, text string) *model.Post {
	t.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID}
	if err := f.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	return p
}
