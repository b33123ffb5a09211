// Package seed fills a database with demo users, groups, posts, comments and
// follows. Intended for local development and tests only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "password123"

// Options sizes the generated data set.
type Options struct {
	Users           int
	Groups          int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	MaxDays         int   // posts are back-dated up to this many days
	Seed            int64 // 0: random
}

// DefaultOptions is a small but paginated data set.
func DefaultOptions() Options {
	return Options{
		Users:           8,
		Groups:          4,
		PostsPerUser:    6,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		MaxDays:         90,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seeder writes generated records through the repository interfaces.
type Seeder struct {
	store     repository.Store
	passwords *auth.PasswordService
	faker     *gofakeit.Faker
	opts      Options
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a Seeder.
func New(store repository.Store, passwords *auth.PasswordService, opts Options, logger *slog.Logger) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Seeder{
		store:     store,
		passwords: passwords,
		faker:     gofakeit.New(seed),
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Run creates the whole data set.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	var sum Summary

	users, err := s.seedUsers(ctx)
	if err != nil {
		return nil, err
	}
	sum.Users = len(users)

	groups, err := s.seedGroups(ctx)
	if err != nil {
		return nil, err
	}
	sum.Groups = len(groups)

	posts, err := s.seedPosts(ctx, users, groups)
	if err != nil {
		return nil, err
	}
	sum.Posts = len(posts)

	if sum.Comments, err = s.seedComments(ctx, users, posts); err != nil {
		return nil, err
	}
	if sum.Follows, err = s.seedFollows(ctx, users); err != nil {
		return nil, err
	}

	s.logger.Info("seed complete",
		slog.Int("users", sum.Users),
		slog.Int("groups", sum.Groups),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("follows", sum.Follows),
	)
	return &sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*model.User, error) {
	hash, err := s.passwords.Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: hashing password: %w", err)
	}

	users := make([]*model.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u := &model.User{
			Username:     fmt.Sprintf("%s%d", s.faker.Username(), i),
			Email:        s.faker.Email(),
			PasswordHash: hash,
		}
		if err := s.store.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("seed: creating user %s: %w", u.Username, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) seedGroups(ctx context.Context) ([]*model.Group, error) {
	groups := make([]*model.Group, 0, s.opts.Groups)
	for i := 0; i < s.opts.Groups; i++ {
		hobby := s.faker.Hobby()
		title := strings.ToUpper(hobby[:1]) + hobby[1:]
		g := &model.Group{
			Title:       title,
			Slug:        fmt.Sprintf("%s-%d", slugify(title), i),
			Description: s.faker.Sentence(12),
		}
		if err := s.store.CreateGroup(ctx, g); err != nil {
			return nil, fmt.Errorf("seed: creating group %s: %w", g.Slug, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*model.User, groups []*model.Group) ([]*model.Post, error) {
	now := s.now()
	start := now.AddDate(0, 0, -s.opts.MaxDays)

	var posts []*model.Post
	for _, u := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			p := &model.Post{
				Text:      s.faker.Paragraph(1, 3, 12, " "),
				AuthorID:  u.ID,
				CreatedAt: s.faker.DateRange(start, now).UTC(),
			}
			// Roughly two posts in three are filed under a group.
			if len(groups) > 0 && s.faker.Number(0, 2) > 0 {
				p.GroupID = &groups[s.faker.Number(0, len(groups)-1)].ID
			}
			if err := s.store.CreatePost(ctx, p); err != nil {
				return nil, fmt.Errorf("seed: creating post for %s: %w", u.Username, err)
			}
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*model.User, posts []*model.Post) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	now := s.now()

	n := 0
	for _, p := range posts {
		for i := 0; i < s.opts.CommentsPerPost; i++ {
			author := users[s.faker.Number(0, len(users)-1)]
			c := &model.Comment{
				PostID:    p.ID,
				AuthorID:  author.ID,
				Text:      s.faker.Sentence(8),
				CreatedAt: s.faker.DateRange(p.CreatedAt, now).UTC(),
			}
			if err := s.store.CreateComment(ctx, c); err != nil {
				return n, fmt.Errorf("seed: commenting on %s: %w", p.ID, err)
			}
			n++
		}
	}
	return n, nil
}

// seedFollows gives each user up to FollowsPerUser distinct authors, never
// themselves.
func (s *Seeder) seedFollows(ctx context.Context, users []*model.User) (int, error) {
	n := 0
	for i, u := range users {
		for j := 1; j <= s.opts.FollowsPerUser && j < len(users); j++ {
			author := users[(i+j)%len(users)]
			created, err := s.store.CreateFollow(ctx, &model.Follow{UserID: u.ID, AuthorID: author.ID})
			if err != nil {
				return n, fmt.Errorf("seed: %s following %s: %w", u.Username, author.Username, err)
			}
			if created {
				n++
			}
		}
	}
	return n, nil
}

// slugify keeps lowercase letters and digits and joins words with "-".
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
