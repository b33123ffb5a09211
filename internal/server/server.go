// Package server wires the blog together: it opens the store, the page cache
// and the media store, builds services and handlers, and maps routes.
//
// New is the composition root used by cmd/server. NewWithDeps takes
// ready-made dependencies so tests can run the full router against an
// in-memory database, an in-process cache and a MemMapFs media store.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/cache"
	"github.com/sakif/yatube/internal/config"
	"github.com/sakif/yatube/internal/handler"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/metrics"
	"github.com/sakif/yatube/internal/middleware"
	sqliteRepo "github.com/sakif/yatube/internal/repository/sqlite"
	"github.com/sakif/yatube/internal/service"
)

// Deps are the external resources a Server runs on.
type Deps struct {
	DB        *sqliteRepo.DB
	Cache     cache.PageCache
	Media     *media.Store
	Passwords *auth.PasswordService // nil: bcrypt default cost
	GitHub    *auth.GitHubProvider  // nil: GitHub login disabled
}

// Server owns the router and the resources it closes on shutdown.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	pages   cache.PageCache
	closers []io.Closer
}

// New opens every resource named by cfg and builds the server.
//
//   - DB_PATH    → SQLite database (directory created if missing)
//   - REDIS_URL  → shared Redis page cache; empty uses an in-process cache
//   - MEDIA_DIR  → uploaded images on local disk
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var (
		pages   cache.PageCache
		closers []io.Closer
	)
	if cfg.RedisURL != "" {
		client, err := cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		closers = append(closers, client)
		pages = cache.NewRedis(client, cache.DefaultKeyPrefix, cfg.IndexCacheTTL)
		logger.Info("page cache: redis", slog.Duration("ttl", cfg.IndexCacheTTL))
	} else {
		pages = cache.NewMemory(cfg.IndexCacheTTL)
		logger.Info("page cache: in-process", slog.Duration("ttl", cfg.IndexCacheTTL))
	}

	store, err := media.NewDiskStore(cfg.MediaDir)
	if err != nil {
		closeAll(closers)
		db.Close()
		return nil, err
	}

	var github *auth.GitHubProvider
	if cfg.GitHubEnabled() {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	} else {
		logger.Info("GitHub login disabled: GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set")
	}

	s, err := NewWithDeps(cfg, logger, Deps{
		DB:     db,
		Cache:  pages,
		Media:  store,
		GitHub: github,
	})
	if err != nil {
		closeAll(closers)
		db.Close()
		return nil, err
	}
	s.closers = closers

	return s, nil
}

// NewWithDeps builds the server on already opened resources.
func NewWithDeps(cfg *config.Config, logger *slog.Logger, deps Deps) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     deps.DB,
		pages:  deps.Cache,
	}

	if err := s.setupRoutes(deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and routes.
//
//	GET       /                                 all posts (page cached)
//	GET       /group/{slug}/                    posts of a group
//	GET       /profile/{username}/              posts of an author
//	GET       /posts/{id}/                      post with comments
//	GET,POST  /create/                          new post             (login)
//	GET,POST  /posts/{id}/edit/                 edit own post        (login)
//	GET,POST  /posts/{id}/comment/              add comment          (login)
//	GET       /follow/                          feed                 (login)
//	GET,POST  /profile/{username}/follow/       follow author        (login)
//	GET,POST  /profile/{username}/unfollow/     unfollow author      (login)
//	          /auth/...                         signup, login, logout, GitHub
//	GET       /about/author/, /about/tech/      static pages
//	GET       /media/*                          uploaded images
//	GET       /metrics, /healthz                Prometheus, health check
func (s *Server) setupRoutes(deps Deps) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := deps.Passwords
	if passwords == nil {
		passwords = auth.NewPasswordService()
	}

	rn, err := handler.NewRenderer(s.logger)
	if err != nil {
		return err
	}

	pageSize := s.config.PageSize
	postService := service.NewPostService(deps.DB, deps.Media, pageSize, s.logger)
	commentService := service.NewCommentService(deps.DB, s.logger)
	followService := service.NewFollowService(deps.DB, s.logger)
	authService := service.NewAuthService(deps.DB, tokens, passwords, s.logger)

	posts := handler.NewPostHandler(postService, commentService, rn)
	follows := handler.NewFollowHandler(followService, rn)
	authHandler := handler.NewAuthHandler(authService, deps.GitHub, s.config.IsProduction(), rn, s.logger)

	// === Global middleware (order matters) ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.Authenticate(authService))

	s.router.NotFound(rn.NotFound)

	// === Infrastructure ===
	s.router.Handle("/metrics", metrics.Handler())
	s.router.Get("/healthz", handler.HandleHealth(deps.DB))
	s.router.Handle("/media/*", http.StripPrefix("/media", deps.Media.Handler()))

	// === Public pages ===
	s.router.With(middleware.CachePage(s.pages, s.logger)).Get("/", posts.HandleIndex)
	s.router.Get("/group/{slug}/", posts.HandleGroup)
	s.router.Get("/profile/{username}/", posts.HandleProfile)
	s.router.Get("/posts/{id}/", posts.HandleDetail)
	s.router.Get("/about/author/", rn.HandleAboutAuthor)
	s.router.Get("/about/tech/", rn.HandleAboutTech)

	// === Login required ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin)

		r.Get("/create/", posts.HandleCreate)
		r.Post("/create/", posts.HandleCreate)
		r.Get("/posts/{id}/edit/", posts.HandleEdit)
		r.Post("/posts/{id}/edit/", posts.HandleEdit)
		r.Get("/posts/{id}/comment/", posts.HandleComment)
		r.Post("/posts/{id}/comment/", posts.HandleComment)
		r.Get("/follow/", posts.HandleFeed)
		r.Get("/profile/{username}/follow/", follows.HandleFollow)
		r.Post("/profile/{username}/follow/", follows.HandleFollow)
		r.Get("/profile/{username}/unfollow/", follows.HandleUnfollow)
		r.Post("/profile/{username}/unfollow/", follows.HandleUnfollow)
	})

	// === Auth ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login/", authHandler.HandleLogin)
		r.Post("/login/", authHandler.HandleLogin)
		r.Get("/signup/", authHandler.HandleSignup)
		r.Post("/signup/", authHandler.HandleSignup)
		r.Get("/logout/", authHandler.HandleLogout)
		r.Post("/logout/", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	return nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ClearIndexCache drops every cached page so the next index request renders
// fresh.
func (s *Server) ClearIndexCache(ctx context.Context) error {
	if err := s.pages.Clear(ctx); err != nil {
		return fmt.Errorf("clearing page cache: %w", err)
	}
	metrics.CacheClears.Inc()
	s.logger.Info("page cache cleared")
	return nil
}

// Close releases the database and cache connections.
func (s *Server) Close() error {
	closeAll(s.closers)
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database and cache connections.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
