// Command seed fills the configured database with demo data.
//
//	go run ./cmd/seed -users 20 -posts 8
//
// Every seeded account uses the password in seed.DefaultPassword.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/config"
	sqliteRepo "github.com/sakif/yatube/internal/repository/sqlite"
	"github.com/sakif/yatube/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "number of users to create")
	groups := flag.Int("groups", defaults.Groups, "number of groups to create")
	posts := flag.Int("posts", defaults.PostsPerUser, "posts per user")
	comments := flag.Int("comments", defaults.CommentsPerPost, "comments per post")
	follows := flag.Int("follows", defaults.FollowsPerUser, "authors each user follows")
	days := flag.Int("days", defaults.MaxDays, "spread post dates over this many days")
	seedValue := flag.Int64("seed", 0, "random seed (0: time based)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	s := seed.New(db, auth.NewPasswordService(), seed.Options{
		Users:           *users,
		Groups:          *groups,
		PostsPerUser:    *posts,
		CommentsPerPost: *comments,
		FollowsPerUser:  *follows,
		MaxDays:         *days,
		Seed:            *seedValue,
	}, logger)

	if _, err := s.Run(context.Background()); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		db.Close()
		os.Exit(1)
	}

	logger.Info("all seeded accounts use the same password", slog.String("password", seed.DefaultPassword))
}
