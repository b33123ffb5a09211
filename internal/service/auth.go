package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/metrics"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
)

// usernamePattern allows letters, digits and @ . + - _ .
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// AuthService registers users, checks credentials and issues session tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles a user with a freshly issued token, so the handler can
// set the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account and signs it in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, apperror.ValidationFailed("username", "This field is required.")
	case len(username) > MaxUsernameLength:
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Ensure this value has at most %d characters.", MaxUsernameLength))
	case !usernamePattern.MatchString(username):
		return nil, apperror.ValidationFailed("username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	case len(password) < MinPasswordLength:
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "This password is too long.")
	}

	user := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	metrics.RecordEvent(metrics.EventUserRegistered)
	s.logger.Info("user registered", slog.String("username", username))

	return s.issue(user)
}

// Login checks a username and password. Unknown users and wrong passwords
// both return apperror.ErrUnauthorized with the same message.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	const badCredentials = "Please enter a correct username and password."

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(badCredentials)
		}
		return nil, fmt.Errorf("service/auth: loading user %s: %w", username, err)
	}

	// GitHub-only accounts have no password to check against.
	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized(badCredentials)
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(badCredentials)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))

	return s.issue(user)
}

// LoginOrRegisterGitHub upserts the account of a GitHub profile and signs
// it in.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Username:  ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

// UserFromToken validates a session token and loads its user.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized(err.Error())
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}

	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
