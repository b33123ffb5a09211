// Package config loads server settings from config.yml, a .env file and the
// environment. Environment variables win over the file; defaults fill the rest.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret is the JWT_SECRET default. Validate rejects it in production.
const DevJWTSecret = "dev-secret-change-me-in-production"

// Config holds every runtime setting of the server.
type Config struct {
	Port          int           `mapstructure:"PORT"`
	DBPath        string        `mapstructure:"DB_PATH"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	RedisURL      string        `mapstructure:"REDIS_URL"` // empty: in-process cache
	MediaDir      string        `mapstructure:"MEDIA_DIR"`
	PageSize      int           `mapstructure:"PAGE_SIZE"`
	IndexCacheTTL time.Duration `mapstructure:"INDEX_CACHE_TTL"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	Env           string        `mapstructure:"APP_ENV"`

	GitHubClientID     string `mapstructure:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `mapstructure:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `mapstructure:"GITHUB_CALLBACK_URL"`
}

var keys = []string{
	"PORT", "DB_PATH", "JWT_SECRET", "REDIS_URL", "MEDIA_DIR", "PAGE_SIZE",
	"INDEX_CACHE_TTL", "LOG_LEVEL", "APP_ENV",
	"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_CALLBACK_URL",
}

// Load reads configuration from the given search paths (the working
// directory when none are given) and validates it.
func Load(paths ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// AutomaticEnv only answers Get; Unmarshal needs every key to be known.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", k, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "data/yatube.db")
	v.SetDefault("JWT_SECRET", DevJWTSecret)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MEDIA_DIR", "data/media")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("INDEX_CACHE_TTL", "20s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GITHUB_CLIENT_ID", "")
	v.SetDefault("GITHUB_CLIENT_SECRET", "")
	v.SetDefault("GITHUB_CALLBACK_URL", "")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.IndexCacheTTL <= 0 {
		return fmt.Errorf("INDEX_CACHE_TTL must be positive, got %s", c.IndexCacheTTL)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.IsProduction() {
		if c.JWTSecret == DevJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// GitHubEnabled reports whether GitHub login is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
