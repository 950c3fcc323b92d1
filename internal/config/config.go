// Package config loads all runtime configuration from the environment once
// at process start. Components receive the fields they need via constructor
// injection; nothing reads os.Getenv after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the server needs.
type Config struct {
	Port int

	// ClientURL is the frontend origin; the OAuth callback redirects there
	// with the minted session token. ServerURL is this server's public base
	// URL, used to build the OAuth callback URL GitHub redirects to.
	ClientURL string
	ServerURL string

	GitHubClientID     string
	GitHubClientSecret string

	JWTSecret string
	TokenTTL  time.Duration

	DBPath string

	// Groq serves the documentation-generation completions. The API surface
	// is OpenAI-compatible, so GroqBaseURL can point at any compatible host.
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// DirListingLimit caps how many top-level entries of a repository are
	// embedded in the documentation prompt.
	DirListingLimit int

	HTTPClientTimeout time.Duration

	LogLevel string
}

const (
	defaultPort            = 8080
	defaultDBPath          = "data/repodocs.db"
	defaultTokenTTL        = 24 * time.Hour
	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultGroqBaseURL     = "https://api.groq.com/openai/v1"
	defaultDirListingLimit = 20
	defaultHTTPTimeout     = 30 * time.Second
)

// Load reads the environment (and a .env file, if present) into a Config.
// Missing optional values get defaults; malformed values are errors.
// Required values are checked separately by Validate so a caller can report
// every missing key at once.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               defaultPort,
		ClientURL:          os.Getenv("CLIENT_URL"),
		ServerURL:          os.Getenv("SERVER_URL"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           defaultTokenTTL,
		DBPath:             defaultDBPath,
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          defaultGroqModel,
		GroqBaseURL:        defaultGroqBaseURL,
		DirListingLimit:    defaultDirListingLimit,
		HTTPClientTimeout:  defaultHTTPTimeout,
		LogLevel:           "info",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		cfg.GroqModel = v
	}
	if v := os.Getenv("GROQ_BASE_URL"); v != "" {
		cfg.GroqBaseURL = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TOKEN_TTL %q: %w", v, err)
		}
		cfg.TokenTTL = ttl
	}
	if v := os.Getenv("DIR_LISTING_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("config: invalid DIR_LISTING_LIMIT %q", v)
		}
		cfg.DirListingLimit = limit
	}
	if v := os.Getenv("HTTP_CLIENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid HTTP_CLIENT_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPClientTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// Validate reports every missing required key in one error so operators can
// fix the environment in a single pass.
//
// GitHub OAuth credentials and the Groq key are deliberately not required:
// the server starts without them and the affected endpoints return
// configuration errors instead. Warnings surfaces those at startup.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientURL == "" {
		missing = append(missing, "CLIENT_URL")
	}
	if c.ServerURL == "" {
		missing = append(missing, "SERVER_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// Warnings lists unset optional keys that disable functionality, for the
// startup log.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.GitHubClientID == "" || c.GitHubClientSecret == "" {
		warnings = append(warnings, "GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set — GitHub login is disabled")
	}
	if c.GroqAPIKey == "" {
		warnings = append(warnings, "GROQ_API_KEY not set — documentation generation will fail")
	}
	return warnings
}

// CallbackURL is the OAuth callback GitHub redirects to after authorization.
// It must match the callback registered on the GitHub OAuth app exactly.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/auth/github/callback"
}
