package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// setRequired sets every required env var to a plausible value.
// Individual tests then unset or override the key under test.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_URL", "http://localhost:3000")
	t.Setenv("SERVER_URL", "http://localhost:8080")
	t.Setenv("GITHUB_CLIENT_ID", "client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "client-secret")
	t.Setenv("JWT_SECRET", "test-secret-at-least-16-chars!!")
	t.Setenv("GROQ_API_KEY", "gsk_test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/repodocs.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.DirListingLimit)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DIR_LISTING_LIMIT", "5")
	t.Setenv("GROQ_MODEL", "mixtral-8x7b")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.DirListingLimit)
	assert.Equal(t, "mixtral-8x7b", cfg.GroqModel)
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidate_NamesEveryMissingKey(t *testing.T) {
	setRequired(t)
	t.Setenv("CLIENT_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	assert.NoError(t, err)

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CLIENT_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "SERVER_URL")
}

func TestValidate_OAuthAndGroqAreWarningsNotErrors(t *testing.T) {
	setRequired(t)
	t.Setenv("GITHUB_CLIENT_ID", "")
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := Load()
	assert.NoError(t, err)

	// The server must still start so login can answer with a
	// configuration error instead of refusing to boot.
	assert.NoError(t, cfg.Validate())

	warnings := cfg.Warnings()
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "GITHUB_CLIENT_ID")
	assert.Contains(t, warnings[1], "GROQ_API_KEY")
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "short")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestCallbackURL(t *testing.T) {
	cfg := &Config{ServerURL: "http://localhost:8080/"}
	got := cfg.CallbackURL()

	assert.Equal(t, "http://localhost:8080/auth/github/callback", got)
	assert.False(t, strings.Contains(got, "//auth"))
}
