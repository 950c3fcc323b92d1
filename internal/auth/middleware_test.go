package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/repodocs/internal/apperror"
	"github.com/sakif/repodocs/internal/model"
)

// fakeUserRepo is an in-memory UserRepository, keyed by internal ID.
type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newProtectedServer wires RequireAuth around a handler that reports which
// user the middleware attached.
func newProtectedServer(t *testing.T, repo *fakeUserRepo) (*TokenService, http.Handler) {
	t.Helper()
	tokens := newTestTokenService(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Error("UserFromContext returned no user on a protected route")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.ID))
	})

	return tokens, RequireAuth(tokens, repo, discardLogger())(inner)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{}}
	_, h := newProtectedServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/github/repos", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "no token provided")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{}}
	_, h := newProtectedServer(t, repo)

	for _, header := range []string{"Bearer", "Basic abc123", "justonetoken"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "header %q", header)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{}}
	_, h := newProtectedServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication failed")
	// the jwt library's parse error must not leak to the client
	assert.NotContains(t, rr.Body.String(), "token is malformed")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{}}
	tokens, h := newProtectedServer(t, repo)

	expired, err := tokens.GenerateWithDuration("user-1", -time.Minute)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{}}
	tokens, h := newProtectedServer(t, repo)

	token, _ := tokens.Generate("ghost")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "user not found")
}

func TestRequireAuth_UserWithoutCredential(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{
		"user-1": {ID: "user-1", Login: "alice"}, // no AccessToken
	}}
	tokens, h := newProtectedServer(t, repo)

	token, _ := tokens.Generate("user-1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "re-authenticate")
}

func TestRequireAuth_Success(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{
		"user-1": {ID: "user-1", Login: "alice", AccessToken: "gho_abc"},
	}}
	tokens, h := newProtectedServer(t, repo)

	token, _ := tokens.Generate("user-1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", rr.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer", ""},
		{"Token abc123", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(req); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}
