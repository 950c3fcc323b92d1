package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/repodocs/internal/model"
	"github.com/sakif/repodocs/internal/repository"
)

// Provider abstracts the OAuth identity provider so handlers can be tested
// with a fake. *GitHubProvider is the real implementation.
type Provider interface {
	Configured() bool
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (accessToken string, user *GitHubUser, err error)
}

var _ Provider = (*GitHubProvider)(nil)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the stored user.
type contextKey string

const userKey contextKey = "user"

// RequireAuth enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", validates the JWT, resolves the
// subject to a stored user, and requires that user to hold a GitHub access
// token. The rejection ladder:
//
//	missing header or bearer segment → 401 "no token provided"
//	token unverifiable               → 401 "authentication failed"
//	subject resolves to no user      → 401 "user not found"
//	user without stored credential   → 403, re-authenticate
//
// On success the full user record is attached to the request context; this
// costs one store lookup per request. Verification failure details are
// logged, never sent to the client.
func RequireAuth(tokens *TokenService, users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "no token provided")
				return
			}

			userID, err := tokens.Validate(token)
			if err != nil {
				logger.Warn("auth: token validation failed", slog.String("error", err.Error()))
				writeAuthError(w, http.StatusUnauthorized, "authentication failed")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				logger.Warn("auth: user not found for valid token", slog.String("userID", userID))
				writeAuthError(w, http.StatusUnauthorized, "user not found")
				return
			}

			if !user.HasCredential() {
				logger.Warn("auth: user has no GitHub access token", slog.String("userID", user.ID))
				writeAuthError(w, http.StatusForbidden,
					"GitHub access token not found. Please re-authenticate.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user. Exposed for
// handler tests; RequireAuth is the only production caller.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user attached by RequireAuth.
// Returns (nil, false) on unprotected routes.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// Returns "" when the header or the token segment is missing.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeAuthError emits the uniform JSON error body without importing the
// handler package (which would be an import cycle).
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	kind := "unauthenticated"
	if status == http.StatusForbidden {
		kind = "forbidden"
	}
	// messages here are fixed strings, never user input
	w.Write([]byte(`{"error":"` + kind + `","message":"` + message + `"}`))
}
