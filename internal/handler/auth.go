package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/repodocs/internal/auth"
	"github.com/sakif/repodocs/internal/model"
	"github.com/sakif/repodocs/internal/repository"
)

// AuthHandler manages the GitHub OAuth login flow and the /auth/me profile
// endpoint.
//
// Flow: HandleLogin redirects the browser to GitHub; GitHub calls back
// HandleCallback with a code; the code is exchanged server-to-server for an
// access token and a profile; the user is upserted (credential overwritten);
// a session JWT is minted and handed to the frontend via a redirect query
// parameter. After that the frontend sends the JWT as a bearer header.
type AuthHandler struct {
	provider  auth.Provider
	tokens    *auth.TokenService
	users     repository.UserRepository
	clientURL string
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler. clientURL is the frontend origin
// the callback redirects to after a successful login.
func NewAuthHandler(
	provider auth.Provider,
	tokens *auth.TokenService,
	users repository.UserRepository,
	clientURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:  provider,
		tokens:    tokens,
		users:     users,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
	}
}

const stateCookieName = "oauth_state"

// HandleLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// Fails with 500 before building any redirect URL when OAuth credentials
// are unconfigured. The random state value is stored in a short-lived
// HttpOnly cookie and checked on callback.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Configured() {
		h.logger.Error("login attempted with GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET unset")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "configuration_error",
			Message: "GitHub OAuth not configured",
		})
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // long enough to approve on GitHub, short enough to limit replay
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// Redirect-based failures still return JSON errors rather than redirecting
// to an error page: 400 for a missing code or a rejected exchange, 500 for
// anything unexpected.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: missing or mismatched state")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid OAuth state",
		})
		return
	}

	// state is single-use
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "no authorization code provided",
		})
		return
	}

	accessToken, ghUser, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		// The raw provider response stays in the server log; the client
		// only learns the exchange failed.
		h.logger.Error("auth callback: code exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "upstream_error",
			Message: "failed to get GitHub access token",
		})
		return
	}

	user := &model.User{
		GitHubID:    ghUser.ID,
		Login:       ghUser.Login,
		Name:        ghUser.Name,
		Email:       ghUser.Email,
		AvatarURL:   ghUser.AvatarURL,
		AccessToken: accessToken,
	}
	if err := h.users.Upsert(r.Context(), user); err != nil {
		h.logger.Error("auth callback: upsert failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "authentication failed",
		})
		return
	}

	sessionToken, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "authentication failed",
		})
		return
	}

	h.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	redirect := h.clientURL + "/auth-success?token=" + url.QueryEscape(sessionToken)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /auth/me (protected)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// unreachable behind RequireAuth
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "no token provided",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
