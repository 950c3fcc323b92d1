package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/repodocs/internal/auth"
)

// Fetcher is the slice of the GitHub client the proxy handlers use.
type Fetcher interface {
	Get(ctx context.Context, token, path string, header http.Header) ([]byte, error)
}

// GitHubHandler proxies read-only GitHub API calls using the authenticated
// user's stored access token. Responses are passed through verbatim;
// upstream failures keep GitHub's status code.
type GitHubHandler struct {
	github Fetcher
	logger *slog.Logger
}

func NewGitHubHandler(github Fetcher, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{github: github, logger: logger}
}

// HandleRepos lists the authenticated user's repositories.
//
// HTTP: GET /api/github/repos (protected)
func (h *GitHubHandler) HandleRepos(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "/user/repos")
}

// HandlePulls lists a repository's pull requests.
//
// HTTP: GET /api/github/repos/{owner}/{repo}/pulls (protected)
func (h *GitHubHandler) HandlePulls(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, fmt.Sprintf("/repos/%s/%s/pulls",
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo")))
}

// HandlePullFiles lists the files changed by one pull request.
//
// HTTP: GET /api/github/repos/{owner}/{repo}/pulls/{number}/files (protected)
func (h *GitHubHandler) HandlePullFiles(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, fmt.Sprintf("/repos/%s/%s/pulls/%s/files",
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), chi.URLParam(r, "number")))
}

// HandleCommits lists a repository's commits.
//
// HTTP: GET /api/github/repos/{owner}/{repo}/commits (protected)
func (h *GitHubHandler) HandleCommits(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, fmt.Sprintf("/repos/%s/%s/commits",
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo")))
}

// HandleCommitFiles returns only the changed-files array of one commit.
//
// HTTP: GET /api/github/repos/{owner}/{repo}/commits/{sha} (protected)
//
// GitHub's commit detail carries the files under a "files" field; we project
// that field and default to an empty array when it is absent.
func (h *GitHubHandler) HandleCommitFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "no token provided"})
		return
	}

	path := fmt.Sprintf("/repos/%s/%s/commits/%s",
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), chi.URLParam(r, "sha"))

	body, err := h.github.Get(r.Context(), user.AccessToken, path, nil)
	if err != nil {
		h.logger.Error("proxying commit detail failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	var detail struct {
		Files json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(body, &detail); err != nil {
		h.logger.Error("decoding commit detail failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if len(detail.Files) == 0 || string(detail.Files) == "null" {
		writeRawJSON(w, http.StatusOK, []byte("[]"))
		return
	}
	writeRawJSON(w, http.StatusOK, detail.Files)
}

// proxy forwards one GET to GitHub with the context user's credential and
// writes the response through unchanged.
func (h *GitHubHandler) proxy(w http.ResponseWriter, r *http.Request, path string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "no token provided"})
		return
	}

	body, err := h.github.Get(r.Context(), user.AccessToken, path, nil)
	if err != nil {
		h.logger.Error("proxying GitHub request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}
