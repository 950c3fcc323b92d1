package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/repodocs/internal/auth"
	"github.com/sakif/repodocs/internal/service"
)

// DocsHandler exposes AI documentation generation for one repository.
type DocsHandler struct {
	docs   *service.DocsService
	logger *slog.Logger
}

func NewDocsHandler(docs *service.DocsService, logger *slog.Logger) *DocsHandler {
	return &DocsHandler{docs: docs, logger: logger}
}

type generateRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// HandleGenerate generates markdown documentation for the requested repo.
//
// HTTP: POST /api/github/docs (protected)
// Body: {"owner": "...", "repo": "..."}
func (h *DocsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "no token provided"})
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request body",
		})
		return
	}
	if req.Owner == "" || req.Repo == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "owner and repo are required",
		})
		return
	}

	doc, err := h.docs.Generate(r.Context(), user.AccessToken, req.Owner, req.Repo)
	if err != nil {
		h.logger.Error("documentation generation failed",
			slog.String("owner", req.Owner),
			slog.String("repo", req.Repo),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
