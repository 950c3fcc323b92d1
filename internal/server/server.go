// Package server wires handlers, middleware, and routes, and owns the HTTP
// server lifecycle. All dependencies are assembled here, in one place.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/repodocs/internal/auth"
	"github.com/sakif/repodocs/internal/config"
	"github.com/sakif/repodocs/internal/github"
	"github.com/sakif/repodocs/internal/handler"
	"github.com/sakif/repodocs/internal/llm"
	"github.com/sakif/repodocs/internal/middleware"
	sqliteRepo "github.com/sakif/repodocs/internal/repository/sqlite"
	"github.com/sakif/repodocs/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph:
// sqlite store → token service / OAuth provider → GitHub client → docs
// service → handlers → routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	provider := auth.NewGitHubProvider(
		s.cfg.GitHubClientID,
		s.cfg.GitHubClientSecret,
		s.cfg.CallbackURL(),
	)

	ghClient := github.NewClient(s.cfg.HTTPClientTimeout)
	completer := llm.NewClient(s.cfg.GroqBaseURL, s.cfg.GroqAPIKey, s.cfg.GroqModel, s.cfg.HTTPClientTimeout)
	docsService := service.NewDocsService(ghClient, completer, s.cfg.DirListingLimit, s.logger)

	authHandler := handler.NewAuthHandler(provider, tokens, s.db, s.cfg.ClientURL, s.logger)
	ghHandler := handler.NewGitHubHandler(ghClient, s.logger)
	docsHandler := handler.NewDocsHandler(docsService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db, s.logger)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("repodocs backend running"))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleLogin)
		r.Get("/github/callback", authHandler.HandleCallback)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)
	})

	s.router.Route("/api/github", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/repos", ghHandler.HandleRepos)
		r.Get("/repos/{owner}/{repo}/pulls", ghHandler.HandlePulls)
		r.Get("/repos/{owner}/{repo}/pulls/{number}/files", ghHandler.HandlePullFiles)
		r.Get("/repos/{owner}/{repo}/commits", ghHandler.HandleCommits)
		r.Get("/repos/{owner}/{repo}/commits/{sha}", ghHandler.HandleCommitFiles)
		r.Post("/docs", docsHandler.HandleGenerate)
	})

	// Unmatched routes get the uniform JSON error shape, not the default
	// plain-text 404.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found","message":"route not found"}`))
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("callback", s.cfg.CallbackURL()),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
