// Package service holds the business logic between the HTTP handlers and
// the external collaborators (GitHub API, completion API, user store).
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/repodocs/internal/llm"
)

// RepoFetcher is the slice of the GitHub client the docs service uses.
type RepoFetcher interface {
	Get(ctx context.Context, token, path string, header http.Header) ([]byte, error)
	GetRaw(ctx context.Context, token, path string) (string, error)
}

// Documentation is the result of one generation request.
type Documentation struct {
	Owner         string    `json:"owner"`
	Repo          string    `json:"repo"`
	Documentation string    `json:"documentation"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// DocsService gathers repository context from GitHub and turns it into
// generated markdown documentation via one completion call.
type DocsService struct {
	github    RepoFetcher
	completer llm.Completer
	logger    *slog.Logger

	// listingLimit caps how many top-level entries are embedded in the
	// prompt.
	listingLimit int
}

// NewDocsService wires the documentation aggregator.
func NewDocsService(github RepoFetcher, completer llm.Completer, listingLimit int, logger *slog.Logger) *DocsService {
	return &DocsService{
		github:       github,
		completer:    completer,
		logger:       logger,
		listingLimit: listingLimit,
	}
}

// repoMetadata is the slice of the repository object the prompt needs.
type repoMetadata struct {
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
}

// contentEntry is one entry of a directory listing from the contents API.
type contentEntry struct {
	Name string `json:"name"`
	Type string `json:"type"` // "file" or "dir"
}

const systemInstruction = "You are a professional technical documentation writer. " +
	"Generate comprehensive markdown documentation."

// Generate builds the documentation prompt for owner/repo and runs one
// completion call.
//
// README, manifest, and directory listing are optional: a failed fetch is
// downgraded to "no data" and the pipeline continues. Repository metadata is
// required — without it there is no prompt, so its failure aborts with the
// propagated upstream error. The four fetches run concurrently.
func (s *DocsService) Generate(ctx context.Context, token, owner, repo string) (*Documentation, error) {
	base := fmt.Sprintf("/repos/%s/%s", owner, repo)

	var (
		readme   string
		manifest string
		listing  string
		meta     repoMetadata
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if text, err := s.github.GetRaw(gctx, token, base+"/readme"); err == nil {
			readme = text
		} else {
			s.logger.Debug("docs: no readme", slog.String("repo", owner+"/"+repo))
		}
		return nil
	})

	g.Go(func() error {
		if text, err := s.github.GetRaw(gctx, token, base+"/contents/package.json"); err == nil {
			manifest = text
		} else {
			s.logger.Debug("docs: no package manifest", slog.String("repo", owner+"/"+repo))
		}
		return nil
	})

	g.Go(func() error {
		if rendered, err := s.fetchListing(gctx, token, base); err == nil {
			listing = rendered
		} else {
			s.logger.Debug("docs: no directory listing", slog.String("repo", owner+"/"+repo))
		}
		return nil
	})

	g.Go(func() error {
		body, err := s.github.Get(gctx, token, base, nil)
		if err != nil {
			return fmt.Errorf("service/docs: fetching repository metadata: %w", err)
		}
		if err := json.Unmarshal(body, &meta); err != nil {
			return fmt.Errorf("service/docs: decoding repository metadata: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	prompt := buildPrompt(owner, repo, meta, readme, manifest, listing)

	s.logger.Info("generating documentation",
		slog.String("owner", owner),
		slog.String("repo", repo),
		slog.Bool("hasReadme", readme != ""),
		slog.Bool("hasManifest", manifest != ""),
	)

	text, err := s.completer.Complete(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("service/docs: completion call: %w", err)
	}

	return &Documentation{
		Owner:         owner,
		Repo:          repo,
		Documentation: text,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// fetchListing returns the top-level directory listing rendered one entry
// per line as "[DIR] name" or "[FILE] name", truncated to listingLimit.
func (s *DocsService) fetchListing(ctx context.Context, token, base string) (string, error) {
	body, err := s.github.Get(ctx, token, base+"/contents", nil)
	if err != nil {
		return "", err
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", fmt.Errorf("service/docs: decoding directory listing: %w", err)
	}

	return renderListing(entries, s.listingLimit), nil
}

func renderListing(entries []contentEntry, limit int) string {
	if len(entries) > limit {
		entries = entries[:limit]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		marker := "[FILE]"
		if e.Type == "dir" {
			marker = "[DIR]"
		}
		lines = append(lines, marker+" "+e.Name)
	}
	return strings.Join(lines, "\n")
}

// buildPrompt assembles the fixed 8-section documentation prompt. Optional
// sections are only included when their data is present.
func buildPrompt(owner, repo string, meta repoMetadata, readme, manifest, listing string) string {
	description := meta.Description
	if description == "" {
		description = "No description available"
	}
	language := meta.Language
	if language == "" {
		language = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a professional technical documentation writer. Generate comprehensive, well-structured documentation for the following GitHub repository.

Repository: %s/%s
Description: %s
Language: %s
Stars: %d

`, owner, repo, description, language, meta.Stars)

	if readme != "" {
		fmt.Fprintf(&b, "Existing README:\n%s\n\n", readme)
	}
	if manifest != "" {
		fmt.Fprintf(&b, "Package.json:\n%s\n\n", manifest)
	}
	if listing != "" {
		fmt.Fprintf(&b, "Repository Structure (sample):\n%s\n\n", listing)
	}

	b.WriteString(`Please create a professional markdown documentation with the following sections:
1. Project Overview - Clear description of what the project does
2. Features - Key features and capabilities
3. Technology Stack - Technologies and frameworks used
4. Installation Guide - Step-by-step installation instructions
5. Usage - How to use the project with examples
6. Project Structure - Explanation of main directories and files
7. Contributing - Guidelines for contributing
8. License - License information

Return ONLY the markdown content, properly formatted with headers, code blocks, and lists. Make it professional and comprehensive.`)

	return b.String()
}
