package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the portion of the GitHub /user response we care about.
// GitHub returns a much larger object; we only unmarshal what we store.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"` // empty if hidden in GitHub settings
	AvatarURL string `json:"avatar_url"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub authorization-code
// flow: redirect → callback with code → server-to-server token exchange →
// profile fetch with the new token.
type GitHubProvider struct {
	config *oauth2.Config

	// userURL is overridable for tests; defaults to the GitHub API.
	userURL string
}

// NewGitHubProvider creates a provider for the registered OAuth app.
// callbackURL must exactly match the authorization callback URL configured
// on the GitHub side.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userURL: "https://api.github.com/user",
	}
}

// Configured reports whether OAuth credentials are present. Login initiation
// must fail fast when they are not, before any redirect URL is built.
func (p *GitHubProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the GitHub authorization URL for the given CSRF state.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for an access token and fetches
// the authenticated user's profile with it.
//
// Both the token and the profile are returned: the token is the provider
// credential stored on the user record and used for every later GitHub API
// call on the user's behalf.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, *GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	if oauthToken.AccessToken == "" {
		return "", nil, fmt.Errorf("auth: GitHub returned no access token")
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// Authorization header on every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userURL)
	if err != nil {
		return "", nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return "", nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.ID == 0 {
		return "", nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return oauthToken.AccessToken, &ghUser, nil
}
