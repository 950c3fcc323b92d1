// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account backed by a GitHub identity.
//
// GitHubID is GitHub's numeric user ID — stable and unique, so it is the
// upsert key. We still generate our own internal string ID (xid) so primary
// keys are not tied to a third party's numbering scheme.
//
// AccessToken is the GitHub OAuth bearer credential. It is overwritten on
// every successful login, used only server-side for GitHub API calls, and
// never serialized to clients (json:"-").
type User struct {
	ID          string    `json:"id"        db:"id"`
	GitHubID    int64     `json:"githubId"  db:"github_id"`
	Login       string    `json:"login"     db:"login"`      // GitHub handle, e.g. "sakif"
	Name        string    `json:"name"      db:"name"`       // display name (may be empty)
	Email       string    `json:"email"     db:"email"`      // primary public email (may be empty)
	AvatarURL   string    `json:"avatar"    db:"avatar_url"`
	AccessToken string    `json:"-"         db:"access_token"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// HasCredential reports whether the user holds a usable GitHub access token.
// A record can exist without one (OAuth never completed, or token cleared);
// such users must re-authenticate before calling GitHub-backed endpoints.
func (u *User) HasCredential() bool {
	return u.AccessToken != ""
}
