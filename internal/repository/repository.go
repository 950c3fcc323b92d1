// Package repository defines the storage interfaces the rest of the
// application depends on. Concrete implementations live in subpackages
// (sqlite today); services and handlers only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/repodocs/internal/model"
)

// UserRepository persists user records.
//
// Upsert is keyed by the user's GitHubID: first login inserts, every later
// login updates profile fields and overwrites the stored access token while
// keeping the internal ID and CreatedAt. After Upsert returns, the passed
// struct holds the canonical record.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
