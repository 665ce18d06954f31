package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// UserRepository persists accounts. Create returns domain.ErrUsernameTaken on a
// duplicate username; GetByUsername returns domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// IdentityCache is a best-effort lookaside cache for resolved identities.
// A miss is reported as (nil, nil).
type IdentityCache interface {
	Get(ctx context.Context, username string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
}

// InstanceRepository identifies the physical store. The id changes whenever the
// database is recreated, so caches keyed by it never outlive their data.
type InstanceRepository interface {
	InstanceID(ctx context.Context) (string, error)
}
