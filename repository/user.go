package repository

import (
	"context"

	"github.com/taskhive/backend/domain"
)

// UserRepository stores identities. GetByEmail is the only read that returns
// the password hash; it exists solely for credential verification. GetByID
// backs session resolution and never loads the hash.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
