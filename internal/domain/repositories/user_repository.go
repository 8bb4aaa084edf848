package repositories

import (
	"context"

	"store-it/internal/domain/entities"
)

// UserRepository lookups return (nil, nil) when no document matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByAccountID(ctx context.Context, accountID string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
}
