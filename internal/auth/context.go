package auth

import (
	"context"

	"store-it/internal/domain/entities"
)

type userKey struct{}

// WithUser stores the signed-in user on ctx.
func WithUser(ctx context.Context, u *entities.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser returns the user stored by WithUser, or nil.
func CurrentUser(ctx context.Context) *entities.User {
	u, _ := ctx.Value(userKey{}).(*entities.User)
	return u
}
