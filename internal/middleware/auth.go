package middleware

import (
	"context"
	"net/http"

	"store-it/internal/auth"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/logger"
)

// UserResolver maps a session secret to its user; nil means signed out.
type UserResolver interface {
	CurrentUser(ctx context.Context, secret string) (*entities.User, error)
}

type actorHolder struct{ actor string }

type actorHolderKey struct{}

func withActorHolder(ctx context.Context, h *actorHolder) context.Context {
	return context.WithValue(ctx, actorHolderKey{}, h)
}

// Authenticate resolves the session cookie to a user once per request and
// stores it on the context. Requests without a usable session pass through
// with no user. It must run inside the client state middleware.
func Authenticate(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret, ok := auth.Secret(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			u, err := resolver.CurrentUser(r.Context(), secret)
			if err != nil || u == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := logger.WithActor(auth.WithUser(r.Context(), u), u.ID)
			if h, ok := ctx.Value(actorHolderKey{}).(*actorHolder); ok {
				h.actor = u.ID
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that Authenticate left without a user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.CurrentUser(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, domainerrors.ErrNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}
