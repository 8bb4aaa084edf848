package appwrite

import (
	"context"
	"errors"
	"fmt"

	"store-it/internal/appwrite"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/domain/repositories"
)

// AccountGateway sends codes and creates sessions with the admin client and
// reads or ends sessions with a client bound to the caller's secret.
type AccountGateway struct {
	clients *ClientFactory
}

var _ repositories.AccountService = (*AccountGateway)(nil)

func NewAccountGateway(clients *ClientFactory) *AccountGateway {
	return &AccountGateway{clients: clients}
}

func (g *AccountGateway) SendEmailToken(ctx context.Context, email string) (string, error) {
	tok, err := g.clients.Admin().Account().CreateEmailToken(ctx, appwrite.UniqueID(), email)
	if err != nil {
		return "", fmt.Errorf("create email token: %w", err)
	}
	return tok.UserID, nil
}

func (g *AccountGateway) CreateSession(ctx context.Context, accountID, code string) (*entities.Session, error) {
	s, err := g.clients.Admin().Account().CreateSession(ctx, accountID, code)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &entities.Session{ID: s.ID, AccountID: s.UserID, Secret: s.Secret, Expire: s.Expire}, nil
}

func (g *AccountGateway) session(secret string) (*appwrite.Client, error) {
	c, err := g.clients.Session(secret)
	if errors.Is(err, appwrite.ErrNoSession) {
		return nil, domainerrors.Wrap(domainerrors.ErrNoSession, err)
	}
	return c, err
}

func (g *AccountGateway) Current(ctx context.Context, secret string) (*entities.Account, error) {
	c, err := g.session(secret)
	if err != nil {
		return nil, err
	}
	u, err := c.Account().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &entities.Account{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

func (g *AccountGateway) DeleteCurrentSession(ctx context.Context, secret string) error {
	c, err := g.session(secret)
	if err != nil {
		return err
	}
	if err := c.Account().DeleteSession(ctx, appwrite.CurrentSession); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
