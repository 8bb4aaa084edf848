package appwrite

import (
	"context"
	"net/http"
)

// CurrentSession addresses the session the client is authenticated with.
const CurrentSession = "current"

// Account wraps the /account endpoints.
type Account struct {
	c *Client
}

// CreateEmailToken emails a one-time code to email. When userID names no
// account yet the backend creates one.
func (a *Account) CreateEmailToken(ctx context.Context, userID, email string) (*Token, error) {
	var out Token
	payload := map[string]string{"userId": userID, "email": email}
	if err := a.c.sendJSON(ctx, "account.createEmailToken", http.MethodPost, "/account/tokens/email", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSession exchanges a user id and the emailed code for a session.
func (a *Account) CreateSession(ctx context.Context, userID, secret string) (*Session, error) {
	var out Session
	payload := map[string]string{"userId": userID, "secret": secret}
	if err := a.c.sendJSON(ctx, "account.createSession", http.MethodPost, "/account/sessions/token", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the account of the session client.
func (a *Account) Get(ctx context.Context) (*User, error) {
	var out User
	if err := a.c.get(ctx, "account.get", "/account", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession removes sessionID, or the client's own session when
// sessionID is CurrentSession.
func (a *Account) DeleteSession(ctx context.Context, sessionID string) error {
	return a.c.sendJSON(ctx, "account.deleteSession", http.MethodDelete, pathf("/account/sessions/%s", sessionID), nil, nil)
}
