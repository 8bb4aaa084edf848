// Package auth keeps the backend session secret in an encrypted browser
// cookie, read and written through authboss client state.
package auth

import (
	"errors"
	"net/http"
	"strings"

	ab "github.com/aarondl/authboss/v3"

	"store-it/internal/domain/entities"
	"store-it/internal/logger"
)

const (
	// SessionAccountKey holds the backend account id.
	SessionAccountKey = ab.SessionKey
	// SessionSecretKey holds the backend session secret.
	SessionSecretKey = "secret"
	// SessionIDKey holds the backend session id.
	SessionIDKey = "sid"

	DefaultCookieName = "appwrite-session"
)

// Sessions reads and writes the session cookie.
type Sessions struct {
	ab    *ab.Authboss
	state cookieStateRW
}

// Options configures the cookie. Secret seeds the cookie keys; see
// config.SessionConfig.
type Options struct {
	CookieName string
	Secret     string
}

// NewSessions prepares an authboss instance used only for its client state
// machinery; no authboss modules are mounted.
func NewSessions(opts Options) (*Sessions, error) {
	name := strings.TrimSpace(opts.CookieName)
	if name == "" {
		name = DefaultCookieName
	}
	hashKey, blockKey, err := deriveKeys(opts.Secret)
	if err != nil {
		return nil, err
	}

	state := newCookieStateRW(name, 0, hashKey, blockKey)
	a := ab.New()
	a.Config.Storage.SessionState = state
	a.Config.Core.Logger = abLogger{}
	return &Sessions{ab: a, state: state}, nil
}

// LoadClientState must wrap every handler that reads or writes the session.
func (s *Sessions) LoadClientState(next http.Handler) http.Handler {
	return s.ab.LoadClientStateMiddleware(next)
}

// Put stores sess in the cookie. w must be the writer handed down by
// LoadClientState.
func (s *Sessions) Put(w http.ResponseWriter, sess *entities.Session) error {
	if sess == nil || sess.Secret == "" {
		return errors.New("session secret is empty")
	}
	ab.PutSession(w, SessionAccountKey, sess.AccountID)
	ab.PutSession(w, SessionSecretKey, sess.Secret)
	if sess.ID != "" {
		ab.PutSession(w, SessionIDKey, sess.ID)
	}
	return nil
}

// Clear removes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	ab.DelAllSession(w, nil)
}

// Secret returns the backend session secret carried by r.
func Secret(r *http.Request) (string, bool) {
	v, ok := ab.GetSession(r, SessionSecretKey)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SecretFromCookie decodes the secret straight from r's cookie, for
// handlers that run outside LoadClientState.
func (s *Sessions) SecretFromCookie(r *http.Request) (string, bool) {
	st, err := s.state.ReadState(r)
	if err != nil {
		return "", false
	}
	v, ok := st.Get(SessionSecretKey)
	return v, ok && v != ""
}

// AccountID returns the account id stored next to the secret.
func AccountID(r *http.Request) (string, bool) {
	v, ok := ab.GetSession(r, SessionAccountKey)
	return v, ok && v != ""
}

// abLogger routes authboss messages into the structured logger.
type abLogger struct{}

func (abLogger) Info(msg string) {
	logger.GetLogger().InfoCtx(logger.EventAPIRequest, msg, map[string]any{"component": "authboss"}, "", "", "")
}

func (abLogger) Error(msg string) {
	logger.GetLogger().ErrorCtx(logger.EventAuthError, msg, map[string]any{"component": "authboss"}, "", "", "")
}
