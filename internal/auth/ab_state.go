package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	ab "github.com/aarondl/authboss/v3"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// simpleState implements authboss.ClientState using a map
type simpleState map[string]string

func (s simpleState) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// cookieStateRW implements ClientStateReadWriter using gorilla/securecookie.
// A zero MaxAge makes a browser-session cookie.
type cookieStateRW struct {
	CookieName string
	MaxAge     int
	sc         *securecookie.SecureCookie
}

func newCookieStateRW(name string, maxAge int, hashKey, blockKey []byte) cookieStateRW {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(0)
	return cookieStateRW{CookieName: name, MaxAge: maxAge, sc: sc}
}

func (c cookieStateRW) ReadState(r *http.Request) (ab.ClientState, error) {
	ck, err := r.Cookie(c.CookieName)
	if err != nil || ck == nil {
		return simpleState{}, nil
	}
	m := map[string]string{}
	if err := c.sc.Decode(c.CookieName, ck.Value, &m); err != nil {
		// tampered or signed with old keys: treat as signed out
		return simpleState{}, nil
	}
	return simpleState(m), nil
}

func (c cookieStateRW) WriteState(w http.ResponseWriter, state ab.ClientState, events []ab.ClientStateEvent) error {
	s := simpleState{}
	if prev, ok := state.(simpleState); ok {
		for k, v := range prev {
			s[k] = v
		}
	}
	for _, ev := range events {
		switch ev.Kind {
		case ab.ClientStateEventPut:
			s[ev.Key] = ev.Value
		case ab.ClientStateEventDel:
			delete(s, ev.Key)
		case ab.ClientStateEventDelAll:
			for k := range s {
				delete(s, k)
			}
		}
	}

	ck := &http.Cookie{
		Name:     c.CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if len(s) == 0 {
		ck.MaxAge = -1
		http.SetCookie(w, ck)
		return nil
	}
	encoded, err := c.sc.Encode(c.CookieName, map[string]string(s))
	if err != nil {
		return fmt.Errorf("encode %s cookie: %w", c.CookieName, err)
	}
	ck.Value = encoded
	ck.MaxAge = c.MaxAge
	http.SetCookie(w, ck)
	return nil
}

// deriveKeys expands secret into a 64-byte signing key and a 32-byte
// AES-256 key. An empty secret yields random keys.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32), nil
	}
	r := hkdf.New(sha256.New, []byte(secret), []byte("store-it session cookie"), nil)
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("derive cookie hash key: %w", err)
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("derive cookie block key: %w", err)
	}
	return hashKey, blockKey, nil
}
