package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// CookieName is the name of the session cookie.
const CookieName = "daily_report_session"

// Store loads and saves sessions through a gorilla/sessions backend.
type Store struct {
	backend sessions.Store
	name    string
}

// Options configures the session cookie
type Options struct {
	Secret []byte
	MaxAge int
	Secure bool
}

// NewCookieStore creates a store keeping the whole session in a signed cookie
func NewCookieStore(opts Options) *Store {
	cs := sessions.NewCookieStore(opts.Secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewStore(cs, CookieName)
}

// NewStore wraps an arbitrary gorilla/sessions backend
func NewStore(backend sessions.Store, name string) *Store {
	return &Store{backend: backend, name: name}
}

// Load returns the session of the request. When the cookie cannot be decoded
// a fresh session is returned together with the decode error.
func (s *Store) Load(r *http.Request) (*Session, error) {
	raw, err := s.backend.Get(r, s.name)
	if raw == nil {
		raw = sessions.NewSession(s.backend, s.name)
		raw.IsNew = true
	}
	sess := newSession(raw)
	if err != nil {
		return sess, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, nil
}

// Save writes the session back if it changed. It must be called before the
// response header is written.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if !sess.IsDirty() {
		return nil
	}
	if err := sess.raw.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	sess.dirty = false
	return nil
}
