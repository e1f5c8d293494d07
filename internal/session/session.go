// Package session provides the session-lifetime attribute store used by
// request handlers. Sessions are persisted by a gorilla/sessions store.
package session

import (
	"context"
	"encoding/gob"

	"daily-report/internal/domain"

	"github.com/gorilla/sessions"
)

// Session attribute keys
const (
	KeyEmployee = "login_employee"
	KeyToken    = "_token"
	KeyFlash    = "flush"
)

func init() {
	gob.Register(domain.Employee{})
}

// Session is the per-login attribute store. It is not safe for concurrent
// use; each request works on its own decoded copy and the last write wins.
type Session struct {
	raw   *sessions.Session
	dirty bool
}

func newSession(raw *sessions.Session) *Session {
	if raw.Values == nil {
		raw.Values = make(map[any]any)
	}
	return &Session{raw: raw}
}

// Get retrieves a value from the session
func (s *Session) Get(key string) (any, bool) {
	val, ok := s.raw.Values[key]
	return val, ok
}

// Put stores a value in the session
func (s *Session) Put(key string, val any) {
	s.raw.Values[key] = val
	s.dirty = true
}

// Remove deletes a value from the session. The session is only marked dirty
// when the key existed.
func (s *Session) Remove(key string) {
	if _, ok := s.raw.Values[key]; ok {
		delete(s.raw.Values, key)
		s.dirty = true
	}
}

// IsDirty returns true if the session has unsaved changes
func (s *Session) IsDirty() bool {
	return s.dirty
}

// IsNew reports whether the session was created for this request
func (s *Session) IsNew() bool {
	return s.raw.IsNew
}

// Employee returns the logged-in employee, if any
func (s *Session) Employee() (*domain.Employee, bool) {
	val, ok := s.Get(KeyEmployee)
	if !ok {
		return nil, false
	}
	employee, ok := val.(domain.Employee)
	if !ok || employee.ID <= 0 {
		return nil, false
	}
	return &employee, true
}

// SetEmployee records the logged-in employee
func (s *Session) SetEmployee(employee domain.Employee) {
	s.Put(KeyEmployee, employee)
}

// CSRFToken returns the current CSRF token or "" if none was issued
func (s *Session) CSRFToken() string {
	token, _ := s.raw.Values[KeyToken].(string)
	return token
}

// SetCSRFToken replaces the current CSRF token
func (s *Session) SetCSRFToken(token string) {
	s.Put(KeyToken, token)
}

// SetFlash stores a one-shot message, replacing any pending one
func (s *Session) SetFlash(message string) {
	s.Put(KeyFlash, message)
}

// TakeFlash returns the pending flash message and clears it, so the message
// is observed by exactly one reader.
func (s *Session) TakeFlash() (string, bool) {
	message, ok := s.raw.Values[KeyFlash].(string)
	s.Remove(KeyFlash)
	if !ok || message == "" {
		return "", false
	}
	return message, true
}

type contextKey struct{}

// WithSession attaches the session to the context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by WithSession
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
