package security

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

var ErrInvalidToken = errors.New("invalid CSRF token")

// TokenStore holds the current token of one session.
type TokenStore interface {
	CSRFToken() string
	SetCSRFToken(token string)
}

// TokenManager handles CSRF token generation and verification.
// Tokens are cryptographically random and stored server-side in the session;
// only the most recently issued token of a session is accepted.
type TokenManager struct{}

// NewTokenManager creates a new CSRF token manager.
func NewTokenManager() *TokenManager {
	return &TokenManager{}
}

// Generate creates a cryptographically secure random CSRF token (256 bits).
// The token is returned as a 64-character hex string.
func (tm *TokenManager) Generate() (string, error) {
	randomBytes := make([]byte, 32)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(randomBytes), nil
}

// Issue mints a new token, replaces the session's current token with it and
// returns it for embedding in the next form.
func (tm *TokenManager) Issue(store TokenStore) (string, error) {
	token, err := tm.Generate()
	if err != nil {
		return "", err
	}
	store.SetCSRFToken(token)
	return token, nil
}

// Check compares the submitted token against the session's current token in
// constant time. A session without a token never validates.
func (tm *TokenManager) Check(store TokenStore, submitted string) error {
	current := store.CSRFToken()
	if current == "" || submitted == "" {
		return ErrInvalidToken
	}
	if !hmac.Equal([]byte(current), []byte(submitted)) {
		return ErrInvalidToken
	}
	return nil
}
