// Package session resolves the principal that owns rows in the row-store
// backend. Acquiring the token itself is left to the backend's auth service.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSubject = errors.New("access token has no subject")

// Session identifies the authenticated owner. The zero value and a nil
// *Session are both anonymous.
type Session struct {
	ownerID string
}

// FromOwner builds a session for an owner id known out of band.
func FromOwner(ownerID string) *Session {
	return &Session{ownerID: ownerID}
}

// FromAccessToken verifies an HS256 access token with secret and takes the
// owner id from its subject claim. Expired tokens are rejected.
func FromAccessToken(token string, secret []byte) (*Session, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	if claims.Subject == "" {
		return nil, ErrNoSubject
	}

	return &Session{ownerID: claims.Subject}, nil
}

// Owner returns the owner id, or "" when anonymous.
func (s *Session) Owner() string {
	if s == nil {
		return ""
	}

	return s.ownerID
}

func (s *Session) Authenticated() bool {
	return s.Owner() != ""
}
