package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flux/internal/session"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func TestFromAccessToken(t *testing.T) {
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	type testCase struct {
		name      string
		token     func(t *testing.T) string
		wantOwner string
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Valid",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: future})
			},
			wantOwner: "user-1",
		},
		{
			name: "Expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: past})
			},
			wantErr: true,
		},
		{
			name: "WrongSecret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "user-1"})
			},
			wantErr: true,
		},
		{
			name: "WrongAlgorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, secret, jwt.RegisteredClaims{Subject: "user-1"})
			},
			wantErr: true,
		},
		{
			name: "NoSubject",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{ExpiresAt: future})
			},
			wantErr: true,
		},
		{
			name:    "Garbage",
			token:   func(t *testing.T) string { return "not-a-token" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := session.FromAccessToken(tt.token(t), secret)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, s.Authenticated())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, s.Owner())
			assert.True(t, s.Authenticated())
		})
	}
}

func TestSession_Anonymous(t *testing.T) {
	var s *session.Session
	assert.Empty(t, s.Owner())
	assert.False(t, session.FromOwner("").Authenticated())
	assert.True(t, session.FromOwner("abc").Authenticated())
}
