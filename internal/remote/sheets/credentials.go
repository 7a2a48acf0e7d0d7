package sheets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Scope grants read/write access to the user's spreadsheets.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

var errNoRefreshToken = errors.New("sheets: no refresh token configured")

// Credentials hands out bearer tokens for the Sheets API. Refresh discards
// the cached token so the next Token call fetches a new one.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// OAuthCredentials exchanges a long-lived refresh token for access tokens.
type OAuthCredentials struct {
	config       *oauth2.Config
	refreshToken string

	mu    sync.Mutex
	token *oauth2.Token
}

func NewOAuthCredentials(clientID, clientSecret, refreshToken string) *OAuthCredentials {
	return NewOAuthCredentialsWithEndpoint(clientID, clientSecret, refreshToken, endpoints.Google)
}

func NewOAuthCredentialsWithEndpoint(clientID, clientSecret, refreshToken string, endpoint oauth2.Endpoint) *OAuthCredentials {
	return &OAuthCredentials{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{Scope},
		},
		refreshToken: refreshToken,
	}
}

// Configured reports whether a refresh token is available. It does not
// check that the token is still accepted.
func (c *OAuthCredentials) Configured() bool {
	return c != nil && c.config.ClientID != "" && c.refreshToken != ""
}

func (c *OAuthCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token.AccessToken, nil
	}

	if err := c.exchange(ctx); err != nil {
		return "", err
	}

	return c.token.AccessToken, nil
}

func (c *OAuthCredentials) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = nil

	return c.exchange(ctx)
}

// exchange must be called with mu held.
func (c *OAuthCredentials) exchange(ctx context.Context) error {
	if c.refreshToken == "" {
		return errNoRefreshToken
	}

	tok, err := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken}).Token()
	if err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}

	if tok.RefreshToken != "" {
		c.refreshToken = tok.RefreshToken
	}

	c.token = tok

	return nil
}
