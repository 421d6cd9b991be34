package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// ErrEmptyAccessToken is returned when the token endpoint answers without a token.
var ErrEmptyAccessToken = errors.New("token response did not include an access token")

// TokenManager manages OAuth2 tokens.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
	// InvalidateToken drops the cached token so the next GetToken grants a
	// new one.
	InvalidateToken()
}

// ClientCredentialsConfig holds the credentials exchanged for a token.
type ClientCredentialsConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	// Scopes is a space-separated scope list, sent only when non-empty.
	Scopes string
}

// ClientCredentialsTokenManager obtains tokens with the client_credentials
// grant and caches them until 30 seconds before they expire.
type ClientCredentialsTokenManager struct {
	config     *ClientCredentialsConfig
	oauth      *clientcredentials.Config
	store      *TokenStore
	httpClient *http.Client
	now        func() time.Time

	// refreshMu serializes grants so concurrent callers holding a stale
	// token wait for a single request.
	refreshMu sync.Mutex
}

// ManagerOption configures a ClientCredentialsTokenManager.
type ManagerOption func(*ClientCredentialsTokenManager)

// WithClock replaces the clock used for expiry checks.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *ClientCredentialsTokenManager) {
		m.now = now
	}
}

// WithHTTPClient sets the HTTP client used to call the token endpoint.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *ClientCredentialsTokenManager) {
		m.httpClient = client
	}
}

// NewClientCredentialsTokenManager creates a token manager for config.
func NewClientCredentialsTokenManager(config *ClientCredentialsConfig, opts ...ManagerOption) *ClientCredentialsTokenManager {
	manager := &ClientCredentialsTokenManager{
		config: config,
		oauth: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			Scopes:       strings.Fields(config.Scopes),
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		store:      NewTokenStore(),
		httpClient: &http.Client{Timeout: constants.TokenHTTPTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// GetToken returns a valid access token, requesting a new one when the
// cached token is missing or inside the expiry buffer.
func (m *ClientCredentialsTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.ValidAt(m.now()) {
		return token.AccessToken, nil
	}

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	if token := m.store.Get(); token.ValidAt(m.now()) {
		return token.AccessToken, nil
	}

	token, err := m.fetch(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken requests a new token regardless of the cached one.
func (m *ClientCredentialsTokenManager) RefreshToken(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	_, err := m.fetch(ctx)

	return err
}

// SetToken manually sets the access token.
func (m *ClientCredentialsTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// InvalidateToken drops the cached token, e.g. after the API rejected it.
func (m *ClientCredentialsTokenManager) InvalidateToken() {
	m.store.Clear()
}

func (m *ClientCredentialsTokenManager) fetch(ctx context.Context) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	issued, err := m.oauth.Token(ctx)
	if err != nil {
		return nil, &iga.AuthError{Message: "failed to obtain access token", Err: err}
	}

	if issued.AccessToken == "" {
		return nil, &iga.AuthError{Message: "failed to obtain access token", Err: ErrEmptyAccessToken}
	}

	expiresIn := expiresInSeconds(issued)
	token := &Token{
		AccessToken: issued.AccessToken,
		TokenType:   issued.TokenType,
		ExpiresIn:   expiresIn,
		ExpiresAt:   m.now().Add(time.Duration(expiresIn) * time.Second),
	}

	m.store.Set(token)

	return token, nil
}

// expiresInSeconds reads expires_in from the raw token response. The
// oauth2 package converts it against the wall clock, so the raw value is
// used to keep expiry relative to the manager's clock.
func expiresInSeconds(token *oauth2.Token) int {
	defaultLifetime := int(constants.DefaultTokenLifetime / time.Second)

	switch value := token.Extra("expires_in").(type) {
	case float64:
		if value > 0 {
			return int(value)
		}
	case int64:
		if value > 0 {
			return int(value)
		}
	case json.Number:
		if n, err := value.Int64(); err == nil && n > 0 {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}

	return defaultLifetime
}
