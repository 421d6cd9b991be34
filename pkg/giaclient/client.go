// Package giaclient provides the main entry point for creating IGA API clients
package giaclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/gia/internal/client"
	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// New creates a new IGA API client. The base URL is normalized and the
// token endpoint defaults to the tenant's access_token path. config is not
// modified.
func New(config *iga.Config) (iga.Client, error) {
	if config == nil {
		return nil, iga.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, iga.ErrBaseURLRequired
	}

	normalized := *config
	normalized.BaseURL = NormalizeBaseURL(config.BaseURL)

	if normalized.TokenURL == "" && normalized.ClientID != "" {
		normalized.TokenURL = normalized.BaseURL + constants.DefaultTokenPath
	}

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithClientCredentials creates a client authenticating with the OAuth2
// client_credentials grant against the default token endpoint.
func NewWithClientCredentials(baseURL, clientID, clientSecret string) (iga.Client, error) {
	return New(&iga.Config{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NormalizeBaseURL trims one trailing slash and defaults the scheme to https.
func NormalizeBaseURL(baseURL string) string {
	normalized := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return normalized
}

// DefaultTokenURL returns the token endpoint used when none is configured.
func DefaultTokenURL(baseURL string) string {
	return NormalizeBaseURL(baseURL) + constants.DefaultTokenPath
}
