package client

import (
	"strings"

	"github.com/fivetwenty-io/gia/internal/auth"
	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/internal/http"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

var (
	_ iga.Client                       = (*Client)(nil)
	_ iga.ApplicationsClient           = (*ApplicationsClient)(nil)
	_ iga.PaginationClient[iga.Object] = (*ApplicationsClient)(nil)
)

// Client implements the iga.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       iga.Logger

	applications *ApplicationsClient
}

// New creates a new IGA API client. The token manager is owned by the
// client and shared by all its resource clients.
func New(config *iga.Config) (*Client, error) {
	if config == nil {
		return nil, iga.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, iga.ErrBaseURLRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a client that authenticates with tokenManager.
func NewWithTokenManager(config *iga.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, iga.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, iga.ErrBaseURLRequired
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	httpClient := http.NewClient(baseURL, tokenManager, createHTTPClientOptions(config)...)

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       config.Logger,
		applications: NewApplicationsClient(httpClient, config.PageSize, config.Logger),
	}, nil
}

// createTokenManager returns a client credentials token manager, or nil
// when no client ID is configured.
func createTokenManager(config *iga.Config) auth.TokenManager {
	if config.ClientID == "" {
		return nil
	}

	return auth.NewClientCredentialsTokenManager(&auth.ClientCredentialsConfig{
		TokenURL:     getTokenURL(config),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       config.Scopes,
	})
}

// getTokenURL returns token URL from config or the tenant default.
func getTokenURL(config *iga.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return strings.TrimSuffix(config.BaseURL, "/") + constants.DefaultTokenPath
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *iga.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := constants.DefaultRetryMax
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryMax > 0 {
			retryMax = config.RetryMax
		}

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// TokenManager returns the token manager for this client.
func (c *Client) TokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the normalized tenant origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Applications implements iga.Client.Applications.
func (c *Client) Applications() iga.ApplicationsClient {
	return c.applications
}
