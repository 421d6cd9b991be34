package iga

import (
	"context"
	"time"
)

// ApplicationsClient wraps the /governance/application endpoints.
type ApplicationsClient interface {
	List(ctx context.Context, params *QueryParams) ([]Object, error)
	Get(ctx context.Context, id string, options *GetApplicationOptions) (Object, error)
	Create(ctx context.Context, payload interface{}) (Object, error)
	Update(ctx context.Context, id string, payload interface{}) (Object, error)
	Delete(ctx context.Context, id string) error
	FindByName(ctx context.Context, name string) (Object, error)

	AddObjectType(ctx context.Context, applicationID string, payload interface{}) (Object, error)
	GetObjectType(ctx context.Context, applicationID, objectTypeID string) (Object, error)
	UpdateObjectType(ctx context.Context, applicationID, objectTypeID string, payload interface{}) (Object, error)
	DeleteObjectType(ctx context.Context, applicationID, objectTypeID string) error
	GetObjectTypeSchema(ctx context.Context, applicationID, objectType string) (Object, error)

	UploadFile(ctx context.Context, applicationID, filePath, objectType string) (Object, error)
	GetFiles(ctx context.Context, applicationID string) ([]Object, error)
	GetUploadStatus(ctx context.Context, applicationID, uploadID string) (Object, error)
	GetUploadFailures(ctx context.Context, applicationID, uploadID string) (Object, error)

	ListAccounts(ctx context.Context, applicationID string) ([]Object, error)
	GetAccount(ctx context.Context, applicationID, accountID string) (Object, error)
	ListResources(ctx context.Context, applicationID string) ([]Object, error)
	GetResource(ctx context.Context, applicationID, resourceID string) (Object, error)
}

// Client is the entry point to the IGA API.
type Client interface {
	Applications() ApplicationsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Authentication
//
// ClientID and ClientSecret are exchanged at TokenURL with the OAuth2
// client_credentials grant. Scopes is sent as the space-separated "scope"
// form field only when set. Tokens are cached per client and refreshed 30
// seconds before they expire. When TokenURL is empty, giaclient.New uses
// "<BaseURL>/am/oauth2/access_token".
//
// # Timeouts and retries
//
// Every request carries a 60 second deadline unless HTTPTimeout is set.
// Requests answered with 429, 500, 502, 503 or 504, or failing with a
// connection error, are attempted up to three times with exponential backoff
// starting at half a second. RetryMax, RetryWaitMin and RetryWaitMax tune
// this schedule.
type Config struct {
	// BaseURL is the tenant origin, e.g. "https://tenant.example.com".
	// A trailing slash is trimmed once.
	BaseURL string

	// ClientID: OAuth2 client ID.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// TokenURL: full OAuth2 token endpoint.
	TokenURL string
	// Scopes: optional space-separated scopes.
	Scopes string

	// PageSize overrides the default list page size (50).
	PageSize int

	// HTTPTimeout is the per-request deadline.
	HTTPTimeout time.Duration
	// RetryMax: retries after the first attempt.
	RetryMax int
	// RetryWaitMin: backoff base.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
