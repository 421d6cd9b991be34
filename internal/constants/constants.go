package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the per-request deadline for API calls.
	DefaultHTTPTimeout = 60 * time.Second

	// TokenHTTPTimeout bounds a single token grant request.
	TokenHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the number of retries after the first attempt
	// (three attempts in total).
	DefaultRetryMax = 2

	// DefaultRetryWaitMin is the exponential backoff base.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax caps the wait between two attempts.
	DefaultRetryWaitMax = 4 * time.Second
)

// Token lifecycle.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultTokenLifetime is assumed when the token endpoint omits expires_in.
	DefaultTokenLifetime = 3600 * time.Second
)

// Pagination.
const (
	// StandardPageSize is the default page size for list endpoints.
	StandardPageSize = 50
)

// API paths and query keys.
const (
	// APIPrefix roots every IGA endpoint.
	APIPrefix = "/iga"

	// APIPathApplications is the application collection.
	APIPathApplications = "/governance/application"

	// QueryPageSize is the page-size query parameter.
	QueryPageSize = "_pageSize"

	// QueryPagedResultsOffset is the offset cursor query parameter.
	QueryPagedResultsOffset = "_pagedResultsOffset"

	// QueryFilter is the filter expression query parameter.
	QueryFilter = "_queryFilter"

	// QueryFields selects returned fields.
	QueryFields = "_fields"

	// QuerySortKeys selects the sort property.
	QuerySortKeys = "_sortKeys"

	// QuerySortDir selects the sort direction.
	QuerySortDir = "_sortDir"

	// QueryAction selects an action on POST endpoints.
	QueryAction = "_action"
)

// Disconnected application payload values.
const (
	// DisconnectedDatasourceID is the sentinel datasource for disconnected applications.
	DisconnectedDatasourceID = "disconnected"

	// UploadFileField is the multipart field carrying the CSV file.
	UploadFileField = "file"

	// UploadObjectTypeField is the multipart field naming the object type.
	UploadObjectTypeField = "objectType"
)

// Events.
const (
	// DefaultEventSubject is the NATS subject push events are published on.
	DefaultEventSubject = "gia.push"

	// EventFlushTimeout bounds the final flush of the event connection.
	EventFlushTimeout = 5 * time.Second
)

// Validation and limits.
const (
	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2

	// FailurePreviewLimit is the number of upload failures printed in table output.
	FailurePreviewLimit = 10
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Profile constants.
const (
	// DefaultProfile is used when no --profile flag is given.
	DefaultProfile = "default"

	// ConfigDirName is the directory under $HOME holding the CLI config.
	ConfigDirName = ".gia"

	// ConfigFileName is the config file inside ConfigDirName.
	ConfigFileName = "config.yml"

	// DefaultTokenPath is appended to the base URL when no token endpoint is given.
	DefaultTokenPath = "/am/oauth2/access_token"
)
