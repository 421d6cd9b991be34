package iga

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors that are wrapped with context.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrBaseURLRequired      = errors.New("base URL is required")
	ErrObjectTypeExists     = errors.New("object type already defined")
	ErrObjectTypeUndefined  = errors.New("object type not defined")
	ErrApplicationExists    = errors.New("application already exists")
	ErrMissingApplicationID = errors.New("application response carries no id")
	ErrInvalidObjectKind    = errors.New("invalid object type kind")
)

// AuthError is returned when the token grant fails, either at the
// transport level or because the server response is unusable.
type AuthError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned for HTTP 404 responses.
type NotFoundError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "resource not found"
	}

	if e.Path == "" {
		return msg + " (HTTP 404)"
	}

	return fmt.Sprintf("%s: %s (HTTP 404)", msg, e.Path)
}

// ClientError is returned for any other non-2xx response.
type ClientError struct {
	StatusCode int
	Message    string
	Details    []interface{}
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// ConfigurationError signals local misuse: duplicate object types, uploads
// for undefined object types, or a push conflict when upserts are disabled.
type ConfigurationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel classifying the misuse.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	notFound := &NotFoundError{}

	return errors.As(err, &notFound)
}

// IsAuthError checks if the error is a token grant failure.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsClientError checks if the error is a non-404 API error response.
func IsClientError(err error) bool {
	clientErr := &ClientError{}

	return errors.As(err, &clientErr)
}

// IsConfigurationError checks if the error is a local configuration error.
func IsConfigurationError(err error) bool {
	configErr := &ConfigurationError{}

	return errors.As(err, &configErr)
}

// errorBody is the JSON error envelope returned by the API.
type errorBody struct {
	Message string      `json:"message"`
	Error   string      `json:"error"`
	Details interface{} `json:"details"`
}

// ParseClientError builds a ClientError from a response body. The message
// is taken from "message", then "error", then the raw text when the body is
// not JSON.
func ParseClientError(statusCode int, data []byte) *ClientError {
	clientErr := &ClientError{StatusCode: statusCode}

	var body errorBody

	err := json.Unmarshal(data, &body)
	if err != nil {
		clientErr.Message = strings.TrimSpace(string(data))
		if clientErr.Message == "" {
			clientErr.Message = http.StatusText(statusCode)
		}

		return clientErr
	}

	switch {
	case body.Message != "":
		clientErr.Message = body.Message
	case body.Error != "":
		clientErr.Message = body.Error
	default:
		clientErr.Message = strings.TrimSpace(string(data))
	}

	switch details := body.Details.(type) {
	case nil:
	case []interface{}:
		clientErr.Details = details
	default:
		clientErr.Details = []interface{}{details}
	}

	if clientErr.Message == "" {
		clientErr.Message = http.StatusText(statusCode)
	}

	return clientErr
}
