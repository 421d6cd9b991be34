package iga_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/gia/pkg/iga"
)

func TestParseClientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails []interface{}
	}{
		{
			name:        "message and details array",
			status:      400,
			body:        `{"message":"Invalid object type","details":[{"field":"type"}]}`,
			wantMessage: "Invalid object type",
			wantDetails: []interface{}{map[string]interface{}{"field": "type"}},
		},
		{
			name:        "error field",
			status:      401,
			body:        `{"error":"invalid_token"}`,
			wantMessage: "invalid_token",
		},
		{
			name:        "details object is wrapped",
			status:      409,
			body:        `{"message":"Conflict","details":{"id":"app-1"}}`,
			wantMessage: "Conflict",
			wantDetails: []interface{}{map[string]interface{}{"id": "app-1"}},
		},
		{
			name:        "plain text body",
			status:      502,
			body:        "  Bad Gateway from proxy\n",
			wantMessage: "Bad Gateway from proxy",
		},
		{
			name:        "empty body falls back to status text",
			status:      503,
			body:        "",
			wantMessage: "Service Unavailable",
		},
		{
			name:        "json without message keeps the raw body",
			status:      500,
			body:        `{"code":500}`,
			wantMessage: `{"code":500}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := iga.ParseClientError(tt.status, []byte(tt.body))

			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.wantDetails, err.Details)
			assert.Equal(t, fmt.Sprintf("%s (HTTP %d)", tt.wantMessage, tt.status), err.Error())
		})
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")

	notFound := fmt.Errorf("getting application: %w", &iga.NotFoundError{Path: "/iga/governance/application/x"})
	authErr := &iga.AuthError{Message: "failed to obtain access token", Err: cause}
	clientErr := fmt.Errorf("wrapped: %w", &iga.ClientError{StatusCode: 400, Message: "bad"})
	configErr := &iga.ConfigurationError{Message: "duplicate", Err: iga.ErrObjectTypeExists}

	assert.True(t, iga.IsNotFound(notFound))
	assert.False(t, iga.IsClientError(notFound))
	assert.True(t, iga.IsAuthError(authErr))
	assert.True(t, iga.IsClientError(clientErr))
	assert.False(t, iga.IsNotFound(clientErr))
	assert.True(t, iga.IsConfigurationError(configErr))
	assert.False(t, iga.IsConfigurationError(cause))

	assert.ErrorIs(t, authErr, cause)
	assert.ErrorIs(t, configErr, iga.ErrObjectTypeExists)

	assert.Equal(t, "failed to obtain access token: dial tcp: connection refused", authErr.Error())
	assert.Equal(t, "no token", (&iga.AuthError{Message: "no token"}).Error())
	assert.Equal(t, "resource not found: /iga/governance/application/x (HTTP 404)", errors.Unwrap(notFound).Error())
	assert.Equal(t, "resource not found (HTTP 404)", (&iga.NotFoundError{}).Error())
	assert.Equal(t, "duplicate", configErr.Error())
}
