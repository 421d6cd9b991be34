package giaclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/gia/pkg/giaclient"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := giaclient.New(nil)
		require.ErrorIs(t, err, iga.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := giaclient.New(&iga.Config{})
		require.ErrorIs(t, err, iga.ErrBaseURLRequired)
	})

	t.Run("does not modify the config", func(t *testing.T) {
		t.Parallel()

		config := &iga.Config{BaseURL: "tenant.example.com/", ClientID: "id", ClientSecret: "secret"}

		client, err := giaclient.New(config)
		require.NoError(t, err)
		assert.NotNil(t, client.Applications())
		assert.Equal(t, "tenant.example.com/", config.BaseURL)
		assert.Empty(t, config.TokenURL)
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "https://tenant.example.com/", want: "https://tenant.example.com"},
		{input: "tenant.example.com", want: "https://tenant.example.com"},
		{input: "http://localhost:8080", want: "http://localhost:8080"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, giaclient.NormalizeBaseURL(tt.input))
		})
	}

	assert.Equal(t, "https://tenant.example.com/am/oauth2/access_token", giaclient.DefaultTokenURL("tenant.example.com/"))
}

func TestNewWithClientCredentials(t *testing.T) {
	t.Parallel()

	var tokenCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/am/oauth2/access_token":
			atomic.AddInt32(&tokenCalls, 1)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case "/iga/governance/application":
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"result":      []map[string]interface{}{{"id": "app-1", "name": "TestApp"}},
				"resultCount": 1,
				"totalCount":  1,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := giaclient.NewWithClientCredentials(server.URL, "id", "secret")
	require.NoError(t, err)

	found, err := client.Applications().FindByName(context.Background(), "TestApp")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "app-1", found.String("id"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}
