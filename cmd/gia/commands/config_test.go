package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/gia/internal/constants"
)

func validProfile() *Profile {
	return &Profile{
		BaseURL:       "https://tenant.example.com",
		ClientID:      "client",
		ClientSecret:  "secret",
		TokenEndpoint: "https://tenant.example.com/am/oauth2/access_token",
	}
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validProfile().Validate())

	err := (&Profile{BaseURL: "https://tenant.example.com"}).Validate()
	require.ErrorIs(t, err, constants.ErrProfileIncomplete)
	assert.Contains(t, err.Error(), "client_id, client_secret, token_endpoint")

	config := validProfile().ClientConfig(nil, true)
	assert.Equal(t, "https://tenant.example.com/am/oauth2/access_token", config.TokenURL)
	assert.True(t, config.Debug)
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file is an empty config", func(t *testing.T) {
		t.Parallel()

		config, err := loadConfigFile(filepath.Join(t.TempDir(), "config.yml"))
		require.NoError(t, err)
		assert.Empty(t, config.ProfileNames())

		_, err = config.Profile("default")
		require.ErrorIs(t, err, constants.ErrProfileNotFound)
	})

	t.Run("saved profiles are private and reloadable", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "config.yml")

		config := &Config{}
		config.SetProfile("staging", validProfile())
		config.SetProfile("default", validProfile())
		config.Events = &EventsConfig{NATSURL: "nats://127.0.0.1:4222"}

		require.NoError(t, saveConfigFile(path, config))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "base_url: https://tenant.example.com")
		assert.Contains(t, string(data), "nats_url: nats://127.0.0.1:4222")
		assert.NotContains(t, string(data), "scopes")

		loaded, err := loadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"default", "staging"}, loaded.ProfileNames())

		profile, err := loaded.Profile("staging")
		require.NoError(t, err)
		assert.Equal(t, "secret", profile.ClientSecret)
	})

	t.Run("incomplete profile is rejected", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("profiles:\n  default:\n    base_url: https://x\n"), 0o600))

		config, err := loadConfigFile(path)
		require.NoError(t, err)

		_, err = config.Profile("default")
		require.ErrorIs(t, err, constants.ErrProfileIncomplete)
	})

	t.Run("delete unknown profile", func(t *testing.T) {
		t.Parallel()

		config := &Config{}
		require.ErrorIs(t, config.DeleteProfile("nope"), constants.ErrProfileNotFound)
	})
}

func TestRunConfigure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	input := strings.Join([]string{
		"https://tenant.example.com/",
		"my-client",
		"",
		"fr:idm:*",
	}, "\n") + "\n"

	var out bytes.Buffer

	prompter := NewPrompter(strings.NewReader(input), &out)
	readSecret := func(string) (string, error) { return "s3cret", nil }

	require.NoError(t, runConfigure(prompter, &out, readSecret, path, "staging"))
	assert.Contains(t, out.String(), "Configuration saved for profile 'staging'")

	config, err := loadConfigFile(path)
	require.NoError(t, err)

	profile, err := config.Profile("staging")
	require.NoError(t, err)
	assert.Equal(t, "https://tenant.example.com/", profile.BaseURL)
	assert.Equal(t, "my-client", profile.ClientID)
	assert.Equal(t, "s3cret", profile.ClientSecret)
	assert.Equal(t, "https://tenant.example.com/am/oauth2/access_token", profile.TokenEndpoint)
	assert.Equal(t, "fr:idm:*", profile.Scopes)

	err = runConfigure(NewPrompter(strings.NewReader("https://x\nid\n"), &out), &out,
		func(string) (string, error) { return "", nil }, path, "broken")
	require.ErrorIs(t, err, constants.ErrClientSecretMissing)
}

func TestRunProfiles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")

	var out bytes.Buffer

	require.ErrorIs(t, runProfilesList(&out, constants.FormatTable, path, "default"), constants.ErrNoProfilesFound)

	config := &Config{}
	config.SetProfile("default", validProfile())
	config.SetProfile("staging", validProfile())
	require.NoError(t, saveConfigFile(path, config))

	require.NoError(t, runProfilesList(&out, constants.FormatTable, path, "staging"))
	assert.Contains(t, out.String(), "staging")
	assert.Contains(t, out.String(), constants.MaskedSecret)

	out.Reset()
	require.NoError(t, runProfilesList(&out, constants.FormatJSON, path, "staging"))

	var summaries []profileSummary

	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].Current)
	assert.True(t, summaries[1].Current)

	out.Reset()
	require.NoError(t, runProfilesDelete(&out, path, "staging"))
	assert.Contains(t, out.String(), "Profile 'staging' deleted")

	loaded, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, loaded.ProfileNames())
	require.ErrorIs(t, runProfilesDelete(&out, path, "staging"), constants.ErrProfileNotFound)
}
