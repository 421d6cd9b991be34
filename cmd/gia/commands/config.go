package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/giaclient"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// Config represents the CLI configuration file.
type Config struct {
	Profiles map[string]*Profile `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Events   *EventsConfig       `json:"events,omitempty"   yaml:"events,omitempty"`
}

// Profile holds the credentials of one tenant.
type Profile struct {
	BaseURL       string `json:"base_url"         yaml:"base_url"`
	ClientID      string `json:"client_id"        yaml:"client_id"`
	ClientSecret  string `json:"client_secret"    yaml:"client_secret"`
	TokenEndpoint string `json:"token_endpoint"   yaml:"token_endpoint"`
	Scopes        string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// EventsConfig configures where push events are published.
type EventsConfig struct {
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Subject string `json:"subject,omitempty"  yaml:"subject,omitempty"`
}

// Validate reports the required fields missing from the profile.
func (p *Profile) Validate() error {
	var missing []string

	if p.BaseURL == "" {
		missing = append(missing, "base_url")
	}

	if p.ClientID == "" {
		missing = append(missing, "client_id")
	}

	if p.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}

	if p.TokenEndpoint == "" {
		missing = append(missing, "token_endpoint")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", constants.ErrProfileIncomplete, strings.Join(missing, ", "))
	}

	return nil
}

// ClientConfig converts the profile to a client configuration.
func (p *Profile) ClientConfig(logger iga.Logger, debug bool) *iga.Config {
	return &iga.Config{
		BaseURL:      p.BaseURL,
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		TokenURL:     p.TokenEndpoint,
		Scopes:       p.Scopes,
		Logger:       logger,
		Debug:        debug,
	}
}

// Profile returns the named profile after validating it.
func (c *Config) Profile(name string) (*Profile, error) {
	profile, exists := c.Profiles[name]
	if !exists || profile == nil {
		return nil, fmt.Errorf("'%s': %w", name, constants.ErrProfileNotFound)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile '%s': %w", name, err)
	}

	return profile, nil
}

// SetProfile stores a profile, replacing any existing one with that name.
func (c *Config) SetProfile(name string, profile *Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}

	c.Profiles[name] = profile
}

// DeleteProfile removes a profile.
func (c *Config) DeleteProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("'%s': %w", name, constants.ErrProfileNotFound)
	}

	delete(c.Profiles, name)

	return nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// configFilePath returns the config file in use, honouring --config.
func configFilePath() (string, error) {
	if configFile := viper.GetString("config"); configFile != "" {
		return configFile, nil
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

// loadConfigFile reads the config file. A missing file is an empty config.
func loadConfigFile(path string) (*Config, error) {
	config := &Config{Profiles: make(map[string]*Profile)}

	// #nosec G304 -- path is the CLI's own config file
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if config.Profiles == nil {
		config.Profiles = make(map[string]*Profile)
	}

	return config, nil
}

// saveConfigFile writes the config file readable by the owner only.
func saveConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// WriteFile keeps the mode of an existing file.
	err = os.Chmod(path, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// loadProfile loads the profile selected with --profile.
func loadProfile() (*Profile, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	config, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	return config.Profile(profileName())
}

func profileName() string {
	if name := viper.GetString("profile"); name != "" {
		return name
	}

	return constants.DefaultProfile
}

// createClient builds an API client from the selected profile.
func createClient() (iga.Client, error) {
	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}

	verbose := viper.GetBool("verbose")

	client, err := giaclient.New(profile.ClientConfig(NewLogrusLogger(os.Stderr, verbose), verbose))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// eventsConfig returns the event sink settings from the config file or
// GIA_EVENTS_* environment variables.
func eventsConfig() EventsConfig {
	return EventsConfig{
		NATSURL: viper.GetString("events.nats_url"),
		Subject: viper.GetString("events.subject"),
	}
}
