package commands

import (
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/giaclient"
)

// NewConfigureCommand creates the configure command.
func NewConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Configure credentials",
		Long:  "Interactively store the tenant URL and OAuth2 client credentials of a profile",
		Example: `  gia configure
  gia configure --profile staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			prompter := NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			return runConfigure(prompter, cmd.OutOrStdout(), secretReader(prompter), path, profileName())
		},
	}
}

// secretReader hides input on a terminal and falls back to a plain line
// when stdin is piped.
func secretReader(prompter *Prompter) func(label string) (string, error) {
	return func(label string) (string, error) {
		fd := int(syscall.Stdin)
		if !term.IsTerminal(fd) {
			return prompter.AskRequired(label)
		}

		_, _ = fmt.Fprintf(prompter.out, "%s: ", label)

		secret, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(prompter.out)

		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}

		return strings.TrimSpace(string(secret)), nil
	}
}

func runConfigure(prompter *Prompter, out io.Writer, readSecret func(string) (string, error), path, profile string) error {
	_, _ = fmt.Fprintf(out, "\nConfiguring GIA profile: %s\n\n", profile)

	baseURL, err := prompter.AskRequired("Base URL (e.g., https://tenant.example.com)")
	if err != nil {
		return err
	}

	clientID, err := prompter.AskRequired("Client ID")
	if err != nil {
		return err
	}

	clientSecret, err := readSecret("Client Secret")
	if err != nil {
		return err
	}

	if clientSecret == "" {
		return constants.ErrClientSecretMissing
	}

	tokenEndpoint, err := prompter.Ask("Token Endpoint", giaclient.DefaultTokenURL(baseURL))
	if err != nil {
		return err
	}

	scopes, err := prompter.Ask("Scopes (optional)", "")
	if err != nil {
		return err
	}

	config, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	config.SetProfile(profile, &Profile{
		BaseURL:       baseURL,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		TokenEndpoint: tokenEndpoint,
		Scopes:        scopes,
	})

	err = saveConfigFile(path, config)
	if err != nil {
		return err
	}

	printSuccess(out, "Configuration saved for profile '%s'", profile)
	printInfo(out, "Config location: %s", path)

	return nil
}

// NewProfilesCommand creates the profiles command group.
func NewProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage configuration profiles",
		Long:    "List and delete the credential profiles stored in the config file",
	}

	cmd.AddCommand(newProfilesListCommand())
	cmd.AddCommand(newProfilesDeleteCommand())

	return cmd
}

func newProfilesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			return runProfilesList(cmd.OutOrStdout(), format, path, profileName())
		},
	}
}

type profileSummary struct {
	Name          string `json:"name"           yaml:"name"`
	BaseURL       string `json:"base_url"       yaml:"base_url"`
	ClientID      string `json:"client_id"      yaml:"client_id"`
	TokenEndpoint string `json:"token_endpoint" yaml:"token_endpoint"`
	Current       bool   `json:"current"        yaml:"current"`
}

func runProfilesList(out io.Writer, format, path, current string) error {
	config, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	names := config.ProfileNames()
	if len(names) == 0 {
		return constants.ErrNoProfilesFound
	}

	summaries := make([]profileSummary, 0, len(names))
	for _, name := range names {
		profile := config.Profiles[name]
		summaries = append(summaries, profileSummary{
			Name:          name,
			BaseURL:       profile.BaseURL,
			ClientID:      profile.ClientID,
			TokenEndpoint: profile.TokenEndpoint,
			Current:       name == current,
		})
	}

	if handled, err := writeStructured(out, format, summaries); handled {
		return err
	}

	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		marker := ""
		if summary.Current {
			marker = constants.CheckMarkSymbol
		}

		rows = append(rows, []string{marker, summary.Name, summary.BaseURL, summary.ClientID, constants.MaskedSecret})
	}

	return renderTable(out, []string{"", "Profile", "Base URL", "Client ID", "Secret"}, rows)
}

func newProfilesDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete PROFILE",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			err = confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), yes, fmt.Sprintf("Delete profile '%s'?", args[0]))
			if err != nil {
				return err
			}

			return runProfilesDelete(cmd.OutOrStdout(), path, args[0])
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}

func runProfilesDelete(out io.Writer, path, name string) error {
	config, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	err = config.DeleteProfile(name)
	if err != nil {
		return err
	}

	err = saveConfigFile(path, config)
	if err != nil {
		return err
	}

	printSuccess(out, "Profile '%s' deleted", name)

	return nil
}
