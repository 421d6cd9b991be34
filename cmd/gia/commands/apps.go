package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// NewAppsCommand creates the apps command group.
func NewAppsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"app", "applications"},
		Short:   "Manage applications",
		Long:    "List, create, update and delete disconnected applications",
	}

	cmd.AddCommand(newAppsListCommand())
	cmd.AddCommand(newAppsGetCommand())
	cmd.AddCommand(newAppsCreateCommand())
	cmd.AddCommand(newAppsUpdateCommand())
	cmd.AddCommand(newAppsDeleteCommand())
	cmd.AddCommand(newAppsPushCommand())

	return cmd
}

func newAppsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Long:  "List all applications of the tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			return runAppsList(context.Background(), client.Applications(), cmd.OutOrStdout(), format)
		},
	}
}

func runAppsList(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, format string) error {
	applications, err := apps.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	if handled, err := writeStructured(out, format, applications); handled {
		return err
	}

	if len(applications) == 0 {
		_, _ = fmt.Fprintln(out, "No applications found")

		return nil
	}

	err = renderObjects(out, applications, []string{"ID", "Name", "Description"}, []string{"id", "name", "description"})
	if err != nil {
		return err
	}

	printInfo(out, "Total applications: %d", len(applications))

	return nil
}

func newAppsGetCommand() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "get APP_ID",
		Short: "Get application details",
		Long:  "Show an application as a definition file, or export it with --export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			return runAppsGet(context.Background(), client.Applications(), cmd.OutOrStdout(), viper.GetString("output"), args[0], exportPath)
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write the definition to a YAML file")

	return cmd
}

func runAppsGet(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, format, appID, exportPath string) error {
	application, err := apps.Get(ctx, appID, nil)
	if err != nil {
		return describeError(err, "get application", fmt.Sprintf("application '%s'", appID))
	}

	definition := definitionFromObject(application)

	if exportPath != "" {
		err = writeDefinition(exportPath, definition)
		if err != nil {
			return err
		}

		printSuccess(out, "Application exported to %s", exportPath)

		return nil
	}

	if format == constants.FormatJSON {
		_, err = writeStructured(out, format, definition)

		return err
	}

	return writeYAML(out, definition)
}

func newAppsCreateCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "create [FILE]",
		Short: "Create an application",
		Long:  "Create an application from a YAML definition file or interactively. Fails when an application with the same name exists.",
		Example: `  gia apps create hr-export.yml
  gia apps create --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			var app *iga.DisconnectedApplication

			switch {
			case interactive:
				app, err = NewInteractiveBuilder(cmd.InOrStdin(), cmd.OutOrStdout()).Build()
			case len(args) == 1:
				app, err = loadApplication(args[0])
			default:
				err = constants.ErrConfigFileOrInteractive
			}

			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			return runPush(context.Background(), client.Applications(), cmd.OutOrStdout(), format, app, false, eventsConfig())
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "build the application interactively")

	return cmd
}

func newAppsPushCommand() *cobra.Command {
	var upsert bool

	cmd := &cobra.Command{
		Use:   "push FILE",
		Short: "Create or update an application from a definition",
		Long:  "Create the application, or update the one with the same name, then reconcile its object types and upload its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			app, err := loadApplication(args[0])
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			return runPush(context.Background(), client.Applications(), cmd.OutOrStdout(), format, app, upsert, eventsConfig())
		},
	}

	cmd.Flags().BoolVar(&upsert, "upsert", true, "update an existing application with the same name")

	return cmd
}

func newAppsUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update APP_ID FILE",
		Short: "Update an application",
		Long:  "Replace an application with a definition file and reconcile its object types",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			app, err := loadApplication(args[1])
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			return runUpdate(context.Background(), client.Applications(), cmd.OutOrStdout(), format, args[0], app, eventsConfig())
		},
	}
}

func newAppsDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete APP_ID",
		Short: "Delete an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), yes,
				fmt.Sprintf("Are you sure you want to delete application '%s'?", args[0]))
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			err = client.Applications().Delete(context.Background(), args[0])
			if err != nil {
				return describeError(err, "delete application", fmt.Sprintf("application '%s'", args[0]))
			}

			printSuccess(cmd.OutOrStdout(), "Application '%s' deleted successfully", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}

func loadApplication(path string) (*iga.DisconnectedApplication, error) {
	definition, err := loadDefinition(path)
	if err != nil {
		return nil, err
	}

	return definition.ToApplication()
}

// pushOptions wires the CLI logger and, when configured, the NATS event
// sink into a push. The returned func closes the sink.
func pushOptions(config EventsConfig) ([]iga.PushOption, func(), error) {
	logger := NewLogrusLogger(os.Stderr, viper.GetBool("verbose"))
	opts := []iga.PushOption{iga.WithPushLogger(logger)}

	publisher, err := openPublisher(config, logger)
	if err != nil {
		return nil, nil, err
	}

	if publisher == nil {
		return opts, func() {}, nil
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to flush push events", map[string]interface{}{"error": err.Error()})
		}
	}

	return append(opts, iga.WithEventPublisher(publisher)), closeFn, nil
}

func runPush(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, format string, app *iga.DisconnectedApplication, upsert bool, config EventsConfig) error {
	opts, closeFn, err := pushOptions(config)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := app.Push(ctx, apps, upsert, opts...)
	if err != nil {
		return fmt.Errorf("failed to push application '%s': %w", app.Name, err)
	}

	verb := "created"
	if len(result.Warnings) > 0 {
		verb = "updated"
	}

	return printPushResult(out, format, result, verb)
}

func runUpdate(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, format, appID string, app *iga.DisconnectedApplication, config EventsConfig) error {
	opts, closeFn, err := pushOptions(config)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := app.PushTo(ctx, apps, appID, opts...)
	if err != nil {
		return describeError(err, "update application", fmt.Sprintf("application '%s'", appID))
	}

	return printPushResult(out, format, result, "updated")
}

func printPushResult(out io.Writer, format string, result *iga.PushResult, verb string) error {
	if handled, err := writeStructured(out, format, result); handled {
		return err
	}

	for _, warning := range result.Warnings {
		printWarning(out, "%s", warning.Message)
	}

	printSuccess(out, "Application %s successfully!", verb)
	printInfo(out, "Application ID: %s", result.ApplicationID)
	printInfo(out, "Object types reconciled: %d", len(result.ObjectTypeResponses))

	if len(result.UploadResponses) > 0 {
		printInfo(out, "Files uploaded: %d", len(result.UploadResponses))
	}

	return nil
}
