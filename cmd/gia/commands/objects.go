package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// NewObjectsCommand creates the objects command group.
func NewObjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "objects",
		Aliases: []string{"object", "object-types"},
		Short:   "Manage application object types",
		Long:    "Add, inspect, update and delete the object types of an application",
	}

	cmd.AddCommand(newObjectsAddCommand())
	cmd.AddCommand(newObjectsGetCommand())
	cmd.AddCommand(newObjectsUpdateCommand())
	cmd.AddCommand(newObjectsDeleteCommand())
	cmd.AddCommand(newObjectsSchemaCommand())

	return cmd
}

// loadObjectFile reads a YAML or JSON object type definition.
func loadObjectFile(path string) (iga.Object, error) {
	cleanPath, err := validateFilePath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path validated above
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	object := iga.Object{}

	err = yaml.Unmarshal(data, &object)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return object, nil
}

func newObjectsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add APP_ID FILE",
		Short: "Add an object type",
		Long:  "Add the object type defined in a YAML or JSON file (id, type, properties) to an application",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := loadObjectFile(args[1])
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			return runObjectsAdd(context.Background(), client.Applications(), cmd.OutOrStdout(), args[0], definition)
		},
	}
}

func runObjectsAdd(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, appID string, definition iga.Object) error {
	_, err := apps.AddObjectType(ctx, appID, definition)
	if err != nil {
		return describeError(err, "add object type", fmt.Sprintf("application '%s'", appID))
	}

	printSuccess(out, "Object type '%s' added to application '%s'", definition.String("id"), appID)

	return nil
}

func newObjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get APP_ID TYPE_ID",
		Short: "Get an object type",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			objectType, err := client.Applications().GetObjectType(context.Background(), args[0], args[1])
			if err != nil {
				return describeError(err, "get object type", fmt.Sprintf("object type '%s' in application '%s'", args[1], args[0]))
			}

			return writeObject(cmd.OutOrStdout(), format, objectType)
		},
	}
}

func newObjectsUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update APP_ID TYPE_ID FILE",
		Short: "Update an object type",
		Args:  cobra.ExactArgs(3), //nolint:mnd // app, type and file
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := loadObjectFile(args[2])
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			_, err = client.Applications().UpdateObjectType(context.Background(), args[0], args[1], definition)
			if err != nil {
				return describeError(err, "update object type", fmt.Sprintf("object type '%s' in application '%s'", args[1], args[0]))
			}

			printSuccess(cmd.OutOrStdout(), "Object type '%s' updated on application '%s'", args[1], args[0])

			return nil
		},
	}
}

func newObjectsDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete APP_ID TYPE_ID",
		Short: "Delete an object type",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), yes,
				fmt.Sprintf("Delete object type '%s' from application '%s'?", args[1], args[0]))
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			err = client.Applications().DeleteObjectType(context.Background(), args[0], args[1])
			if err != nil {
				return describeError(err, "delete object type", fmt.Sprintf("object type '%s'", args[1]))
			}

			printSuccess(cmd.OutOrStdout(), "Object type '%s' deleted from application '%s'", args[1], args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}

func newObjectsSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema APP_ID TYPE_ID",
		Short: "Show the schema of an object type",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			schema, err := client.Applications().GetObjectTypeSchema(context.Background(), args[0], args[1])
			if err != nil {
				return describeError(err, "get object type schema", fmt.Sprintf("object type '%s' in application '%s'", args[1], args[0]))
			}

			return writeObject(cmd.OutOrStdout(), format, schema)
		},
	}
}

// writeObject prints a single API object in the requested format.
func writeObject(out io.Writer, format string, obj iga.Object) error {
	if handled, err := writeStructured(out, format, obj); handled {
		return err
	}

	return renderObject(out, obj)
}
