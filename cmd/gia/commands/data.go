package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// NewDataCommand creates the data command group.
func NewDataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Load and monitor application data",
		Long:  "Upload CSV files for an object type and follow the resulting upload jobs",
	}

	cmd.AddCommand(newDataLoadCommand())
	cmd.AddCommand(newDataStatusCommand())
	cmd.AddCommand(newDataFailuresCommand())
	cmd.AddCommand(newDataFilesCommand())

	return cmd
}

func newDataLoadCommand() *cobra.Command {
	var objectType string

	cmd := &cobra.Command{
		Use:     "load APP_ID CSV_FILE",
		Short:   "Upload a CSV file",
		Example: `  gia data load 3f1c... accounts.csv --type __ACCOUNT__`,
		Args:    cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, err := validateFilePath(args[1])
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			return runDataLoad(context.Background(), client.Applications(), cmd.OutOrStdout(), args[0], csvPath, objectType)
		},
	}

	cmd.Flags().StringVar(&objectType, "type", "", "object type of the records, e.g. __ACCOUNT__")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runDataLoad(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, appID, csvPath, objectType string) error {
	result, err := apps.UploadFile(ctx, appID, csvPath, objectType)
	if err != nil {
		return describeError(err, "upload file", fmt.Sprintf("application '%s'", appID))
	}

	uploadID := result.String("extractionId")
	if uploadID == "" {
		uploadID = result.String("id")
	}

	if uploadID == "" {
		uploadID = constants.NotAvailable
	}

	printSuccess(out, "File upload started successfully")
	printInfo(out, "Upload ID: %s", uploadID)
	printInfo(out, "File: %s", csvPath)
	printInfo(out, "Object type: %s", objectType)
	_, _ = fmt.Fprintf(out, "\nCheck status with: gia data status %s %s\n", appID, uploadID)

	return nil
}

func newDataStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status APP_ID UPLOAD_ID",
		Short: "Show upload progress",
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

			return runDataStatus(context.Background(), client.Applications(), cmd.OutOrStdout(), format, args[0], args[1])
		},
	}
}

func runDataStatus(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, format, appID, uploadID string) error {
	status, err := apps.GetUploadStatus(ctx, appID, uploadID)
	if err != nil {
		return describeError(err, "get upload status", fmt.Sprintf("upload '%s' for application '%s'", uploadID, appID))
	}

	if handled, err := writeStructured(out, format, status); handled {
		return err
	}

	state := status.String("status")
	if state == "" {
		state = "unknown"
	}

	err = renderTable(out, []string{"Property", "Value"}, [][]string{
		{"Upload ID", uploadID},
		{"Application ID", appID},
		{"Status", state},
		{"Total Records", fmt.Sprintf("%d", status.Int("totalCount"))},
		{"Success", fmt.Sprintf("%d", status.Int("successCount"))},
		{"Failures", fmt.Sprintf("%d", status.Int("failureCount"))},
	})
	if err != nil {
		return err
	}

	if status.Int("failureCount") > 0 {
		printWarning(out, "Use 'gia data failures %s %s' to view errors", appID, uploadID)
	}

	return nil
}

func newDataFailuresCommand() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "failures APP_ID UPLOAD_ID",
		Short: "Show rejected records of an upload",
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

			return runDataFailures(context.Background(), client.Applications(), cmd.OutOrStdout(), format, args[0], args[1], exportPath)
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write all failures to a CSV file")

	return cmd
}

func runDataFailures(ctx context.Context, apps iga.ApplicationsClient, out io.Writer, format, appID, uploadID, exportPath string) error {
	response, err := apps.GetUploadFailures(ctx, appID, uploadID)
	if err != nil {
		return describeError(err, "get upload failures", fmt.Sprintf("upload '%s'", uploadID))
	}

	failures := response.Objects("result")
	if len(failures) == 0 {
		printSuccess(out, "No failures found for this upload")

		return nil
	}

	if exportPath != "" {
		err = exportFailures(exportPath, failures)
		if err != nil {
			return err
		}

		printSuccess(out, "Failures exported to %s", exportPath)

		return nil
	}

	if handled, err := writeStructured(out, format, failures); handled {
		return err
	}

	shown := failures
	if len(shown) > constants.FailurePreviewLimit {
		shown = shown[:constants.FailurePreviewLimit]
	}

	rows := make([][]string, 0, len(shown))
	for i, failure := range shown {
		row := failure.String("rowNumber")
		if row == "" {
			row = constants.NotAvailable
		}

		message := failure.String("error")
		if message == "" {
			message = "No error message"
		}

		rows = append(rows, []string{fmt.Sprintf("%d", i+1), row, message})
	}

	err = renderTable(out, []string{"#", "Row", "Error"}, rows)
	if err != nil {
		return err
	}

	if len(failures) > constants.FailurePreviewLimit {
		printInfo(out, "Showing %d of %d failures. Use --export to get all.", constants.FailurePreviewLimit, len(failures))
	}

	return nil
}

// exportFailures writes failures as CSV. Columns are the sorted keys of the
// first record.
func exportFailures(path string, failures []iga.Object) error {
	columns := make([]string, 0, len(failures[0]))
	for key := range failures[0] {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	// #nosec G304 -- export path is chosen by the user
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)

	err = writer.Write(columns)
	if err == nil {
		for _, failure := range failures {
			record := make([]string, len(columns))
			for i, column := range columns {
				record[i] = formatValue(failure[column])
			}

			if err = writer.Write(record); err != nil {
				break
			}
		}
	}

	writer.Flush()

	if err == nil {
		err = writer.Error()
	}

	closeErr := file.Close()

	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", path, closeErr)
	}

	return nil
}

func newDataFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files APP_ID",
		Short: "List uploaded files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			files, err := client.Applications().GetFiles(context.Background(), args[0])
			if err != nil {
				return describeError(err, "list files", fmt.Sprintf("application '%s'", args[0]))
			}

			return writeObjects(cmd.OutOrStdout(), format, files, "No files found",
				[]string{"ID", "File Name", "Object Type", "Status"},
				[]string{"id", "fileName", "objectType", "status"})
		},
	}
}

// writeObjects prints a list of API objects in the requested format.
func writeObjects(out io.Writer, format string, objects []iga.Object, empty string, headers, keys []string) error {
	if handled, err := writeStructured(out, format, objects); handled {
		return err
	}

	if len(objects) == 0 {
		_, _ = fmt.Fprintln(out, empty)

		return nil
	}

	return renderObjects(out, objects, headers, keys)
}
