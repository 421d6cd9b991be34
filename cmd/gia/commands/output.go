package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// outputFormat returns the --output value, validated.
func outputFormat() (string, error) {
	format := viper.GetString("output")
	if format == "" {
		format = constants.FormatTable
	}

	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s (use table, json or yaml)", constants.ErrUnsupportedOutputFormat, format)
	}
}

// writeStructured encodes data as JSON or YAML. It reports false for the
// table format so callers can render their own table.
func writeStructured(w io.Writer, format string, data interface{}) (bool, error) {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(data)
		if err != nil {
			return true, fmt.Errorf("failed to encode JSON: %w", err)
		}

		return true, nil
	case constants.FormatYAML:
		return true, writeYAML(w, data)
	default:
		return false, nil
	}
}

func writeYAML(w io.Writer, data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// renderTable prints rows under headers.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(headers)...)

	for _, row := range rows {
		_ = table.Append(toAny(row)...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderObject prints the top-level keys of obj as a property table.
func renderObject(w io.Writer, obj iga.Object) error {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, formatValue(obj[key])})
	}

	return renderTable(w, []string{"Property", "Value"}, rows)
}

// renderObjects prints one row per object with the given columns.
func renderObjects(w io.Writer, objects []iga.Object, headers, keys []string) error {
	rows := make([][]string, 0, len(objects))

	for _, obj := range objects {
		row := make([]string, 0, len(keys))
		for _, key := range keys {
			value := obj.String(key)
			if value == "" {
				value = constants.NotAvailable
			}

			row = append(row, value)
		}

		rows = append(rows, row)
	}

	return renderTable(w, headers, rows)
}

// formatValue renders scalars as is and everything else as compact JSON.
func formatValue(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64, bool, int:
		return fmt.Sprintf("%v", typed)
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(data)
	}
}

func toAny(values []string) []any {
	result := make([]any, len(values))
	for i, value := range values {
		result[i] = value
	}

	return result
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, constants.CheckMarkSymbol+" "+format+"\n", args...)
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "ℹ "+format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "⚠ "+format+"\n", args...)
}
