package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// outputFormat returns the configured output format.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))

	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s (use table, json or yaml)", constants.ErrInvalidOutputFormat, format)
	}
}

// render writes value as JSON or YAML, or calls table for the table format.
func render(cmd *cobra.Command, value interface{}, table func(io.Writer) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	switch format {
	case constants.FormatJSON:
		return writeJSON(w, value)
	case constants.FormatYAML:
		return writeYAML(w, value)
	default:
		return table(w)
	}
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	return encoder.Encode(value)
}

func writeYAML(w io.Writer, value interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(value)
	if err != nil {
		return err
	}

	return encoder.Close()
}

// renderTable writes rows under header, or empty when there are no rows.
func renderTable(w io.Writer, header []string, rows [][]string, empty string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, empty)

		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header(toAny(header)...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderProperties writes a two column Property/Value table.
func renderProperties(w io.Writer, properties [][]string) error {
	return renderTable(w, []string{"Property", "Value"}, properties, "")
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}

	return out
}

// valueOr returns value, or N/A when it is empty.
func valueOr(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// rawValue decodes raw JSON for YAML output.
func rawValue(raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var value interface{}

	err := json.Unmarshal(raw, &value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	return value, nil
}

// parseParams parses key=value arguments.
func parseParams(args []string) (csapi.Params, error) {
	params := csapi.Params{}

	for _, arg := range args {
		parts := strings.SplitN(arg, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %s", constants.ErrInvalidParamFormat, arg)
		}

		params[parts[0]] = parts[1]
	}

	return params, nil
}
