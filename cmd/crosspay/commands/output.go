// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormatter handles output formatting for commands.
type OutputFormatter struct {
	format string
	out    io.Writer
}

// NewOutputFormatter creates a new output formatter writing to stdout.
func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{
		format: format,
		out:    os.Stdout,
	}
}

// Print formats and prints the data according to the specified format.
func (f *OutputFormatter) Print(data interface{}) error {
	// First convert to JSON
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	switch f.format {
	case OutputFormatJSON:
		// Pretty print JSON
		var prettyJSON interface{}
		if err := json.Unmarshal(jsonBytes, &prettyJSON); err != nil {
			return fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		encoder := json.NewEncoder(f.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(prettyJSON)

	case OutputFormatYAML:
		// Convert JSON to YAML
		var data interface{}
		if err := json.Unmarshal(jsonBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal JSON for YAML conversion: %w", err)
		}
		yamlBytes, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		_, err = f.out.Write(yamlBytes)
		return err

	default:
		return fmt.Errorf("unsupported output format: %s", f.format)
	}
}

// PrintTable renders rows under a header with aligned columns.
func (f *OutputFormatter) PrintTable(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(f.out, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ValidateFormat checks if the output format is valid.
func ValidateFormat(format string) error {
	switch format {
	case OutputFormatJSON, OutputFormatYAML, OutputFormatTable:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (supported: json, yaml, table)", format)
	}
}
