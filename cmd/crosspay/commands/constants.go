// Package commands provides CLI command implementations for the crosspay engine.
package commands

// Output format constants.
const (
	// OutputFormatJSON represents JSON output format.
	OutputFormatJSON = "json"
	// OutputFormatYAML represents YAML output format.
	OutputFormatYAML = "yaml"
	// OutputFormatTable represents aligned tabular output for terminals.
	OutputFormatTable = "table"
)
