package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where structured results are written.
var Stdout io.Writer = os.Stdout

// ParseFormat converts a --format flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
	}
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
