package options

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	Text = "text"
	JSON = "json"
	YAML = "yaml"
)

// FormatOptions selects how a command renders structured results.
type FormatOptions struct {
	Output string
}

func AddFormatArg(cmd *cobra.Command, o *FormatOptions) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", Text,
		"Output format. One of 'text', 'json' or 'yaml'.")
}

// Validate normalizes and checks the selected format.
func (o *FormatOptions) Validate() error {
	o.Output = strings.ToLower(strings.TrimSpace(o.Output))
	switch o.Output {
	case "":
		o.Output = Text
	case Text, JSON, YAML:
	default:
		return fmt.Errorf("unsupported output %q, want text, json or yaml", o.Output)
	}
	return nil
}

// Structured reports whether the output is json or yaml.
func (o *FormatOptions) Structured() bool {
	return o.Output == JSON || o.Output == YAML
}

// Write encodes v to w in the selected structured format.
func (o *FormatOptions) Write(w io.Writer, v any) error {
	switch o.Output {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("output %q is not structured", o.Output)
	}
}
