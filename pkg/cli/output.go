package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func formatFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "Output format (text, json, yaml)",
		Value:       formatText,
		Sources:     cli.EnvVars("WHISKER_FORMAT"),
		Destination: dst,
	}
}

// writeOutput writes v in the requested format. text renders the text form.
func writeOutput(w io.Writer, format string, v any, text func() string) error {
	switch format {
	case formatText, "":
		_, err := fmt.Fprintln(w, text())
		return err

	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return goerr.Wrap(err, "failed to encode JSON")
		}
		return nil

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return goerr.Wrap(err, "failed to encode YAML")
		}
		return enc.Close()

	default:
		return goerr.New("unknown output format", goerr.V("format", format))
	}
}
