package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-metabox/pkg/openapi"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type importFlags struct {
	target string
	format string
	out    string
}

func (a *app) importCommand() *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import <openapi-source>",
		Short: "Build a meta box definition from an OpenAPI schema",
		Long:  "The source is a file path or an http(s) URL. The target names a component schema or an operation id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.target, "target", "", "Component schema name or operation id")
	f.StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	f.StringVar(&flags.out, "out", "", "Write the definition to file instead of stdout")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, raw string, flags importFlags) error {
	if flags.format != "yaml" && flags.format != "json" {
		return codeError(2, "unknown format %q", flags.format)
	}
	src, err := openapi.ParseSource(raw)
	if err != nil {
		return codeError(2, "%s", err)
	}
	loader := openapi.NewLoader(openapi.WithHTTPFallback(30 * time.Second))
	box, err := openapi.LoadBox(cmd.Context(), loader, src, flags.target)
	if err != nil {
		return err
	}

	var data []byte
	if flags.format == "json" {
		data, err = json.MarshalIndent(box, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(box)
	}
	if err != nil {
		return fmt.Errorf("encode definition: %w", err)
	}

	w, closeOut, err := a.output(flags.out)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
