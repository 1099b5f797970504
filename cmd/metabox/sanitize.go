package main

import (
	"io"
	"net/url"
	"strings"

	"github.com/goliatone/go-metabox/pkg/sanitize"
	"github.com/spf13/cobra"
)

type sanitizeFlags struct {
	form           string
	pageTemplate   string
	unfilteredHTML bool
}

func (a *app) sanitizeCommand() *cobra.Command {
	var flags sanitizeFlags
	cmd := &cobra.Command{
		Use:   "sanitize <box-id>",
		Short: "Sanitize a URL encoded form submission and print the stored values",
		Long:  "Reads the submission from --form or, when absent, from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSanitize(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.form, "form", "", "URL encoded form, e.g. kind=event&dates=2024-03-03")
	f.StringVar(&flags.pageTemplate, "page-template", "", "Page template posted with the form")
	f.BoolVar(&flags.unfilteredHTML, "unfiltered-html", false, "Treat the submitter as trusted to post raw HTML")
	return cmd
}

func (a *app) runSanitize(cmd *cobra.Command, id string, flags sanitizeFlags) error {
	def, err := a.definition(id)
	if err != nil {
		return err
	}
	box, err := a.prepare(def)
	if err != nil {
		return err
	}

	raw := flags.form
	if raw == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return codeError(2, "read form: %s", err)
		}
		raw = string(data)
	}
	form, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return codeError(2, "parse form: %s", err)
	}

	opts := []sanitize.Option{
		sanitize.WithUnfilteredHTML(flags.unfilteredHTML),
		sanitize.WithLogger(a.logger),
	}
	if cmd.Flags().Changed("page-template") {
		opts = append(opts, sanitize.WithPageTemplate(flags.pageTemplate))
	}
	values := sanitize.New(opts...).Values(box.Definition(), form)
	return a.writeJSON(cmd.OutOrStdout(), values)
}
