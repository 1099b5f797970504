package main

import (
	"github.com/goliatone/go-metabox/pkg/metabox"
	"github.com/goliatone/go-metabox/pkg/nonce"
	"github.com/goliatone/go-metabox/pkg/store"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	record       string
	values       string
	firstAdd     bool
	pageTemplate string
	locale       string
	out          string
}

func (a *app) renderCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render <box-id>",
		Short: "Render the edit markup of a meta box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.record, "record", "preview", "Record id whose saved values are shown")
	f.StringVar(&flags.values, "values", "", "JSON or YAML file with values to show instead of the store")
	f.BoolVar(&flags.firstAdd, "first-add", false, "Render as a new record so every default shows")
	f.StringVar(&flags.pageTemplate, "page-template", "", "Current page template of the record")
	f.StringVar(&flags.locale, "locale", "", "Locale for translations and dates (defaults to METABOX_LOCALE)")
	f.StringVar(&flags.out, "out", "", "Write markup to file instead of stdout")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, id string, flags renderFlags) error {
	ctx := cmd.Context()
	def, err := a.definition(id)
	if err != nil {
		return err
	}

	var values store.Store
	if flags.values != "" {
		current, err := readValues(flags.values)
		if err != nil {
			return err
		}
		memory := store.NewMemory()
		if err := memory.SetMany(ctx, flags.record, current); err != nil {
			return err
		}
		values = memory
	} else if values, err = a.openStore(ctx); err != nil {
		return err
	}

	opts := []metabox.Option{metabox.WithStore(values)}
	if a.settings.Secret != "" {
		nonces, err := nonce.New([]byte(a.settings.Secret), nonce.WithTTL(a.settings.NonceTTL))
		if err != nil {
			return codeError(2, "%s", err)
		}
		opts = append(opts, metabox.WithNonces(nonces))
	}
	box, err := a.prepare(def, opts...)
	if err != nil {
		return err
	}

	locale := flags.locale
	if locale == "" {
		locale = a.settings.Locale
	}
	markup, err := box.Render(ctx, flags.record, metabox.RenderRequest{
		FirstAdd:     flags.firstAdd,
		PageTemplate: flags.pageTemplate,
		Locale:       locale,
	})
	if err != nil {
		return err
	}

	w, closeOut, err := a.output(flags.out)
	if err != nil {
		return err
	}
	if _, err := w.Write(markup); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
