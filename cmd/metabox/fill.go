package main

import (
	"github.com/goliatone/go-metabox/pkg/prompt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type fillFlags struct {
	record         string
	values         string
	save           bool
	pageTemplate   string
	locale         string
	unfilteredHTML bool
}

func (a *app) fillCommand() *cobra.Command {
	var flags fillFlags
	cmd := &cobra.Command{
		Use:   "fill <box-id>",
		Short: "Fill a meta box interactively and print the sanitized values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFill(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.record, "record", "", "Record id to load current values from and save to")
	f.StringVar(&flags.values, "values", "", "JSON or YAML file with current values")
	f.BoolVar(&flags.save, "save", false, "Write the sanitized values to the store (requires --record)")
	f.StringVar(&flags.pageTemplate, "page-template", "", "Only ask fields used by this page template")
	f.StringVar(&flags.locale, "locale", "", "Locale for date previews (defaults to METABOX_LOCALE)")
	f.BoolVar(&flags.unfilteredHTML, "unfiltered-html", false, "Keep raw HTML in fields that allow it")
	return cmd
}

func (a *app) runFill(cmd *cobra.Command, id string, flags fillFlags) error {
	ctx := cmd.Context()
	if flags.save && flags.record == "" {
		return codeError(2, "--save requires --record")
	}
	def, err := a.definition(id)
	if err != nil {
		return err
	}
	box, err := a.prepare(def)
	if err != nil {
		return err
	}

	var current map[string]string
	switch {
	case flags.values != "":
		if current, err = readValues(flags.values); err != nil {
			return err
		}
	case flags.record != "":
		values, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		saved, err := values.GetAll(ctx, flags.record, box.Definition().Fields.Keys())
		if err != nil {
			return err
		}
		if len(saved) > 0 {
			current = saved
		}
	}

	locale := flags.locale
	if locale == "" {
		locale = a.settings.Locale
	}
	driver := a.driver
	if driver == nil {
		driver = prompt.NewSurveyDriver(cmd.ErrOrStderr())
	}
	opts := []prompt.Option{
		prompt.WithDriver(driver),
		prompt.WithLocale(locale),
		prompt.WithDateFormat(a.settings.DateFormat),
		prompt.WithUnfilteredHTML(flags.unfilteredHTML),
		prompt.WithLogger(a.logger),
	}
	if cmd.Flags().Changed("page-template") {
		opts = append(opts, prompt.WithPageTemplate(flags.pageTemplate))
	}

	values, err := prompt.New(opts...).FillValues(ctx, box.Definition(), current)
	if err != nil {
		return err
	}

	if flags.save {
		target, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if err := target.SetMany(ctx, flags.record, values); err != nil {
			return err
		}
		a.logger.Info("saved", zap.String("meta_box", id), zap.String("record", flags.record))
	}
	return a.writeJSON(cmd.OutOrStdout(), values)
}
