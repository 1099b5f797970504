package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-metabox/pkg/config"
	"github.com/goliatone/go-metabox/pkg/metabox"
	"github.com/goliatone/go-metabox/pkg/prompt"
	"github.com/goliatone/go-metabox/pkg/render"
	"github.com/goliatone/go-metabox/pkg/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
)

// app carries what every command shares. Tests swap environ, driver and
// store to run without a terminal or external services.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	environ map[string]string
	driver  prompt.PromptDriver
	store   store.Store

	envFile   string
	configDir string

	settings settings
	logger   *zap.Logger
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, logger: zap.NewNop()}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "metabox",
		Short:         "Render, sanitize and serve meta boxes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "Load environment variables from this file first")
	flags.StringVar(&a.configDir, "config", "", "Directory holding meta box definitions (overrides METABOX_CONFIG_DIR)")

	root.AddCommand(
		a.renderCommand(),
		a.sanitizeCommand(),
		a.fillCommand(),
		a.importCommand(),
		a.lintCommand(),
		a.serveCommand(),
	)
	return root
}

func (a *app) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return codeError(2, "load env file: %s", err)
		}
	}
	s, err := loadSettings(a.environ)
	if err != nil {
		return codeError(2, "%s", err)
	}
	if a.configDir != "" {
		s.ConfigDir = a.configDir
	}
	a.settings = s
	a.logger = newLogger(s.LogLevel, s.LogDev, a.errOut)
	return nil
}

func (a *app) definitions() (*config.Set, error) {
	set, err := config.LoadFS(os.DirFS(a.settings.ConfigDir))
	if err != nil {
		return nil, codeError(2, "load definitions: %s", err)
	}
	if set.Empty() {
		return nil, codeError(2, "no meta box definitions found in %s", a.settings.ConfigDir)
	}
	return set, nil
}

func (a *app) definition(id string) (config.Definition, error) {
	set, err := a.definitions()
	if err != nil {
		return config.Definition{}, err
	}
	def, ok := set.Definition(id)
	if !ok {
		return config.Definition{}, codeError(2, "unknown meta box %q (have %s)", id, strings.Join(set.IDs(), ", "))
	}
	return def, nil
}

// openStore returns the configured value store.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch a.settings.Store {
	case storeRedis:
		if a.settings.RedisURL == "" {
			return nil, codeError(2, "METABOX_REDIS_URL is required for the redis store")
		}
		s, err := store.OpenRedis(ctx, a.settings.RedisURL, store.WithRedisPrefix(a.settings.RedisPrefix))
		if err != nil {
			return nil, err
		}
		a.store = s
	case storePostgres:
		if a.settings.DatabaseURL == "" {
			return nil, codeError(2, "METABOX_DATABASE_URL is required for the postgres store")
		}
		var opts []store.SQLOption
		if a.settings.Table != "" {
			opts = append(opts, store.WithTable(a.settings.Table))
		}
		s, err := store.OpenPostgres(ctx, a.settings.DatabaseURL, opts...)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		a.store = s
	default:
		a.store = store.NewMemory()
	}
	a.logger.Debug("store ready", zap.String("store", a.settings.Store))
	return a.store, nil
}

// prepare builds the box from its definition with the shared options.
func (a *app) prepare(def config.Definition, extra ...metabox.Option) (*metabox.Box, error) {
	renderer, err := a.renderer()
	if err != nil {
		return nil, err
	}
	opts := append([]metabox.Option{metabox.WithLogger(a.logger), metabox.WithRenderer(renderer)}, extra...)
	box, err := def.Prepare(opts...)
	if err != nil {
		return nil, codeError(2, "prepare %s: %s", def.Box.ID, err)
	}
	return box, nil
}

// renderer builds the box renderer from the site settings.
func (a *app) renderer() (*render.Renderer, error) {
	renderer, err := render.New(
		render.WithLocale(a.settings.Locale),
		render.WithDateFormat(a.settings.DateFormat),
		render.WithTimeFormat(a.settings.TimeFormat),
	)
	if err != nil {
		return nil, codeError(2, "renderer: %s", err)
	}
	return renderer, nil
}

// readValues loads a flat key/value map from a JSON or YAML file.
func readValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codeError(2, "read values: %s", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, codeError(2, "decode values %s: %s", path, err)
	}
	return values, nil
}

func (a *app) writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// output returns the destination for a command's result and a close func.
func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "" {
		return a.out, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, codeError(2, "create output: %s", err)
	}
	return file, file.Close, nil
}
