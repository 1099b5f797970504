package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// settings are read from the environment, optionally seeded from a .env
// file.
type settings struct {
	ConfigDir string `env:"METABOX_CONFIG_DIR" envDefault:"metaboxes"`

	Addr          string        `env:"METABOX_ADDR" envDefault:":8080"`
	BasePath      string        `env:"METABOX_BASE_PATH" envDefault:"/admin"`
	ShutdownGrace time.Duration `env:"METABOX_SHUTDOWN_GRACE" envDefault:"5s"`
	Secret        string        `env:"METABOX_SECRET"`
	NonceTTL      time.Duration `env:"METABOX_NONCE_TTL" envDefault:"24h"`
	TrustHTML     bool          `env:"METABOX_TRUST_HTML"`

	Store       string `env:"METABOX_STORE" envDefault:"memory"`
	RedisURL    string `env:"METABOX_REDIS_URL"`
	RedisPrefix string `env:"METABOX_REDIS_PREFIX"`
	DatabaseURL string `env:"METABOX_DATABASE_URL"`
	Table       string `env:"METABOX_TABLE"`

	Locale     string `env:"METABOX_LOCALE"`
	DateFormat string `env:"METABOX_DATE_FORMAT"`
	TimeFormat string `env:"METABOX_TIME_FORMAT"`

	LogLevel string `env:"LOG_LEVEL"`
	LogDev   bool   `env:"LOG_DEV"`
}

// loadSettings parses the process environment, or environ when it is not
// nil.
func loadSettings(environ map[string]string) (settings, error) {
	var s settings
	var err error
	if environ != nil {
		err = env.ParseWithOptions(&s, env.Options{Environment: environ})
	} else {
		err = env.Parse(&s)
	}
	if err != nil {
		return settings{}, fmt.Errorf("settings: %w", err)
	}
	switch s.Store {
	case storeMemory, storeRedis, storePostgres:
	default:
		return settings{}, fmt.Errorf("settings: unknown store %q", s.Store)
	}
	return s, nil
}
