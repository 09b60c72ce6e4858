// Package config loads blogd settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr        string        `env:"BLOG_HTTP_ADDR"        envDefault:":8080"`
	GinMode         string        `env:"BLOG_GIN_MODE"         envDefault:"release"`
	ShutdownTimeout time.Duration `env:"BLOG_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// DBDriver is sqlite3 or pgx.
	DBDriver string `env:"BLOG_DB_DRIVER" envDefault:"sqlite3"`
	// DBDSN for sqlite3 must keep _txlock=immediate: service transactions
	// read before they write, and a deferred transaction cannot upgrade its
	// lock while another connection writes.
	DBDSN        string `env:"BLOG_DB_DSN"            envDefault:"file:blog.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"`
	MaxOpenConns int    `env:"BLOG_DB_MAX_OPEN_CONNS" envDefault:"10"`

	LogLevel           string        `env:"BLOG_LOG_LEVEL"            envDefault:"info"`
	LogFormat          string        `env:"BLOG_LOG_FORMAT"           envDefault:"text"`
	LogQueries         bool          `env:"BLOG_LOG_QUERIES"          envDefault:"false"`
	SlowQueryThreshold time.Duration `env:"BLOG_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	ExcerptLength int `env:"BLOG_EXCERPT_LENGTH" envDefault:"120"`

	// OTelEndpoint enables OTLP/HTTP trace export when set, e.g. http://localhost:4318.
	OTelEndpoint string `env:"BLOG_OTEL_ENDPOINT"`
	ServiceName  string `env:"BLOG_SERVICE_NAME" envDefault:"blogd"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional dotenv files, then the environment. Variables
// already set in the environment win over dotenv values.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("config: unsupported BLOG_DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("config: BLOG_DB_DSN is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("config: BLOG_DB_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}
	if c.ExcerptLength <= 0 {
		return fmt.Errorf("config: BLOG_EXCERPT_LENGTH must be positive, got %d", c.ExcerptLength)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported BLOG_LOG_FORMAT %q", c.LogFormat)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: BLOG_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", c.ServiceName)), nil
}
