// Package config provides functionality for managing configuration options
// for the client and server binaries using command-line flags, an optional
// config file and environment variables.
//
// Precedence, lowest to highest: defaults, config file, environment, explicitly set flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerOptions holds the configuration values for the reference backend.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"addr" yaml:"addr" env:"SERVER_ADDRESS" env-default:"localhost:8000"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn" env:"DATABASE_DSN"`

	// JWTSecret signs access tokens. It has no default and must be set.
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret" env:"JWT_SECRET"`

	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration `json:"token_ttl" yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// SkipSeed disables inserting the demo catalog into an empty database.
	SkipSeed bool `json:"skip_seed" yaml:"skip_seed" env:"SKIP_SEED"`

	// Config is the path to the config file.
	Config string `json:"-" yaml:"-"`
}

// ClientOptions holds the configuration values for the interactive client.
type ClientOptions struct {
	// BaseURL is the backend origin, e.g. http://localhost:8000.
	BaseURL string `json:"base_url" yaml:"base_url" env:"FITCOMPARE_API_BASE_URL,FITCOMPARE_API_URL" env-default:"http://localhost:8000"`

	// Prefix is the API path prefix appended to BaseURL.
	Prefix string `json:"prefix" yaml:"prefix" env:"FITCOMPARE_API_PREFIX" env-default:"/api"`

	// StoragePath is the durable client storage file.
	StoragePath string `json:"storage_path" yaml:"storage_path" env:"FITCOMPARE_STORAGE" env-default:"storage.json"`

	// Timeout bounds every backend request. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" env:"FITCOMPARE_TIMEOUT" env-default:"10s"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL" env-default:"warn"`

	// ShowVersion prints build metadata and exits.
	ShowVersion bool `json:"-" yaml:"-"`

	// Config is the path to the config file.
	Config string `json:"-" yaml:"-"`
}

// ParseServer parses args (usually os.Args[1:]) into ServerOptions.
func ParseServer(args []string) (*ServerOptions, error) {
	var (
		opts  ServerOptions
		flags ServerOptions
	)
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&flags.Addr, "a", "", "run on ip:port server")
	fs.StringVar(&flags.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&flags.LogLevel, "l", "", "log level")
	fs.BoolVar(&flags.SkipSeed, "skip-seed", false, "do not seed the demo catalog")
	fs.StringVar(&flags.Config, "config", "", "path to config file")
	fs.StringVar(&flags.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.Config = flags.Config
	if p := os.Getenv("CONFIG"); p != "" && opts.Config == "" {
		opts.Config = p
	}
	if err := load(opts.Config, &opts); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			opts.Addr = flags.Addr
		case "d":
			opts.DatabaseDSN = flags.DatabaseDSN
		case "l":
			opts.LogLevel = flags.LogLevel
		case "skip-seed":
			opts.SkipSeed = flags.SkipSeed
		}
	})

	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &opts, nil
}

// ParseClient parses args (usually os.Args[1:]) into ClientOptions.
func ParseClient(args []string) (*ClientOptions, error) {
	var (
		opts  ClientOptions
		flags ClientOptions
	)
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&flags.BaseURL, "url", "", "backend base URL")
	fs.StringVar(&flags.Prefix, "prefix", "", "API path prefix")
	fs.StringVar(&flags.StoragePath, "storage", "", "path to the local storage file")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "request timeout")
	fs.StringVar(&flags.LogLevel, "l", "", "log level")
	fs.BoolVar(&flags.ShowVersion, "version", false, "show build version and date")
	fs.StringVar(&flags.Config, "config", "", "path to config file")
	fs.StringVar(&flags.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.Config = flags.Config
	if p := os.Getenv("FITCOMPARE_CONFIG"); p != "" && opts.Config == "" {
		opts.Config = p
	}
	if err := load(opts.Config, &opts); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			opts.BaseURL = flags.BaseURL
		case "prefix":
			opts.Prefix = flags.Prefix
		case "storage":
			opts.StoragePath = flags.StoragePath
		case "timeout":
			opts.Timeout = flags.Timeout
		case "l":
			opts.LogLevel = flags.LogLevel
		}
	})
	opts.ShowVersion = flags.ShowVersion
	return &opts, nil
}

// load fills cfg from the config file at path (when it exists) and the environment.
func load(path string, cfg any) error {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return fmt.Errorf("error while reading config file: %w", err)
			}
			return nil
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("error while reading environment: %w", err)
	}
	return nil
}
