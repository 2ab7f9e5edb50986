package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration sourced from an optional .env file and the
// process environment. Environment variables win over the file.
type Config struct {
	Port          string `mapstructure:"port"`
	Env           string `mapstructure:"env"`
	DBDriver      string `mapstructure:"db_driver"`
	DBPath        string `mapstructure:"db_path"`
	DatabaseURL   string `mapstructure:"database_url"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	LogLevel      string `mapstructure:"log_level"`
}

var defaults = map[string]string{
	"port":           "8080",
	"env":            "dev",
	"db_driver":      DriverSQLite,
	"db_path":        "./dev.db",
	"database_url":   "",
	"migrations_dir": "migrations",
	"log_level":      "info",
}

// Load reads envFile when it exists, then the environment, and validates the result.
// A missing file is not an error; production injects real environment variables.
func Load(envFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the storage settings.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("config: DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: DB_DRIVER %q is not one of sqlite, postgres", c.DBDriver)
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: PORT is required")
	}
	return nil
}

// IsDev reports whether the service runs in the local development environment.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "development"
}
