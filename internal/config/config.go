// Package config loads ghpd settings from an optional YAML file, a .env file
// and GHPD_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/weibeld/github-projects-dashboard/internal/config/colors"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	envPrefix       = "GHPD"
	envConfigPath   = "GHPD_CONFIG"
	defaultEndpoint = "https://api.github.com/graphql"
)

var (
	ErrInvalidDriver  = errors.New("store driver must be one of sqlite, postgres, memory")
	ErrMissingDSN     = errors.New("store.dsn is required for the postgres driver")
	ErrMissingOwner   = errors.New("owner is required (set GHPD_OWNER or owner in config.yaml)")
	ErrInvalidLevel   = errors.New("log level must be one of debug, info, warn, error")
	ErrInvalidTimeout = errors.New("github.timeout must be positive")
)

// Config represents the application configuration
type Config struct {
	GitHub    GitHubConfig       `yaml:"github" mapstructure:"github"`
	Owner     string             `yaml:"owner" mapstructure:"owner"`
	Store     StoreConfig        `yaml:"store" mapstructure:"store"`
	Mock      MockConfig         `yaml:"mock" mapstructure:"mock"`
	Server    ServerConfig       `yaml:"server" mapstructure:"server"`
	Log       LogConfig          `yaml:"log" mapstructure:"log"`
	Telemetry TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
	Theme     colors.ColorScheme `yaml:"theme" mapstructure:"theme"`
}

type GitHubConfig struct {
	// Token is never written back by Save.
	Token    string        `yaml:"-" mapstructure:"token"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path of the SQLite database; empty means ~/.ghpd/ghpd.db
	Path string `yaml:"path,omitempty" mapstructure:"path"`
	DSN  string `yaml:"dsn,omitempty" mapstructure:"dsn"`
}

type MockConfig struct {
	// Fixture is a YAML fixture path; "default" selects the embedded one
	Fixture string `yaml:"fixture,omitempty" mapstructure:"fixture"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	c := &Config{
		GitHub: GitHubConfig{
			Endpoint: defaultEndpoint,
			Timeout:  30 * time.Second,
		},
		Store:  StoreConfig{Driver: DriverSQLite},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Log:    LogConfig{Level: "info"},
		Theme:  colors.ColorScheme{Preset: "default"},
	}
	c.Theme.ApplyDefaults()
	return c
}

// Load reads .env, the config file and the environment.
// A missing config file is not an error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	// Unprefixed fallbacks
	_ = v.BindEnv("github.token", "GHPD_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("telemetry.enabled", "GHPD_TELEMETRY_ENABLED", "GHPD_OTEL_ENABLED")

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("github.token", "")
	v.SetDefault("github.endpoint", d.GitHub.Endpoint)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("owner", "")
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("mock.fixture", "")
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("telemetry.enabled", false)

	// Empty theme defaults keep GHPD_THEME_* visible to AutomaticEnv;
	// the preset fills the rest afterwards.
	for _, key := range []string{
		"preset", "accent", "column_border", "card_border",
		"title", "subtle", "normal", "closed", "success", "error",
	} {
		v.SetDefault("theme."+key, "")
	}
}

// MockMode reports whether GitHub and the store are replaced by a fixture
func (c *Config) MockMode() bool {
	return c.Mock.Fixture != ""
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDriver, c.Store.Driver)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLevel, c.Log.Level)
	}

	if c.GitHub.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if !c.MockMode() && c.Owner == "" {
		return ErrMissingOwner
	}
	return nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// Path returns the path to the config file
func Path() (string, error) {
	if p := os.Getenv(envConfigPath); p != "" {
		return p, nil
	}

	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "ghpd", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "ghpd", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	d := Default()
	if c.GitHub.Endpoint == "" {
		c.GitHub.Endpoint = d.GitHub.Endpoint
	}
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	c.Theme.ApplyDefaults()
}
