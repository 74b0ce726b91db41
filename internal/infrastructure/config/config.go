package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Slack   SlackConfig   `mapstructure:"slack"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	// Transport selects how the server speaks MCP: "stdio" or "http".
	Transport string `mapstructure:"transport"`

	// Addr is the listen address for the http transport.
	Addr string `mapstructure:"addr"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig holds persistence storage settings for the sent-message
// audit trail.
type StorageConfig struct {
	Type   string       `mapstructure:"type"` // "memory" or "sqlite"
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"` // Database file path, use ":memory:" for in-memory
}

// SlackConfig holds Slack integration settings. Tokens are not configured
// here; they come from the credential store or the environment.
type SlackConfig struct {
	// DefaultChannel is used when a tool call omits the channel argument.
	DefaultChannel string `mapstructure:"default_channel"`

	// APIURL overrides the Slack API base URL, for testing against a mock.
	APIURL string `mapstructure:"api_url"`

	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envPrefix namespaces the environment overrides, e.g.
// SLACK_MCP_LOGGING_LEVEL overrides logging.level.
const envPrefix = "SLACK_MCP"

// Load reads configuration from the given file (optional) and the
// environment, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper(path)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			// A missing file is fine; everything has a default or an
			// environment override.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// WriteDefault writes a starter configuration file populated with the
// default values. An existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	settings := stringifyDurations(newViper("").AllSettings())
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// stringifyDurations rewrites duration values into their string form so
// the generated file reads "30s" rather than a nanosecond count.
func stringifyDurations(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case time.Duration:
			out[k] = val.String()
		case map[string]any:
			out[k] = stringifyDurations(val)
		default:
			out[k] = v
		}
	}
	return out
}

// newViper builds a viper instance with defaults and env binding applied.
func newViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.sqlite.path", "./data/slack-mcp-bridge.db")

	v.SetDefault("slack.default_channel", "")
	v.SetDefault("slack.api_url", "")
	v.SetDefault("slack.timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	return v
}
