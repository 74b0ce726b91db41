package config

import (
	"fmt"
	"strings"
	"time"
)

// reloadableKeys defines the whitelist of configuration keys that can be
// hot-reloaded while the server is running.
var reloadableKeys = map[string]bool{
	"logging.level":         true,
	"logging.format":        true,
	"slack.default_channel": true,
	"slack.timeout":         true,
}

// staticKeys defines configuration keys that require application restart.
var staticKeys = map[string]string{
	"server.transport":    "MCP transport restart required",
	"server.addr":         "HTTP listener restart required",
	"storage.type":        "Storage backend initialization required",
	"storage.sqlite.path": "Database connection recreation required",
}

// IsReloadable returns true if the given config key can be hot-reloaded.
func IsReloadable(key string) bool {
	return reloadableKeys[key]
}

// RestartReason returns why a static config key requires a restart.
func RestartReason(key string) string {
	if reason, ok := staticKeys[key]; ok {
		return reason
	}
	return "unknown configuration requires restart"
}

// ValidateLogLevel checks if the log level is valid.
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
	return nil
}

// ValidateLogFormat checks if the log format is valid.
func ValidateLogFormat(format string) error {
	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[strings.ToLower(format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}
	return nil
}

// ValidateTransport checks if the MCP transport is valid.
func ValidateTransport(transport string) error {
	validTransports := map[string]bool{
		"stdio": true,
		"http":  true,
	}
	if !validTransports[strings.ToLower(transport)] {
		return fmt.Errorf("invalid transport: %s (must be stdio or http)", transport)
	}
	return nil
}

// ValidateStorageType checks if the storage type is valid.
func ValidateStorageType(storageType string) error {
	validTypes := map[string]bool{
		"memory": true,
		"sqlite": true,
	}
	if !validTypes[strings.ToLower(storageType)] {
		return fmt.Errorf("invalid storage type: %s (must be memory or sqlite)", storageType)
	}
	return nil
}

// ValidateNonEmpty checks if a string is non-empty.
func ValidateNonEmpty(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateDuration checks if a duration is greater than zero.
func ValidateDuration(duration time.Duration, fieldName string) error {
	if duration <= 0 {
		return fmt.Errorf("%s must be greater than 0", fieldName)
	}
	return nil
}

// Validate performs comprehensive validation on the configuration.
// Returns an error listing every validation failure.
func (c *Config) Validate() error {
	var errs []string

	if err := ValidateTransport(c.Server.Transport); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.ToLower(c.Server.Transport) == "http" {
		if err := ValidateNonEmpty(c.Server.Addr, "server.addr"); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := ValidateDuration(c.Server.ReadTimeout, "server.read_timeout"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := ValidateDuration(c.Server.WriteTimeout, "server.write_timeout"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := ValidateDuration(c.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		errs = append(errs, err.Error())
	}

	if err := ValidateStorageType(c.Storage.Type); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.ToLower(c.Storage.Type) == "sqlite" {
		if err := ValidateNonEmpty(c.Storage.SQLite.Path, "storage.sqlite.path"); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if err := ValidateDuration(c.Slack.Timeout, "slack.timeout"); err != nil {
		errs = append(errs, err.Error())
	}

	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if err := ValidateLogFormat(c.Logging.Format); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
