package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Transport != "stdio" {
		t.Errorf("transport = %q, want stdio", cfg.Server.Transport)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("storage type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Slack.Timeout != 30*time.Second {
		t.Errorf("slack timeout = %v", cfg.Slack.Timeout)
	}
}

func TestLoad_fromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  transport: http
  addr: ":9090"
storage:
  type: sqlite
  sqlite:
    path: /tmp/bridge.db
slack:
  default_channel: "#deploys"
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Transport != "http" || cfg.Server.Addr != ":9090" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.SQLite.Path != "/tmp/bridge.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Slack.DefaultChannel != "#deploys" {
		t.Errorf("default channel = %q", cfg.Slack.DefaultChannel)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	// File values that were not set keep their defaults.
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: warn\n")
	t.Setenv("SLACK_MCP_LOGGING_LEVEL", "debug")
	t.Setenv("SLACK_MCP_SLACK_DEFAULT_CHANNEL", "#ops")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env override lost: level = %q", cfg.Logging.Level)
	}
	if cfg.Slack.DefaultChannel != "#ops" {
		t.Errorf("env override lost: channel = %q", cfg.Slack.DefaultChannel)
	}
}

func TestLoad_missingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Transport != "stdio" {
		t.Errorf("transport = %q", cfg.Server.Transport)
	}
}

func TestLoad_invalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad transport", "server:\n  transport: carrier-pigeon\n", "invalid transport"},
		{"bad storage type", "storage:\n  type: oracle\n", "invalid storage type"},
		{"bad log level", "logging:\n  level: verbose\n", "invalid log level"},
		{"bad log format", "logging:\n  format: xml\n", "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Durations are written in their readable form, not as nanoseconds.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading scaffold: %v", err)
	}
	if !strings.Contains(string(data), "30s") {
		t.Errorf("scaffold does not render durations readably:\n%s", data)
	}

	// The scaffold round-trips through Load with the defaults intact.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading scaffold: %v", err)
	}
	if cfg.Server.Transport != "stdio" || cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("scaffold config = %+v", cfg.Server)
	}

	// An existing file is never overwritten.
	if err := WriteDefault(path); err == nil {
		t.Error("expected error on existing file")
	}
}

func TestMergeReloadable(t *testing.T) {
	current, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	next := *current
	next.Logging.Level = "debug"
	next.Slack.DefaultChannel = "#new"
	next.Server.Addr = ":9999"

	merged, applied, blocked := MergeReloadable(current, &next)

	wantApplied := []string{"logging.level", "slack.default_channel"}
	if !reflect.DeepEqual(applied, wantApplied) {
		t.Errorf("applied = %v, want %v", applied, wantApplied)
	}
	if !reflect.DeepEqual(blocked, []string{"server.addr"}) {
		t.Errorf("blocked = %v", blocked)
	}

	if merged.Logging.Level != "debug" || merged.Slack.DefaultChannel != "#new" {
		t.Errorf("reloadable keys not applied: %+v", merged)
	}
	// The static change must not leak into the merged config.
	if merged.Server.Addr != current.Server.Addr {
		t.Errorf("static key applied: addr = %q", merged.Server.Addr)
	}
}

func TestIsReloadable(t *testing.T) {
	if !IsReloadable("logging.level") {
		t.Error("logging.level should be reloadable")
	}
	if IsReloadable("storage.type") {
		t.Error("storage.type should not be reloadable")
	}
}
