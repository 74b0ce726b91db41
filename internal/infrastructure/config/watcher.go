package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the event bursts editors and atomic renames emit
// into a single reload.
const debounceDelay = 200 * time.Millisecond

// Watch re-reads the config file whenever it changes and hands the merged
// result to apply. Only whitelisted keys are hot-applied; changes to static
// keys are logged with the reason a restart is needed. A file that fails to
// parse or validate keeps the previous configuration. Watch blocks until the
// context is cancelled.
func Watch(ctx context.Context, path string, initial *Config, logger *slog.Logger, apply func(*Config)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory, not the file: atomic replace swaps the inode
	// and a file watch would go stale after the first reload.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	current := initial
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounceDelay)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)

		case <-pending:
			pending = nil

			next, err := Load(path)
			if err != nil {
				logger.Warn("config reload failed, keeping previous configuration",
					"path", path, "error", err)
				continue
			}

			merged, applied, blocked := MergeReloadable(current, next)
			for _, key := range blocked {
				logger.Warn("config change requires restart",
					"key", key, "reason", RestartReason(key))
			}
			if len(applied) == 0 {
				continue
			}

			logger.Info("configuration reloaded", "path", path, "keys", applied)
			current = merged
			apply(merged)
		}
	}
}

// MergeReloadable copies the reloadable keys of next onto a clone of current.
// It returns the merged config, the keys that were applied because they
// changed, and the static keys whose change was ignored.
func MergeReloadable(current, next *Config) (*Config, []string, []string) {
	merged := *current
	var applied, blocked []string

	record := func(key string, changed bool, set func()) {
		if !changed {
			return
		}
		if !IsReloadable(key) {
			blocked = append(blocked, key)
			return
		}
		set()
		applied = append(applied, key)
	}

	record("logging.level", current.Logging.Level != next.Logging.Level,
		func() { merged.Logging.Level = next.Logging.Level })
	record("logging.format", current.Logging.Format != next.Logging.Format,
		func() { merged.Logging.Format = next.Logging.Format })
	record("slack.default_channel", current.Slack.DefaultChannel != next.Slack.DefaultChannel,
		func() { merged.Slack.DefaultChannel = next.Slack.DefaultChannel })
	record("slack.timeout", current.Slack.Timeout != next.Slack.Timeout,
		func() { merged.Slack.Timeout = next.Slack.Timeout })

	record("server.transport", current.Server.Transport != next.Server.Transport, nil)
	record("server.addr", current.Server.Addr != next.Server.Addr, nil)
	record("storage.type", current.Storage.Type != next.Storage.Type, nil)
	record("storage.sqlite.path", current.Storage.SQLite.Path != next.Storage.SQLite.Path, nil)

	// Anything else that differs is a static change too; flag it generically.
	if len(applied) == 0 && len(blocked) == 0 && !reflect.DeepEqual(current, next) {
		blocked = append(blocked, "server")
	}

	return &merged, applied, blocked
}
