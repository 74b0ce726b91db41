// Package persistence selects and wires the storage backend for the
// sent-message audit trail.
package persistence

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/persistence/memory"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/persistence/sqlite"
)

// nopCloser satisfies io.Closer for backends with nothing to close.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewMessageRecordRepository builds the repository the config asks for.
// The returned closer must be closed on shutdown; for the memory backend it
// is a no-op.
func NewMessageRecordRepository(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (repository.MessageRecordRepository, io.Closer, error) {
	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.NewDB(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite init: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite migration: %w", err)
		}

		logger.Info("SQLite storage initialized", "path", cfg.SQLite.Path)
		return sqlite.NewMessageRecordRepository(db), db, nil

	case "memory", "":
		logger.Info("in-memory storage initialized")
		return memory.NewMessageRecordRepository(), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
