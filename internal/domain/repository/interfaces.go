package repository

import (
	"context"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
)

// MessageRecordRepository defines the contract for the sent-message audit
// trail. Implementations exist for in-memory and SQLite storage.
type MessageRecordRepository interface {
	// Save persists a new message record.
	// Returns ErrAlreadyExists if a record with the same ID already exists.
	Save(ctx context.Context, record *entity.MessageRecord) error

	// FindByID retrieves a record by its internal identifier.
	// Returns ErrNotFound if no such record exists.
	FindByID(ctx context.Context, id string) (*entity.MessageRecord, error)

	// FindByChannelAndTimestamp retrieves the record for a delivered message.
	// Returns ErrNotFound if the message was not sent by this bridge.
	FindByChannelAndTimestamp(ctx context.Context, channelID, timestamp string) (*entity.MessageRecord, error)

	// Update overwrites an existing record.
	// Returns ErrNotFound if the record doesn't exist.
	Update(ctx context.Context, record *entity.MessageRecord) error

	// ListByChannel returns records for a channel, newest first, up to limit.
	// A limit of 0 means no limit. An empty channelID matches all channels.
	ListByChannel(ctx context.Context, channelID string, limit int) ([]*entity.MessageRecord, error)

	// Delete removes a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Delete(ctx context.Context, id string) error
}
