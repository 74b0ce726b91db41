package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
)

// MessageRecordRepository provides the SQLite implementation of
// repository.MessageRecordRepository.
type MessageRecordRepository struct {
	db *DB
}

// NewMessageRecordRepository creates a new SQLite-backed message record repository.
func NewMessageRecordRepository(db *DB) *MessageRecordRepository {
	return &MessageRecordRepository{db: db}
}

const recordColumns = "id, channel_id, ts, kind, fallback, thread_ts, created_at"

// Save persists a new message record.
// Returns ErrAlreadyExists if a record with the same ID or channel/timestamp
// pair already exists.
func (r *MessageRecordRepository) Save(ctx context.Context, record *entity.MessageRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID, record.ChannelID, record.Timestamp, record.Kind,
		record.Fallback, nullString(record.ThreadTimestamp),
		timeToString(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert message record: %w", err)
	}

	return nil
}

// FindByID retrieves a record by its internal identifier.
func (r *MessageRecordRepository) FindByID(ctx context.Context, id string) (*entity.MessageRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM message_records WHERE id = ?
	`, id)

	return scanRecord(row)
}

// FindByChannelAndTimestamp retrieves the record for a delivered message.
func (r *MessageRecordRepository) FindByChannelAndTimestamp(ctx context.Context, channelID, timestamp string) (*entity.MessageRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM message_records WHERE channel_id = ? AND ts = ?
	`, channelID, timestamp)

	return scanRecord(row)
}

// Update overwrites an existing record.
func (r *MessageRecordRepository) Update(ctx context.Context, record *entity.MessageRecord) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE message_records SET
			channel_id = ?, ts = ?, kind = ?, fallback = ?, thread_ts = ?, created_at = ?
		WHERE id = ?
	`,
		record.ChannelID, record.Timestamp, record.Kind, record.Fallback,
		nullString(record.ThreadTimestamp), timeToString(record.CreatedAt),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update message record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByChannel returns records for a channel, newest first, up to limit.
// A limit of 0 means no limit. An empty channelID matches all channels.
func (r *MessageRecordRepository) ListByChannel(ctx context.Context, channelID string, limit int) ([]*entity.MessageRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM message_records`
	var args []any

	if channelID != "" {
		query += " WHERE channel_id = ?"
		args = append(args, channelID)
	}
	query += " ORDER BY created_at DESC, ts DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query message records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete removes a record by ID.
func (r *MessageRecordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM message_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanRecord scans a single row into a MessageRecord entity.
func scanRecord(row *sql.Row) (*entity.MessageRecord, error) {
	var (
		record    entity.MessageRecord
		threadTS  sql.NullString
		createdAt string
	)

	err := row.Scan(
		&record.ID, &record.ChannelID, &record.Timestamp, &record.Kind,
		&record.Fallback, &threadTS, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message record: %w", err)
	}

	record.ThreadTimestamp = stringFromNull(threadTS)
	record.CreatedAt, _ = parseTime(createdAt)

	return &record, nil
}

// scanRecords scans multiple rows into MessageRecord entities.
func scanRecords(rows *sql.Rows) ([]*entity.MessageRecord, error) {
	records := []*entity.MessageRecord{}

	for rows.Next() {
		var (
			record    entity.MessageRecord
			threadTS  sql.NullString
			createdAt string
		)

		err := rows.Scan(
			&record.ID, &record.ChannelID, &record.Timestamp, &record.Kind,
			&record.Fallback, &threadTS, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message record row: %w", err)
		}

		record.ThreadTimestamp = stringFromNull(threadTS)
		record.CreatedAt, _ = parseTime(createdAt)

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
