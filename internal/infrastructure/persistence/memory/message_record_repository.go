// Package memory provides in-memory repository implementations, used as the
// default storage backend and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
)

// MessageRecordRepository provides an in-memory implementation of
// repository.MessageRecordRepository. Thread-safe for concurrent access.
type MessageRecordRepository struct {
	mu        sync.RWMutex
	records   map[string]*entity.MessageRecord // id -> record
	byMessage map[[2]string]string             // channel+ts -> record ID
}

// NewMessageRecordRepository creates a new in-memory message record repository.
func NewMessageRecordRepository() *MessageRecordRepository {
	return &MessageRecordRepository{
		records:   make(map[string]*entity.MessageRecord),
		byMessage: make(map[[2]string]string),
	}
}

func messageKey(channelID, timestamp string) [2]string {
	return [2]string{channelID, timestamp}
}

// Save persists a new message record.
func (r *MessageRecordRepository) Save(ctx context.Context, record *entity.MessageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return repository.ErrAlreadyExists
	}
	key := messageKey(record.ChannelID, record.Timestamp)
	if _, exists := r.byMessage[key]; exists {
		return repository.ErrAlreadyExists
	}

	// Store a copy to prevent external mutations
	recordCopy := *record
	r.records[record.ID] = &recordCopy
	r.byMessage[key] = record.ID

	return nil
}

// FindByID retrieves a record by its internal identifier.
func (r *MessageRecordRepository) FindByID(ctx context.Context, id string) (*entity.MessageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

// FindByChannelAndTimestamp retrieves the record for a delivered message.
func (r *MessageRecordRepository) FindByChannelAndTimestamp(ctx context.Context, channelID, timestamp string) (*entity.MessageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byMessage[messageKey(channelID, timestamp)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	record, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

// Update overwrites an existing record.
func (r *MessageRecordRepository) Update(ctx context.Context, record *entity.MessageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.records[record.ID]
	if !exists {
		return repository.ErrNotFound
	}

	// Refresh the channel/timestamp index if the message moved
	oldKey := messageKey(existing.ChannelID, existing.Timestamp)
	newKey := messageKey(record.ChannelID, record.Timestamp)
	if oldKey != newKey {
		delete(r.byMessage, oldKey)
		r.byMessage[newKey] = record.ID
	}

	recordCopy := *record
	r.records[record.ID] = &recordCopy

	return nil
}

// ListByChannel returns records for a channel, newest first, up to limit.
// A limit of 0 means no limit. An empty channelID matches all channels.
func (r *MessageRecordRepository) ListByChannel(ctx context.Context, channelID string, limit int) ([]*entity.MessageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*entity.MessageRecord, 0, len(r.records))
	for _, record := range r.records {
		if channelID == "" || record.ChannelID == channelID {
			recordCopy := *record
			matched = append(matched, &recordCopy)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Timestamp > matched[j].Timestamp
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Delete removes a record by ID.
func (r *MessageRecordRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return repository.ErrNotFound
	}

	delete(r.byMessage, messageKey(record.ChannelID, record.Timestamp))
	delete(r.records, id)

	return nil
}
