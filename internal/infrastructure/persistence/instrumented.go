package persistence

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
)

// repositoryMetrics is the slice of the metrics surface the decorator needs.
type repositoryMetrics interface {
	RecordRepositoryOperation(ctx context.Context, operation, entity string, duration time.Duration, success bool)
}

const recordEntity = "message_record"

// InstrumentedRepository wraps a repository and records a count and latency
// for every operation.
type InstrumentedRepository struct {
	next    repository.MessageRecordRepository
	metrics repositoryMetrics
}

// NewInstrumentedRepository decorates next with operation metrics.
func NewInstrumentedRepository(next repository.MessageRecordRepository, metrics repositoryMetrics) *InstrumentedRepository {
	return &InstrumentedRepository{next: next, metrics: metrics}
}

func (r *InstrumentedRepository) Save(ctx context.Context, record *entity.MessageRecord) error {
	start := time.Now()
	err := r.next.Save(ctx, record)
	r.metrics.RecordRepositoryOperation(ctx, "save", recordEntity, time.Since(start), err == nil)
	return err
}

func (r *InstrumentedRepository) FindByID(ctx context.Context, id string) (*entity.MessageRecord, error) {
	start := time.Now()
	record, err := r.next.FindByID(ctx, id)
	r.metrics.RecordRepositoryOperation(ctx, "find_by_id", recordEntity, time.Since(start), err == nil)
	return record, err
}

func (r *InstrumentedRepository) FindByChannelAndTimestamp(ctx context.Context, channelID, timestamp string) (*entity.MessageRecord, error) {
	start := time.Now()
	record, err := r.next.FindByChannelAndTimestamp(ctx, channelID, timestamp)
	r.metrics.RecordRepositoryOperation(ctx, "find_by_channel_ts", recordEntity, time.Since(start), err == nil)
	return record, err
}

func (r *InstrumentedRepository) Update(ctx context.Context, record *entity.MessageRecord) error {
	start := time.Now()
	err := r.next.Update(ctx, record)
	r.metrics.RecordRepositoryOperation(ctx, "update", recordEntity, time.Since(start), err == nil)
	return err
}

func (r *InstrumentedRepository) ListByChannel(ctx context.Context, channelID string, limit int) ([]*entity.MessageRecord, error) {
	start := time.Now()
	records, err := r.next.ListByChannel(ctx, channelID, limit)
	r.metrics.RecordRepositoryOperation(ctx, "list_by_channel", recordEntity, time.Since(start), err == nil)
	return records, err
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.metrics.RecordRepositoryOperation(ctx, "delete", recordEntity, time.Since(start), err == nil)
	return err
}
