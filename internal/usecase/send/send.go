// Package send delivers composed messages to Slack and maintains the audit
// trail that later update and delete operations rely on.
package send

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
)

// Transport is the outbound message surface the use case depends on.
// The Slack client implements it; tests substitute a fake.
type Transport interface {
	// PostMessage delivers blocks to a channel and returns the channel and
	// timestamp Slack assigned. A non-empty threadTS posts a thread reply.
	PostMessage(ctx context.Context, channelID, fallback string, blocks []slack.Block, threadTS string) (channel, timestamp string, err error)

	// UpdateMessage replaces the blocks of a previously delivered message.
	UpdateMessage(ctx context.Context, channelID, timestamp, fallback string, blocks []slack.Block) error

	// DeleteMessage removes a previously delivered message.
	DeleteMessage(ctx context.Context, channelID, timestamp string) error
}

// UseCase sends, updates, and deletes messages, recording every delivery.
type UseCase struct {
	transport Transport
	records   repository.MessageRecordRepository
}

// NewUseCase creates a new send use case.
func NewUseCase(transport Transport, records repository.MessageRecordRepository) *UseCase {
	return &UseCase{
		transport: transport,
		records:   records,
	}
}

// Send delivers a composed message and records the delivery. The kind names
// the composition that produced the message and ends up in the audit trail.
//
// When delivery succeeds but the record cannot be persisted, the record is
// returned together with the error so the caller can still report the
// channel/timestamp pair to the agent.
func (uc *UseCase) Send(ctx context.Context, channelID, threadTS, kind string, msg *entity.ComposedMessage) (*entity.MessageRecord, error) {
	if msg == nil || msg.Len() == 0 {
		return nil, domainerrors.NewValidationError("message has no blocks to send")
	}
	if channelID == "" {
		return nil, domainerrors.NewValidationError("channel is required")
	}

	channel, timestamp, err := uc.transport.PostMessage(ctx, channelID, msg.Fallback, msg.Blocks, threadTS)
	if err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	record := entity.NewMessageRecord(channel, timestamp, kind, msg.Fallback)
	record.ThreadTimestamp = threadTS

	if err := uc.records.Save(ctx, record); err != nil {
		return record, fmt.Errorf("message delivered but not recorded: %w", err)
	}

	return record, nil
}

// Update replaces the content of a previously delivered message. The audit
// record, when one exists, is refreshed to carry the new fallback; messages
// not sent through this bridge are updated remotely but leave no record.
func (uc *UseCase) Update(ctx context.Context, channelID, timestamp, kind string, msg *entity.ComposedMessage) error {
	if msg == nil || msg.Len() == 0 {
		return domainerrors.NewValidationError("message has no blocks to send")
	}
	if channelID == "" || timestamp == "" {
		return domainerrors.NewValidationError("channel and timestamp are required")
	}

	if err := uc.transport.UpdateMessage(ctx, channelID, timestamp, msg.Fallback, msg.Blocks); err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	record, err := uc.records.FindByChannelAndTimestamp(ctx, channelID, timestamp)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("message updated but record lookup failed: %w", err)
	}

	record.Kind = kind
	record.Fallback = msg.Fallback
	if err := uc.records.Update(ctx, record); err != nil {
		return fmt.Errorf("message updated but not recorded: %w", err)
	}

	return nil
}

// Delete removes a previously delivered message and its audit record.
func (uc *UseCase) Delete(ctx context.Context, channelID, timestamp string) error {
	if channelID == "" || timestamp == "" {
		return domainerrors.NewValidationError("channel and timestamp are required")
	}

	if err := uc.transport.DeleteMessage(ctx, channelID, timestamp); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	record, err := uc.records.FindByChannelAndTimestamp(ctx, channelID, timestamp)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("message deleted but record lookup failed: %w", err)
	}

	if err := uc.records.Delete(ctx, record.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("message deleted but record removal failed: %w", err)
	}

	return nil
}

// ListSent returns the audit trail for a channel, newest first. An empty
// channel matches all channels; a limit of 0 means no limit.
func (uc *UseCase) ListSent(ctx context.Context, channelID string, limit int) ([]*entity.MessageRecord, error) {
	records, err := uc.records.ListByChannel(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", err)
	}
	return records, nil
}
