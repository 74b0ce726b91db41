package entity

import (
	"time"

	"github.com/google/uuid"
)

// MessageRecord is the audit entry kept for every message the bridge sends.
// It lets the agent update or delete a message later by recalling the
// channel/timestamp pair Slack assigned on delivery.
type MessageRecord struct {
	// ID is the internal record identifier.
	ID string

	// ChannelID is the channel the message was posted to.
	ChannelID string

	// Timestamp is the Slack message timestamp ("ts"), which together with
	// ChannelID identifies the message remotely.
	Timestamp string

	// Kind names the composition that produced the message ("notification",
	// "list", "raw", ...).
	Kind string

	// Fallback is the plain-text fallback that was sent with the message.
	Fallback string

	// ThreadTimestamp is set when the message was a thread reply.
	ThreadTimestamp string

	// CreatedAt is the local time the record was written.
	CreatedAt time.Time
}

// NewMessageRecord creates a record for a delivered message.
func NewMessageRecord(channelID, timestamp, kind, fallback string) *MessageRecord {
	return &MessageRecord{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Timestamp: timestamp,
		Kind:      kind,
		Fallback:  fallback,
		CreatedAt: time.Now(),
	}
}
