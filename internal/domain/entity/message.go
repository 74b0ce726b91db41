package entity

import (
	"strings"

	"github.com/slack-go/slack"
)

// ComposedMessage is the output of a composer: an ordered block sequence plus
// a plain-text fallback used by notification previews. Blocks are appended in
// composition order and never reordered afterwards.
type ComposedMessage struct {
	Blocks   []slack.Block
	Fallback string
}

// NewComposedMessage creates a composed message from blocks and fallback text.
func NewComposedMessage(fallback string, blocks ...slack.Block) *ComposedMessage {
	return &ComposedMessage{
		Blocks:   blocks,
		Fallback: fallback,
	}
}

// Append adds blocks to the end of the message, preserving order.
func (m *ComposedMessage) Append(blocks ...slack.Block) {
	m.Blocks = append(m.Blocks, blocks...)
}

// Len returns the number of blocks in the message.
func (m *ComposedMessage) Len() int {
	return len(m.Blocks)
}

// NotificationStatus classifies a notification message.
type NotificationStatus string

const (
	StatusSuccess NotificationStatus = "success"
	StatusWarning NotificationStatus = "warning"
	StatusError   NotificationStatus = "error"
	StatusInfo    NotificationStatus = "info"
)

// statusEmojis maps each status to its display emoji.
var statusEmojis = map[NotificationStatus]string{
	StatusSuccess: "✅",
	StatusWarning: "⚠️",
	StatusError:   "❌",
	StatusInfo:    "ℹ️",
}

// ParseNotificationStatus resolves a caller-supplied status string,
// case-insensitively. Unrecognized values resolve to StatusInfo; an unknown
// status is a leniency case, not an error.
func ParseNotificationStatus(s string) NotificationStatus {
	status := NotificationStatus(strings.ToLower(s))
	if _, ok := statusEmojis[status]; !ok {
		return StatusInfo
	}
	return status
}

// Emoji returns the display emoji for the status.
func (s NotificationStatus) Emoji() string {
	if e, ok := statusEmojis[s]; ok {
		return e
	}
	return statusEmojis[StatusInfo]
}

// ButtonSpec describes one button in an interactive message, as decoded from
// the caller's JSON button array.
type ButtonSpec struct {
	Text     string `json:"text"`
	ActionID string `json:"action_id"`
	Value    string `json:"value,omitempty"`
	URL      string `json:"url,omitempty"`
	Style    string `json:"style,omitempty"`
}

// SelectOption is one entry of a select menu, as decoded from the caller's
// JSON options array.
type SelectOption struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}
