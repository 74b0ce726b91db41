// Package tool defines the MCP tools the bridge exposes and their handlers.
//
// Handlers translate tool-call arguments into use case and Slack client
// invocations. Caller mistakes (missing arguments, malformed JSON) come back
// as tool results with IsError set, never as protocol errors, so the agent
// can read them and correct the call.
package tool

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/observability"
)

// SlackAPI is the Slack surface the tool handlers depend on. The
// infrastructure client implements it; tests substitute a fake.
type SlackAPI interface {
	AuthTest(ctx context.Context) (*slack.AuthTestResponse, error)

	ListChannels(ctx context.Context, limit int, cursor string, excludeArchived bool) ([]slack.Channel, string, error)
	GetChannelInfo(ctx context.Context, channelID string) (*slack.Channel, error)
	CreateChannel(ctx context.Context, name string, private bool) (*slack.Channel, error)
	ArchiveChannel(ctx context.Context, channelID string) error
	UnarchiveChannel(ctx context.Context, channelID string) error
	InviteToChannel(ctx context.Context, channelID string, userIDs []string) error
	SetChannelTopic(ctx context.Context, channelID, topic string) error
	SetChannelPurpose(ctx context.Context, channelID, purpose string) error

	ListUsers(ctx context.Context) ([]slack.User, error)
	GetUserInfo(ctx context.Context, userID string) (*slack.User, error)

	GetChannelHistory(ctx context.Context, channelID string, limit int, oldest, latest string) ([]slack.Message, error)
	SearchMessages(ctx context.Context, query string, count int) (*slack.SearchMessages, error)

	AddReaction(ctx context.Context, channelID, timestamp, emoji string) error
	RemoveReaction(ctx context.Context, channelID, timestamp, emoji string) error

	GetTeamInfo(ctx context.Context) (*slack.TeamInfo, error)
	UploadFile(ctx context.Context, channelID, filename, title, content, initialComment, threadTS string) (*slack.FileSummary, error)
}

// Sender delivers composed messages and keeps the audit trail.
type Sender interface {
	Send(ctx context.Context, channelID, threadTS, kind string, msg *entity.ComposedMessage) (*entity.MessageRecord, error)
	Update(ctx context.Context, channelID, timestamp, kind string, msg *entity.ComposedMessage) error
	Delete(ctx context.Context, channelID, timestamp string) error
	ListSent(ctx context.Context, channelID string, limit int) ([]*entity.MessageRecord, error)
}

// Registry holds the dependencies of the tool handlers and produces the tool
// set the MCP server registers.
type Registry struct {
	api            SlackAPI
	sender         Sender
	defaultChannel func() string
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewRegistry creates a tool registry. defaultChannel is consulted on every
// call so a config reload takes effect without restart; it may be nil.
// metrics may be nil, in which case instrumentation is skipped.
func NewRegistry(api SlackAPI, sender Sender, defaultChannel func() string, metrics *observability.Metrics, logger *slog.Logger) *Registry {
	if defaultChannel == nil {
		defaultChannel = func() string { return "" }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		api:            api,
		sender:         sender,
		defaultChannel: defaultChannel,
		metrics:        metrics,
		logger:         logger,
	}
}

// Tools returns all MCP tools this registry exposes, with instrumentation
// applied.
func (r *Registry) Tools() []mcpsrv.ServerTool {
	tools := []mcpsrv.ServerTool{
		// Workspace reads
		r.toolListChannels(),
		r.toolGetChannelInfo(),
		r.toolListUsers(),
		r.toolGetUserInfo(),
		r.toolGetChannelHistory(),
		r.toolSearchMessages(),
		r.toolGetTeamInfo(),

		// Channel administration
		r.toolCreateChannel(),
		r.toolArchiveChannel(),
		r.toolUnarchiveChannel(),
		r.toolInviteToChannel(),
		r.toolSetChannelTopic(),
		r.toolSetChannelPurpose(),

		// Messaging
		r.toolSendMessage(),
		r.toolUpdateMessage(),
		r.toolDeleteMessage(),
		r.toolUploadFile(),
		r.toolAddReaction(),
		r.toolRemoveReaction(),
		r.toolListSentMessages(),

		// Composers
		r.toolSendFormattedMessage(),
		r.toolSendNotification(),
		r.toolSendListMessage(),
		r.toolSendInteractiveMessage(),
		r.toolSendCodeSnippet(),
		r.toolSendFormMessage(),
		r.toolSendAnnouncement(),
	}

	for i := range tools {
		tools[i].Handler = r.instrument(tools[i].Tool.Name, tools[i].Handler)
	}
	return tools
}

// instrument wraps a handler with tool call metrics and debug logging.
func (r *Registry) instrument(name string, h mcpsrv.ToolHandlerFunc) mcpsrv.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		start := time.Now()
		if r.metrics != nil {
			r.metrics.ToolCallsActive.Add(ctx, 1)
			defer r.metrics.ToolCallsActive.Add(ctx, -1)
		}

		res, err := h(ctx, req)

		success := err == nil && (res == nil || !res.IsError)
		duration := time.Since(start)
		if r.metrics != nil {
			r.metrics.RecordToolCall(ctx, name, success, duration)
		}
		r.logger.DebugContext(ctx, "tool call completed",
			"tool", name, "success", success, "duration", duration)

		return res, err
	}
}

// channelArg resolves the channel_id argument, falling back to the
// configured default channel.
func (r *Registry) channelArg(req mcplib.CallToolRequest) (string, error) {
	if ch, ok := stringArg(req, "channel_id"); ok && ch != "" {
		return ch, nil
	}
	if def := r.defaultChannel(); def != "" {
		return def, nil
	}
	return "", errors.New("channel_id is required (no default channel configured)")
}
