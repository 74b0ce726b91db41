package tool

// In this file: message delivery tools and the sent-message audit trail.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/blockkit"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
)

// sendReceipt is the JSON payload returned by every tool that delivers a
// message. The channel/ts pair identifies the message for later
// update_message and delete_message calls.
type sendReceipt struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"ts"`
	Kind      string `json:"kind"`
	ThreadTS  string `json:"thread_ts,omitempty"`
}

// deliver sends a composed message to the channel named in the request and
// returns the delivery receipt. A compose error is reported to the agent as
// a tool error; it is the agent's input that was wrong.
func (r *Registry) deliver(ctx context.Context, req mcplib.CallToolRequest, kind string, msg *entity.ComposedMessage, composeErr error) (*mcplib.CallToolResult, error) {
	if r.metrics != nil {
		r.metrics.RecordMessageComposed(ctx, kind, composeErr == nil)
	}
	if composeErr != nil {
		return resultErr(fmt.Errorf("%s: %w", kind, composeErr)), nil
	}

	channelID, err := r.channelArg(req)
	if err != nil {
		return resultErr(fmt.Errorf("%s: %w", kind, err)), nil
	}
	threadTS := optionalString(req, "thread_ts")

	start := time.Now()
	record, err := r.sender.Send(ctx, channelID, threadTS, kind, msg)
	if r.metrics != nil {
		r.metrics.RecordMessageSent(ctx, kind, record != nil, time.Since(start))
	}
	if err != nil {
		if record == nil {
			return resultErr(fmt.Errorf("%s: %w", kind, err)), nil
		}
		// Delivered but not recorded; the agent still gets its receipt.
		r.logger.WarnContext(ctx, "message delivered but audit record failed",
			"kind", kind, "channel", record.ChannelID, "error", err)
	}

	result, err := resultJSON(sendReceipt{
		Channel:   record.ChannelID,
		Timestamp: record.Timestamp,
		Kind:      record.Kind,
		ThreadTS:  record.ThreadTimestamp,
	})
	if err != nil {
		return resultErr(fmt.Errorf("%s: serialise: %w", kind, err)), nil
	}
	return result, nil
}

func (r *Registry) toolSendMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_message",
		mcplib.WithDescription("Send a plain text message to a channel. Supports Slack mrkdwn formatting."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("text",
			mcplib.Description("The message text (mrkdwn). Used as the fallback when blocks are given."),
			mcplib.Required(),
		),
		mcplib.WithString("blocks",
			mcplib.Description("Optional Block Kit JSON array to send instead of a plain text section."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendMessage}
}

func (r *Registry) handleSendMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	text, ok := stringArg(req, "text")
	if !ok || text == "" {
		return resultErr(errors.New("send_message: text is required")), nil
	}

	blocks, err := rawBlocks(req, text)
	if err != nil {
		return resultErr(fmt.Errorf("send_message: %w", err)), nil
	}

	msg := entity.NewComposedMessage(text, blocks...)
	return r.deliver(ctx, req, "raw", msg, nil)
}

// rawBlocks decodes the optional blocks argument, defaulting to a single
// mrkdwn section carrying the text.
func rawBlocks(req mcplib.CallToolRequest, text string) ([]slack.Block, error) {
	raw := optionalString(req, "blocks")
	if raw == "" {
		return []slack.Block{blockkit.Section(text)}, nil
	}
	var decoded slack.Blocks
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid blocks JSON: %v", err)
	}
	return decoded.BlockSet, nil
}

func (r *Registry) toolUpdateMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("update_message",
		mcplib.WithDescription("Replace the text of a previously sent message, identified by its channel and timestamp."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID the message was posted to."),
			mcplib.Required(),
		),
		mcplib.WithString("ts",
			mcplib.Description("Timestamp of the message to update."),
			mcplib.Required(),
		),
		mcplib.WithString("text",
			mcplib.Description("The replacement text (mrkdwn). Used as the fallback when blocks are given."),
			mcplib.Required(),
		),
		mcplib.WithString("blocks",
			mcplib.Description("Optional Block Kit JSON array replacing the message content."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleUpdateMessage}
}

func (r *Registry) handleUpdateMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("update_message: channel_id is required")), nil
	}
	ts, ok := stringArg(req, "ts")
	if !ok || ts == "" {
		return resultErr(errors.New("update_message: ts is required")), nil
	}
	text, ok := stringArg(req, "text")
	if !ok || text == "" {
		return resultErr(errors.New("update_message: text is required")), nil
	}

	blocks, err := rawBlocks(req, text)
	if err != nil {
		return resultErr(fmt.Errorf("update_message: %w", err)), nil
	}

	msg := entity.NewComposedMessage(text, blocks...)
	if err := r.sender.Update(ctx, channelID, ts, "raw", msg); err != nil {
		return resultErr(fmt.Errorf("update_message: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Message %s in %s updated.", ts, channelID)), nil
}

func (r *Registry) toolDeleteMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("delete_message",
		mcplib.WithDescription("Delete a previously sent message, identified by its channel and timestamp."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID the message was posted to."),
			mcplib.Required(),
		),
		mcplib.WithString("ts",
			mcplib.Description("Timestamp of the message to delete."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleDeleteMessage}
}

func (r *Registry) handleDeleteMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("delete_message: channel_id is required")), nil
	}
	ts, ok := stringArg(req, "ts")
	if !ok || ts == "" {
		return resultErr(errors.New("delete_message: ts is required")), nil
	}

	if err := r.sender.Delete(ctx, channelID, ts); err != nil {
		return resultErr(fmt.Errorf("delete_message: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Message %s in %s deleted.", ts, channelID)), nil
}

func (r *Registry) toolUploadFile() mcpsrv.ServerTool {
	tool := mcplib.NewTool("upload_file",
		mcplib.WithDescription("Upload text content as a file to a channel."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("filename",
			mcplib.Description("Name for the uploaded file (e.g. \"report.txt\")."),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("The file content."),
			mcplib.Required(),
		),
		mcplib.WithString("title",
			mcplib.Description("Optional title shown in Slack."),
		),
		mcplib.WithString("initial_comment",
			mcplib.Description("Optional message posted alongside the file."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to attach the file to as a thread reply."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleUploadFile}
}

func (r *Registry) handleUploadFile(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	filename, ok := stringArg(req, "filename")
	if !ok || filename == "" {
		return resultErr(errors.New("upload_file: filename is required")), nil
	}
	content, ok := stringArg(req, "content")
	if !ok || content == "" {
		return resultErr(errors.New("upload_file: content is required")), nil
	}
	channelID, err := r.channelArg(req)
	if err != nil {
		return resultErr(fmt.Errorf("upload_file: %w", err)), nil
	}

	summary, err := r.api.UploadFile(ctx, channelID, filename,
		optionalString(req, "title"), content,
		optionalString(req, "initial_comment"), optionalString(req, "thread_ts"))
	if err != nil {
		return resultErr(fmt.Errorf("upload_file: %w", err)), nil
	}

	result, err := resultJSON(struct {
		ID    string `json:"id"`
		Title string `json:"title,omitempty"`
	}{summary.ID, summary.Title})
	if err != nil {
		return resultErr(fmt.Errorf("upload_file: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolAddReaction() mcpsrv.ServerTool {
	tool := mcplib.NewTool("add_reaction",
		mcplib.WithDescription("Add an emoji reaction to a message."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID the message was posted to."),
			mcplib.Required(),
		),
		mcplib.WithString("ts",
			mcplib.Description("Timestamp of the message to react to."),
			mcplib.Required(),
		),
		mcplib.WithString("emoji",
			mcplib.Description("Emoji name, with or without colons (e.g. \"thumbsup\")."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleAddReaction}
}

func (r *Registry) handleAddReaction(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ts, emoji, err := reactionArgs(req, "add_reaction")
	if err != nil {
		return resultErr(err), nil
	}

	if err := r.api.AddReaction(ctx, channelID, ts, emoji); err != nil {
		return resultErr(fmt.Errorf("add_reaction: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Reacted to %s with :%s:.", ts, emoji)), nil
}

func (r *Registry) toolRemoveReaction() mcpsrv.ServerTool {
	tool := mcplib.NewTool("remove_reaction",
		mcplib.WithDescription("Remove an emoji reaction from a message."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID the message was posted to."),
			mcplib.Required(),
		),
		mcplib.WithString("ts",
			mcplib.Description("Timestamp of the message."),
			mcplib.Required(),
		),
		mcplib.WithString("emoji",
			mcplib.Description("Emoji name, with or without colons."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleRemoveReaction}
}

func (r *Registry) handleRemoveReaction(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ts, emoji, err := reactionArgs(req, "remove_reaction")
	if err != nil {
		return resultErr(err), nil
	}

	if err := r.api.RemoveReaction(ctx, channelID, ts, emoji); err != nil {
		return resultErr(fmt.Errorf("remove_reaction: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Removed :%s: from %s.", emoji, ts)), nil
}

// reactionArgs extracts and normalizes the shared reaction tool arguments.
func reactionArgs(req mcplib.CallToolRequest, toolName string) (channelID, ts, emoji string, err error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return "", "", "", fmt.Errorf("%s: channel_id is required", toolName)
	}
	ts, ok = stringArg(req, "ts")
	if !ok || ts == "" {
		return "", "", "", fmt.Errorf("%s: ts is required", toolName)
	}
	emoji, ok = stringArg(req, "emoji")
	if !ok || emoji == "" {
		return "", "", "", fmt.Errorf("%s: emoji is required", toolName)
	}
	emoji = strings.Trim(emoji, ":")
	return channelID, ts, emoji, nil
}

func (r *Registry) toolListSentMessages() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_sent_messages",
		mcplib.WithDescription("List the audit trail of messages this bridge has sent, newest first."),
		mcplib.WithString("channel_id",
			mcplib.Description("Restrict to one channel. Omit to list all channels."),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of records to return (default 50)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleListSentMessages}
}

func (r *Registry) handleListSentMessages(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	records, err := r.sender.ListSent(ctx, optionalString(req, "channel_id"), intArg(req, "limit", 50))
	if err != nil {
		return resultErr(fmt.Errorf("list_sent_messages: %w", err)), nil
	}

	type sentMessage struct {
		Channel   string `json:"channel"`
		Timestamp string `json:"ts"`
		Kind      string `json:"kind"`
		Fallback  string `json:"fallback,omitempty"`
		ThreadTS  string `json:"thread_ts,omitempty"`
		SentAt    string `json:"sent_at"`
	}
	out := make([]sentMessage, 0, len(records))
	for _, record := range records {
		out = append(out, sentMessage{
			Channel:   record.ChannelID,
			Timestamp: record.Timestamp,
			Kind:      record.Kind,
			Fallback:  record.Fallback,
			ThreadTS:  record.ThreadTimestamp,
			SentAt:    record.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	result, err := resultJSON(out)
	if err != nil {
		return resultErr(fmt.Errorf("list_sent_messages: serialise: %w", err)), nil
	}
	return result, nil
}
