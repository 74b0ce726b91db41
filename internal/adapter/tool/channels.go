package tool

// In this file: channel administration tools.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

func (r *Registry) toolCreateChannel() mcpsrv.ServerTool {
	tool := mcplib.NewTool("create_channel",
		mcplib.WithDescription("Create a new channel. Channel names are lowercase, without spaces (use hyphens)."),
		mcplib.WithString("name",
			mcplib.Description("Name for the new channel (e.g. \"deploy-alerts\")."),
			mcplib.Required(),
		),
		mcplib.WithBoolean("private",
			mcplib.Description("Create the channel as private (default false)."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleCreateChannel}
}

func (r *Registry) handleCreateChannel(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name, ok := stringArg(req, "name")
	if !ok || name == "" {
		return resultErr(errors.New("create_channel: name is required")), nil
	}

	channel, err := r.api.CreateChannel(ctx, name, boolArg(req, "private", false))
	if err != nil {
		return resultErr(fmt.Errorf("create_channel: %w", err)), nil
	}

	result, err := resultJSON(summarizeChannel(channel))
	if err != nil {
		return resultErr(fmt.Errorf("create_channel: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolArchiveChannel() mcpsrv.ServerTool {
	tool := mcplib.NewTool("archive_channel",
		mcplib.WithDescription("Archive a channel."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID to archive."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleArchiveChannel}
}

func (r *Registry) handleArchiveChannel(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("archive_channel: channel_id is required")), nil
	}

	if err := r.api.ArchiveChannel(ctx, channelID); err != nil {
		return resultErr(fmt.Errorf("archive_channel: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Channel %s archived.", channelID)), nil
}

func (r *Registry) toolUnarchiveChannel() mcpsrv.ServerTool {
	tool := mcplib.NewTool("unarchive_channel",
		mcplib.WithDescription("Restore an archived channel."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID to unarchive."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleUnarchiveChannel}
}

func (r *Registry) handleUnarchiveChannel(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("unarchive_channel: channel_id is required")), nil
	}

	if err := r.api.UnarchiveChannel(ctx, channelID); err != nil {
		return resultErr(fmt.Errorf("unarchive_channel: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Channel %s unarchived.", channelID)), nil
}

func (r *Registry) toolInviteToChannel() mcpsrv.ServerTool {
	tool := mcplib.NewTool("invite_to_channel",
		mcplib.WithDescription("Invite one or more users to a channel."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID."),
			mcplib.Required(),
		),
		mcplib.WithString("user_ids",
			mcplib.Description("Comma-separated Slack user IDs to invite (e.g. \"U111,U222\")."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleInviteToChannel}
}

func (r *Registry) handleInviteToChannel(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("invite_to_channel: channel_id is required")), nil
	}
	rawUsers, ok := stringArg(req, "user_ids")
	if !ok || rawUsers == "" {
		return resultErr(errors.New("invite_to_channel: user_ids is required")), nil
	}

	var userIDs []string
	for _, id := range strings.Split(rawUsers, ",") {
		if id = strings.TrimSpace(id); id != "" {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		return resultErr(errors.New("invite_to_channel: user_ids contains no user IDs")), nil
	}

	if err := r.api.InviteToChannel(ctx, channelID, userIDs); err != nil {
		return resultErr(fmt.Errorf("invite_to_channel: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Invited %d user(s) to %s.", len(userIDs), channelID)), nil
}

func (r *Registry) toolSetChannelTopic() mcpsrv.ServerTool {
	tool := mcplib.NewTool("set_channel_topic",
		mcplib.WithDescription("Set the topic of a channel."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID."),
			mcplib.Required(),
		),
		mcplib.WithString("topic",
			mcplib.Description("The new topic text."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSetChannelTopic}
}

func (r *Registry) handleSetChannelTopic(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("set_channel_topic: channel_id is required")), nil
	}
	topic, ok := stringArg(req, "topic")
	if !ok {
		return resultErr(errors.New("set_channel_topic: topic is required")), nil
	}

	if err := r.api.SetChannelTopic(ctx, channelID, topic); err != nil {
		return resultErr(fmt.Errorf("set_channel_topic: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Topic of %s updated.", channelID)), nil
}

func (r *Registry) toolSetChannelPurpose() mcpsrv.ServerTool {
	tool := mcplib.NewTool("set_channel_purpose",
		mcplib.WithDescription("Set the purpose (description) of a channel."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID."),
			mcplib.Required(),
		),
		mcplib.WithString("purpose",
			mcplib.Description("The new purpose text."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSetChannelPurpose}
}

func (r *Registry) handleSetChannelPurpose(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("set_channel_purpose: channel_id is required")), nil
	}
	purpose, ok := stringArg(req, "purpose")
	if !ok {
		return resultErr(errors.New("set_channel_purpose: purpose is required")), nil
	}

	if err := r.api.SetChannelPurpose(ctx, channelID, purpose); err != nil {
		return resultErr(fmt.Errorf("set_channel_purpose: %w", err)), nil
	}
	return resultText(fmt.Sprintf("Purpose of %s updated.", channelID)), nil
}
