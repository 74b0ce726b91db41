package tool

// In this file: read-only workspace tools (channels, users, history, search,
// team info).

import (
	"context"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/slack-go/slack"
)

// channelSummary is a JSON-serialisable summary of a Slack channel.
type channelSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsPrivate   bool   `json:"is_private,omitempty"`
	IsArchived  bool   `json:"is_archived,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
}

func summarizeChannel(c *slack.Channel) channelSummary {
	return channelSummary{
		ID:          c.ID,
		Name:        c.Name,
		IsPrivate:   c.IsPrivate,
		IsArchived:  c.IsArchived,
		MemberCount: c.NumMembers,
		Topic:       c.Topic.Value,
		Purpose:     c.Purpose.Value,
	}
}

// userSummary is a JSON-serialisable summary of a Slack user.
type userSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RealName    string `json:"real_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	IsBot       bool   `json:"is_bot,omitempty"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
	TimeZone    string `json:"tz,omitempty"`
}

func summarizeUser(u *slack.User) userSummary {
	return userSummary{
		ID:          u.ID,
		Name:        u.Name,
		RealName:    u.RealName,
		DisplayName: u.Profile.DisplayName,
		Email:       u.Profile.Email,
		IsBot:       u.IsBot,
		IsAdmin:     u.IsAdmin,
		Deleted:     u.Deleted,
		TimeZone:    u.TZ,
	}
}

// messageSummary is a JSON-serialisable summary of a channel message.
type messageSummary struct {
	User      string `json:"user,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"ts"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	ReplyCnt  int    `json:"reply_count,omitempty"`
}

func (r *Registry) toolListChannels() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_channels",
		mcplib.WithDescription("List channels in the workspace. Returns channel IDs, names, visibility, and member counts. Paginated; pass the returned cursor to fetch the next page."),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of channels per page (default 100)."),
		),
		mcplib.WithString("cursor",
			mcplib.Description("Pagination cursor from a previous call."),
		),
		mcplib.WithBoolean("exclude_archived",
			mcplib.Description("Skip archived channels (default true)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleListChannels}
}

func (r *Registry) handleListChannels(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	limit := intArg(req, "limit", 100)
	cursor := optionalString(req, "cursor")
	excludeArchived := boolArg(req, "exclude_archived", true)

	channels, nextCursor, err := r.api.ListChannels(ctx, limit, cursor, excludeArchived)
	if err != nil {
		return resultErr(fmt.Errorf("list_channels: %w", err)), nil
	}

	summaries := make([]channelSummary, 0, len(channels))
	for i := range channels {
		summaries = append(summaries, summarizeChannel(&channels[i]))
	}

	result, err := resultJSON(struct {
		Channels   []channelSummary `json:"channels"`
		NextCursor string           `json:"next_cursor,omitempty"`
	}{summaries, nextCursor})
	if err != nil {
		return resultErr(fmt.Errorf("list_channels: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolGetChannelInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_channel_info",
		mcplib.WithDescription("Get detailed information about a channel, including topic, purpose, and member count."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID (e.g. C01234ABCD)."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleGetChannelInfo}
}

func (r *Registry) handleGetChannelInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("get_channel_info: channel_id is required")), nil
	}

	channel, err := r.api.GetChannelInfo(ctx, channelID)
	if err != nil {
		return resultErr(fmt.Errorf("get_channel_info: %w", err)), nil
	}

	result, err := resultJSON(summarizeChannel(channel))
	if err != nil {
		return resultErr(fmt.Errorf("get_channel_info: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolListUsers() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_users",
		mcplib.WithDescription("List workspace members. Returns user IDs, names, display names, and email addresses."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleListUsers}
}

func (r *Registry) handleListUsers(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	users, err := r.api.ListUsers(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("list_users: %w", err)), nil
	}

	summaries := make([]userSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarizeUser(&users[i]))
	}

	result, err := resultJSON(summaries)
	if err != nil {
		return resultErr(fmt.Errorf("list_users: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolGetUserInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_user_info",
		mcplib.WithDescription("Get detailed information about a user by their ID."),
		mcplib.WithString("user_id",
			mcplib.Description("The Slack user ID (e.g. U01234ABCD)."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleGetUserInfo}
}

func (r *Registry) handleGetUserInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("get_user_info: user_id is required")), nil
	}

	user, err := r.api.GetUserInfo(ctx, userID)
	if err != nil {
		return resultErr(fmt.Errorf("get_user_info: %w", err)), nil
	}

	result, err := resultJSON(summarizeUser(user))
	if err != nil {
		return resultErr(fmt.Errorf("get_user_info: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolGetChannelHistory() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_channel_history",
		mcplib.WithDescription(`Read recent messages from a channel. Timestamps use Slack's format (Unix epoch as decimal string, e.g. "1609459200.000001").`),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of messages to return (default 20)."),
		),
		mcplib.WithString("oldest",
			mcplib.Description("Only messages after this timestamp."),
		),
		mcplib.WithString("latest",
			mcplib.Description("Only messages before this timestamp."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleGetChannelHistory}
}

func (r *Registry) handleGetChannelHistory(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channelID, ok := stringArg(req, "channel_id")
	if !ok || channelID == "" {
		return resultErr(errors.New("get_channel_history: channel_id is required")), nil
	}
	limit := intArg(req, "limit", 20)

	messages, err := r.api.GetChannelHistory(ctx, channelID, limit,
		optionalString(req, "oldest"), optionalString(req, "latest"))
	if err != nil {
		return resultErr(fmt.Errorf("get_channel_history: %w", err)), nil
	}

	summaries := make([]messageSummary, 0, len(messages))
	for _, m := range messages {
		summaries = append(summaries, messageSummary{
			User:      m.User,
			Text:      m.Text,
			Timestamp: m.Timestamp,
			ThreadTS:  m.ThreadTimestamp,
			ReplyCnt:  m.ReplyCount,
		})
	}

	result, err := resultJSON(summaries)
	if err != nil {
		return resultErr(fmt.Errorf("get_channel_history: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolSearchMessages() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_messages",
		mcplib.WithDescription("Search messages across the workspace. Requires a user token; bot tokens cannot search."),
		mcplib.WithString("query",
			mcplib.Description("Search query, using Slack's search syntax (e.g. \"in:#general deploy\")."),
			mcplib.Required(),
		),
		mcplib.WithNumber("count",
			mcplib.Description("Maximum number of results (default 20)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSearchMessages}
}

func (r *Registry) handleSearchMessages(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, ok := stringArg(req, "query")
	if !ok || query == "" {
		return resultErr(errors.New("search_messages: query is required")), nil
	}

	results, err := r.api.SearchMessages(ctx, query, intArg(req, "count", 20))
	if err != nil {
		return resultErr(fmt.Errorf("search_messages: %w", err)), nil
	}

	type hit struct {
		Channel   string `json:"channel"`
		User      string `json:"user,omitempty"`
		Username  string `json:"username,omitempty"`
		Text      string `json:"text"`
		Timestamp string `json:"ts"`
		Permalink string `json:"permalink,omitempty"`
	}
	hits := make([]hit, 0, len(results.Matches))
	for _, m := range results.Matches {
		hits = append(hits, hit{
			Channel:   m.Channel.Name,
			User:      m.User,
			Username:  m.Username,
			Text:      m.Text,
			Timestamp: m.Timestamp,
			Permalink: m.Permalink,
		})
	}

	result, err := resultJSON(struct {
		Total   int   `json:"total"`
		Matches []hit `json:"matches"`
	}{results.Total, hits})
	if err != nil {
		return resultErr(fmt.Errorf("search_messages: serialise: %w", err)), nil
	}
	return result, nil
}

func (r *Registry) toolGetTeamInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_team_info",
		mcplib.WithDescription("Get information about the workspace (team) the bridge is connected to."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleGetTeamInfo}
}

func (r *Registry) handleGetTeamInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	info, err := r.api.GetTeamInfo(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("get_team_info: %w", err)), nil
	}

	result, err := resultJSON(struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}{info.ID, info.Name, info.Domain})
	if err != nil {
		return resultErr(fmt.Errorf("get_team_info: serialise: %w", err)), nil
	}
	return result, nil
}
