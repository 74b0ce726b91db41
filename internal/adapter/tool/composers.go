package tool

// In this file: the Block Kit composer tools. Each one runs a compose
// transformation and delivers the result through the sender, so every
// composed message lands in the audit trail.

import (
	"context"
	"errors"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/usecase/compose"
)

func (r *Registry) toolSendFormattedMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_formatted_message",
		mcplib.WithDescription("Send a Block Kit message assembled from optional parts: a header title, body text, a two-column field grid, and a context footer. At least one part is required."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("title",
			mcplib.Description("Header text shown at the top of the message."),
		),
		mcplib.WithString("text",
			mcplib.Description("Body text (mrkdwn)."),
		),
		mcplib.WithString("fields",
			mcplib.Description("Comma-separated field values, laid out in two columns."),
		),
		mcplib.WithString("context",
			mcplib.Description("Small context text shown at the bottom."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendFormattedMessage}
}

func (r *Registry) handleSendFormattedMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	msg, err := compose.FormattedMessage(compose.FormattedInput{
		Title:   optionalString(req, "title"),
		Text:    optionalString(req, "text"),
		Fields:  optionalString(req, "fields"),
		Context: optionalString(req, "context"),
	})
	return r.deliver(ctx, req, "formatted", msg, err)
}

func (r *Registry) toolSendNotification() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_notification_message",
		mcplib.WithDescription("Send a status notification with an emoji matching the status (success, warning, error, or info)."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("status",
			mcplib.Description("One of success, warning, error, info. Unknown values are treated as info."),
			mcplib.Required(),
		),
		mcplib.WithString("title",
			mcplib.Description("Short notification title."),
			mcplib.Required(),
		),
		mcplib.WithString("description",
			mcplib.Description("What happened."),
			mcplib.Required(),
		),
		mcplib.WithString("details",
			mcplib.Description("Optional extra details, shown as small context text."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendNotification}
}

func (r *Registry) handleSendNotification(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	title, ok := stringArg(req, "title")
	if !ok || title == "" {
		return resultErr(errors.New("send_notification_message: title is required")), nil
	}
	description, ok := stringArg(req, "description")
	if !ok || description == "" {
		return resultErr(errors.New("send_notification_message: description is required")), nil
	}

	msg, err := compose.NotificationMessage(
		optionalString(req, "status"), title, description,
		optionalString(req, "details"))
	return r.deliver(ctx, req, "notification", msg, err)
}

func (r *Registry) toolSendListMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_list_message",
		mcplib.WithDescription("Send a bulleted list under a header. Items are split on newlines when present, otherwise on commas."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("title",
			mcplib.Description("Header text above the list."),
			mcplib.Required(),
		),
		mcplib.WithString("items",
			mcplib.Description("List items, separated by newlines or commas."),
			mcplib.Required(),
		),
		mcplib.WithString("description",
			mcplib.Description("Optional text shown between the header and the list."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendListMessage}
}

func (r *Registry) handleSendListMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	title, ok := stringArg(req, "title")
	if !ok || title == "" {
		return resultErr(errors.New("send_list_message: title is required")), nil
	}
	items, ok := stringArg(req, "items")
	if !ok || items == "" {
		return resultErr(errors.New("send_list_message: items is required")), nil
	}

	msg, err := compose.ListMessage(title, items, optionalString(req, "description"))
	return r.deliver(ctx, req, "list", msg, err)
}

func (r *Registry) toolSendInteractiveMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_interactive_message",
		mcplib.WithDescription("Send a message with clickable buttons. Buttons are given as a JSON array of objects with text, action_id, and optional value, url, and style (primary or danger)."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("title",
			mcplib.Description("Header text."),
			mcplib.Required(),
		),
		mcplib.WithString("description",
			mcplib.Description("Text shown above the buttons."),
			mcplib.Required(),
		),
		mcplib.WithString("buttons",
			mcplib.Description(`JSON array of buttons, e.g. [{"text":"Approve","action_id":"approve","style":"primary"}]. An empty array sends the message without buttons.`),
			mcplib.Required(),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendInteractiveMessage}
}

func (r *Registry) handleSendInteractiveMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	title, ok := stringArg(req, "title")
	if !ok || title == "" {
		return resultErr(errors.New("send_interactive_message: title is required")), nil
	}
	description, ok := stringArg(req, "description")
	if !ok || description == "" {
		return resultErr(errors.New("send_interactive_message: description is required")), nil
	}
	buttons, ok := stringArg(req, "buttons")
	if !ok || buttons == "" {
		return resultErr(errors.New("send_interactive_message: buttons is required")), nil
	}

	msg, err := compose.InteractiveMessage(title, description, buttons)
	return r.deliver(ctx, req, "interactive", msg, err)
}

func (r *Registry) toolSendCodeSnippet() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_code_snippet",
		mcplib.WithDescription("Send a code snippet in a fenced code block with optional syntax highlighting."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("title",
			mcplib.Description("Header text above the snippet."),
			mcplib.Required(),
		),
		mcplib.WithString("code",
			mcplib.Description("The code to share."),
			mcplib.Required(),
		),
		mcplib.WithString("language",
			mcplib.Description("Language tag for the fence (e.g. \"go\", \"python\")."),
		),
		mcplib.WithString("description",
			mcplib.Description("Optional text shown between the header and the code."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendCodeSnippet}
}

func (r *Registry) handleSendCodeSnippet(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	title, ok := stringArg(req, "title")
	if !ok || title == "" {
		return resultErr(errors.New("send_code_snippet: title is required")), nil
	}
	code, ok := stringArg(req, "code")
	if !ok || code == "" {
		return resultErr(errors.New("send_code_snippet: code is required")), nil
	}

	msg, err := compose.CodeSnippetMessage(title, code,
		optionalString(req, "language"), optionalString(req, "description"))
	return r.deliver(ctx, req, "code_snippet", msg, err)
}

func (r *Registry) toolSendFormMessage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_form_message",
		mcplib.WithDescription("Send a message with a dropdown select menu. Options are given as a JSON array of objects with text and value."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("title",
			mcplib.Description("Header text."),
			mcplib.Required(),
		),
		mcplib.WithString("description",
			mcplib.Description("Text explaining the selection."),
			mcplib.Required(),
		),
		mcplib.WithString("options",
			mcplib.Description(`JSON array of options, e.g. [{"text":"Staging","value":"staging"}].`),
			mcplib.Required(),
		),
		mcplib.WithString("placeholder",
			mcplib.Description("Placeholder shown in the closed menu (default \"Choose an option\")."),
		),
		mcplib.WithString("action_id",
			mcplib.Description("Action ID reported when an option is picked (default \"form_select\")."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendFormMessage}
}

func (r *Registry) handleSendFormMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	title, ok := stringArg(req, "title")
	if !ok || title == "" {
		return resultErr(errors.New("send_form_message: title is required")), nil
	}
	description, ok := stringArg(req, "description")
	if !ok || description == "" {
		return resultErr(errors.New("send_form_message: description is required")), nil
	}
	options, ok := stringArg(req, "options")
	if !ok || options == "" {
		return resultErr(errors.New("send_form_message: options is required")), nil
	}

	msg, err := compose.FormMessage(title, description, options,
		optionalString(req, "placeholder"), optionalString(req, "action_id"))
	return r.deliver(ctx, req, "form", msg, err)
}

func (r *Registry) toolSendAnnouncement() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_announcement",
		mcplib.WithDescription("Send a megaphone-prefixed announcement with an author and date footer."),
		mcplib.WithString("channel_id",
			mcplib.Description("The Slack channel ID. Falls back to the configured default channel."),
		),
		mcplib.WithString("title",
			mcplib.Description("Announcement title, shown with a megaphone prefix."),
			mcplib.Required(),
		),
		mcplib.WithString("message",
			mcplib.Description("The announcement body (mrkdwn)."),
			mcplib.Required(),
		),
		mcplib.WithString("author",
			mcplib.Description("Optional author name for the footer."),
		),
		mcplib.WithString("timestamp",
			mcplib.Description("Optional date text for the footer. Defaults to the current time."),
		),
		mcplib.WithString("thread_ts",
			mcplib.Description("Timestamp of a message to reply to in a thread."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: r.handleSendAnnouncement}
}

func (r *Registry) handleSendAnnouncement(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	title, ok := stringArg(req, "title")
	if !ok || title == "" {
		return resultErr(errors.New("send_announcement: title is required")), nil
	}
	message, ok := stringArg(req, "message")
	if !ok || message == "" {
		return resultErr(errors.New("send_announcement: message is required")), nil
	}

	msg, err := compose.Announcement(title, message,
		optionalString(req, "author"), optionalString(req, "timestamp"))
	return r.deliver(ctx, req, "announcement", msg, err)
}
