// Package slack wraps the Slack Web API behind domain-shaped operations and
// categorizes API failures as transient or permanent.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/slack-go/slack"

	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
)

// Client wraps the Slack API client. It implements the send.Transport
// interface and exposes the workspace operations the tool layer needs.
type Client struct {
	api *slack.Client
}

// NewClient creates a new Slack client. A non-empty apiURL overrides the API
// base URL, which the integration tests use to point at a mock server.
func NewClient(token, apiURL string) *Client {
	opts := []slack.Option{}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &Client{api: slack.New(token, opts...)}
}

// AuthTest verifies the token and returns the identity it authenticates as.
func (c *Client) AuthTest(ctx context.Context) (*slack.AuthTestResponse, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, categorizeSlackError(err, "verifying credentials")
	}
	return resp, nil
}

// PostMessage delivers blocks to a channel with a plain-text fallback.
// A non-empty threadTS posts the message as a thread reply. Returns the
// channel and timestamp Slack assigned.
func (c *Client) PostMessage(ctx context.Context, channelID, fallback string, blocks []slack.Block, threadTS string) (string, string, error) {
	options := []slack.MsgOption{
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}

	channel, timestamp, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return "", "", categorizeSlackError(err, "posting slack message")
	}
	return channel, timestamp, nil
}

// UpdateMessage replaces the content of a previously delivered message.
func (c *Client) UpdateMessage(ctx context.Context, channelID, timestamp, fallback string, blocks []slack.Block) error {
	options := []slack.MsgOption{
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	}

	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, timestamp, options...)
	if err != nil {
		return categorizeSlackError(err, "updating slack message")
	}
	return nil
}

// DeleteMessage removes a previously delivered message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, timestamp string) error {
	_, _, err := c.api.DeleteMessageContext(ctx, channelID, timestamp)
	if err != nil {
		return categorizeSlackError(err, "deleting slack message")
	}
	return nil
}

// ListChannels pages through the conversations the token can see.
// Returns the channels plus the cursor for the next page, empty when done.
func (c *Client) ListChannels(ctx context.Context, limit int, cursor string, excludeArchived bool) ([]slack.Channel, string, error) {
	channels, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Limit:           limit,
		Cursor:          cursor,
		ExcludeArchived: excludeArchived,
		Types:           []string{"public_channel", "private_channel"},
	})
	if err != nil {
		return nil, "", categorizeSlackError(err, "listing channels")
	}
	return channels, next, nil
}

// GetChannelInfo retrieves channel metadata including the member count.
func (c *Client) GetChannelInfo(ctx context.Context, channelID string) (*slack.Channel, error) {
	channel, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID:         channelID,
		IncludeNumMembers: true,
	})
	if err != nil {
		return nil, categorizeSlackError(err, "getting channel info")
	}
	return channel, nil
}

// CreateChannel creates a public or private channel.
func (c *Client) CreateChannel(ctx context.Context, name string, private bool) (*slack.Channel, error) {
	channel, err := c.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   private,
	})
	if err != nil {
		return nil, categorizeSlackError(err, "creating channel")
	}
	return channel, nil
}

// ArchiveChannel archives a channel.
func (c *Client) ArchiveChannel(ctx context.Context, channelID string) error {
	if err := c.api.ArchiveConversationContext(ctx, channelID); err != nil {
		return categorizeSlackError(err, "archiving channel")
	}
	return nil
}

// UnarchiveChannel restores an archived channel.
func (c *Client) UnarchiveChannel(ctx context.Context, channelID string) error {
	if err := c.api.UnArchiveConversationContext(ctx, channelID); err != nil {
		return categorizeSlackError(err, "unarchiving channel")
	}
	return nil
}

// InviteToChannel invites users to a channel.
func (c *Client) InviteToChannel(ctx context.Context, channelID string, userIDs []string) error {
	_, err := c.api.InviteUsersToConversationContext(ctx, channelID, userIDs...)
	if err != nil {
		return categorizeSlackError(err, "inviting users to channel")
	}
	return nil
}

// SetChannelTopic sets the channel topic.
func (c *Client) SetChannelTopic(ctx context.Context, channelID, topic string) error {
	_, err := c.api.SetTopicOfConversationContext(ctx, channelID, topic)
	if err != nil {
		return categorizeSlackError(err, "setting channel topic")
	}
	return nil
}

// SetChannelPurpose sets the channel purpose.
func (c *Client) SetChannelPurpose(ctx context.Context, channelID, purpose string) error {
	_, err := c.api.SetPurposeOfConversationContext(ctx, channelID, purpose)
	if err != nil {
		return categorizeSlackError(err, "setting channel purpose")
	}
	return nil
}

// ListUsers retrieves the workspace member list.
func (c *Client) ListUsers(ctx context.Context) ([]slack.User, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, categorizeSlackError(err, "listing users")
	}
	return users, nil
}

// GetUserInfo retrieves user information by ID.
func (c *Client) GetUserInfo(ctx context.Context, userID string) (*slack.User, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, categorizeSlackError(err, "getting user info")
	}
	return user, nil
}

// GetChannelHistory retrieves recent messages from a channel.
func (c *Client) GetChannelHistory(ctx context.Context, channelID string, limit int, oldest, latest string) ([]slack.Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
		Oldest:    oldest,
		Latest:    latest,
	})
	if err != nil {
		return nil, categorizeSlackError(err, "getting channel history")
	}
	return resp.Messages, nil
}

// SearchMessages searches messages across the workspace. Requires a user
// token; bot tokens get a not_allowed_token_type error from Slack.
func (c *Client) SearchMessages(ctx context.Context, query string, count int) (*slack.SearchMessages, error) {
	params := slack.NewSearchParameters()
	if count > 0 {
		params.Count = count
	}
	results, err := c.api.SearchMessagesContext(ctx, query, params)
	if err != nil {
		return nil, categorizeSlackError(err, "searching messages")
	}
	return results, nil
}

// AddReaction adds an emoji reaction to a message. The emoji name is given
// without colons.
func (c *Client) AddReaction(ctx context.Context, channelID, timestamp, emoji string) error {
	err := c.api.AddReactionContext(ctx, emoji, slack.ItemRef{
		Channel:   channelID,
		Timestamp: timestamp,
	})
	if err != nil {
		return categorizeSlackError(err, "adding reaction")
	}
	return nil
}

// RemoveReaction removes an emoji reaction from a message.
func (c *Client) RemoveReaction(ctx context.Context, channelID, timestamp, emoji string) error {
	err := c.api.RemoveReactionContext(ctx, emoji, slack.ItemRef{
		Channel:   channelID,
		Timestamp: timestamp,
	})
	if err != nil {
		return categorizeSlackError(err, "removing reaction")
	}
	return nil
}

// GetTeamInfo retrieves workspace metadata.
func (c *Client) GetTeamInfo(ctx context.Context) (*slack.TeamInfo, error) {
	info, err := c.api.GetTeamInfoContext(ctx)
	if err != nil {
		return nil, categorizeSlackError(err, "getting team info")
	}
	return info, nil
}

// UploadFile uploads text content as a file to a channel.
func (c *Client) UploadFile(ctx context.Context, channelID, filename, title, content, initialComment, threadTS string) (*slack.FileSummary, error) {
	summary, err := c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:         channelID,
		Filename:        filename,
		Title:           title,
		Content:         content,
		FileSize:        len(content),
		InitialComment:  initialComment,
		ThreadTimestamp: threadTS,
	})
	if err != nil {
		return nil, categorizeSlackError(err, "uploading file")
	}
	return summary, nil
}

// categorizeSlackError wraps Slack API errors as transient or permanent domain errors.
func categorizeSlackError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Network errors are worth retrying
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: network error", operation),
			err,
		)
	}

	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		switch slackErr.Err {
		// Rate limiting - transient
		case "rate_limited":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: rate limited", operation),
				err,
			)

		// Server errors - transient
		case "internal_error", "fatal_error", "service_unavailable":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: slack server error", operation),
				err,
			)

		// Client errors - permanent
		case "invalid_auth", "account_inactive", "token_revoked", "no_permission",
			"channel_not_found", "not_in_channel", "is_archived",
			"message_not_found", "cant_delete_message", "cant_update_message",
			"user_not_found", "not_allowed_token_type", "invalid_blocks":
			return domainerrors.NewPermanentError(
				fmt.Sprintf("%s: %s", operation, slackErr.Err),
				err,
			)

		// Default to permanent for unknown Slack errors
		default:
			return domainerrors.NewPermanentError(
				fmt.Sprintf("%s: %s", operation, slackErr.Err),
				err,
			)
		}
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: rate limited, retry after %s", operation, rateLimited.RetryAfter),
			err,
		)
	}

	// Context errors are transient from the caller's point of view
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: context timeout", operation),
			err,
		)
	}

	return domainerrors.NewPermanentError(
		fmt.Sprintf("%s: %v", operation, err),
		err,
	)
}
