package slack

import (
	"context"
	"errors"
	"time"

	"github.com/slack-go/slack"

	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/resilience"
)

// ResilientClient decorates the message delivery operations with retries and
// a circuit breaker. Read operations pass through untouched; an agent
// retrying a failed read itself is cheap, a lost message is not.
type ResilientClient struct {
	*Client
	retryer *resilience.Retryer
	breaker *resilience.CircuitBreaker
}

// NewResilientClient wraps a client with the default policy: three attempts
// with backoff, circuit opens after five consecutive transport failures.
func NewResilientClient(client *Client) *ResilientClient {
	return &ResilientClient{
		Client:  client,
		retryer: resilience.NewRetryer(resilience.DefaultPolicy(), domainerrors.IsTransient, retryAfterHint),
		breaker: resilience.NewCircuitBreaker("slack", 5, 30*time.Second),
	}
}

// retryAfterHint surfaces Slack's Retry-After so a rate limited call waits
// exactly as long as asked instead of the generic backoff.
func retryAfterHint(err error) (time.Duration, bool) {
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return rle.RetryAfter, true
	}
	return 0, false
}

// guard runs fn under the breaker and retryer. Permanent errors (bad
// channel, revoked token) are the caller's problem and do not count against
// the breaker.
func (c *ResilientClient) guard(ctx context.Context, fn func() error) error {
	var opErr error
	err := c.breaker.Execute(ctx, func() error {
		opErr = c.retryer.Do(ctx, fn)
		if opErr != nil && !domainerrors.IsTransient(opErr) {
			return nil
		}
		return opErr
	})
	if opErr != nil {
		return opErr
	}
	return err
}

func (c *ResilientClient) PostMessage(ctx context.Context, channelID, fallback string, blocks []slack.Block, threadTS string) (string, string, error) {
	var channel, timestamp string
	err := c.guard(ctx, func() error {
		var innerErr error
		channel, timestamp, innerErr = c.Client.PostMessage(ctx, channelID, fallback, blocks, threadTS)
		return innerErr
	})
	return channel, timestamp, err
}

func (c *ResilientClient) UpdateMessage(ctx context.Context, channelID, timestamp, fallback string, blocks []slack.Block) error {
	return c.guard(ctx, func() error {
		return c.Client.UpdateMessage(ctx, channelID, timestamp, fallback, blocks)
	})
}

func (c *ResilientClient) DeleteMessage(ctx context.Context, channelID, timestamp string) error {
	return c.guard(ctx, func() error {
		return c.Client.DeleteMessage(ctx, channelID, timestamp)
	})
}
