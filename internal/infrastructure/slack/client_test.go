package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"

	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
)

func TestCategorizeSlackError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"rate limited", slack.SlackErrorResponse{Err: "rate_limited"}, true},
		{"server error", slack.SlackErrorResponse{Err: "internal_error"}, true},
		{"invalid auth", slack.SlackErrorResponse{Err: "invalid_auth"}, false},
		{"channel not found", slack.SlackErrorResponse{Err: "channel_not_found"}, false},
		{"unknown slack error", slack.SlackErrorResponse{Err: "brand_new_error"}, false},
		{"context deadline", context.DeadlineExceeded, true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeSlackError(tt.err, "testing")
			if got == nil {
				t.Fatal("expected a categorized error")
			}
			if domainerrors.IsTransient(got) != tt.wantTransient {
				t.Errorf("IsTransient = %v, want %v (err: %v)", !tt.wantTransient, tt.wantTransient, got)
			}
			// The original error stays reachable through the wrap chain.
			if resp, ok := tt.err.(slack.SlackErrorResponse); ok {
				var unwrapped slack.SlackErrorResponse
				if !errors.As(got, &unwrapped) || unwrapped.Err != resp.Err {
					t.Errorf("slack error %q not wrapped in %v", resp.Err, got)
				}
			} else if !errors.Is(got, tt.err) {
				t.Errorf("cause %v not wrapped in %v", tt.err, got)
			}
		})
	}
}

func TestCategorizeSlackError_nil(t *testing.T) {
	if err := categorizeSlackError(nil, "testing"); err != nil {
		t.Errorf("nil in, nil out; got %v", err)
	}
}
