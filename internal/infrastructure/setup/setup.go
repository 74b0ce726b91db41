// Package setup drives the interactive first-run credential onboarding.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/credentials"
)

// ErrAborted is returned when the operator declines the final confirmation.
var ErrAborted = errors.New("setup aborted")

// Verifier checks a token against the Slack API before it is stored.
type Verifier interface {
	AuthTest(ctx context.Context) (*slack.AuthTestResponse, error)
}

// VerifierFunc builds a verifier for a candidate token. Injected so tests
// run without the network.
type VerifierFunc func(token string) Verifier

// DefaultVerifier builds a verifier on the real Slack client.
func DefaultVerifier(token string) Verifier {
	return slackVerifier{api: slack.New(token)}
}

// slackVerifier adapts the Slack client's AuthTestContext to the Verifier
// interface.
type slackVerifier struct {
	api *slack.Client
}

func (v slackVerifier) AuthTest(ctx context.Context) (*slack.AuthTestResponse, error) {
	return v.api.AuthTestContext(ctx)
}

// Flow collects Slack credentials from the operator, verifies them, and
// writes them to the store.
type Flow struct {
	store       *credentials.Store
	newVerifier VerifierFunc
	out         io.Writer
}

// NewFlow creates a setup flow. newVerifier may be nil, in which case the
// real Slack API is used.
func NewFlow(store *credentials.Store, newVerifier VerifierFunc, out io.Writer) *Flow {
	if newVerifier == nil {
		newVerifier = DefaultVerifier
	}
	return &Flow{
		store:       store,
		newVerifier: newVerifier,
		out:         out,
	}
}

// Run prompts for the bot token, an optional app-level token, and the
// workspace ID, verifies the bot token with auth.test, and stores everything
// in the keyring. Declining the confirmation aborts without writing.
func (f *Flow) Run(ctx context.Context) error {
	var (
		apiToken    string
		appToken    string
		workspaceID string
		confirmed   bool
	)

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Bot token").
			Description("OAuth token from your Slack app's \"OAuth & Permissions\" page").
			Placeholder("xoxb-...").
			EchoMode(huh.EchoModePassword).
			Value(&apiToken).
			Validate(credentials.ValidateAPIToken),
		huh.NewInput().Title("App-level token (optional)").
			Description("Needed only for Socket Mode; leave empty to skip").
			Placeholder("xapp-...").
			EchoMode(huh.EchoModePassword).
			Value(&appToken).
			Validate(optionalAppToken),
		huh.NewInput().Title("Workspace ID").
			Description("Team ID, visible in the workspace admin URL").
			Placeholder("T01234ABCDE").
			Value(&workspaceID).
			Validate(credentials.ValidateWorkspaceID),
		huh.NewConfirm().Title("Verify and save?").
			Description("The bot token is checked against auth.test, then all\nvalues are written to the system keyring").
			Value(&confirmed).
			Validate(f.makeAuthValidator(ctx, &apiToken)),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}
	if !confirmed {
		return ErrAborted
	}

	return f.save(apiToken, appToken, workspaceID)
}

// makeAuthValidator returns a confirm validator that runs auth.test with the
// entered token. Confirming "no" is always valid.
func (f *Flow) makeAuthValidator(ctx context.Context, token *string) func(bool) error {
	return func(confirmed bool) error {
		if !confirmed {
			return nil
		}
		resp, err := f.newVerifier(*token).AuthTest(ctx)
		if err != nil {
			return fmt.Errorf("token rejected by Slack: %w", err)
		}
		fmt.Fprintf(f.out, "Authenticated as %s in workspace %s\n", resp.User, resp.Team)
		return nil
	}
}

// save writes the verified credentials to the store.
func (f *Flow) save(apiToken, appToken, workspaceID string) error {
	if err := f.store.SetAPIToken(apiToken); err != nil {
		return fmt.Errorf("storing api token: %w", err)
	}
	if appToken != "" {
		if err := f.store.SetAppToken(appToken); err != nil {
			return fmt.Errorf("storing app token: %w", err)
		}
	}
	if err := f.store.SetWorkspaceID(workspaceID); err != nil {
		return fmt.Errorf("storing workspace ID: %w", err)
	}

	fmt.Fprintln(f.out, "Credentials saved. Start the server without -setup to use them.")
	return nil
}

// optionalAppToken accepts an empty value; a non-empty one must look like an
// app-level token.
func optionalAppToken(token string) error {
	if token == "" {
		return nil
	}
	return credentials.ValidateAppToken(token)
}
