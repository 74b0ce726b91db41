// Package credentials resolves and stores the Slack credentials the bridge
// authenticates with. Secrets live in the operating system keyring; the
// environment serves as a fallback for containers and CI, where no keyring
// backend exists.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/zalando/go-keyring"
)

// Keyring service and account names.
const (
	service      = "slack-mcp-bridge"
	keyAPIToken  = "api_token"
	keyAppToken  = "app_token"
	keyWorkspace = "workspace_id"
)

// Environment fallbacks, checked when the keyring has no entry.
const (
	EnvAPIToken  = "SLACK_API_TOKEN"
	EnvAppToken  = "SLACK_APP_TOKEN"
	EnvWorkspace = "SLACK_WORKSPACE_ID"
)

// ErrNotConfigured is returned when a credential exists neither in the
// keyring nor in the environment.
var ErrNotConfigured = errors.New("credential not configured")

var workspaceIDPattern = regexp.MustCompile(`^T[A-Z0-9]{8,}$`)

// Store reads and writes credentials. The zero value is not usable; call
// NewStore.
type Store struct {
	service string

	get       func(service, account string) (string, error)
	set       func(service, account, secret string) error
	del       func(service, account string) error
	lookupEnv func(key string) (string, bool)
}

// NewStore creates a store backed by the OS keyring with environment
// fallback.
func NewStore() *Store {
	return &Store{
		service:   service,
		get:       keyring.Get,
		set:       keyring.Set,
		del:       keyring.Delete,
		lookupEnv: os.LookupEnv,
	}
}

// resolve reads a credential from the keyring, falling back to the
// environment. Keyring backend failures degrade to the env lookup rather
// than surfacing, so a headless host behaves the same as one without the
// entry.
func (s *Store) resolve(account, envKey string) (string, error) {
	if secret, err := s.get(s.service, account); err == nil && secret != "" {
		return secret, nil
	}
	if secret, ok := s.lookupEnv(envKey); ok && secret != "" {
		return secret, nil
	}
	return "", fmt.Errorf("%s (keyring entry %q, env %s): %w", account, s.service, envKey, ErrNotConfigured)
}

// APIToken returns the bot or user token used for Web API calls.
func (s *Store) APIToken() (string, error) {
	return s.resolve(keyAPIToken, EnvAPIToken)
}

// AppToken returns the app-level token, when one was stored. It is optional;
// callers treat ErrNotConfigured as absence.
func (s *Store) AppToken() (string, error) {
	return s.resolve(keyAppToken, EnvAppToken)
}

// WorkspaceID returns the configured workspace (team) ID.
func (s *Store) WorkspaceID() (string, error) {
	return s.resolve(keyWorkspace, EnvWorkspace)
}

// SetAPIToken validates and stores the API token in the keyring.
func (s *Store) SetAPIToken(token string) error {
	if err := ValidateAPIToken(token); err != nil {
		return err
	}
	return s.set(s.service, keyAPIToken, token)
}

// SetAppToken validates and stores the app-level token in the keyring.
func (s *Store) SetAppToken(token string) error {
	if err := ValidateAppToken(token); err != nil {
		return err
	}
	return s.set(s.service, keyAppToken, token)
}

// SetWorkspaceID validates and stores the workspace ID in the keyring.
func (s *Store) SetWorkspaceID(id string) error {
	if err := ValidateWorkspaceID(id); err != nil {
		return err
	}
	return s.set(s.service, keyWorkspace, id)
}

// Clear removes all stored credentials. Missing entries are not an error.
func (s *Store) Clear() error {
	for _, account := range []string{keyAPIToken, keyAppToken, keyWorkspace} {
		if err := s.del(s.service, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("deleting %s: %w", account, err)
		}
	}
	return nil
}

// ValidateAPIToken checks the shape of a bot (xoxb-) or user (xoxp-) token.
func ValidateAPIToken(token string) error {
	if !strings.HasPrefix(token, "xoxb-") && !strings.HasPrefix(token, "xoxp-") {
		return errors.New("api token must start with xoxb- or xoxp-")
	}
	if len(token) < 50 {
		return errors.New("api token is too short to be valid")
	}
	return nil
}

// ValidateAppToken checks the shape of an app-level (xapp-) token.
func ValidateAppToken(token string) error {
	if !strings.HasPrefix(token, "xapp-") {
		return errors.New("app token must start with xapp-")
	}
	if len(token) < 100 {
		return errors.New("app token is too short to be valid")
	}
	return nil
}

// ValidateWorkspaceID checks the shape of a workspace (team) ID.
func ValidateWorkspaceID(id string) error {
	if !workspaceIDPattern.MatchString(id) {
		return fmt.Errorf("workspace ID %q does not look like a team ID (T followed by 8+ uppercase alphanumerics)", id)
	}
	return nil
}
