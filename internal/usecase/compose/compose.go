// Package compose turns loosely-structured caller input into ordered Block
// Kit sequences with a plain-text fallback.
//
// Every composer is a single-pass, side-effect-free transformation: it either
// returns a complete ComposedMessage or a validation error, never a partial
// block list. Unrecognized-but-harmless input (an unknown status keyword, an
// invalid button style) is normalized or dropped rather than rejected.
package compose

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/blockkit"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
)

// Defaults applied by FormMessage when the caller leaves them empty.
const (
	DefaultSelectPlaceholder = "Choose an option"
	DefaultSelectActionID    = "form_select"
)

// fallbackPlaceholder is used when a formatted message has neither title nor
// text to derive a fallback from.
const fallbackPlaceholder = "Formatted message"

// announcementDateLayout formats the announcement date line.
const announcementDateLayout = "2006-01-02 15:04"

// FormattedInput holds the optional parts of a formatted message. Empty
// strings mean "not supplied".
type FormattedInput struct {
	Title   string
	Text    string
	Fields  string // comma-separated
	Context string
}

// FormattedMessage composes a general-purpose message from optional parts,
// appended in the fixed order header, section, fields, context. At least one
// part must be supplied.
func FormattedMessage(in FormattedInput) (*entity.ComposedMessage, error) {
	msg := &entity.ComposedMessage{}

	if in.Title != "" {
		msg.Append(blockkit.Header(in.Title))
	}
	if in.Text != "" {
		msg.Append(blockkit.Section(in.Text))
	}
	if in.Fields != "" {
		fields := strings.Split(in.Fields, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		msg.Append(blockkit.FieldsSection(fields))
	}
	if in.Context != "" {
		msg.Append(blockkit.Context([]string{in.Context}))
	}

	if msg.Len() == 0 {
		return nil, domainerrors.NewValidationError(
			"at least one of title, text, fields, or context must be provided")
	}

	switch {
	case in.Title != "":
		msg.Fallback = in.Title
	case in.Text != "":
		msg.Fallback = in.Text
	default:
		msg.Fallback = fallbackPlaceholder
	}

	return msg, nil
}

// NotificationMessage composes a status notification. The status keyword is
// resolved case-insensitively; unknown values fall back to info. When details
// are supplied, a divider and a context block follow the main section.
func NotificationMessage(status, title, description, details string) (*entity.ComposedMessage, error) {
	emoji := entity.ParseNotificationStatus(status).Emoji()

	msg := entity.NewComposedMessage(
		fmt.Sprintf("%s %s: %s", emoji, title, description),
		blockkit.Section(fmt.Sprintf("%s *%s*\n%s", emoji, title, description)),
	)

	if details != "" {
		msg.Append(blockkit.Divider())
		msg.Append(blockkit.Context([]string{details}))
	}

	return msg, nil
}

// ListMessage composes a bulleted list under a header. Items split on newline
// when the input contains one, otherwise on comma; pieces are trimmed and
// empties dropped. A description, when present, adds a section and a divider
// before the list.
func ListMessage(title, items, description string) (*entity.ComposedMessage, error) {
	msg := entity.NewComposedMessage("", blockkit.Header(title))

	if description != "" {
		msg.Append(blockkit.Section(description))
		msg.Append(blockkit.Divider())
	}

	itemList := SplitItems(items)

	lines := make([]string, 0, len(itemList))
	for _, item := range itemList {
		lines = append(lines, "• "+item)
	}
	msg.Append(blockkit.Section(strings.Join(lines, "\n")))

	msg.Fallback = fmt.Sprintf("%s: %s", title, strings.Join(itemList, ", "))
	return msg, nil
}

// SplitItems splits a raw item string on newlines when any are present,
// otherwise on commas. Pieces are trimmed and empty pieces dropped.
func SplitItems(items string) []string {
	sep := ","
	if strings.Contains(items, "\n") {
		sep = "\n"
	}
	var out []string
	for _, piece := range strings.Split(items, sep) {
		if p := strings.TrimSpace(piece); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InteractiveMessage composes a header, description, and a trailing actions
// block built from a JSON-encoded button array. Malformed JSON is a
// validation failure; an empty button array simply omits the actions block.
func InteractiveMessage(title, description, buttonsJSON string) (*entity.ComposedMessage, error) {
	var specs []entity.ButtonSpec
	if err := json.Unmarshal([]byte(buttonsJSON), &specs); err != nil {
		return nil, domainerrors.NewValidationError("invalid buttons JSON: %v", err)
	}

	elements := make([]slack.BlockElement, 0, len(specs))
	for i, spec := range specs {
		if spec.Text == "" || spec.ActionID == "" {
			return nil, domainerrors.NewValidationError(
				"button %d: text and action_id are required", i)
		}
		elements = append(elements,
			blockkit.Button(spec.Text, spec.ActionID, spec.Value, spec.URL, spec.Style))
	}

	msg := entity.NewComposedMessage(
		fmt.Sprintf("%s: %s", title, description),
		blockkit.Header(title),
		blockkit.Section(description),
	)
	if len(elements) > 0 {
		msg.Append(blockkit.Actions(elements...))
	}

	return msg, nil
}

// CodeSnippetMessage composes a header, an optional description, and exactly
// one fenced code block. The fallback carries the first 100 characters of the
// code, with an ellipsis when truncated.
func CodeSnippetMessage(title, code, language, description string) (*entity.ComposedMessage, error) {
	msg := entity.NewComposedMessage("", blockkit.Header(title))

	if description != "" {
		msg.Append(blockkit.Section(description))
	}
	msg.Append(blockkit.CodeBlock(code, language))

	preview := code
	ellipsis := ""
	if runes := []rune(code); len(runes) > 100 {
		// Count characters, not bytes; a byte cut could split a rune.
		preview = string(runes[:100])
		ellipsis = "..."
	}
	msg.Fallback = fmt.Sprintf("%s: %s%s", title, preview, ellipsis)

	return msg, nil
}

// FormMessage composes a form-like message whose last block carries a static
// select menu built from a JSON-encoded options array. Decode failures are
// validation failures.
func FormMessage(title, description, optionsJSON, placeholder, actionID string) (*entity.ComposedMessage, error) {
	var opts []entity.SelectOption
	if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
		return nil, domainerrors.NewValidationError("invalid select options JSON: %v", err)
	}
	for i, opt := range opts {
		if opt.Text == "" || opt.Value == "" {
			return nil, domainerrors.NewValidationError(
				"select option %d: text and value are required", i)
		}
	}

	if placeholder == "" {
		placeholder = DefaultSelectPlaceholder
	}
	if actionID == "" {
		actionID = DefaultSelectActionID
	}

	pairs := make([][2]string, 0, len(opts))
	for _, opt := range opts {
		pairs = append(pairs, [2]string{opt.Text, opt.Value})
	}

	msg := entity.NewComposedMessage(
		fmt.Sprintf("%s: %s", title, description),
		blockkit.Header(title),
		blockkit.Section(description),
		blockkit.SectionWithAccessory(
			"Please make your selection:",
			blockkit.SelectMenu(placeholder, actionID, pairs),
		),
	)

	return msg, nil
}

// Announcement composes a megaphone-prefixed announcement. The trailing
// context block always carries a date line; the author line appears only when
// an author is given. Without an explicit timestamp the date line uses the
// current local time.
func Announcement(title, message, author, timestamp string) (*entity.ComposedMessage, error) {
	var elements []string
	if author != "" {
		elements = append(elements, fmt.Sprintf("*By:* %s", author))
	}
	if timestamp == "" {
		timestamp = time.Now().Format(announcementDateLayout)
	}
	elements = append(elements, fmt.Sprintf("*Date:* %s", timestamp))

	msg := entity.NewComposedMessage(
		fmt.Sprintf("📢 %s: %s", title, message),
		blockkit.Header("📢 "+title),
		blockkit.Section(message),
		blockkit.Context(elements),
	)

	return msg, nil
}
