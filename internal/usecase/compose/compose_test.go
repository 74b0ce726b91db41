package compose

import (
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"

	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
)

// blockTypes returns the block type sequence of a composed message.
func blockTypes(msg *entity.ComposedMessage) []string {
	types := make([]string, 0, len(msg.Blocks))
	for _, b := range msg.Blocks {
		types = append(types, string(b.BlockType()))
	}
	return types
}

func sectionText(t *testing.T, b slack.Block) string {
	t.Helper()
	section, ok := b.(*slack.SectionBlock)
	if !ok {
		t.Fatalf("expected *slack.SectionBlock, got %T", b)
	}
	if section.Text == nil {
		t.Fatal("section has no text")
	}
	return section.Text.Text
}

func TestFormattedMessage_allParts(t *testing.T) {
	msg, err := FormattedMessage(FormattedInput{
		Title:   "Build report",
		Text:    "All green",
		Fields:  "env: prod , region: eu-1",
		Context: "pipeline #8",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"header", "section", "section", "context"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}

	// Fields are comma-split and trimmed.
	fields := msg.Blocks[2].(*slack.SectionBlock).Fields
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Text != "env: prod" || fields[1].Text != "region: eu-1" {
		t.Errorf("fields not trimmed: %q, %q", fields[0].Text, fields[1].Text)
	}

	if msg.Fallback != "Build report" {
		t.Errorf("fallback = %q, want title", msg.Fallback)
	}
}

func TestFormattedMessage_noContent(t *testing.T) {
	msg, err := FormattedMessage(FormattedInput{})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !domainerrors.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
	if msg != nil {
		t.Errorf("expected nil message on error, got %d blocks", msg.Len())
	}
}

func TestFormattedMessage_fallbackPreference(t *testing.T) {
	tests := []struct {
		name string
		in   FormattedInput
		want string
	}{
		{"title wins", FormattedInput{Title: "T", Text: "X"}, "T"},
		{"text next", FormattedInput{Text: "X", Context: "c"}, "X"},
		{"placeholder last", FormattedInput{Context: "c"}, "Formatted message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := FormattedMessage(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Fallback != tt.want {
				t.Errorf("fallback = %q, want %q", msg.Fallback, tt.want)
			}
		})
	}
}

func TestNotificationMessage(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		wantEmoji string
	}{
		{"success", "success", "✅"},
		{"warning uppercase", "WARNING", "⚠️"},
		{"error", "error", "❌"},
		{"info", "info", "ℹ️"},
		{"unknown falls back to info", "catastrophic", "ℹ️"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NotificationMessage(tt.status, "Deploy", "it happened", "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Len() != 1 {
				t.Fatalf("expected 1 block without details, got %d", msg.Len())
			}

			wantText := tt.wantEmoji + " *Deploy*\nit happened"
			if got := sectionText(t, msg.Blocks[0]); got != wantText {
				t.Errorf("section text = %q, want %q", got, wantText)
			}

			wantFallback := tt.wantEmoji + " Deploy: it happened"
			if msg.Fallback != wantFallback {
				t.Errorf("fallback = %q, want %q", msg.Fallback, wantFallback)
			}
		})
	}
}

func TestNotificationMessage_withDetails(t *testing.T) {
	msg, err := NotificationMessage("error", "Deploy", "it broke", "exit status 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"section", "divider", "context"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}
}

func TestSplitItems(t *testing.T) {
	tests := []struct {
		name  string
		items string
		want  []string
	}{
		{"newline wins over comma", "a\nb, c\nd", []string{"a", "b, c", "d"}},
		{"comma split", "a, b, c", []string{"a", "b", "c"}},
		{"trims and drops empties", " a ,, b ,", []string{"a", "b"}},
		{"newline trims and drops empties", "a\n\n  \nb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitItems(tt.items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitItems(%q) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestListMessage(t *testing.T) {
	msg, err := ListMessage("Todo", "a\nb, c\nd", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"header", "section"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}

	if got := sectionText(t, msg.Blocks[1]); got != "• a\n• b, c\n• d" {
		t.Errorf("list section = %q", got)
	}
	if msg.Fallback != "Todo: a, b, c, d" {
		t.Errorf("fallback = %q", msg.Fallback)
	}
}

func TestListMessage_withDescription(t *testing.T) {
	msg, err := ListMessage("Todo", "a, b", "things to do")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Description always brings its divider with it.
	want := []string{"header", "section", "divider", "section"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}
	if got := sectionText(t, msg.Blocks[1]); got != "things to do" {
		t.Errorf("description section = %q", got)
	}
}

func TestInteractiveMessage(t *testing.T) {
	buttons := `[{"text":"Yes","action_id":"y"},{"text":"No","action_id":"n","style":"danger"}]`
	msg, err := InteractiveMessage("T", "D", buttons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"header", "section", "actions"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}

	actions := msg.Blocks[2].(*slack.ActionBlock)
	if len(actions.Elements.ElementSet) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(actions.Elements.ElementSet))
	}

	yes := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	if yes.ActionID != "y" || yes.Style != "" {
		t.Errorf("first button: action_id=%q style=%q", yes.ActionID, yes.Style)
	}
	no := actions.Elements.ElementSet[1].(*slack.ButtonBlockElement)
	if no.ActionID != "n" || no.Style != slack.StyleDanger {
		t.Errorf("second button: action_id=%q style=%q", no.ActionID, no.Style)
	}

	if msg.Fallback != "T: D" {
		t.Errorf("fallback = %q", msg.Fallback)
	}
}

func TestInteractiveMessage_malformedJSON(t *testing.T) {
	_, err := InteractiveMessage("T", "D", "{not json")
	if err == nil {
		t.Fatal("expected validation error for malformed JSON")
	}
	if !domainerrors.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestInteractiveMessage_emptyButtonList(t *testing.T) {
	msg, err := InteractiveMessage("T", "D", "[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No actions block for an empty list.
	want := []string{"header", "section"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}
}

func TestInteractiveMessage_missingRequiredKeys(t *testing.T) {
	_, err := InteractiveMessage("T", "D", `[{"text":"Yes"}]`)
	if err == nil {
		t.Fatal("expected validation error for missing action_id")
	}
}

func TestCodeSnippetMessage(t *testing.T) {
	msg, err := CodeSnippetMessage("Fix", "x=1", "python", "the patch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"header", "section", "section"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}
	if got := sectionText(t, msg.Blocks[2]); got != "```python\nx=1```" {
		t.Errorf("code section = %q", got)
	}
	if msg.Fallback != "Fix: x=1" {
		t.Errorf("fallback = %q", msg.Fallback)
	}
}

func TestCodeSnippetMessage_fallbackTruncation(t *testing.T) {
	long := strings.Repeat("a", 150)
	msg, err := CodeSnippetMessage("Dump", long, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Dump: " + strings.Repeat("a", 100) + "..."
	if msg.Fallback != want {
		t.Errorf("fallback = %q, want %q", msg.Fallback, want)
	}

	// Exactly 100 characters: no ellipsis.
	exact := strings.Repeat("b", 100)
	msg, err = CodeSnippetMessage("Dump", exact, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Fallback != "Dump: "+exact {
		t.Errorf("fallback = %q", msg.Fallback)
	}

	// Multibyte code under the character limit stays intact even though it
	// exceeds 100 bytes.
	accented := strings.Repeat("é", 60)
	msg, err = CodeSnippetMessage("Dump", accented, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Fallback != "Dump: "+accented {
		t.Errorf("fallback = %q, want the untruncated code", msg.Fallback)
	}

	// Over the limit, the cut lands on a character boundary.
	msg, err = CodeSnippetMessage("Dump", strings.Repeat("é", 120), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "Dump: " + strings.Repeat("é", 100) + "..."
	if msg.Fallback != want {
		t.Errorf("fallback = %q, want %q", msg.Fallback, want)
	}
	if !utf8.ValidString(msg.Fallback) {
		t.Error("fallback is not valid UTF-8")
	}
}

func TestFormMessage(t *testing.T) {
	options := `[{"text":"Option 1","value":"opt1"},{"text":"Option 2","value":"opt2"}]`
	msg, err := FormMessage("Survey", "Tell us", options, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"header", "section", "section"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}

	prompt := msg.Blocks[2].(*slack.SectionBlock)
	if prompt.Text.Text != "Please make your selection:" {
		t.Errorf("prompt = %q", prompt.Text.Text)
	}
	if prompt.Accessory == nil || prompt.Accessory.SelectElement == nil {
		t.Fatal("expected select accessory")
	}

	sel := prompt.Accessory.SelectElement
	if sel.ActionID != DefaultSelectActionID {
		t.Errorf("action_id = %q, want default", sel.ActionID)
	}
	if sel.Placeholder.Text != DefaultSelectPlaceholder {
		t.Errorf("placeholder = %q, want default", sel.Placeholder.Text)
	}
	if len(sel.Options) != 2 || sel.Options[0].Value != "opt1" {
		t.Errorf("options = %+v", sel.Options)
	}
}

func TestFormMessage_malformedJSON(t *testing.T) {
	_, err := FormMessage("Survey", "Tell us", "not-json", "", "")
	if err == nil {
		t.Fatal("expected validation error for malformed JSON")
	}
	if !domainerrors.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestAnnouncement_withAuthorAndTimestamp(t *testing.T) {
	msg, err := Announcement("Release", "v2 is out", "alice", "2024-06-01 12:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"header", "section", "context"}
	if got := blockTypes(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}

	header := msg.Blocks[0].(*slack.HeaderBlock)
	if header.Text.Text != "📢 Release" {
		t.Errorf("header = %q", header.Text.Text)
	}

	ctx := msg.Blocks[2].(*slack.ContextBlock)
	elements := ctx.ContextElements.Elements
	if len(elements) != 2 {
		t.Fatalf("expected author + date lines, got %d", len(elements))
	}
	by := elements[0].(*slack.TextBlockObject)
	if by.Text != "*By:* alice" {
		t.Errorf("author line = %q", by.Text)
	}
	date := elements[1].(*slack.TextBlockObject)
	if date.Text != "*Date:* 2024-06-01 12:00" {
		t.Errorf("date line = %q", date.Text)
	}

	if msg.Fallback != "📢 Release: v2 is out" {
		t.Errorf("fallback = %q", msg.Fallback)
	}
}

func TestAnnouncement_dateLineAlwaysPresent(t *testing.T) {
	before := time.Now()
	msg, err := Announcement("Release", "v2 is out", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := msg.Blocks[2].(*slack.ContextBlock)
	elements := ctx.ContextElements.Elements
	if len(elements) != 1 {
		t.Fatalf("expected only the date line without an author, got %d elements", len(elements))
	}

	line := elements[0].(*slack.TextBlockObject).Text
	if !strings.HasPrefix(line, "*Date:* ") {
		t.Fatalf("date line = %q", line)
	}

	// The generated date must parse in the announcement layout and be
	// close to now.
	stamp, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimPrefix(line, "*Date:* "), time.Local)
	if err != nil {
		t.Fatalf("date line not in expected layout: %v", err)
	}
	if stamp.Before(before.Truncate(time.Minute)) || stamp.After(before.Add(2*time.Minute)) {
		t.Errorf("date line %v too far from now %v", stamp, before)
	}
}
