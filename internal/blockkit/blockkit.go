// Package blockkit provides pure constructors for Slack Block Kit values.
//
// Every function is stateless and side-effect free: calling it twice with the
// same arguments yields structurally equal results. Text content is taken
// verbatim from the caller; escaping is the transport's responsibility.
// Optional fields that are not supplied are left absent from the serialized
// form entirely, never emitted as null.
package blockkit

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Header creates a header block with plain text.
func Header(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, text, false, false),
	)
}

// Section creates a section block with mrkdwn text.
func Section(text string) *slack.SectionBlock {
	return SectionWithKind(text, slack.MarkdownType)
}

// SectionWithKind creates a section block with the given text kind
// (slack.MarkdownType or slack.PlainTextType).
func SectionWithKind(text, kind string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(kind, text, false, false),
		nil, nil,
	)
}

// Divider creates a divider block.
func Divider() *slack.DividerBlock {
	return slack.NewDividerBlock()
}

// FieldsSection creates a section block with a fields array instead of text.
// Each entry becomes an mrkdwn text object. An empty input yields a section
// with an empty fields slice; composition-level callers guard against that.
func FieldsSection(fields []string) *slack.SectionBlock {
	objs := make([]*slack.TextBlockObject, 0, len(fields))
	for _, f := range fields {
		objs = append(objs, slack.NewTextBlockObject(slack.MarkdownType, f, false, false))
	}
	return slack.NewSectionBlock(nil, objs, nil)
}

// Context creates a context block; each element is wrapped as mrkdwn.
func Context(elements []string) *slack.ContextBlock {
	objs := make([]slack.MixedElement, 0, len(elements))
	for _, e := range elements {
		objs = append(objs, slack.NewTextBlockObject(slack.MarkdownType, e, false, false))
	}
	return slack.NewContextBlock("", objs...)
}

// Image creates an image block. The title is included only when non-empty;
// otherwise the field is absent from the serialized block.
func Image(imageURL, altText, title string) *slack.ImageBlock {
	var titleObj *slack.TextBlockObject
	if title != "" {
		titleObj = slack.NewTextBlockObject(slack.PlainTextType, title, false, false)
	}
	return slack.NewImageBlock(imageURL, altText, "", titleObj)
}

// Button creates a button element. Value and URL are included only when
// non-empty. Style is stored only when it is "primary" or "danger"; any other
// value is dropped silently, not rejected.
func Button(text, actionID, value, url, style string) *slack.ButtonBlockElement {
	btn := slack.NewButtonBlockElement(actionID, value,
		slack.NewTextBlockObject(slack.PlainTextType, text, false, false))
	if url != "" {
		btn.URL = url
	}
	switch slack.Style(style) {
	case slack.StylePrimary, slack.StyleDanger:
		btn.Style = slack.Style(style)
	}
	return btn
}

// Actions wraps interactive elements into an actions block, preserving order.
func Actions(elements ...slack.BlockElement) *slack.ActionBlock {
	return slack.NewActionBlock("", elements...)
}

// SelectMenu creates a static select menu element. Each option pair expands
// into an option object with a plain-text label.
func SelectMenu(placeholder, actionID string, options [][2]string) *slack.SelectBlockElement {
	objs := make([]*slack.OptionBlockObject, 0, len(options))
	for _, opt := range options {
		objs = append(objs, slack.NewOptionBlockObject(
			opt[1],
			slack.NewTextBlockObject(slack.PlainTextType, opt[0], false, false),
			nil,
		))
	}
	return slack.NewOptionsSelectBlockElement(slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, placeholder, false, false),
		actionID, objs...)
}

// SectionWithAccessory creates a section block with mrkdwn text and one
// accessory element.
func SectionWithAccessory(text string, accessory slack.BlockElement) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
		nil,
		slack.NewAccessory(accessory),
	)
}

// CodeBlock creates a section block whose mrkdwn text is the code fenced in
// triple backticks. With a language, the opening fence is followed by the
// language and a newline before the code; without one, the code follows the
// fence directly. Rendering clients depend on this exact asymmetry.
func CodeBlock(code, language string) *slack.SectionBlock {
	var formatted string
	if language != "" {
		formatted = fmt.Sprintf("```%s\n%s```", language, code)
	} else {
		formatted = fmt.Sprintf("```%s```", code)
	}
	return Section(formatted)
}

// QuoteBlock creates a section block quoting the text. The quote marker is
// prepended with no space after it.
func QuoteBlock(text string) *slack.SectionBlock {
	return Section(">" + text)
}
