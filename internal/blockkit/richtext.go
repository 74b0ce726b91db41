package blockkit

import "github.com/slack-go/slack"

// List styles for RichTextList.
const (
	ListStyleBullet  = slack.RTEListBullet
	ListStyleOrdered = slack.RTEListOrdered
)

// RichTextListBlock is a block-level rich_text_list. Slack nests lists inside
// rich_text blocks, but the wire format consumed downstream carries the list
// at block level, so the list doubles as a Block here.
type RichTextListBlock struct {
	slack.RichTextList
}

// BlockType returns the block type of the rich text list.
func (b RichTextListBlock) BlockType() slack.MessageBlockType {
	return slack.MessageBlockType(b.RichTextList.Type)
}

// ID returns the block identifier; rich text lists carry none.
func (b RichTextListBlock) ID() string {
	return ""
}

// RichText creates a rich_text block wrapping the given sub-elements.
func RichText(elements ...slack.RichTextElement) *slack.RichTextBlock {
	return slack.NewRichTextBlock("", elements...)
}

// RichTextSection creates a rich_text_section from inline elements.
func RichTextSection(elements ...slack.RichTextSectionElement) *slack.RichTextSection {
	return slack.NewRichTextSection(elements...)
}

// RichTextList creates a block-level rich text list. Each item becomes a
// rich_text_section containing a single plain text leaf.
func RichTextList(items []string, style slack.RichTextListElementType) RichTextListBlock {
	elements := make([]slack.RichTextElement, 0, len(items))
	for _, item := range items {
		elements = append(elements, slack.NewRichTextSection(
			slack.NewRichTextSectionTextElement(item, nil),
		))
	}
	return RichTextListBlock{
		RichTextList: slack.RichTextList{
			Type:     slack.RTEList,
			Style:    style,
			Elements: elements,
		},
	}
}
