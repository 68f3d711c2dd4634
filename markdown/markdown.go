// Package markdown converts model-generated Markdown answers into a small set
// of display blocks (headings, paragraphs, lists) that API clients can render
// without a Markdown engine of their own.
package markdown

import (
	"regexp"
	"strings"
)

type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
)

// Block is one rendered unit of an answer. Level is set for headings, Text
// for headings and paragraphs, Items for lists.
type Block struct {
	Type  BlockType `json:"type"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	orderedRe = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)
	boldRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe  = regexp.MustCompile(`\*(.+?)\*`)
)

// Parse scans text line by line. Blank lines close the open paragraph or
// list, heading markers close everything, list markers close an open
// paragraph, and any other line continues whatever is open. Emphasis markers
// are stripped from all emitted text.
func Parse(text string) []Block {
	var (
		blocks    []Block
		paraLines []string
		items     []string
	)

	flushParagraph := func() {
		if len(paraLines) == 0 {
			return
		}
		blocks = append(blocks, Block{
			Type: BlockParagraph,
			Text: StripEmphasis(strings.Join(paraLines, " ")),
		})
		paraLines = nil
	}
	flushList := func() {
		if len(items) == 0 {
			return
		}
		stripped := make([]string, len(items))
		for i, it := range items {
			stripped[i] = StripEmphasis(it)
		}
		blocks = append(blocks, Block{Type: BlockList, Items: stripped})
		items = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushParagraph()
			flushList()
			continue
		}
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			flushParagraph()
			flushList()
			blocks = append(blocks, Block{
				Type:  BlockHeading,
				Level: len(m[1]),
				Text:  StripEmphasis(strings.TrimSpace(m[2])),
			})
			continue
		}
		if m := bulletRe.FindStringSubmatch(trimmed); m != nil {
			flushParagraph()
			items = append(items, m[1])
			continue
		}
		if m := orderedRe.FindStringSubmatch(trimmed); m != nil {
			flushParagraph()
			items = append(items, m[1])
			continue
		}
		if len(items) > 0 {
			// Continuation of the previous list item.
			items[len(items)-1] += " " + trimmed
			continue
		}
		paraLines = append(paraLines, trimmed)
	}
	flushParagraph()
	flushList()
	return blocks
}

// StripEmphasis removes bold and italic markers, keeping the wrapped text.
func StripEmphasis(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	return italicRe.ReplaceAllString(s, "$1")
}
