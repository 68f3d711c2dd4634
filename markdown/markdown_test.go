package markdown

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Block
	}{
		{
			name: "heading paragraph list",
			text: "### Heading\nSome para.\n- item one\n- item two",
			want: []Block{
				{Type: BlockHeading, Level: 3, Text: "Heading"},
				{Type: BlockParagraph, Text: "Some para."},
				{Type: BlockList, Items: []string{"item one", "item two"}},
			},
		},
		{
			name: "emphasis stripped from paragraph",
			text: "**bold** and *italic*",
			want: []Block{
				{Type: BlockParagraph, Text: "bold and italic"},
			},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "blank line separates paragraphs",
			text: "first paragraph\ncontinues here\n\nsecond paragraph",
			want: []Block{
				{Type: BlockParagraph, Text: "first paragraph continues here"},
				{Type: BlockParagraph, Text: "second paragraph"},
			},
		},
		{
			name: "ordered list markers",
			text: "1. file an FIR\n2) consult a lawyer",
			want: []Block{
				{Type: BlockList, Items: []string{"file an FIR", "consult a lawyer"}},
			},
		},
		{
			name: "list item continuation line",
			text: "- a long item\n  that wraps\n- next item",
			want: []Block{
				{Type: BlockList, Items: []string{"a long item that wraps", "next item"}},
			},
		},
		{
			name: "heading levels",
			text: "# Top\n###### Deep",
			want: []Block{
				{Type: BlockHeading, Level: 1, Text: "Top"},
				{Type: BlockHeading, Level: 6, Text: "Deep"},
			},
		},
		{
			name: "heading closes an open list",
			text: "- one\n- two\n## Next\npara",
			want: []Block{
				{Type: BlockList, Items: []string{"one", "two"}},
				{Type: BlockHeading, Level: 2, Text: "Next"},
				{Type: BlockParagraph, Text: "para"},
			},
		},
		{
			name: "asterisk bullets and emphasis in items",
			text: "* **Section 378** covers theft\n* plain item",
			want: []Block{
				{Type: BlockList, Items: []string{"Section 378 covers theft", "plain item"}},
			},
		},
		{
			name: "emphasis in heading",
			text: "## **Punishment**",
			want: []Block{
				{Type: BlockHeading, Level: 2, Text: "Punishment"},
			},
		},
		{
			name: "italic-wrapped line is not a bullet",
			text: "*wholly italic line*",
			want: []Block{
				{Type: BlockParagraph, Text: "wholly italic line"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) =\n%+v\nwant\n%+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStripEmphasis(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**bold**", "bold"},
		{"*italic*", "italic"},
		{"**bold** and *italic*", "bold and italic"},
		{"no markers", "no markers"},
		{"a * b", "a * b"},
		{"**outer *inner* text**", "outer inner text"},
	}
	for _, tt := range tests {
		if got := StripEmphasis(tt.in); got != tt.want {
			t.Errorf("StripEmphasis(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
