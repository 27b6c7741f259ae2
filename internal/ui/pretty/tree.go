package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/spanedit/pkg/span"
)

// MatchHeader describes where a match tree came from.
type MatchHeader struct {
	// Index is the 1-based match number.
	Index int

	// Line is the 1-based line in line mode, 0 otherwise.
	Line int

	// Offset is the absolute byte offset of the match.
	Offset int
}

// FormatTree renders a match's span tree, one span per line:
//
//	match 1 at offset 0 "Xilofon Reynolds"
//	├── [1] first 0..7 "Xilofon"
//	└── [2] last 8..16 "Reynolds"
//
// Offsets are relative to the parent span. Edited spans show their
// current text after an arrow.
func (s *Styles) FormatTree(header MatchHeader, tree *span.Tree) string {
	var b strings.Builder

	root, ok := tree.Span(span.Root)
	if !ok {
		return ""
	}

	where := fmt.Sprintf("at offset %d", header.Offset)
	if header.Line > 0 {
		where = fmt.Sprintf("on line %d at offset %d", header.Line, header.Offset)
	}
	fmt.Fprintf(&b, "%s %s %s\n",
		s.Bold.Render("match "+strconv.Itoa(header.Index)),
		s.Dim.Render(where),
		s.spanText(root))

	s.writeChildren(&b, tree, root.Children, "")
	return b.String()
}

func (s *Styles) writeChildren(b *strings.Builder, tree *span.Tree, children []span.ID, indent string) {
	for i, id := range children {
		child, ok := tree.Span(id)
		if !ok {
			continue
		}

		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}

		b.WriteString(s.TreeBranch.Render(indent + branch))
		b.WriteString(s.SpanGroup.Render(fmt.Sprintf("[%d]", child.Group)))
		if child.Label != "" {
			b.WriteString(" " + s.SpanLabel.Render(child.Label))
		}
		b.WriteString(" " + s.SpanRange.Render(fmt.Sprintf("%d..%d", child.Start, child.End)))
		b.WriteString(" " + s.spanText(child))
		b.WriteByte('\n')

		s.writeChildren(b, tree, child.Children, indent+next)
	}
}

func (s *Styles) spanText(sp span.Span) string {
	text := s.SpanText.Render(strconv.Quote(sp.Original))
	if sp.Edited {
		text += s.Dim.Render(" → ") + s.SpanEdited.Render(strconv.Quote(sp.Current))
	}
	return text
}
