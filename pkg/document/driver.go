package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/spanedit/pkg/matcher"
	"github.com/yaklabco/spanedit/pkg/span"
)

// DefaultTerminator joins lines in ProcessLines when no terminator is given.
const DefaultTerminator = "\r\n"

// Callback rewrites one node. hasChildren is true only for match nodes whose
// root has at least one capture beneath it. The node must not be retained
// after the callback returns.
type Callback[S any] func(state S, node *Node, hasChildren bool)

// BuildNodes scans text with m and returns gap and match nodes that cover
// the text contiguously and in order.
//
// A zero-width match moves the next search forward by one rune, so the scan
// ends after at most len(text)+1 searches.
func BuildNodes(m matcher.Matcher, text string) ([]*Node, error) {
	return buildNodes(m, text, 0, 0)
}

func buildNodes(m matcher.Matcher, text string, line, base int) ([]*Node, error) {
	scanner := m.Scanner(text)

	var nodes []*Node
	cursor := 0
	from := 0

	for from <= len(text) {
		match, err := scanner.Next(from)
		if err != nil {
			return nil, fmt.Errorf("scan at offset %d: %w", base+from, err)
		}
		if match == nil {
			break
		}
		if match.Start < from || match.End < match.Start || match.End > len(text) {
			return nil, fmt.Errorf("%w: match [%d,%d) outside search window at %d",
				span.ErrStructuralInvariant, base+match.Start, base+match.End, base+from)
		}

		if match.Start > cursor {
			nodes = append(nodes, newGap(text[cursor:match.Start], line, base+cursor))
		}

		tree, err := span.Build(match)
		if err != nil {
			return nil, fmt.Errorf("match at offset %d: %w", base+match.Start, err)
		}
		nodes = append(nodes, newMatch(tree, line, base+match.Start))

		cursor = match.End
		from = match.End
		if match.IsEmpty() {
			from += runeWidth(text, from)
		}
	}

	if cursor < len(text) {
		nodes = append(nodes, newGap(text[cursor:], line, base+cursor))
	}

	return nodes, nil
}

// runeWidth returns the byte width of the rune at pos, or 1 at the end of
// text or on invalid UTF-8.
func runeWidth(text string, pos int) int {
	if pos >= len(text) {
		return 1
	}
	_, size := utf8.DecodeRuneInString(text[pos:])
	return size
}

// Apply invokes fn once per node in document order.
func Apply[S any](nodes []*Node, fn Callback[S], state S) {
	for _, node := range nodes {
		fn(state, node, node.HasChildren())
	}
}

// Render concatenates the current text of every node.
func Render(nodes []*Node) string {
	var b strings.Builder
	for _, node := range nodes {
		b.WriteString(node.Text())
	}
	return b.String()
}

// ProcessWhole builds the node sequence for text, applies fn and renders
// the result.
func ProcessWhole[S any](m matcher.Matcher, text string, fn Callback[S], state S) (string, error) {
	nodes, err := BuildNodes(m, text)
	if err != nil {
		return "", err
	}
	Apply(nodes, fn, state)
	return Render(nodes), nil
}

// BuildLineNodes runs BuildNodes on every logical line of text. Nodes keep
// absolute offsets and record their 1-based line number. Terminators are
// not part of any node.
func BuildLineNodes(m matcher.Matcher, text string) ([]*Node, error) {
	var nodes []*Node
	for _, line := range SplitLines(text) {
		lineNodes, err := buildNodes(m, line.Text, line.Number, line.Offset)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		nodes = append(nodes, lineNodes...)
	}
	return nodes, nil
}

// ProcessLines runs the ProcessWhole pipeline on every logical line of text
// independently, so matches never cross a line boundary. Lines are joined
// with terminator, which also follows the last line; the original
// terminators are not preserved. An empty terminator means
// DefaultTerminator.
func ProcessLines[S any](
	m matcher.Matcher,
	text string,
	fn Callback[S],
	state S,
	terminator string,
) (string, error) {
	if terminator == "" {
		terminator = DefaultTerminator
	}

	var b strings.Builder
	b.Grow(len(text))

	for _, line := range SplitLines(text) {
		nodes, err := buildNodes(m, line.Text, line.Number, line.Offset)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", line.Number, err)
		}
		Apply(nodes, fn, state)
		b.WriteString(Render(nodes))
		b.WriteString(terminator)
	}

	return b.String(), nil
}
