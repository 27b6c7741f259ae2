// Package document drives a matcher over a whole text, splitting it into an
// ordered sequence of gap and match nodes that together cover the text,
// lets a callback rewrite the nodes, and renders the result.
package document

import "github.com/yaklabco/spanedit/pkg/span"

// Kind distinguishes gap nodes from match nodes.
type Kind int

const (
	// KindGap is unmatched text between matches.
	KindGap Kind = iota

	// KindMatch is a match with its capture tree.
	KindMatch
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGap:
		return "gap"
	case KindMatch:
		return "match"
	default:
		return "unknown"
	}
}

// Node is one element of a document: either literal gap text or a match
// tree. Callbacks rewrite nodes through the Set methods.
type Node struct {
	kind     Kind
	original string
	text     string
	tree     *span.Tree
	line     int
	offset   int
}

func newGap(text string, line, offset int) *Node {
	return &Node{kind: KindGap, original: text, text: text, line: line, offset: offset}
}

func newMatch(tree *span.Tree, line, offset int) *Node {
	return &Node{kind: KindMatch, tree: tree, line: line, offset: offset}
}

// NewGap returns a gap node holding text.
func NewGap(text string) *Node {
	return newGap(text, 0, 0)
}

// NewMatch returns a match node wrapping tree.
func NewMatch(tree *span.Tree) *Node {
	return newMatch(tree, 0, tree.Base())
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// IsMatch reports whether the node is a match tree.
func (n *Node) IsMatch() bool { return n.kind == KindMatch }

// Tree returns the match tree, or nil for a gap.
func (n *Node) Tree() *span.Tree { return n.tree }

// Line returns the 1-based line the node came from, or 0 when the document
// was processed as a whole.
func (n *Node) Line() int { return n.line }

// Offset returns the byte offset of the node in the processed input.
func (n *Node) Offset() int { return n.offset }

// HasChildren reports whether the node is a match whose root has children.
func (n *Node) HasChildren() bool {
	return n.tree != nil && n.tree.HasChildren()
}

// Original returns the input text the node covers.
func (n *Node) Original() string {
	if n.tree != nil {
		return n.tree.OriginalByIndex(0)
	}
	return n.original
}

// Text returns the node's current rendering.
func (n *Node) Text() string {
	if n.tree != nil {
		return n.tree.Render()
	}
	return n.text
}

// String implements fmt.Stringer.
func (n *Node) String() string { return n.Text() }

// Edited reports whether the node has been rewritten.
func (n *Node) Edited() bool {
	if n.tree != nil {
		return n.tree.Edited()
	}
	return n.text != n.original
}

// TextByIndex returns the current text of a capture group, or "".
func (n *Node) TextByIndex(index int) string {
	if n.tree == nil {
		return ""
	}
	return n.tree.TextByIndex(index)
}

// TextByName returns the current text of a named capture, or "".
func (n *Node) TextByName(name string) string {
	if n.tree == nil {
		return ""
	}
	return n.tree.TextByName(name)
}

// SetByIndex replaces a capture group's text. It is a no-op on gaps.
func (n *Node) SetByIndex(index int, text string) {
	if n.tree != nil {
		n.tree.SetByIndex(index, text)
	}
}

// SetByName replaces a named capture's text. It is a no-op on gaps.
func (n *Node) SetByName(name string, text string) {
	if n.tree != nil {
		n.tree.SetByName(name, text)
	}
}

// SetWholeText replaces the node's entire text.
func (n *Node) SetWholeText(text string) {
	if n.tree != nil {
		n.tree.SetWholeText(text)
		return
	}
	n.text = text
}
