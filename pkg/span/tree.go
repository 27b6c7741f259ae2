// Package span builds editable containment trees from regular-expression
// matches and renders them back to text.
//
// A Tree holds one Span per participating capture group. The whole match is
// the root; every other capture hangs beneath the smallest capture that
// contains it. Spans live in an arena owned by the Tree and are addressed by
// ID, so a tree never shares nodes or child lists with another tree.
//
// Offsets are stored relative to the parent span. Rendering a span walks its
// children and splices their current text into the parent's original text,
// so an edit anywhere in the tree surfaces in every ancestor.
package span

import (
	"sort"
	"strings"
)

// ID addresses a span within its Tree.
type ID int

const (
	// None is the ID of an absent span.
	None ID = -1

	// Root is the ID of the whole-match span.
	Root ID = 0
)

// Span is a read-only view of one node.
type Span struct {
	ID ID

	// Group is the capture group number; 0 for the whole match.
	Group int

	// Label is the capture name, empty for positional captures.
	Label string

	// Original is the matched text. It never changes.
	Original string

	// Current is the text emitted for a childless span.
	Current string

	// Start and End are half-open offsets in the parent's coordinate space.
	// For the root they are 0 and len(Original).
	Start int
	End   int

	// Offset is the start of the span relative to the whole match.
	Offset int

	Parent   ID
	Children []ID

	// Edited is true once the span's text has been replaced.
	Edited bool

	// Detached is true when an ancestor was replaced; the span no longer
	// contributes to rendering.
	Detached bool
}

type record struct {
	group    int
	label    string
	original string
	current  string
	start    int
	end      int
	offset   int
	parent   ID
	children []ID
	edited   bool
	detached bool
}

// Tree is the containment tree of one match.
type Tree struct {
	spans  []record
	groups []ID
	names  map[string]ID
	base   int
}

// Base returns the absolute offset of the match within the scanned text.
func (t *Tree) Base() int { return t.base }

// Len returns the number of spans, including detached ones.
func (t *Tree) Len() int { return len(t.spans) }

// HasChildren reports whether the root has at least one child.
func (t *Tree) HasChildren() bool {
	return len(t.spans) > 0 && len(t.spans[Root].children) > 0
}

// Span returns a view of the span with the given ID.
func (t *Tree) Span(id ID) (Span, bool) {
	if !t.valid(id) {
		return Span{}, false
	}
	rec := &t.spans[id]
	children := make([]ID, len(rec.children))
	copy(children, rec.children)
	return Span{
		ID:       id,
		Group:    rec.group,
		Label:    rec.label,
		Original: rec.original,
		Current:  rec.current,
		Start:    rec.start,
		End:      rec.end,
		Offset:   rec.offset,
		Parent:   rec.parent,
		Children: children,
		Edited:   rec.edited,
		Detached: rec.detached,
	}, true
}

// Group returns the ID of the span for a capture group number.
func (t *Tree) Group(index int) (ID, bool) {
	if index < 0 || index >= len(t.groups) || t.groups[index] == None {
		return None, false
	}
	return t.groups[index], true
}

// Lookup returns the ID of the span for a capture name.
func (t *Tree) Lookup(name string) (ID, bool) {
	id, ok := t.names[name]
	return id, ok
}

// Names returns the capture names that participated, sorted.
func (t *Tree) Names() []string {
	names := make([]string, 0, len(t.names))
	for name := range t.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits attached spans in pre-order. Returning false from fn skips
// the span's children.
func (t *Tree) Walk(fn func(s Span, depth int) bool) {
	if len(t.spans) == 0 {
		return
	}
	t.walk(Root, 0, fn)
}

func (t *Tree) walk(id ID, depth int, fn func(Span, int) bool) {
	s, _ := t.Span(id)
	if !fn(s, depth) {
		return
	}
	for _, child := range t.spans[id].children {
		t.walk(child, depth+1, fn)
	}
}

// Render returns the current text of the whole match.
func (t *Tree) Render() string {
	return t.RenderSpan(Root)
}

// RenderSpan returns the current text of one span.
func (t *Tree) RenderSpan(id ID) string {
	if !t.valid(id) {
		return ""
	}
	var b strings.Builder
	t.render(&b, id)
	return b.String()
}

func (t *Tree) render(b *strings.Builder, id ID) {
	rec := &t.spans[id]
	if len(rec.children) == 0 {
		b.WriteString(rec.current)
		return
	}

	cursor := 0
	for _, childID := range rec.children {
		child := &t.spans[childID]
		b.WriteString(rec.original[cursor:child.start])
		t.render(b, childID)
		cursor = child.end
	}
	b.WriteString(rec.original[cursor:])
}

func (t *Tree) valid(id ID) bool {
	return id >= 0 && int(id) < len(t.spans)
}
