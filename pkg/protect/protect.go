// Package protect locates regions of a document that rewrites must leave
// untouched, such as Markdown code.
package protect

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Flavors accepted by NewMarkdown.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Range is a half-open byte range.
type Range struct {
	Start int
	End   int
}

// Ranges is a sorted list of non-overlapping ranges.
type Ranges []Range

// Overlaps reports whether [start, end) touches any range. A zero-width
// interval overlaps a range that strictly contains its position or starts
// at it.
func (r Ranges) Overlaps(start, end int) bool {
	idx := sort.Search(len(r), func(i int) bool { return r[i].End > start })
	if idx >= len(r) {
		return false
	}
	if start == end {
		return r[idx].Start <= start
	}
	return r[idx].Start < end
}

// Len returns the total number of protected bytes.
func (r Ranges) Len() int {
	total := 0
	for _, rng := range r {
		total += rng.End - rng.Start
	}
	return total
}

// normalize sorts ranges and merges the ones that touch or overlap.
func normalize(ranges []Range) Ranges {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(a, b int) bool { return ranges[a].Start < ranges[b].Start })

	out := Ranges{ranges[0]}
	for _, rng := range ranges[1:] {
		last := &out[len(out)-1]
		if rng.Start <= last.End {
			last.End = max(last.End, rng.End)
			continue
		}
		out = append(out, rng)
	}
	return out
}

// Markdown finds code regions in Markdown documents. It is safe for
// concurrent use.
type Markdown struct {
	flavor string
	opts   []goldmark.Option
}

// NewMarkdown returns a Markdown scanner for the given flavor. Unknown
// flavors fall back to CommonMark.
func NewMarkdown(flavor string) *Markdown {
	var opts []goldmark.Option
	switch flavor {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	default:
		flavor = FlavorCommonMark
	}
	return &Markdown{flavor: flavor, opts: opts}
}

// Flavor returns the configured flavor.
func (m *Markdown) Flavor() string { return m.flavor }

// Code returns the byte ranges of fenced code blocks, indented code blocks
// and inline code spans in content. Fence info strings are protected along
// with the code.
func (m *Markdown) Code(content []byte) Ranges {
	md := goldmark.New(m.opts...)
	doc := md.Parser().Parse(text.NewReader(content), parser.WithContext(parser.NewContext()))

	var ranges []Range
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			if n.Info != nil {
				ranges = append(ranges, Range{Start: n.Info.Segment.Start, End: n.Info.Segment.Stop})
			}
			ranges = appendLines(ranges, n)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			ranges = appendLines(ranges, n)
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if rng, ok := inlineRange(n); ok {
				ranges = append(ranges, rng)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return normalize(ranges)
}

// MarkdownCode is a convenience wrapper for NewMarkdown(FlavorGFM).Code.
func MarkdownCode(content []byte) Ranges {
	return NewMarkdown(FlavorGFM).Code(content)
}

func appendLines(ranges []Range, node ast.Node) []Range {
	lines := node.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		if seg.Stop > seg.Start {
			ranges = append(ranges, Range{Start: seg.Start, End: seg.Stop})
		}
	}
	return ranges
}

// inlineRange spans the text children of an inline node.
func inlineRange(node ast.Node) (Range, bool) {
	start, end := -1, -1
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		t, ok := child.(*ast.Text)
		if !ok {
			continue
		}
		if start == -1 || t.Segment.Start < start {
			start = t.Segment.Start
		}
		if t.Segment.Stop > end {
			end = t.Segment.Stop
		}
	}
	if start < 0 || end <= start {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}
