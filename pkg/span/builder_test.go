package span_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/spanedit/pkg/matcher"
	"github.com/yaklabco/spanedit/pkg/span"
)

// firstMatch compiles pattern and returns its first match in text.
func firstMatch(t *testing.T, engine matcher.Engine, pattern, text string) *matcher.Match {
	t.Helper()

	m, err := matcher.Compile(engine, pattern, matcher.Flags{})
	require.NoError(t, err)

	match, err := m.Scanner(text).Next(0)
	require.NoError(t, err)
	require.NotNil(t, match, "pattern %q should match %q", pattern, text)
	return match
}

// manualMatch builds a match over text from absolute bounds; a bound of
// {-1, -1} marks a group that did not participate.
func manualMatch(text string, names map[string]int, bounds ...[2]int) *matcher.Match {
	groups := make([]matcher.Group, len(bounds))
	for i, b := range bounds {
		if b[0] < 0 {
			continue
		}
		groups[i] = matcher.Group{Start: b[0], End: b[1], Text: text[b[0]:b[1]], Matched: true}
	}
	return &matcher.Match{
		Start:  bounds[0][0],
		End:    bounds[0][1],
		Groups: groups,
		Names:  names,
	}
}

// shape renders the tree as nested group numbers for structural comparison.
type shape struct {
	Group    int
	Label    string
	Start    int
	End      int
	Children []shape
}

func treeShape(tree *span.Tree, id span.ID) shape {
	s, _ := tree.Span(id)
	out := shape{Group: s.Group, Label: s.Label, Start: s.Start, End: s.End}
	for _, child := range s.Children {
		out.Children = append(out.Children, treeShape(tree, child))
	}
	return out
}

func TestBuild_NamedCaptures(t *testing.T) {
	t.Parallel()

	match := firstMatch(t, matcher.EngineRE2, `(?P<first>\w+) (?P<last>\w+)`, "Xilofon Reynolds is a musician")
	tree, err := span.Build(match)
	require.NoError(t, err)

	want := shape{
		Group: 0, Start: 0, End: 16,
		Children: []shape{
			{Group: 1, Label: "first", Start: 0, End: 7},
			{Group: 2, Label: "last", Start: 8, End: 16},
		},
	}
	if diff := cmp.Diff(want, treeShape(tree, span.Root)); diff != "" {
		t.Errorf("tree shape mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"first", "last"}, tree.Names())
	assert.True(t, tree.HasChildren())
	assert.Equal(t, 0, tree.Base())
}

func TestBuild_NestedOffsetsAreParentRelative(t *testing.T) {
	t.Parallel()

	// Whole match starts at 4 in the text; group 2 sits inside group 1.
	match := firstMatch(t, matcher.EngineRE2, `k=(v(\d+))`, "aaa k=v123 zzz")
	tree, err := span.Build(match)
	require.NoError(t, err)

	assert.Equal(t, 4, tree.Base())

	want := shape{
		Group: 0, Start: 0, End: 6,
		Children: []shape{{
			Group: 1, Start: 2, End: 6,
			Children: []shape{{Group: 2, Start: 1, End: 4}},
		}},
	}
	if diff := cmp.Diff(want, treeShape(tree, span.Root)); diff != "" {
		t.Errorf("tree shape mismatch (-want +got):\n%s", diff)
	}

	inner, ok := tree.Group(2)
	require.True(t, ok)
	s, _ := tree.Span(inner)
	assert.Equal(t, 3, s.Offset, "offset stays relative to the whole match")
}

func TestBuild_ContainmentInvariant(t *testing.T) {
	t.Parallel()

	patterns := []struct {
		pattern string
		text    string
	}{
		{`((a)(b(c)))(d)?`, "xxabcd"},
		{`(?P<date>(?P<y>\d{4})-(?P<m>\d\d)-(?P<d>\d\d))(?:T(?P<time>(\d\d):(\d\d)))?`, "at 2024-01-31T10:45 ok"},
		{`(((x)))`, "x"},
		{`(a|(b))+`, "abab"},
		{`()(a)()`, "a"},
	}

	for _, tc := range patterns {
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()

			tree, err := span.Build(firstMatch(t, matcher.EngineRE2, tc.pattern, tc.text))
			require.NoError(t, err)

			tree.Walk(func(s span.Span, _ int) bool {
				if s.Parent == span.None {
					assert.Equal(t, span.Root, s.ID)
					return true
				}
				parent, ok := tree.Span(s.Parent)
				require.True(t, ok)

				assert.LessOrEqual(t, 0, s.Start)
				assert.LessOrEqual(t, s.Start, s.End)
				assert.LessOrEqual(t, s.End, len(parent.Original))

				assert.LessOrEqual(t, parent.Offset, s.Offset)
				assert.LessOrEqual(t, s.Offset+len(s.Original), parent.Offset+len(parent.Original))
				return true
			})
		})
	}
}

func TestBuild_ChildrenSortedAndDisjoint(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `(\w+)-(\w+)-(\w+)`, "one-two-three"))
	require.NoError(t, err)

	root, _ := tree.Span(span.Root)
	require.Len(t, root.Children, 3)

	prevEnd := 0
	for _, id := range root.Children {
		s, _ := tree.Span(id)
		assert.GreaterOrEqual(t, s.Start, prevEnd)
		prevEnd = s.End
	}
}

func TestBuild_EqualRangesPreferLowerGroup(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `((a))`, "a"))
	require.NoError(t, err)

	want := shape{
		Group: 0, Start: 0, End: 1,
		Children: []shape{{
			Group: 1, Start: 0, End: 1,
			Children: []shape{{Group: 2, Start: 0, End: 1}},
		}},
	}
	if diff := cmp.Diff(want, treeShape(tree, span.Root)); diff != "" {
		t.Errorf("tree shape mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ContainerNumberedAfterContained(t *testing.T) {
	t.Parallel()

	// Group 1 lies inside group 2, as engines with .NET numbering produce
	// when a named group encloses an unnamed one.
	text := "abc"
	match := manualMatch(text, map[string]int{"outer": 2}, [2]int{0, 3}, [2]int{1, 2}, [2]int{0, 3})

	tree, err := span.Build(match)
	require.NoError(t, err)

	want := shape{
		Group: 0, Start: 0, End: 3,
		Children: []shape{{
			Group: 2, Label: "outer", Start: 0, End: 3,
			Children: []shape{{Group: 1, Start: 1, End: 2}},
		}},
	}
	if diff := cmp.Diff(want, treeShape(tree, span.Root)); diff != "" {
		t.Errorf("tree shape mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, text, tree.Render())
}

func TestBuild_SkipsNonParticipatingGroups(t *testing.T) {
	t.Parallel()

	match := firstMatch(t, matcher.EngineRE2, `(?P<cat>cat)|(?P<dog>dog)`, "hotdog")
	tree, err := span.Build(match)
	require.NoError(t, err)

	assert.Equal(t, 2, tree.Len(), "root plus the dog capture")

	_, ok := tree.Lookup("cat")
	assert.False(t, ok)
	_, ok = tree.Group(1)
	assert.False(t, ok)

	id, ok := tree.Lookup("dog")
	require.True(t, ok)
	s, _ := tree.Span(id)
	assert.Equal(t, 2, s.Group)
	assert.Equal(t, []string{"dog"}, tree.Names())
}

func TestBuild_StructuralViolations(t *testing.T) {
	t.Parallel()

	text := "0123456789ab"

	tests := []struct {
		name   string
		match  *matcher.Match
		group  int
		other  int
		reason string
	}{
		{
			name:   "partial overlap",
			match:  manualMatch(text, nil, [2]int{0, 10}, [2]int{0, 5}, [2]int{3, 8}),
			group:  2,
			other:  1,
			reason: "captures partially overlap",
		},
		{
			name:   "outside the whole match",
			match:  manualMatch(text, nil, [2]int{0, 10}, [2]int{8, 12}),
			group:  1,
			other:  -1,
			reason: "capture lies outside the whole match",
		},
		{
			name: "text disagrees with offsets",
			match: &matcher.Match{
				Start: 0, End: 4,
				Groups: []matcher.Group{
					{Start: 0, End: 4, Text: "0123", Matched: true},
					{Start: 1, End: 3, Text: "xyz", Matched: true},
				},
			},
			group:  1,
			other:  -1,
			reason: "capture text does not match its offsets",
		},
		{
			name:   "whole match missing",
			match:  manualMatch(text, nil, [2]int{-1, -1}),
			group:  0,
			other:  -1,
			reason: "match has no whole-match group",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tree, err := span.Build(tc.match)
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.True(t, errors.Is(err, span.ErrStructuralInvariant))

			var invErr *span.InvariantError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, tc.group, invErr.Group)
			assert.Equal(t, tc.other, invErr.Other)
			assert.Equal(t, tc.reason, invErr.Reason)
		})
	}
}

func TestBuild_NilMatch(t *testing.T) {
	t.Parallel()

	_, err := span.Build(nil)
	assert.ErrorIs(t, err, span.ErrStructuralInvariant)
}

func TestBuild_IndependentTrees(t *testing.T) {
	t.Parallel()

	m := matcher.MustCompile(matcher.EngineRE2, `(\w)(\w)`, matcher.Flags{})
	scanner := m.Scanner("ab cd")

	first, err := scanner.Next(0)
	require.NoError(t, err)
	second, err := scanner.Next(first.End)
	require.NoError(t, err)

	treeA, err := span.Build(first)
	require.NoError(t, err)
	treeB, err := span.Build(second)
	require.NoError(t, err)

	treeA.SetByIndex(1, "X")
	treeA.SetWholeText("gone")

	assert.Equal(t, "gone", treeA.Render())
	assert.False(t, treeA.HasChildren())

	assert.Equal(t, "cd", treeB.Render())
	assert.True(t, treeB.HasChildren())
	rootB, _ := treeB.Span(span.Root)
	assert.Len(t, rootB.Children, 2)

	// Views hand out copies; editing one must not reach the tree.
	rootB.Children[0] = span.None
	again, _ := treeB.Span(span.Root)
	assert.NotEqual(t, span.None, again.Children[0])
}

func TestBuild_Regexp2NamedGroupsNumberedLast(t *testing.T) {
	t.Parallel()

	// regexp2 numbers unnamed groups first: (\d+) is 1, year is 2.
	match := firstMatch(t, matcher.EngineRegexp2, `(?<year>(\d+)-)x`, "on 2024-x")
	tree, err := span.Build(match)
	require.NoError(t, err)

	year, ok := tree.Lookup("year")
	require.True(t, ok)
	s, _ := tree.Span(year)
	assert.Equal(t, 2, s.Group)
	require.Len(t, s.Children, 1)

	inner, _ := tree.Span(s.Children[0])
	assert.Equal(t, 1, inner.Group)
	assert.Equal(t, "2024", inner.Original)
}
