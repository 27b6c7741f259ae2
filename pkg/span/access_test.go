package span_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/spanedit/pkg/matcher"
	"github.com/yaklabco/spanedit/pkg/span"
)

func TestRender_Identity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		text    string
	}{
		{`(?P<first>\w+) (?P<last>\w+)`, "Xilofon Reynolds"},
		{`<(\w+)( (\w+)="([^"]*)")*>`, `<a href="x">`},
		{`((a)(b(c)))(d)?`, "abc"},
		{`x`, "x"},
		{`()`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()

			match := firstMatch(t, matcher.EngineRE2, tc.pattern, tc.text)
			tree, err := span.Build(match)
			require.NoError(t, err)

			assert.Equal(t, match.Text(), tree.Render())
			assert.False(t, tree.Edited())

			// Rendering is pure.
			assert.Equal(t, tree.Render(), tree.Render())
		})
	}
}

func TestSet_NamedCaptures(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `(?P<first>\w+) (?P<last>\w+)`, "Xilofon Reynolds"))
	require.NoError(t, err)

	tree.SetByName("first", "Sisonek")
	tree.SetByName("last", "Momosek")

	assert.Equal(t, "Sisonek Momosek", tree.Render())
	assert.Equal(t, "Sisonek", tree.TextByName("first"))
	assert.Equal(t, "Xilofon", tree.OriginalByName("first"))
	assert.Equal(t, "Xilofon Reynolds", tree.OriginalByIndex(0))
	assert.True(t, tree.Edited())
}

func TestSet_Locality(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `(\w+)=(\w+);(\w+)=(\w+)`, "a=1;b=2"))
	require.NoError(t, err)

	tree.SetByIndex(4, "20")

	assert.Equal(t, "a=1;b=20", tree.Render())
	for _, index := range []int{1, 2, 3} {
		id, ok := tree.Group(index)
		require.True(t, ok)
		s, _ := tree.Span(id)
		assert.False(t, s.Edited, "group %d", index)
		assert.Equal(t, s.Original, s.Current, "group %d", index)
	}
}

func TestSet_LengthChangingEditsKeepSiblingsInPlace(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `\[(\w+)\]\((\w+)\)`, "see [text](link) here"))
	require.NoError(t, err)

	tree.SetByIndex(1, "a much longer label")
	tree.SetByIndex(2, "")

	assert.Equal(t, "[a much longer label]()", tree.Render())
}

func TestSet_NestedEditSurfacesInAncestors(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `k=(v(\d+))`, "k=v123"))
	require.NoError(t, err)

	tree.SetByIndex(2, "9")

	assert.Equal(t, "k=v9", tree.Render())
	assert.Equal(t, "v9", tree.RenderSpan(mustGroup(t, tree, 1)))
	// The stored current of a parent is untouched by a child edit.
	assert.Equal(t, "v123", tree.TextByIndex(1))
}

func TestSet_DetachesDescendants(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `((a)(b))c`, "abc"))
	require.NoError(t, err)

	tree.SetByIndex(1, "XY")
	assert.Equal(t, "XYc", tree.Render())

	for _, index := range []int{2, 3} {
		s, _ := tree.Span(mustGroup(t, tree, index))
		assert.True(t, s.Detached, "group %d", index)
	}
	outer, _ := tree.Span(mustGroup(t, tree, 1))
	assert.Empty(t, outer.Children)

	// Writes to a detached span are ignored; reads still see its text.
	tree.SetByIndex(2, "zzz")
	assert.Equal(t, "XYc", tree.Render())
	assert.Equal(t, "a", tree.TextByIndex(2))
}

func TestSet_WholeText(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `(\d+)-(\d+)`, "10-20"))
	require.NoError(t, err)

	tree.SetWholeText("range")

	assert.Equal(t, "range", tree.Render())
	assert.False(t, tree.HasChildren())

	visited := 0
	tree.Walk(func(span.Span, int) bool {
		visited++
		return true
	})
	assert.Equal(t, 1, visited, "detached spans are not walked")
}

func TestSet_UnknownAndNonParticipating(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `(?P<a>x)|(?P<b>y)`, "y"))
	require.NoError(t, err)

	assert.Empty(t, tree.TextByName("a"))
	assert.Empty(t, tree.TextByName("missing"))
	assert.Empty(t, tree.TextByIndex(1))
	assert.Empty(t, tree.TextByIndex(42))
	assert.Empty(t, tree.TextByIndex(-1))

	tree.SetByName("a", "ignored")
	tree.SetByName("missing", "ignored")
	tree.SetByIndex(1, "ignored")
	tree.SetByIndex(42, "ignored")

	assert.Equal(t, "y", tree.Render())
	assert.False(t, tree.Edited())
}

func TestSet_SetTwiceKeepsLastValue(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `(a)(b)`, "ab"))
	require.NoError(t, err)

	tree.SetByIndex(1, "1")
	tree.SetByIndex(1, "2")

	assert.Equal(t, "2b", tree.Render())
}

func TestWalk_DepthAndOrder(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `((a)(b))(c)`, "abc"))
	require.NoError(t, err)

	type visit struct{ group, depth int }
	var got []visit
	tree.Walk(func(s span.Span, depth int) bool {
		got = append(got, visit{s.Group, depth})
		return true
	})

	assert.Equal(t, []visit{{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 1}}, got)

	got = nil
	tree.Walk(func(s span.Span, depth int) bool {
		got = append(got, visit{s.Group, depth})
		return s.Group != 1
	})
	assert.Equal(t, []visit{{0, 0}, {1, 1}, {4, 1}}, got)
}

func TestSpan_InvalidID(t *testing.T) {
	t.Parallel()

	tree, err := span.Build(firstMatch(t, matcher.EngineRE2, `a`, "a"))
	require.NoError(t, err)

	_, ok := tree.Span(span.None)
	assert.False(t, ok)
	_, ok = tree.Span(span.ID(7))
	assert.False(t, ok)
	assert.Empty(t, tree.RenderSpan(span.ID(7)))
}

func mustGroup(t *testing.T, tree *span.Tree, index int) span.ID {
	t.Helper()

	id, ok := tree.Group(index)
	require.True(t, ok, "group %d", index)
	return id
}
