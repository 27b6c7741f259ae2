package matcher_test

import (
	"testing"

	"github.com/creachadair/mds/mtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/spanedit/pkg/matcher"
)

func TestParseEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    matcher.Engine
		wantErr bool
	}{
		{"", matcher.EngineRE2, false},
		{"re2", matcher.EngineRE2, false},
		{"RegExp", matcher.EngineRE2, false},
		{"regexp2", matcher.EngineRegexp2, false},
		{" pcre ", matcher.EngineRegexp2, false},
		{"dotnet", matcher.EngineRegexp2, false},
		{"perl", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := matcher.ParseEngine(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, matcher.ErrUnknownEngine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	_, err := matcher.Compile("awk", "a", matcher.Flags{})
	require.ErrorIs(t, err, matcher.ErrUnknownEngine)

	m, err := matcher.Compile(matcher.EngineRE2, "(", matcher.Flags{})
	require.Error(t, err)
	assert.Nil(t, m)

	m, err = matcher.Compile(matcher.EngineRegexp2, "(", matcher.Flags{})
	require.Error(t, err)
	assert.Nil(t, m)

	// Lookahead is regexp2-only.
	_, err = matcher.Compile(matcher.EngineRE2, "a(?=b)", matcher.Flags{})
	require.Error(t, err)
	_, err = matcher.Compile(matcher.EngineRegexp2, "a(?=b)", matcher.Flags{})
	require.NoError(t, err)
}

func TestMustCompile_Panics(t *testing.T) {
	t.Parallel()

	mtest.MustPanic(t, func() {
		matcher.MustCompile(matcher.EngineRE2, "[", matcher.Flags{})
	})
}

func TestMatcher_Groups(t *testing.T) {
	t.Parallel()

	for _, engine := range []matcher.Engine{matcher.EngineRE2, matcher.EngineRegexp2} {
		t.Run(string(engine), func(t *testing.T) {
			t.Parallel()

			pattern := `(?P<key>\w+)=(?P<value>\w+)`
			if engine == matcher.EngineRegexp2 {
				pattern = `(?<key>\w+)=(?<value>\w+)`
			}
			m := matcher.MustCompile(engine, pattern, matcher.Flags{})

			assert.Equal(t, engine, m.Engine())
			assert.Equal(t, pattern, m.Pattern())
			assert.Equal(t, 2, m.NumGroups())
			assert.Equal(t, []string{"key", "value"}, m.GroupNames())
			assert.Equal(t, 1, m.SubexpIndex("key"))
			assert.Equal(t, -1, m.SubexpIndex("nope"))

			match, err := m.Scanner("x a=1 b=2").Next(0)
			require.NoError(t, err)
			require.NotNil(t, match)

			assert.Equal(t, 2, match.Start)
			assert.Equal(t, 5, match.End)
			assert.Equal(t, "a=1", match.Text())

			value, ok := match.Named("value")
			require.True(t, ok)
			assert.Equal(t, matcher.Group{Start: 4, End: 5, Text: "1", Matched: true}, value)

			_, ok = match.Named("nope")
			assert.False(t, ok)
			_, ok = match.Group(9)
			assert.False(t, ok)
		})
	}
}

func TestScanner_Next(t *testing.T) {
	t.Parallel()

	for _, engine := range []matcher.Engine{matcher.EngineRE2, matcher.EngineRegexp2} {
		t.Run(string(engine), func(t *testing.T) {
			t.Parallel()

			scanner := matcher.MustCompile(engine, `\d+`, matcher.Flags{}).Scanner("a1 22 333")

			var got []string
			pos := 0
			for {
				match, err := scanner.Next(pos)
				require.NoError(t, err)
				if match == nil {
					break
				}
				got = append(got, match.Text())
				pos = match.End
			}
			assert.Equal(t, []string{"1", "22", "333"}, got)

			match, err := scanner.Next(100)
			require.NoError(t, err)
			assert.Nil(t, match)
		})
	}
}

func TestScanner_AnchorsSeeWholeText(t *testing.T) {
	t.Parallel()

	for _, engine := range []matcher.Engine{matcher.EngineRE2, matcher.EngineRegexp2} {
		t.Run(string(engine), func(t *testing.T) {
			t.Parallel()

			scanner := matcher.MustCompile(engine, `^a`, matcher.Flags{}).Scanner("aaa")

			first, err := scanner.Next(0)
			require.NoError(t, err)
			require.NotNil(t, first)

			// Searching from 1 must not treat offset 1 as the start of text.
			again, err := scanner.Next(1)
			require.NoError(t, err)
			assert.Nil(t, again)
		})
	}
}

func TestScanner_NextSearchesFromPos(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pattern   string
		text      string
		pos       int
		wantStart int
		wantEnd   int
		wantNone  bool
	}{
		{name: "empty at pos after run", pattern: `a*`, text: "baac", pos: 3, wantStart: 3, wantEnd: 3},
		{name: "overlap with earlier match", pattern: `aa`, text: "aaa", pos: 1, wantStart: 1, wantEnd: 3},
		{name: "boundary sees left context", pattern: `\bb`, text: "ab b", pos: 1, wantStart: 3, wantEnd: 4},
		{name: "line start sees left context", pattern: `(?m)^b`, text: "ab\nb", pos: 1, wantStart: 3, wantEnd: 4},
		{name: "non boundary at pos", pattern: `\Bb`, text: "ab", pos: 1, wantStart: 1, wantEnd: 2},
		{name: "multi-byte left context", pattern: `(?m)^x`, text: "éx\nx", pos: 2, wantStart: 4, wantEnd: 5},
		{name: "end of text", pattern: `$`, text: "ab", pos: 2, wantStart: 2, wantEnd: 2},
		{name: "nothing after pos", pattern: `a`, text: "ab", pos: 1, wantNone: true},
	}

	for _, engine := range []matcher.Engine{matcher.EngineRE2, matcher.EngineRegexp2} {
		for _, tc := range tests {
			t.Run(string(engine)+"/"+tc.name, func(t *testing.T) {
				t.Parallel()

				match, err := matcher.MustCompile(engine, tc.pattern, matcher.Flags{}).Scanner(tc.text).Next(tc.pos)
				require.NoError(t, err)
				if tc.wantNone {
					assert.Nil(t, match)
					return
				}
				require.NotNil(t, match)
				assert.Equal(t, tc.wantStart, match.Start)
				assert.Equal(t, tc.wantEnd, match.End)

				whole, ok := match.Group(0)
				require.True(t, ok)
				assert.Equal(t, tc.text[tc.wantStart:tc.wantEnd], whole.Text)
			})
		}
	}
}

func TestScanner_GroupsRebasedAfterPos(t *testing.T) {
	t.Parallel()

	for _, engine := range []matcher.Engine{matcher.EngineRE2, matcher.EngineRegexp2} {
		t.Run(string(engine), func(t *testing.T) {
			t.Parallel()

			m := matcher.MustCompile(engine, `(\w)=(\w)?`, matcher.Flags{})
			match, err := m.Scanner("a=1 b=").Next(1)
			require.NoError(t, err)
			require.NotNil(t, match)

			assert.Equal(t, 4, match.Start)
			assert.Equal(t, 6, match.End)

			key, ok := match.Group(1)
			require.True(t, ok)
			assert.Equal(t, matcher.Group{Start: 4, End: 5, Text: "b", Matched: true}, key)

			value, ok := match.Group(2)
			require.True(t, ok)
			assert.False(t, value.Matched)
		})
	}
}

func TestFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		flags   matcher.Flags
		text    string
		want    string
	}{
		{"ignore case", `hello`, matcher.Flags{IgnoreCase: true}, "say HeLLo", "HeLLo"},
		{"multiline", `^b$`, matcher.Flags{Multiline: true}, "a\nb\nc", "b"},
		{"dot all", `a.b`, matcher.Flags{DotAll: true}, "a\nb", "a\nb"},
	}

	for _, tc := range tests {
		for _, engine := range []matcher.Engine{matcher.EngineRE2, matcher.EngineRegexp2} {
			t.Run(tc.name+"/"+string(engine), func(t *testing.T) {
				t.Parallel()

				with, err := matcher.MustCompile(engine, tc.pattern, tc.flags).Scanner(tc.text).Next(0)
				require.NoError(t, err)
				require.NotNil(t, with)
				assert.Equal(t, tc.want, with.Text())

				without, err := matcher.MustCompile(engine, tc.pattern, matcher.Flags{}).Scanner(tc.text).Next(0)
				require.NoError(t, err)
				assert.Nil(t, without)
			})
		}
	}
}

func TestRegexp2_ByteOffsets(t *testing.T) {
	t.Parallel()

	text := "héllo wörld"
	m := matcher.MustCompile(matcher.EngineRegexp2, `(w)(ö)(\w+)`, matcher.Flags{})

	match, err := m.Scanner(text).Next(0)
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "wörld", match.Text())
	assert.Equal(t, "wörld", text[match.Start:match.End])

	umlaut, ok := match.Group(2)
	require.True(t, ok)
	assert.Equal(t, "ö", text[umlaut.Start:umlaut.End])
	assert.Equal(t, 2, umlaut.End-umlaut.Start)

	// An offset inside a multi-byte rune rounds up to the next rune.
	next, err := m.Scanner(text).Next(match.Start + 2)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestMatch_NilSafe(t *testing.T) {
	t.Parallel()

	var m *matcher.Match
	assert.Empty(t, m.Text())
	assert.True(t, m.IsEmpty())
	_, ok := m.Group(0)
	assert.False(t, ok)
	_, ok = m.Named("x")
	assert.False(t, ok)
}
