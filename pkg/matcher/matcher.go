// Package matcher adapts regular-expression engines to a common scanning
// interface that reports every capture group with absolute byte offsets.
package matcher

import (
	"errors"
	"fmt"
	"strings"
)

// Engine names a regular-expression implementation.
type Engine string

const (
	// EngineRE2 uses the standard library regexp package (RE2 syntax,
	// linear time, no lookaround).
	EngineRE2 Engine = "re2"

	// EngineRegexp2 uses github.com/dlclark/regexp2 (.NET syntax with
	// lookaround and backreferences).
	EngineRegexp2 Engine = "regexp2"
)

// ErrUnknownEngine is returned by Compile for an unrecognized engine name.
var ErrUnknownEngine = errors.New("unknown regexp engine")

// IsValid returns true if the engine is a known engine.
func (e Engine) IsValid() bool {
	switch e {
	case EngineRE2, EngineRegexp2:
		return true
	default:
		return false
	}
}

// ParseEngine parses an engine name. The empty string selects EngineRE2.
func ParseEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "re2", "regexp":
		return EngineRE2, nil
	case "regexp2", "pcre", "dotnet":
		return EngineRegexp2, nil
	default:
		return "", fmt.Errorf("%w %q; valid engines: re2, regexp2", ErrUnknownEngine, name)
	}
}

// Flags modify pattern compilation.
type Flags struct {
	// IgnoreCase enables case-insensitive matching.
	IgnoreCase bool

	// Multiline makes ^ and $ match at line boundaries.
	Multiline bool

	// DotAll lets . match newlines.
	DotAll bool
}

// Group is the result of one capture group within a match.
type Group struct {
	// Start is the absolute byte offset where the group begins (inclusive).
	Start int

	// End is the absolute byte offset where the group ends (exclusive).
	End int

	// Text is the captured substring.
	Text string

	// Matched is false when the group did not participate in the match.
	Matched bool
}

// Match is a single match with all of its capture groups.
type Match struct {
	// Start and End bound the whole match in absolute byte offsets.
	Start int
	End   int

	// Groups is indexed by group number; Groups[0] is the whole match.
	Groups []Group

	// Names maps capture names to group numbers.
	Names map[string]int
}

// Text returns the text of the whole match.
func (m *Match) Text() string {
	if m == nil || len(m.Groups) == 0 {
		return ""
	}
	return m.Groups[0].Text
}

// IsEmpty returns true for a zero-width match.
func (m *Match) IsEmpty() bool {
	return m == nil || m.Start == m.End
}

// Group returns the group with the given number and whether it participated.
func (m *Match) Group(index int) (Group, bool) {
	if m == nil || index < 0 || index >= len(m.Groups) {
		return Group{}, false
	}
	g := m.Groups[index]
	return g, g.Matched
}

// Named returns the group with the given name and whether it participated.
func (m *Match) Named(name string) (Group, bool) {
	if m == nil {
		return Group{}, false
	}
	index, ok := m.Names[name]
	if !ok {
		return Group{}, false
	}
	return m.Group(index)
}

// Scanner finds successive matches within one text.
// A Scanner is not safe for concurrent use.
type Scanner interface {
	// Next returns the leftmost match starting at or after byte offset pos.
	// It returns a nil match when no further match exists. Anchors and
	// lookbehind assertions see the whole text, not just text[pos:].
	Next(pos int) (*Match, error)
}

// Matcher is a compiled pattern. Implementations are safe for concurrent
// use; per-text state lives in the Scanner.
type Matcher interface {
	// Pattern returns the source pattern as given to Compile.
	Pattern() string

	// Engine reports which engine compiled the pattern.
	Engine() Engine

	// NumGroups returns the number of capture groups, excluding group 0.
	NumGroups() int

	// SubexpIndex returns the group number for a capture name, or -1.
	SubexpIndex(name string) int

	// GroupNames returns the capture names in group-number order.
	GroupNames() []string

	// Scanner returns a scanner over text.
	Scanner(text string) Scanner
}

// Compile compiles pattern with the given engine.
//
//nolint:ireturn // callers select the engine at runtime
func Compile(engine Engine, pattern string, flags Flags) (Matcher, error) {
	switch engine {
	case EngineRE2, "":
		m, err := NewRE2(pattern, flags)
		if err != nil {
			return nil, err
		}
		return m, nil
	case EngineRegexp2:
		m, err := NewRegexp2(pattern, flags)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, engine)
	}
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
//
//nolint:ireturn // see Compile
func MustCompile(engine Engine, pattern string, flags Flags) Matcher {
	m, err := Compile(engine, pattern, flags)
	if err != nil {
		panic(fmt.Sprintf("matcher: Compile(%q): %v", pattern, err))
	}
	return m
}
