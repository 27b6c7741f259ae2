package matcher

import (
	"fmt"
	"maps"
	"sort"
	"strconv"

	"github.com/dlclark/regexp2"
)

// Regexp2 is a Matcher backed by github.com/dlclark/regexp2. It supports
// lookaround, backreferences and the other .NET constructs RE2 lacks.
//
// regexp2 works in rune indexes; the scanner maps them back to byte offsets
// so that Match values are interchangeable with the RE2 engine's.
type Regexp2 struct {
	pattern string
	re      *regexp2.Regexp
	names   map[string]int
	order   []string
	groups  int
}

// NewRegexp2 compiles pattern with the regexp2 engine.
func NewRegexp2(pattern string, flags Flags) (*Regexp2, error) {
	opts := regexp2.None
	if flags.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if flags.Multiline {
		opts |= regexp2.Multiline
	}
	if flags.DotAll {
		opts |= regexp2.Singleline
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}

	r := &Regexp2{
		pattern: pattern,
		re:      re,
		names:   make(map[string]int),
	}

	for _, num := range re.GetGroupNumbers() {
		if num > r.groups {
			r.groups = num
		}
		name := re.GroupNameFromNumber(num)
		if _, err := strconv.Atoi(name); err == nil {
			continue
		}
		r.names[name] = num
		r.order = append(r.order, name)
	}

	return r, nil
}

// Pattern implements Matcher.
func (r *Regexp2) Pattern() string { return r.pattern }

// Engine implements Matcher.
func (r *Regexp2) Engine() Engine { return EngineRegexp2 }

// NumGroups implements Matcher.
func (r *Regexp2) NumGroups() int { return r.groups }

// SubexpIndex implements Matcher.
func (r *Regexp2) SubexpIndex(name string) int {
	if num, ok := r.names[name]; ok {
		return num
	}
	return -1
}

// GroupNames implements Matcher.
func (r *Regexp2) GroupNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Scanner implements Matcher.
//
//nolint:ireturn // Scanner is the contract
func (r *Regexp2) Scanner(text string) Scanner {
	s := &regexp2Scanner{matcher: r, text: text}
	s.runes = make([]rune, 0, len(text))
	s.offsets = make([]int, 0, len(text)+1)
	for offset, char := range text {
		s.runes = append(s.runes, char)
		s.offsets = append(s.offsets, offset)
	}
	s.offsets = append(s.offsets, len(text))
	return s
}

type regexp2Scanner struct {
	matcher *Regexp2
	text    string
	runes   []rune

	// offsets[i] is the byte offset of rune i; the final entry is len(text).
	offsets []int
}

func (s *regexp2Scanner) Next(pos int) (*Match, error) {
	if pos > len(s.text) {
		return nil, nil //nolint:nilnil // nil match means no further match
	}

	// First rune at or after pos; a pos inside a multi-byte rune rounds up.
	start := sort.SearchInts(s.offsets, pos)

	m, err := s.matcher.re.FindRunesMatchStartingAt(s.runes, start)
	if err != nil {
		return nil, fmt.Errorf("regexp2 scan: %w", err)
	}
	if m == nil {
		return nil, nil //nolint:nilnil // nil match means no further match
	}

	groups := make([]Group, s.matcher.groups+1)
	for _, g := range m.Groups() {
		num, err := strconv.Atoi(g.Name)
		if err != nil {
			num = s.matcher.SubexpIndex(g.Name)
		}
		if num < 0 || num >= len(groups) || len(g.Captures) == 0 {
			continue
		}
		begin := s.offsets[g.Index]
		end := s.offsets[g.Index+g.Length]
		groups[num] = Group{
			Start:   begin,
			End:     end,
			Text:    s.text[begin:end],
			Matched: true,
		}
	}

	whole := groups[0]
	return &Match{
		Start:  whole.Start,
		End:    whole.End,
		Groups: groups,
		Names:  maps.Clone(s.matcher.names),
	}, nil
}
