package matcher

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RE2 is a Matcher backed by the standard library regexp package.
type RE2 struct {
	pattern string
	re      *regexp.Regexp

	// after is the pattern behind one arbitrary rune. Searching text from
	// the rune before pos lets assertions see their left context while
	// every match found starts at or after pos.
	after *regexp.Regexp
	names map[string]int
}

// NewRE2 compiles pattern with the standard library engine.
func NewRE2(pattern string, flags Flags) (*RE2, error) {
	re, err := regexp.Compile(flags.re2Prefix() + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	after, err := regexp.Compile(`(?s:.)(?:` + flags.re2Prefix() + pattern + `)`)
	if err != nil || after.NumSubexp() != re.NumSubexp() {
		return nil, fmt.Errorf("compile %q: pattern does not nest in a group", pattern)
	}

	names := make(map[string]int)
	for i, name := range re.SubexpNames() {
		if name != "" {
			names[name] = i
		}
	}

	return &RE2{pattern: pattern, re: re, after: after, names: names}, nil
}

// re2Prefix renders flags as an inline flag group.
func (f Flags) re2Prefix() string {
	var b strings.Builder
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}

// Pattern implements Matcher.
func (r *RE2) Pattern() string { return r.pattern }

// Engine implements Matcher.
func (r *RE2) Engine() Engine { return EngineRE2 }

// NumGroups implements Matcher.
func (r *RE2) NumGroups() int { return r.re.NumSubexp() }

// SubexpIndex implements Matcher.
func (r *RE2) SubexpIndex(name string) int {
	if index, ok := r.names[name]; ok {
		return index
	}
	return -1
}

// GroupNames implements Matcher.
func (r *RE2) GroupNames() []string {
	var names []string
	for _, name := range r.re.SubexpNames() {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Scanner implements Matcher.
//
//nolint:ireturn // Scanner is the contract
func (r *RE2) Scanner(text string) Scanner {
	return &re2Scanner{matcher: r, text: text}
}

type re2Scanner struct {
	matcher *RE2
	text    string
}

func (s *re2Scanner) Next(pos int) (*Match, error) {
	pos = max(pos, 0)
	// A pos inside a multi-byte rune rounds up.
	for pos < len(s.text) && !utf8.RuneStart(s.text[pos]) {
		pos++
	}
	if pos > len(s.text) {
		return nil, nil //nolint:nilnil // nil match means no further match
	}

	if pos == 0 {
		loc := s.matcher.re.FindStringSubmatchIndex(s.text)
		if loc == nil {
			return nil, nil //nolint:nilnil // nil match means no further match
		}
		return s.build(loc), nil
	}

	_, width := utf8.DecodeLastRuneInString(s.text[:pos])
	from := pos - width

	loc := s.matcher.after.FindStringSubmatchIndex(s.text[from:])
	if loc == nil {
		return nil, nil //nolint:nilnil // nil match means no further match
	}

	// Group 0 of after includes the context rune; drop it and rebase.
	_, skip := utf8.DecodeRuneInString(s.text[from+loc[0]:])
	loc[0] += skip
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += from
		}
	}
	return s.build(loc), nil
}

func (s *re2Scanner) build(loc []int) *Match {
	groups := make([]Group, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		groups[i] = Group{
			Start:   start,
			End:     end,
			Text:    s.text[start:end],
			Matched: true,
		}
	}

	return &Match{
		Start:  loc[0],
		End:    loc[1],
		Groups: groups,
		Names:  maps.Clone(s.matcher.names),
	}
}
