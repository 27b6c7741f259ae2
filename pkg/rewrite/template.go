package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// Template is a parsed replacement template.
//
// $name and ${name} expand to the original text of a named capture, $1 and
// ${1} to a numbered one, and $$ to a literal dollar sign. A bare name runs
// as long as letters, digits and underscores follow, so use braces to join
// a reference to trailing word characters.
type Template struct {
	raw   string
	parts []part
}

type part struct {
	literal string

	// ref is the capture name or decimal group number; empty for literals.
	ref   string
	index int
}

// ParseTemplate parses raw into a Template.
func ParseTemplate(raw string) (*Template, error) {
	tmpl := &Template{raw: raw}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tmpl.parts = append(tmpl.parts, part{literal: lit.String(), index: -1})
			lit.Reset()
		}
	}

	for pos := 0; pos < len(raw); {
		dollar := strings.IndexByte(raw[pos:], '$')
		if dollar < 0 {
			lit.WriteString(raw[pos:])
			break
		}
		lit.WriteString(raw[pos : pos+dollar])
		pos += dollar + 1

		if pos >= len(raw) {
			return nil, fmt.Errorf("%w: template %q ends with a lone $", ErrInvalidRule, raw)
		}

		var ref string
		switch {
		case raw[pos] == '$':
			lit.WriteByte('$')
			pos++
			continue
		case raw[pos] == '{':
			end := strings.IndexByte(raw[pos:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: template %q has an unclosed ${", ErrInvalidRule, raw)
			}
			ref = raw[pos+1 : pos+end]
			pos += end + 1
			if !isRef(ref) {
				return nil, fmt.Errorf("%w: template %q has an invalid reference ${%s}", ErrInvalidRule, raw, ref)
			}
		default:
			n := 0
			for pos+n < len(raw) && isRefByte(raw[pos+n]) {
				n++
			}
			if n == 0 {
				return nil, fmt.Errorf("%w: template %q has a $ not followed by a reference", ErrInvalidRule, raw)
			}
			ref = raw[pos : pos+n]
			pos += n
		}

		flush()
		index := -1
		if num, err := strconv.Atoi(ref); err == nil {
			index = num
		}
		tmpl.parts = append(tmpl.parts, part{ref: ref, index: index})
	}
	flush()

	return tmpl, nil
}

// String returns the template source.
func (t *Template) String() string { return t.raw }

// Refs returns the capture references in order of appearance.
func (t *Template) Refs() []string {
	var refs []string
	for _, p := range t.parts {
		if p.ref != "" {
			refs = append(refs, p.ref)
		}
	}
	return refs
}

// Captures resolves references for Expand.
type Captures interface {
	OriginalByIndex(index int) string
	OriginalByName(name string) string
}

// Expand renders the template against caps.
func (t *Template) Expand(caps Captures) string {
	var b strings.Builder
	for _, p := range t.parts {
		switch {
		case p.ref == "":
			b.WriteString(p.literal)
		case p.index >= 0:
			b.WriteString(caps.OriginalByIndex(p.index))
		default:
			b.WriteString(caps.OriginalByName(p.ref))
		}
	}
	return b.String()
}

func isRef(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if !isRefByte(s[i]) {
			return false
		}
	}
	return true
}

func isRefByte(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}
