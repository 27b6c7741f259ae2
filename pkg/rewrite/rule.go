// Package rewrite compiles declarative rewrite rules and applies them to
// documents through the span-tree driver.
package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/spanedit/pkg/config"
	"github.com/yaklabco/spanedit/pkg/document"
	"github.com/yaklabco/spanedit/pkg/matcher"
	"github.com/yaklabco/spanedit/pkg/protect"
)

// ErrInvalidRule is returned for rules that cannot be compiled.
var ErrInvalidRule = errors.New("invalid rule")

// Defaults supplies the values a rule inherits when it leaves them unset.
type Defaults struct {
	Engine  string
	Mode    config.Mode
	Newline config.Newline
}

// Rule is a compiled rewrite rule. A Rule is safe for concurrent use.
type Rule struct {
	name       string
	matcher    matcher.Matcher
	mode       config.Mode
	terminator string
	skipCode   bool
	setters    []setter
	whole      *Template
}

type setter struct {
	key   string
	name  string
	index int
	tmpl  *Template
}

// Stats counts what one rule did to one document.
type Stats struct {
	Rule    string `json:"rule"`
	Matches int    `json:"matches"`
	Edits   int    `json:"edits"`
	Skipped int    `json:"skipped"`
}

// Compile validates rc and compiles its pattern and templates. index is
// the rule's position in the config, used to label unnamed rules.
func Compile(rc config.RuleConfig, index int, defaults Defaults) (*Rule, error) {
	name := config.RuleLabel(rc, index)

	if rc.Pattern == "" {
		return nil, fmt.Errorf("%w %s: pattern is required", ErrInvalidRule, name)
	}
	if rc.Whole != nil && len(rc.Set) > 0 {
		return nil, fmt.Errorf("%w %s: set and whole are mutually exclusive", ErrInvalidRule, name)
	}

	engineName := rc.Engine
	if engineName == "" {
		engineName = defaults.Engine
	}
	engine, err := matcher.ParseEngine(engineName)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidRule, name, err)
	}

	mode := rc.Mode
	if mode == "" {
		mode = defaults.Mode
	}
	if mode == "" {
		mode = config.ModeWhole
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w %s: unknown mode %q", ErrInvalidRule, name, mode)
	}

	terminator, err := defaults.Newline.Terminator()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidRule, name, err)
	}

	m, err := matcher.Compile(engine, rc.Pattern, matcher.Flags{
		IgnoreCase: rc.IgnoreCase,
		Multiline:  rc.Multiline,
		DotAll:     rc.DotAll,
	})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidRule, name, err)
	}

	rule := &Rule{
		name:       name,
		matcher:    m,
		mode:       mode,
		terminator: terminator,
		skipCode:   rc.SkipCode,
	}

	if rc.Whole != nil {
		rule.whole, err = rule.parseTemplate(*rc.Whole)
		if err != nil {
			return nil, err
		}
	}

	for key, raw := range rc.Set {
		index, err := rule.resolve(key)
		if err != nil {
			return nil, err
		}
		tmpl, err := rule.parseTemplate(raw)
		if err != nil {
			return nil, err
		}
		s := setter{key: key, index: index, tmpl: tmpl}
		if _, numErr := strconv.Atoi(key); numErr != nil {
			s.name = key
		}
		rule.setters = append(rule.setters, s)
	}
	sort.Slice(rule.setters, func(a, b int) bool {
		left, right := rule.setters[a], rule.setters[b]
		if left.index != right.index {
			return left.index > right.index
		}
		return left.key < right.key
	})

	return rule, nil
}

// resolve maps a capture key to its group number.
func (r *Rule) resolve(key string) (int, error) {
	if num, err := strconv.Atoi(key); err == nil {
		if num < 0 || num > r.matcher.NumGroups() {
			return 0, fmt.Errorf("%w %s: group %d does not exist (pattern has %d)",
				ErrInvalidRule, r.name, num, r.matcher.NumGroups())
		}
		return num, nil
	}
	index := r.matcher.SubexpIndex(key)
	if index < 0 {
		return 0, fmt.Errorf("%w %s: capture %q does not exist", ErrInvalidRule, r.name, key)
	}
	return index, nil
}

func (r *Rule) parseTemplate(raw string) (*Template, error) {
	tmpl, err := ParseTemplate(raw)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.name, err)
	}
	for _, ref := range tmpl.Refs() {
		if _, err := r.resolve(ref); err != nil {
			return nil, err
		}
	}
	return tmpl, nil
}

// Name returns the rule label.
func (r *Rule) Name() string { return r.name }

// Mode returns the scan mode.
func (r *Rule) Mode() config.Mode { return r.mode }

// SkipCode reports whether the rule leaves Markdown code alone.
func (r *Rule) SkipCode() bool { return r.skipCode }

// Matcher returns the compiled pattern.
//
//nolint:ireturn // engines are selected at runtime
func (r *Rule) Matcher() matcher.Matcher { return r.matcher }

type applyState struct {
	rule      *Rule
	protected protect.Ranges
	stats     *Stats
}

// Apply rewrites text. Matches overlapping a protected range are counted
// as skipped and left unchanged.
func (r *Rule) Apply(text string, protected protect.Ranges) (string, Stats, error) {
	stats := Stats{Rule: r.name}
	state := &applyState{rule: r, protected: protected, stats: &stats}

	var (
		out string
		err error
	)
	switch r.mode {
	case config.ModeLines:
		out, err = r.applyLines(text, state)
	default:
		out, err = document.ProcessWhole(r.matcher, text, applyNode, state)
	}
	if err != nil {
		return "", stats, fmt.Errorf("rule %s: %w", r.name, err)
	}
	return out, stats, nil
}

// applyLines treats a terminator at the very end of a file as closing its
// last line, so the file does not grow an empty line per pass. The empty
// file stays empty.
func (r *Rule) applyLines(text string, state *applyState) (string, error) {
	switch {
	case text == "":
		return "", nil
	case strings.HasSuffix(text, "\r\n"):
		text = text[:len(text)-2]
	case strings.HasSuffix(text, "\n"), strings.HasSuffix(text, "\r"):
		text = text[:len(text)-1]
	}
	return document.ProcessLines(r.matcher, text, applyNode, state, r.terminator)
}

func applyNode(state *applyState, node *document.Node, _ bool) {
	if !node.IsMatch() {
		return
	}
	state.stats.Matches++

	if state.protected.Overlaps(node.Offset(), node.Offset()+len(node.Original())) {
		state.stats.Skipped++
		return
	}

	tree := node.Tree()
	rule := state.rule

	if rule.whole != nil {
		node.SetWholeText(rule.whole.Expand(tree))
	} else {
		// Expand everything before editing so templates see original text.
		values := make([]string, len(rule.setters))
		for i, s := range rule.setters {
			values[i] = s.tmpl.Expand(tree)
		}
		for i, s := range rule.setters {
			if s.name != "" {
				node.SetByName(s.name, values[i])
			} else {
				node.SetByIndex(s.index, values[i])
			}
		}
	}

	if node.Text() != node.Original() {
		state.stats.Edits++
	}
}
