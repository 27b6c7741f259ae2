package rewrite

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/yaklabco/spanedit/pkg/config"
	"github.com/yaklabco/spanedit/pkg/protect"
)

// Engine applies an ordered list of rules to documents. An Engine is safe
// for concurrent use.
type Engine struct {
	rules    []*Rule
	markdown *protect.Markdown
}

// Result is the outcome of rewriting one document.
type Result struct {
	// Content is the rewritten document.
	Content []byte

	// Changed is true when Content differs from the input.
	Changed bool

	// Edits is the number of matches whose text changed, over all rules.
	Edits int

	// PerRule holds one entry per rule, in rule order.
	PerRule []Stats
}

// New compiles every active rule in cfg. All rule errors are reported
// together.
func New(cfg *config.Config) (*Engine, error) {
	defaults := Defaults{Engine: cfg.Engine, Mode: cfg.Mode, Newline: cfg.Newline}

	var (
		rules []*Rule
		errs  []error
	)
	for i, rc := range cfg.Rules {
		if !rc.IsEnabled() || (len(cfg.Only) > 0 && !slices.Contains(cfg.Only, config.RuleLabel(rc, i))) {
			continue
		}
		rule, err := Compile(rc, i, defaults)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return NewEngine(rules, string(cfg.Flavor)), nil
}

// NewEngine returns an Engine over already compiled rules. flavor selects
// the Markdown dialect for skip_code rules.
func NewEngine(rules []*Rule, flavor string) *Engine {
	return &Engine{rules: rules, markdown: protect.NewMarkdown(flavor)}
}

// Rules returns the compiled rules in order.
func (e *Engine) Rules() []*Rule {
	out := make([]*Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Rewrite runs every rule over content in order; each rule sees the output
// of the previous one.
func (e *Engine) Rewrite(ctx context.Context, path string, content []byte) (*Result, error) {
	result := &Result{PerRule: make([]Stats, 0, len(e.rules))}
	text := string(content)

	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rewrite %s cancelled: %w", path, err)
		}

		var protected protect.Ranges
		if rule.SkipCode() {
			protected = e.markdown.Code([]byte(text))
		}

		out, stats, err := rule.Apply(text, protected)
		if err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", path, err)
		}

		text = out
		result.Edits += stats.Edits
		result.PerRule = append(result.PerRule, stats)
	}

	result.Content = []byte(text)
	result.Changed = text != string(content)
	return result, nil
}
