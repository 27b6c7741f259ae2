// Package config defines core configuration types for spanedit.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

import (
	"fmt"
	"strings"
)

// Mode selects how a rule scans a document.
type Mode string

const (
	// ModeWhole scans the document as one text.
	ModeWhole Mode = "whole"

	// ModeLines scans every line independently and rejoins the lines with
	// the configured newline.
	ModeLines Mode = "lines"
)

// IsValid returns true if the mode is valid.
func (m Mode) IsValid() bool {
	switch m {
	case ModeWhole, ModeLines:
		return true
	default:
		return false
	}
}

// Newline names the terminator used to rejoin lines in ModeLines.
type Newline string

const (
	NewlineLF   Newline = "lf"
	NewlineCRLF Newline = "crlf"
	NewlineCR   Newline = "cr"
)

// Terminator returns the literal terminator for n. The empty Newline maps
// to the empty string, which the line driver treats as its default.
func (n Newline) Terminator() (string, error) {
	switch Newline(strings.ToLower(string(n))) {
	case "":
		return "", nil
	case NewlineLF:
		return "\n", nil
	case NewlineCRLF:
		return "\r\n", nil
	case NewlineCR:
		return "\r", nil
	default:
		return "", fmt.Errorf("invalid newline %q: valid values are lf, crlf, cr", string(n))
	}
}

// OutputFormat specifies the output format for rewrite results.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// Flavor specifies the Markdown flavor used to find code for skip_code rules.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// RuleConfig declares one rewrite rule.
type RuleConfig struct {
	// Name identifies the rule in output and in --only filters.
	Name string `mapstructure:"name" yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `mapstructure:"pattern" yaml:"pattern"`

	// Engine overrides the global engine for this rule.
	Engine string `mapstructure:"engine" yaml:"engine,omitempty"`

	// Mode overrides the global mode for this rule.
	Mode Mode `mapstructure:"mode" yaml:"mode,omitempty"`

	IgnoreCase bool `mapstructure:"ignore_case" yaml:"ignore_case,omitempty"`
	Multiline  bool `mapstructure:"multiline" yaml:"multiline,omitempty"`
	DotAll     bool `mapstructure:"dot_all" yaml:"dot_all,omitempty"`

	// SkipCode leaves matches that touch Markdown code untouched.
	SkipCode bool `mapstructure:"skip_code" yaml:"skip_code,omitempty"`

	// Set maps a capture (group number or name) to a replacement template.
	Set map[string]string `mapstructure:"set" yaml:"set,omitempty"`

	// Whole replaces the entire match. Nil leaves the match to Set; an
	// empty template deletes it.
	Whole *string `mapstructure:"whole" yaml:"whole,omitempty"`

	// Enabled defaults to true when unset.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the rule should run.
func (rc RuleConfig) IsEnabled() bool {
	return rc.Enabled == nil || *rc.Enabled
}

// BackupsConfig controls backup behavior when writing files.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // "sidecar"
}

// Config is the root configuration structure for spanedit.
type Config struct {
	// Engine is the default regexp engine: "re2" or "regexp2".
	Engine string `mapstructure:"engine" yaml:"engine"`

	// Mode is the default scan mode: "whole" or "lines".
	Mode Mode `mapstructure:"mode" yaml:"mode"`

	// Newline joins lines in ModeLines: "lf", "crlf" or "cr".
	Newline Newline `mapstructure:"newline" yaml:"newline"`

	// Flavor is the Markdown flavor used by skip_code rules.
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`

	// Extensions limits discovery to these file extensions. Empty means
	// every non-binary file.
	Extensions []string `mapstructure:"extensions" yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// IncludeVendored disables the vendored-path filter during discovery.
	IncludeVendored bool `mapstructure:"include_vendored" yaml:"include_vendored,omitempty"`

	// Backups configures backup behavior when writing.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// Rules are applied in order to every file.
	Rules []RuleConfig `mapstructure:"rules" yaml:"rules"`

	// CLI-level options (not persisted to config files).

	// Write rewrites files in place.
	Write bool `mapstructure:"-" yaml:"-"`

	// DryRun shows what would change without writing.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `mapstructure:"-" yaml:"-"`

	// Only limits the run to the named rules.
	Only []string `mapstructure:"-" yaml:"-"`

	// NoBackups disables backup creation when writing.
	NoBackups bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Engine:  "re2",
		Mode:    ModeWhole,
		Newline: NewlineLF,
		Flavor:  FlavorGFM,
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

// ActiveRules returns the enabled rules, filtered by Only when set.
func (c *Config) ActiveRules() []RuleConfig {
	only := make(map[string]bool, len(c.Only))
	for _, name := range c.Only {
		only[name] = true
	}

	var rules []RuleConfig
	for i, rule := range c.Rules {
		if !rule.IsEnabled() {
			continue
		}
		if len(only) > 0 && !only[RuleLabel(rule, i)] {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}
