package configloader

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/spanedit/pkg/config"
	"github.com/yaklabco/spanedit/pkg/matcher"
	"github.com/yaklabco/spanedit/pkg/rewrite"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "rules[0].pattern").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:    true,
	config.FormatJSON:    true,
	config.FormatDiff:    true,
	config.FormatSummary: true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	"sidecar": true,
	"none":    true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if _, err := matcher.ParseEngine(cfg.Engine); err != nil {
		result.fail("engine", cfg.Engine, "invalid engine %q; must be one of: re2, regexp2", cfg.Engine)
	}
	if cfg.Mode != "" && !cfg.Mode.IsValid() {
		result.fail("mode", cfg.Mode, "invalid mode %q; must be one of: whole, lines", cfg.Mode)
	}
	if _, err := cfg.Newline.Terminator(); err != nil {
		result.fail("newline", cfg.Newline, "%v", err)
	}
	if cfg.Flavor != "" && !knownFlavors[cfg.Flavor] {
		result.fail("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}
	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, diff, summary", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		result.fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}
	if cfg.Write && cfg.DryRun {
		result.warn("dry_run", true, "dry run wins over write; no files will be changed")
	}

	// Rules inherit the defaults above, so they only compile once those are valid.
	compile := result.Valid()
	validateIgnorePatterns(cfg, result)
	validateRules(cfg, result, compile)

	return result
}

// validateRules checks rule names and, when compile is set, compiles every
// rule so pattern and template errors surface at load time.
func validateRules(cfg *config.Config, result *ValidationResult, compile bool) {
	defaults := rewrite.Defaults{Engine: cfg.Engine, Mode: cfg.Mode, Newline: cfg.Newline}
	seen := make(map[string]int, len(cfg.Rules))

	for i, rc := range cfg.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		label := config.RuleLabel(rc, i)

		if prev, dup := seen[label]; dup {
			result.warn(field+".name", label, "duplicate rule name %q (also rules[%d])", label, prev)
		} else {
			seen[label] = i
		}

		if !compile {
			continue
		}
		if _, err := rewrite.Compile(rc, i, defaults); err != nil {
			result.fail(field, rc.Pattern, "%v", err)
		}
	}

	for _, name := range cfg.Only {
		if _, ok := seen[name]; !ok {
			result.warn("only", name, "unknown rule %q; it matches nothing", name)
		}
	}
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsValidFlavor returns true if the flavor is valid.
func IsValidFlavor(f config.Flavor) bool {
	return knownFlavors[f]
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return knownBackupModes[mode]
}
