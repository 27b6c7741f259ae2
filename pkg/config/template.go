package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json". JSON templates carry
	// // comments and are meant to be saved as .spanedit.jsonc.
	Format string

	// Examples includes sample rules instead of an empty rule list.
	Examples bool
}

// exampleRules are the sample rules written by GenerateTemplate.
func exampleRules() []RuleConfig {
	iso := "${year}-${month}-${day}"
	return []RuleConfig{
		{
			Name:    "iso-dates",
			Pattern: `(?P<month>\d{2})/(?P<day>\d{2})/(?P<year>\d{4})`,
			Whole:   &iso,
		},
		{
			Name:     "http-to-https",
			Pattern:  `(?P<scheme>http)://`,
			SkipCode: true,
			Set:      map[string]string{"scheme": "https"},
		},
	}
}

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return generateJSONTemplate(opts)
	}
	return generateYAMLTemplate(opts), nil
}

func generateYAMLTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Regexp engine: re2 (default) or regexp2 (lookaround, backreferences)
engine: re2

# Scan mode: whole (the file is one text) or lines (each line on its own)
mode: whole

# Line terminator written in lines mode: lf, crlf or cr
newline: lf

# Markdown flavor used by skip_code rules: commonmark or gfm
flavor: gfm

# Only rewrite files with these extensions (default: every text file)
# extensions:
#   - .md
#   - .txt

# File patterns to ignore (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"

# Backup configuration for --write
backups:
  enabled: true
  mode: sidecar

# Rewrite rules, applied in order.
# "set" maps a capture (number or name) to a template; "whole" replaces the
# entire match. Templates expand $name, ${name}, $1 and ${1}; $$ is a "$".
`)

	if !opts.Examples {
		buf.WriteString("rules: []\n")
		return buf.Bytes()
	}

	buf.WriteString(`rules:
  # Rewrite 12/31/2024 as 2024-12-31.
  - name: iso-dates
    pattern: '(?P<month>\d{2})/(?P<day>\d{2})/(?P<year>\d{4})'
    whole: '${year}-${month}-${day}'

  # Upgrade links outside code blocks and code spans.
  - name: http-to-https
    pattern: '(?P<scheme>http)://'
    skip_code: true
    set:
      scheme: https
`)

	return buf.Bytes()
}

func generateJSONTemplate(opts TemplateOptions) ([]byte, error) {
	cfg := NewConfig()
	cfg.Rules = []RuleConfig{}
	if opts.Examples {
		cfg.Rules = exampleRules()
	}

	body, err := json.MarshalIndent(jsonView(cfg), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	var buf bytes.Buffer
	for _, line := range strings.Split(DefaultTemplateHeader(), "\n") {
		buf.WriteString("//" + strings.TrimPrefix(line, "#") + "\n")
	}
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// jsonView mirrors the YAML keys so that JSON and YAML configs share one
// vocabulary.
func jsonView(cfg *Config) map[string]any {
	rules := make([]map[string]any, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		entry := map[string]any{
			"name":    rule.Name,
			"pattern": rule.Pattern,
		}
		if rule.SkipCode {
			entry["skip_code"] = true
		}
		if len(rule.Set) > 0 {
			entry["set"] = rule.Set
		}
		if rule.Whole != nil {
			entry["whole"] = *rule.Whole
		}
		rules = append(rules, entry)
	}

	return map[string]any{
		"engine":  cfg.Engine,
		"mode":    cfg.Mode,
		"newline": cfg.Newline,
		"flavor":  cfg.Flavor,
		"backups": map[string]any{
			"enabled": cfg.Backups.Enabled,
			"mode":    cfg.Backups.Mode,
		},
		"rules": rules,
	}
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# spanedit configuration
# See: https://github.com/yaklabco/spanedit`
}
