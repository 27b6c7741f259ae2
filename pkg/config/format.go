package config

import "strconv"

// RuleLabel returns the identifier shown for a rule in output.
// Falls back to a positional label if the rule has no name.
func RuleLabel(rule RuleConfig, index int) string {
	if rule.Name != "" {
		return rule.Name
	}
	return "rule-" + strconv.Itoa(index+1)
}
