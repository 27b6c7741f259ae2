package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/spanedit/internal/ui/pretty"
	"github.com/yaklabco/spanedit/pkg/config"
)

const formatJSON = "json"

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	Name     string   `json:"name"`
	Pattern  string   `json:"pattern"`
	Engine   string   `json:"engine"`
	Mode     string   `json:"mode"`
	Replaces []string `json:"replaces"`
	SkipCode bool     `json:"skipCode"`
	Enabled  bool     `json:"enabled"`
}

func newRulesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the configured rewrite rules",
		Long: `List the rewrite rules from the resolved configuration, in the order
they are applied, with their engine, mode and the captures they replace.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := workingDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, workDir, nil)
			if err != nil {
				return err
			}

			infos := describeRules(cfg)
			if format == formatJSON {
				return outputRulesJSON(cmd.OutOrStdout(), infos)
			}
			return outputRulesTable(cmd, infos)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func describeRules(cfg *config.Config) []ruleInfo {
	infos := make([]ruleInfo, 0, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		info := ruleInfo{
			Name:     config.RuleLabel(rule, i),
			Pattern:  rule.Pattern,
			Engine:   orDefault(rule.Engine, cfg.Engine),
			Mode:     string(orDefault(rule.Mode, cfg.Mode)),
			SkipCode: rule.SkipCode,
			Enabled:  rule.IsEnabled(),
			Replaces: []string{},
		}
		if rule.Whole != nil {
			info.Replaces = append(info.Replaces, "$0")
		}
		for key := range rule.Set {
			info.Replaces = append(info.Replaces, key)
		}
		slices.Sort(info.Replaces)
		infos = append(infos, info)
	}
	return infos
}

// orDefault returns value, or fallback when value is empty.
func orDefault[T ~string](value, fallback T) T {
	if value == "" {
		return fallback
	}
	return value
}

func outputRulesJSON(w io.Writer, infos []ruleInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return nil
}

func outputRulesTable(cmd *cobra.Command, infos []ruleInfo) error {
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))

	if len(infos) == 0 {
		_, err := fmt.Fprintln(out, styles.Dim.Render("No rules configured. Run 'spanedit init' to create a config file."))
		return err
	}

	table := styles.NewTable([]string{"Rule", "Engine", "Mode", "Replaces", "Pattern"})
	for _, info := range infos {
		name := info.Name
		if !info.Enabled {
			name += " (disabled)"
		}
		replaces := strings.Join(info.Replaces, ",")
		if replaces == "" {
			replaces = "-"
		}
		table.AddRow(name, info.Engine, info.Mode, replaces, info.Pattern)
	}

	_, err := fmt.Fprint(out, table.String())
	return err
}
