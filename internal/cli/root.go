// Package cli provides the Cobra command structure for spanedit.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/spanedit/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root spanedit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "spanedit",
		Short: "Rewrite text by editing regex capture groups in place",
		Long: `spanedit rewrites files by matching regular expressions and replacing
individual capture groups, named or numbered, while leaving the rest of
each match untouched.

Rules live in .spanedit.yml or are given inline with --rule. Files are only
changed with --write; --dry-run shows a unified diff instead. Backups are
kept next to rewritten files and can be put back with "spanedit restore".`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.WithLogger(ctx, logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newRewriteCommand())
	rootCmd.AddCommand(newTreeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
