package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/spanedit/internal/logging"
	"github.com/yaklabco/spanedit/pkg/config"
	"github.com/yaklabco/spanedit/pkg/reporter"
	"github.com/yaklabco/spanedit/pkg/rewrite"
	"github.com/yaklabco/spanedit/pkg/runner"
)

// stdinPath names standard input in logs and as a path argument.
const stdinPath = "-"

type rewriteFlags struct {
	format     string
	pattern    string
	name       string
	set        []string
	whole      string
	lines      bool
	newline    string
	engine     string
	ignoreCase bool
	multiline  bool
	dotAll     bool
	skipCode   bool
	ignore     []string
	extensions []string
	only       []string
	check      bool
	verbose    bool
	compact    bool
}

func newRewriteCommand() *cobra.Command {
	var cfg config.Config
	flags := &rewriteFlags{}

	cmd := &cobra.Command{
		Use:     "rewrite [paths...]",
		Aliases: []string{"rw"},
		Short:   "Apply rewrite rules to files",
		Long:    rewriteLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, args, &cfg, flags)
		},
	}

	addRewriteFlags(cmd, &cfg, flags)

	return cmd
}

const rewriteLongDescription = `Apply rewrite rules to files.

Rules come from the configuration file or from --rule on the command line.
Without --write nothing is changed and a report of pending edits is
printed. With no paths and piped input, standard input is rewritten to
standard output.

Examples:
  spanedit rewrite                              # Report pending edits in .
  spanedit rewrite --write docs/                # Rewrite files under docs/
  spanedit rewrite --dry-run                    # Show a unified diff
  spanedit rewrite --check                      # Exit 1 when files would change
  spanedit rewrite --rule '(?P<first>\w+) (?P<last>Reynolds)' \
      --set first=Sisonek --set last=Momosek --write bio.txt
  spanedit rewrite --rule '(\d{2})/(\d{2})/(\d{4})' --whole '$3-$1-$2' -w notes/
  echo 'Xilofon Reynolds' | spanedit rewrite --rule '(\w+) (\w+)' --whole '$2 $1'`

func addRewriteFlags(cmd *cobra.Command, cfg *config.Config, flags *rewriteFlags) {
	cmd.Flags().BoolVarP(&cfg.Write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVarP(&cfg.DryRun, "dry-run", "n", false, "show a diff without writing")
	cmd.Flags().BoolVar(&flags.check, "check", false, "exit with status 1 when files would change")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "output format: text, json, diff, summary")
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when writing")
	cmd.Flags().BoolVar(&cfg.IncludeVendored, "include-vendored", false, "also rewrite vendored paths")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "only rewrite files with these extensions")
	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "run only the named rules")

	cmd.Flags().StringVarP(&flags.pattern, "rule", "r", "", "inline rule pattern (replaces configured rules)")
	cmd.Flags().StringVar(&flags.name, "name", "inline", "name of the inline rule")
	cmd.Flags().StringArrayVarP(&flags.set, "set", "s", nil, "capture replacement as key=template (repeatable)")
	cmd.Flags().StringVar(&flags.whole, "whole", "", "template replacing the whole match")
	cmd.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "match the inline rule case-insensitively")
	cmd.Flags().BoolVarP(&flags.multiline, "multiline", "m", false, "^ and $ match at line boundaries")
	cmd.Flags().BoolVar(&flags.dotAll, "dot-all", false, ". matches newlines")
	cmd.Flags().BoolVar(&flags.skipCode, "skip-code", false, "leave Markdown code untouched")

	cmd.Flags().BoolVar(&flags.lines, "lines", false, "match each line separately")
	cmd.Flags().StringVar(&flags.newline, "newline", "", "line terminator in lines mode: lf, crlf, cr")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "regexp engine: re2, regexp2")

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list unchanged and skipped files")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
}

// buildCLIConfig fills the flag-backed config with the values that were
// explicitly provided.
func buildCLIConfig(cmd *cobra.Command, cfg *config.Config, flags *rewriteFlags) error {
	changed := cmd.Flags().Changed

	if changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if flags.lines {
		cfg.Mode = config.ModeLines
	}
	if changed("newline") {
		cfg.Newline = config.Newline(flags.newline)
	}
	if changed("engine") {
		cfg.Engine = flags.engine
	}
	cfg.Ignore = flags.ignore
	cfg.Extensions = flags.extensions
	cfg.Only = flags.only

	rule, err := inlineRule(flags, changed("whole"))
	if err != nil {
		return err
	}
	if rule != nil {
		cfg.Rules = []config.RuleConfig{*rule}
	}
	return nil
}

// inlineRule builds the rule given by --rule, or nil without one.
func inlineRule(flags *rewriteFlags, hasWhole bool) (*config.RuleConfig, error) {
	if flags.pattern == "" {
		if len(flags.set) > 0 || hasWhole {
			return nil, fmt.Errorf("%w: --set and --whole need --rule", ErrUsage)
		}
		return nil, nil
	}

	rule := &config.RuleConfig{
		Name:       flags.name,
		Pattern:    flags.pattern,
		IgnoreCase: flags.ignoreCase,
		Multiline:  flags.multiline,
		DotAll:     flags.dotAll,
		SkipCode:   flags.skipCode,
	}
	if hasWhole {
		whole := flags.whole
		rule.Whole = &whole
	}

	for _, assignment := range flags.set {
		key, tmpl, ok := strings.Cut(assignment, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --set %q must look like key=template", ErrUsage, assignment)
		}
		if rule.Set == nil {
			rule.Set = make(map[string]string)
		}
		rule.Set[key] = tmpl
	}

	return rule, nil
}

func runRewrite(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *rewriteFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	if err := buildCLIConfig(cmd, cliCfg, flags); err != nil {
		return err
	}

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, workDir, cliCfg)
	if err != nil {
		return err
	}
	if len(cfg.ActiveRules()) == 0 {
		return fmt.Errorf("%w: no rules to apply; add rules to .spanedit.yml or pass --rule", ErrUsage)
	}

	engine, err := rewrite.New(cfg)
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	if readsStdin(cmd, args) {
		return rewriteStdin(cmd, engine, flags.check)
	}

	runOpts := runner.OptionsFromConfig(cfg)
	runOpts.Paths = args
	runOpts.WorkingDir = workDir

	logger.Debug("starting rewrite run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := runner.New(engine).Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("rewrite run failed: %w", err)
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	// A dry run is about the diff unless another format was asked for.
	if cfg.DryRun && format == reporter.FormatText && !cmd.Flags().Changed("format") {
		format = reporter.FormatDiff
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode(cmd),
		ShowSummary: true,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	switch ExitCodeFromResult(result, flags.check) {
	case ExitRewriteErrors:
		return ErrRewriteFailed
	case ExitChangesPending:
		return ErrChangesPending
	default:
		return nil
	}
}

// readsStdin reports whether the run should filter standard input: either
// "-" is the only path, or no paths are given and input is piped.
func readsStdin(cmd *cobra.Command, args []string) bool {
	if len(args) == 1 && args[0] == stdinPath {
		return true
	}
	return len(args) == 0 && inputIsPiped(cmd.InOrStdin())
}

// inputIsPiped reports whether r carries data from a pipe or file rather
// than an interactive terminal. Readers that are not files were set
// explicitly and count as piped.
func inputIsPiped(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	if term.IsTerminal(int(file.Fd())) {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	// /dev/null and other character devices are not input.
	return info.Mode()&os.ModeCharDevice == 0
}

func rewriteStdin(cmd *cobra.Command, engine *rewrite.Engine, check bool) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	result, err := engine.Rewrite(ctx, stdinPath, content)
	if err != nil {
		return fmt.Errorf("rewrite stdin: %w", err)
	}

	if _, err := cmd.OutOrStdout().Write(result.Content); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}

	logger.Debug("rewrote stdin", logging.FieldEdits, result.Edits)

	if check && result.Changed {
		return ErrChangesPending
	}
	return nil
}
