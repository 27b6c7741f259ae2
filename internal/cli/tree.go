package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/spanedit/internal/ui/pretty"
	"github.com/yaklabco/spanedit/pkg/document"
	"github.com/yaklabco/spanedit/pkg/matcher"
)

type treeFlags struct {
	engine     string
	lines      bool
	ignoreCase bool
	multiline  bool
	dotAll     bool
	limit      int
}

func newTreeCommand() *cobra.Command {
	flags := &treeFlags{}

	cmd := &cobra.Command{
		Use:   "tree <pattern> [file]",
		Short: "Show the capture span tree of every match",
		Long: `Match a pattern against a file (or standard input) and print the span
tree of each match: every participating capture group with its label,
offsets relative to its parent, and text.

Examples:
  spanedit tree '(?P<first>\w+) (?P<last>(R)\w+)' bio.txt
  echo 'a=1, b=2' | spanedit tree '(\w+)=(\w+)'
  spanedit tree --lines --engine regexp2 '^(?<key>\w+)(?=:)' config.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.engine, "engine", "re2", "regexp engine: re2, regexp2")
	cmd.Flags().BoolVar(&flags.lines, "lines", false, "match each line separately")
	cmd.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	cmd.Flags().BoolVarP(&flags.multiline, "multiline", "m", false, "^ and $ match at line boundaries")
	cmd.Flags().BoolVar(&flags.dotAll, "dot-all", false, ". matches newlines")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "stop after this many matches (0 = all)")

	return cmd
}

func runTree(cmd *cobra.Command, args []string, flags *treeFlags) error {
	engine, err := matcher.ParseEngine(flags.engine)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	m, err := matcher.Compile(engine, args[0], matcher.Flags{
		IgnoreCase: flags.ignoreCase,
		Multiline:  flags.multiline,
		DotAll:     flags.dotAll,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	var input io.Reader = cmd.InOrStdin()
	if len(args) == 2 && args[1] != stdinPath {
		file, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		input = file
	}

	content, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var nodes []*document.Node
	if flags.lines {
		nodes, err = document.BuildLineNodes(m, string(content))
	} else {
		nodes, err = document.BuildNodes(m, string(content))
	}
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	bw := bufio.NewWriter(out)

	count := 0
	for _, node := range nodes {
		if !node.IsMatch() {
			continue
		}
		if flags.limit > 0 && count == flags.limit {
			break
		}
		count++
		fmt.Fprint(bw, styles.FormatTree(pretty.MatchHeader{
			Index:  count,
			Line:   node.Line(),
			Offset: node.Offset(),
		}, node.Tree()))
	}

	if count == 0 {
		fmt.Fprintln(bw, styles.Dim.Render("No matches."))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
