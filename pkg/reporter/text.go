package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/spanedit/internal/ui/pretty"
	"github.com/yaklabco/spanedit/pkg/runner"
)

// TextReporter writes one line per interesting file, followed by the
// rules that edited it.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to rewrite."))
		}
		return 0, nil
	}

	var changed int
	for _, file := range result.Files {
		path := r.styles.FilePath.Render(displayPath(file.Path, r.opts.WorkingDir))

		switch {
		case file.Error != nil:
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)))

		case file.Changed():
			changed++
			edits := file.Rewrite.Edits
			fmt.Fprintf(r.bw, "%s: %s %s %s\n", path,
				r.styles.Count.Render(fmt.Sprint(edits)), pretty.Plural(edits, "edit"),
				r.styles.Dim.Render("("+file.Status()+")"))
			for _, stats := range file.Rewrite.PerRule {
				if stats.Edits == 0 {
					continue
				}
				fmt.Fprintf(r.bw, "  %s %d\n", r.styles.Rule.Render(stats.Rule), stats.Edits)
			}

		case file.Skipped && (r.opts.Verbose || file.SkipReason != runner.SkipBinary):
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Warning.Render(file.Status()))

		case r.opts.Verbose:
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Dim.Render(file.Status()))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return changed, nil
}
