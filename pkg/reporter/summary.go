package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/yaklabco/spanedit/internal/ui/pretty"
	"github.com/yaklabco/spanedit/pkg/analysis"
	"github.com/yaklabco/spanedit/pkg/runner"
)

// SummaryRenderer writes per-rule and per-file tables followed by totals.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if len(report.ByRule) > 0 {
		rules := r.styles.NewTable([]string{"Rule", "Matches", "Edits", "Skipped", "Files"}, 1, 2, 3, 4)
		for _, ra := range report.ByRule {
			rules.AddRow(
				r.styles.Rule.Render(ra.Rule),
				strconv.Itoa(ra.Matches),
				strconv.Itoa(ra.Edits),
				strconv.Itoa(ra.Skipped),
				strconv.Itoa(len(ra.Files)),
			)
		}
		if _, err := fmt.Fprint(r.out, rules.String()); err != nil {
			return err
		}
	}

	files := r.styles.NewTable([]string{"File", "Edits", "Status"}, 1)
	for _, fa := range report.ByFile {
		status := fa.Status
		if fa.Error != "" {
			status = r.styles.Error.Render("error: " + fa.Error)
		}
		files.AddRow(r.styles.FilePath.Render(fa.Path), strconv.Itoa(fa.Edits), status)
	}
	if files.Len() > 0 {
		if _, err := fmt.Fprint(r.out, "\n"+files.String()); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(r.out, r.styles.FormatSummary(totalsStats(report.Totals))); err != nil {
		return err
	}
	return nil
}

func totalsStats(t analysis.Totals) runner.Stats {
	return runner.Stats{
		FilesProcessed: t.Files - t.FilesErrored - t.FilesSkipped,
		FilesChanged:   t.FilesChanged,
		FilesWritten:   t.FilesWritten,
		FilesSkipped:   t.FilesSkipped,
		FilesErrored:   t.FilesErrored,
		MatchesTotal:   t.Matches,
		EditsTotal:     t.Edits,
	}
}
