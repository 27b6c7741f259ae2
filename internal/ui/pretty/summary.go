package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/spanedit/pkg/runner"
)

const summaryDividerWidth = 40

// Plural returns word, with an "s" appended unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 edits in 2 of 7 files, 2 written".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesChanged == 0 {
		msg := s.Success.Render("No changes") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, Plural(stats.FilesProcessed, "file")))
		if stats.FilesErrored > 0 {
			msg += ", " + s.Error.Render(fmt.Sprintf("%d %s", stats.FilesErrored, Plural(stats.FilesErrored, "error")))
		}
		return msg + "\n"
	}

	parts := []string{fmt.Sprintf("%s %s in %d of %d %s",
		s.Count.Render(strconv.Itoa(stats.EditsTotal)), Plural(stats.EditsTotal, "edit"),
		stats.FilesChanged, stats.FilesProcessed, Plural(stats.FilesProcessed, "file"))}

	if stats.FilesWritten > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten)))
	}
	if pending := stats.FilesChanged - stats.FilesWritten; pending > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d pending", pending)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", stats.FilesErrored, Plural(stats.FilesErrored, "error"))))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(s.Bold.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(s.TableSeparator.Render(strings.Repeat("-", summaryDividerWidth)))
	b.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		fmt.Fprintf(&b, "  %-18s %s\n", label+":", style(strconv.Itoa(value)))
	}

	row("Files checked", stats.FilesProcessed, s.Count.Render)
	row("Files changed", stats.FilesChanged, s.Count.Render)
	if stats.FilesWritten > 0 {
		row("Files written", stats.FilesWritten, s.Success.Render)
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", stats.FilesSkipped, s.Dim.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files with errors", stats.FilesErrored, s.Error.Render)
	}
	row("Matches", stats.MatchesTotal, s.Count.Render)
	row("Edits", stats.EditsTotal, s.Count.Render)

	b.WriteString("\n")
	switch {
	case stats.FilesErrored > 0:
		b.WriteString(s.Failure.Render("Rewrite finished with errors"))
	case stats.FilesChanged > stats.FilesWritten:
		b.WriteString(s.Warning.Render("Changes pending; rerun with --write to apply"))
	case stats.FilesWritten > 0:
		b.WriteString(s.Success.Render("Changes written"))
	default:
		b.WriteString(s.Success.Render("Nothing to change"))
	}
	b.WriteString("\n")

	return b.String()
}
