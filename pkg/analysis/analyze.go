// Package analysis aggregates a rewrite run into per-file and per-rule views.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/spanedit/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

// Analyze transforms a runner.Result into a Report in a single pass.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
		ByFile:    []FileAnalysis{},
		ByRule:    []RuleAnalysis{},
	}
	if result == nil {
		return report
	}

	rules := make(map[string]*RuleAnalysis)
	var ruleOrder []string

	for _, file := range result.Files {
		displayPath := makeRelativePath(file.Path, opts.WorkingDir)
		fa := FileAnalysis{
			Path:       displayPath,
			Status:     file.Status(),
			Changed:    file.Changed(),
			Written:    file.Written,
			Backup:     file.BackupCreated,
			SkipReason: file.SkipReason,
		}
		if file.Diff != nil {
			fa.Diff = file.Diff.String()
		}

		report.Totals.Files++
		switch {
		case file.Error != nil:
			fa.Error = file.Error.Error()
			report.Totals.FilesErrored++
		case file.Skipped:
			report.Totals.FilesSkipped++
		}
		if fa.Changed {
			report.Totals.FilesChanged++
		}
		if fa.Written {
			report.Totals.FilesWritten++
		}

		if file.Rewrite != nil {
			for _, stats := range file.Rewrite.PerRule {
				fa.Matches += stats.Matches
				fa.Edits += stats.Edits
				if stats.Edits > 0 {
					fa.Rules = append(fa.Rules, stats.Rule)
				}

				ra, ok := rules[stats.Rule]
				if !ok {
					ra = &RuleAnalysis{Rule: stats.Rule}
					rules[stats.Rule] = ra
					ruleOrder = append(ruleOrder, stats.Rule)
				}
				ra.Matches += stats.Matches
				ra.Edits += stats.Edits
				ra.Skipped += stats.Skipped
				if stats.Edits > 0 {
					ra.Files = append(ra.Files, displayPath)
				}
			}
		}
		report.Totals.Matches += fa.Matches
		report.Totals.Edits += fa.Edits

		if fa.Changed || fa.Error != "" || fa.SkipReason != "" || opts.IncludeUnchanged {
			report.ByFile = append(report.ByFile, fa)
		}
	}

	for _, name := range ruleOrder {
		ra := rules[name]
		slices.Sort(ra.Files)
		report.ByRule = append(report.ByRule, *ra)
	}

	sortRuleAnalysis(report.ByRule, opts.SortBy, opts.SortDesc)
	sortFileAnalysis(report.ByFile, opts.SortBy, opts.SortDesc)

	return report
}

func sortRuleAnalysis(rules []RuleAnalysis, sortBy SortField, desc bool) {
	slices.SortStableFunc(rules, func(left, right RuleAnalysis) int {
		if sortBy == SortByAlpha {
			return cmp.Compare(left.Rule, right.Rule)
		}
		result := cmp.Compare(left.Edits, right.Edits)
		if desc {
			result = -result
		}
		return result
	})
}

func sortFileAnalysis(files []FileAnalysis, sortBy SortField, desc bool) {
	slices.SortStableFunc(files, func(left, right FileAnalysis) int {
		if sortBy == SortByAlpha {
			return cmp.Compare(left.Path, right.Path)
		}
		result := cmp.Compare(left.Edits, right.Edits)
		if desc {
			result = -result
		}
		return result
	})
}
