package runner

import (
	"github.com/yaklabco/spanedit/pkg/diff"
	"github.com/yaklabco/spanedit/pkg/rewrite"
)

// FileOutcome is what happened to one file.
type FileOutcome struct {
	// Path is the absolute path that was processed.
	Path string

	// Rewrite is the engine result. Nil when the file errored or was
	// skipped before rewriting.
	Rewrite *rewrite.Result

	// Diff is set in dry-run mode for changed files.
	Diff *diff.Diff

	// Skipped is true if the file was left alone; SkipReason says why.
	Skipped    bool
	SkipReason string

	// BackupCreated is true if a sidecar backup was written.
	BackupCreated bool

	// Written is true if the rewritten content was stored on disk.
	Written bool

	// Error is set if the file could not be processed.
	Error error
}

// Changed reports whether the rules changed the file's content.
func (o FileOutcome) Changed() bool {
	return o.Rewrite != nil && o.Rewrite.Changed
}

// Status returns a short human-readable state for the outcome.
func (o FileOutcome) Status() string {
	switch {
	case o.Error != nil:
		return "error"
	case o.Skipped:
		return "skipped: " + o.SkipReason
	case o.Written && o.BackupCreated:
		return "rewritten (backup created)"
	case o.Written:
		return "rewritten"
	case o.Changed():
		return "changes pending"
	default:
		return "unchanged"
	}
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int `json:"files_discovered"`
	FilesProcessed  int `json:"files_processed"`
	FilesChanged    int `json:"files_changed"`
	FilesWritten    int `json:"files_written"`
	FilesSkipped    int `json:"files_skipped"`
	FilesErrored    int `json:"files_errored"`
	MatchesTotal    int `json:"matches_total"`
	EditsTotal      int `json:"edits_total"`
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	Stats Stats
}

// HasChanges reports whether any file changed, written or not.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

// HasPendingChanges reports whether some changed file was not written.
func (r *Result) HasPendingChanges() bool {
	return r != nil && r.Stats.FilesChanged > r.Stats.FilesWritten
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Skipped {
		r.Stats.FilesSkipped++
	}
	if outcome.Rewrite == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.EditsTotal += outcome.Rewrite.Edits
	for _, stats := range outcome.Rewrite.PerRule {
		r.Stats.MatchesTotal += stats.Matches
	}
	if outcome.Changed() {
		r.Stats.FilesChanged++
	}
	if outcome.Written {
		r.Stats.FilesWritten++
	}
}
