package analysis

import "time"

// Report contains pre-computed views of a rewrite run.
// Computed once by Analyze and shared by the reporters.
type Report struct {
	// ByFile holds per-file results.
	ByFile []FileAnalysis `json:"files"`

	// ByRule aggregates each rule over all files.
	ByRule []RuleAnalysis `json:"rules"`

	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	Timestamp time.Time `json:"timestamp"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files        int `json:"filesChecked"`
	FilesChanged int `json:"filesChanged"`
	FilesWritten int `json:"filesWritten"`
	FilesSkipped int `json:"filesSkipped"`
	FilesErrored int `json:"filesErrored"`
	Matches      int `json:"matches"`
	Edits        int `json:"edits"`
}

// HasChanges returns true if any file changed.
func (t Totals) HasChanges() bool {
	return t.FilesChanged > 0
}

// HasErrors returns true if any file failed.
func (t Totals) HasErrors() bool {
	return t.FilesErrored > 0
}

// FileAnalysis is the outcome for a single file.
type FileAnalysis struct {
	Path       string   `json:"path"`
	Status     string   `json:"status"`
	Changed    bool     `json:"changed"`
	Written    bool     `json:"written,omitempty"`
	Backup     bool     `json:"backup,omitempty"`
	SkipReason string   `json:"skipReason,omitempty"`
	Error      string   `json:"error,omitempty"`
	Matches    int      `json:"matches"`
	Edits      int      `json:"edits"`
	Rules      []string `json:"rules,omitempty"`
	Diff       string   `json:"diff,omitempty"`
}

// RuleAnalysis contains aggregated data for a single rule.
type RuleAnalysis struct {
	Rule    string   `json:"rule"`
	Matches int      `json:"matches"`
	Edits   int      `json:"edits"`
	Skipped int      `json:"skipped"`
	Files   []string `json:"files,omitempty"`
}
