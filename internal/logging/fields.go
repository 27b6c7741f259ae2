package logging

// Field names for structured logging.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"
	FieldSource     = "source"

	// Rule fields.
	FieldRule    = "rule"
	FieldRules   = "rules"
	FieldPattern = "pattern"
	FieldEngine  = "engine"
	FieldMode    = "mode"

	// Run fields.
	FieldWrite  = "write"
	FieldDryRun = "dry_run"
	FieldJobs   = "jobs"
	FieldReason = "reason"
	FieldEvent  = "event"

	// Statistics fields.
	FieldMatches         = "matches"
	FieldEdits           = "edits"
	FieldFilesDiscovered = "files_discovered"
	FieldFilesChanged    = "files_changed"
	FieldFilesWritten    = "files_written"
	FieldBackup          = "backup"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
