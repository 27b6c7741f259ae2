// Package runner applies a rewrite engine to many files concurrently.
package runner

import "github.com/yaklabco/spanedit/pkg/config"

// Options controls a multi-file run.
type Options struct {
	// Paths are the user-specified files or directories. Empty means the
	// working directory.
	Paths []string

	// WorkingDir resolves relative Paths and anchors ignore globs.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions limits directory walks to these extensions (with leading
	// dot, compared case-insensitively). Empty accepts every file.
	// Explicitly named files are always accepted.
	Extensions []string

	// ExcludeGlobs skip matching files and directories. Patterns are
	// matched against the slash-separated path relative to WorkingDir and
	// against the base name; "**" crosses directories.
	ExcludeGlobs []string

	// IncludeVendored keeps paths that look vendored (node_modules,
	// vendor/, third_party/, ...).
	IncludeVendored bool

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs is the number of concurrent workers. 0 or less means
	// runtime.NumCPU().
	Jobs int

	// Write rewrites changed files in place.
	Write bool

	// DryRun computes diffs for changed files without writing.
	DryRun bool

	// Backup stores a sidecar copy before a file is first rewritten.
	Backup bool
}

// OptionsFromConfig fills the file selection and write settings from cfg.
// Paths and WorkingDir are left to the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Options{
		Extensions:      cfg.Extensions,
		ExcludeGlobs:    cfg.Ignore,
		IncludeVendored: cfg.IncludeVendored,
		Jobs:            cfg.Jobs,
		Write:           cfg.Write && !cfg.DryRun,
		DryRun:          cfg.DryRun,
		Backup:          cfg.Backups.Enabled && !cfg.NoBackups,
	}
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
