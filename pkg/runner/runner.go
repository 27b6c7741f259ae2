package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-enry/go-enry/v2"

	"github.com/yaklabco/spanedit/internal/logging"
	"github.com/yaklabco/spanedit/pkg/diff"
	"github.com/yaklabco/spanedit/pkg/fsutil"
	"github.com/yaklabco/spanedit/pkg/rewrite"
)

// Error categories for per-file failures.
var (
	// ErrFileNotFound indicates a requested path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWriteFailure indicates the rewritten content could not be stored.
	ErrWriteFailure = errors.New("write failure")
)

// Skip reasons.
const (
	SkipBinary   = "binary content"
	SkipModified = "file modified during processing"
)

// Runner applies a rewrite engine to files.
type Runner struct {
	Engine *rewrite.Engine
}

// New creates a Runner around engine.
func New(engine *rewrite.Engine) *Runner {
	return &Runner{Engine: engine}
}

// Run discovers files under opts.Paths and processes them with a pool of
// workers. Outcomes are returned in path order whatever the completion
// order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	logger.Debug("discovered files", logging.FieldFilesDiscovered, len(files))

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan int)
	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				outcomes[idx] = r.ProcessFile(ctx, files[idx], opts)
				done[idx] = true
			}
		}()
	}

feed:
	for idx := range files {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- idx:
		}
	}
	close(workCh)
	wg.Wait()

	for idx := range files {
		if done[idx] {
			result.accumulate(outcomes[idx])
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}

	logger.Debug("run complete",
		logging.FieldFilesChanged, result.Stats.FilesChanged,
		logging.FieldFilesWritten, result.Stats.FilesWritten,
		logging.FieldEdits, result.Stats.EditsTotal)

	return result, nil
}

// ProcessFile runs the per-file pipeline:
//
//  1. Read and hash the file.
//  2. Skip binary content.
//  3. Rewrite in memory.
//  4. In dry-run mode, diff and stop.
//  5. Back up the original if enabled.
//  6. Replace the file atomically unless it changed since step 1.
func (r *Runner) ProcessFile(ctx context.Context, path string, opts Options) FileOutcome {
	ctx = logging.WithFields(ctx, logging.FieldPath, path)
	logger := logging.FromContext(ctx)
	outcome := FileOutcome{Path: path}

	snap, err := fsutil.Read(ctx, path)
	if err != nil {
		outcome.Error = categorize(err)
		return outcome
	}

	if enry.IsBinary(snap.Content) {
		outcome.Skipped = true
		outcome.SkipReason = SkipBinary
		logger.Debug("skipping file", logging.FieldReason, SkipBinary)
		return outcome
	}

	res, err := r.Engine.Rewrite(ctx, path, snap.Content)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Rewrite = res

	if !res.Changed {
		return outcome
	}
	logger.Debug("rewrote file", logging.FieldEdits, res.Edits)

	if opts.DryRun {
		outcome.Diff = diff.Unified(path, snap.Content, res.Content)
		return outcome
	}
	if !opts.Write {
		return outcome
	}

	// Checked before the backup too; Replace checks again before renaming.
	changed, err := snap.Changed(ctx)
	if err != nil {
		outcome.Error = categorize(err)
		return outcome
	}
	if changed {
		outcome.Skipped = true
		outcome.SkipReason = SkipModified
		logger.Warn("skipping file", logging.FieldReason, SkipModified)
		return outcome
	}

	if opts.Backup {
		created, err := fsutil.Backup(ctx, snap)
		if err != nil {
			outcome.Error = fmt.Errorf("%w: %w", ErrWriteFailure, err)
			return outcome
		}
		outcome.BackupCreated = created
	}

	if err := fsutil.Replace(ctx, snap, res.Content); err != nil {
		if errors.Is(err, fsutil.ErrModified) {
			outcome.Skipped = true
			outcome.SkipReason = SkipModified
			return outcome
		}
		outcome.Error = fmt.Errorf("%w: %w", ErrWriteFailure, err)
		return outcome
	}
	outcome.Written = true
	logger.Debug("wrote file", logging.FieldBackup, outcome.BackupCreated)

	return outcome
}

func categorize(err error) error {
	switch {
	case errors.Is(err, fsutil.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}
