package cli

import (
	"errors"

	"github.com/yaklabco/spanedit/internal/configloader"
	"github.com/yaklabco/spanedit/pkg/rewrite"
	"github.com/yaklabco/spanedit/pkg/runner"
)

// Exit codes for spanedit.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitChangesPending indicates --check found files that would change.
	ExitChangesPending = 1

	// ExitRewriteErrors indicates some files could not be processed.
	ExitRewriteErrors = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration or rule errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrChangesPending is returned by rewrite --check when files would change.
	ErrChangesPending = errors.New("changes pending")

	// ErrRewriteFailed is returned when at least one file failed.
	ErrRewriteFailed = errors.New("rewrite failed for some files")

	// ErrConfig marks configuration loading failures.
	ErrConfig = errors.New("failed to load configuration")

	// ErrUsage marks invalid flag combinations.
	ErrUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code for a finished run.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	if result == nil {
		return ExitSuccess
	}
	if result.HasErrors() {
		return ExitRewriteErrors
	}
	if check && result.HasPendingChanges() {
		return ExitChangesPending
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrChangesPending):
		return ExitChangesPending
	case errors.Is(err, ErrRewriteFailed):
		return ExitRewriteErrors
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.Is(err, rewrite.ErrInvalidRule), errors.As(err, &validation):
		return ExitConfigError
	case errors.Is(err, runner.ErrFileNotFound), errors.Is(err, runner.ErrPermissionDenied),
		errors.Is(err, runner.ErrWriteFailure):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// IsSignal reports whether err only signals an exit status and should not
// be logged as a failure.
func IsSignal(err error) bool {
	return errors.Is(err, ErrChangesPending)
}
