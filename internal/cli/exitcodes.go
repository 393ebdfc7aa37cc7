package cli

import "errors"

// Exit codes for downlint.
const (
	// ExitSuccess indicates no violation at or above the fail-on severity.
	ExitSuccess = 0

	// ExitViolations indicates violations at or above the fail-on severity.
	ExitViolations = 1

	// ExitError indicates a usage, configuration, or I/O error, including
	// files that could not be read or parsed.
	ExitError = 2
)

// ErrLintIssuesFound is returned when violations reach the fail-on
// severity. The report has already been printed.
var ErrLintIssuesFound = errors.New("lint issues found")

// ErrFilesFailed is returned when some files could not be checked.
var ErrFilesFailed = errors.New("files could not be checked")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrLintIssuesFound):
		return ExitViolations
	default:
		return ExitError
	}
}
