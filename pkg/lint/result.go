package lint

import "github.com/yaklabco/downlint/pkg/config"

// Status summarizes the outcome for one file.
type Status int

const (
	StatusClean Status = iota
	StatusHasWarnings
	StatusHasErrors
	StatusParseFailed
)

func (s Status) String() string {
	switch s {
	case StatusHasWarnings:
		return "has-warnings"
	case StatusHasErrors:
		return "has-errors"
	case StatusParseFailed:
		return "parse-failed"
	default:
		return "clean"
	}
}

// Result contains the outcome of linting a single file.
type Result struct {
	Path       string
	Violations []Violation
	Status     Status

	// Err is the read or parse failure for StatusParseFailed results.
	Err error
}

// NewResult builds a Result and derives its status from the violations.
func NewResult(path string, violations []Violation) Result {
	status := StatusClean
	for _, v := range violations {
		if v.Severity == config.SeverityError {
			status = StatusHasErrors
			break
		}
		status = StatusHasWarnings
	}
	return Result{Path: path, Violations: violations, Status: status}
}

// FailedResult records a file that could not be read or parsed.
func FailedResult(path string, err error) Result {
	return Result{Path: path, Status: StatusParseFailed, Err: err}
}

// HasIssues returns true if any violations were found.
func (r *Result) HasIssues() bool {
	return len(r.Violations) > 0
}

// FixableCount returns the number of violations with fixes.
func (r *Result) FixableCount() int {
	count := 0
	for i := range r.Violations {
		if r.Violations[i].HasFix() {
			count++
		}
	}
	return count
}
