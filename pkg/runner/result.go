package runner

import "github.com/yaklabco/downlint/pkg/lint"

// FileOutcome wraps a pipeline outcome with its path.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Outcome is the pipeline outcome, nil when Error is set.
	Outcome *lint.Outcome

	// Error is an *IOError or *mdast.ParseError when the file could not be
	// checked.
	Error error
}

// LintResult returns the per-file lint result, recording failures as
// parse-failed results.
func (f *FileOutcome) LintResult() lint.Result {
	if f.Error != nil || f.Outcome == nil {
		return lint.FailedResult(f.Path, f.Error)
	}
	result := f.Outcome.Result
	result.Path = f.Path
	return result
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files successfully processed.
	FilesProcessed int

	// FilesNotDispatched is the number of discovered files never started
	// because the run stopped early.
	FilesNotDispatched int

	// FilesSkipped is the number of files whose fixes were not written
	// because they changed during processing.
	FilesSkipped int

	// FilesErrored is the number of files that could not be checked.
	FilesErrored int

	// Violations is the total number of violations across all files.
	Violations int

	// FilesModified is the number of files rewritten by fixes.
	FilesModified int

	// FixesApplied is the total number of fixes applied across all files.
	FixesApplied int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Truncated is true when MaxViolations stopped dispatch.
	Truncated bool
}

// LintResults returns one lint.Result per processed file.
func (r *Result) LintResults() []lint.Result {
	if r == nil {
		return nil
	}
	results := make([]lint.Result, 0, len(r.Files))
	for i := range r.Files {
		results = append(results, r.Files[i].LintResult())
	}
	return results
}

// Diffs returns the dry-run diffs of changed files in path order.
func (r *Result) Diffs() []string {
	if r == nil {
		return nil
	}
	var diffs []string
	for i := range r.Files {
		if out := r.Files[i].Outcome; out != nil && out.Diff != "" {
			diffs = append(diffs, out.Diff)
		}
	}
	return diffs
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Outcome == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.Violations += len(outcome.Outcome.Violations)
	r.Stats.FixesApplied += outcome.Outcome.Applied

	if outcome.Outcome.SkipReason != "" {
		r.Stats.FilesSkipped++
	}
	if outcome.Outcome.Written {
		r.Stats.FilesModified++
	}
}
