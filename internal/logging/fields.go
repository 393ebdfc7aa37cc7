// Package logging wraps charmbracelet/log for downlint. Library code reads
// the logger from the context; the CLI installs it.
package logging

// Field name constants for structured logging.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Run settings.
	FieldFormat = "format"
	FieldFlavor = "flavor"
	FieldFix    = "fix"
	FieldJobs   = "jobs"
	FieldFailOn = "fail_on"

	// Rule execution.
	FieldRule    = "rule"
	FieldTimeout = "timeout"
	FieldPasses  = "passes"
	FieldReason  = "reason"

	// Run statistics.
	FieldFiles      = "files"
	FieldViolations = "violations"
	FieldFixed      = "fixed"
	FieldFailed     = "failed"

	// Build information.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
