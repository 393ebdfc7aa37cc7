// Package config defines the rule configuration model for downlint and
// resolves built-in defaults, a project file, and command line overrides
// into an immutable ResolvedConfig.
// These types are pure data structures; file discovery and environment
// handling live in internal/configloader.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Severity represents the severity level of a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultSeverity is used for rules that do not declare one.
const DefaultSeverity = SeverityError

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("%w: severity %q (want error, warning, or info)", ErrInvalidValue, s)
	}
	return sev, nil
}

// Rank orders severities; unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

// OutputFormat specifies the report format.
type OutputFormat string

const (
	FormatConcise      OutputFormat = "concise"
	FormatText         OutputFormat = "text"
	FormatJSON         OutputFormat = "json"
	FormatMDL          OutputFormat = "mdl"
	FormatMarkdownlint OutputFormat = "markdownlint"
	FormatSARIF        OutputFormat = "sarif"
)

// OutputFormats returns every supported format in display order.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatConcise, FormatText, FormatJSON, FormatMDL, FormatMarkdownlint, FormatSARIF}
}

// IsValid returns true if the format is supported.
func (f OutputFormat) IsValid() bool {
	for _, known := range OutputFormats() {
		if f == known {
			return true
		}
	}
	return false
}

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// IsValid returns true if the flavor is supported.
func (f Flavor) IsValid() bool {
	return f == FlavorCommonMark || f == FlavorGFM
}

// Settings holds the run-wide options from the lint section of a project
// file, the environment, and command line flags.
type Settings struct {
	OutputFormat     OutputFormat  `koanf:"output-format"`
	Quiet            bool          `koanf:"quiet"`
	RespectIgnore    bool          `koanf:"respect-ignore"`
	RespectGitignore bool          `koanf:"respect-gitignore"`
	Exclude          []string      `koanf:"exclude"`
	FailOn           Severity      `koanf:"fail-on"`
	Jobs             int           `koanf:"jobs"`
	MaxViolations    int           `koanf:"max-violations"`
	RuleTimeout      time.Duration `koanf:"rule-timeout"`
	Flavor           Flavor        `koanf:"flavor"`
}

// DefaultSettings returns the built-in lint settings.
func DefaultSettings() Settings {
	return Settings{
		OutputFormat:     FormatConcise,
		RespectIgnore:    true,
		RespectGitignore: true,
		FailOn:           SeverityWarning,
		Flavor:           FlavorGFM,
	}
}

// Map returns the settings keyed by their config names.
func (s Settings) Map() map[string]any {
	return map[string]any{
		"output-format":     string(s.OutputFormat),
		"quiet":             s.Quiet,
		"respect-ignore":    s.RespectIgnore,
		"respect-gitignore": s.RespectGitignore,
		"exclude":           append([]string(nil), s.Exclude...),
		"fail-on":           string(s.FailOn),
		"jobs":              s.Jobs,
		"max-violations":    s.MaxViolations,
		"rule-timeout":      s.RuleTimeout.String(),
		"flavor":            string(s.Flavor),
	}
}

// Validate checks that every setting holds a supported value.
func (s Settings) Validate() error {
	if !s.OutputFormat.IsValid() {
		return &ConfigError{Key: "output-format", Err: fmt.Errorf("%w: %q", ErrInvalidValue, s.OutputFormat)}
	}
	if s.FailOn.Rank() == 0 {
		return &ConfigError{Key: "fail-on", Err: fmt.Errorf("%w: %q", ErrInvalidValue, s.FailOn)}
	}
	if !s.Flavor.IsValid() {
		return &ConfigError{Key: "flavor", Err: fmt.Errorf("%w: %q", ErrInvalidValue, s.Flavor)}
	}
	if s.Jobs < 0 {
		return &ConfigError{Key: "jobs", Err: fmt.Errorf("%w: must not be negative", ErrInvalidValue)}
	}
	if s.MaxViolations < 0 {
		return &ConfigError{Key: "max-violations", Err: fmt.Errorf("%w: must not be negative", ErrInvalidValue)}
	}
	if s.RuleTimeout < 0 {
		return &ConfigError{Key: "rule-timeout", Err: fmt.Errorf("%w: must not be negative", ErrInvalidValue)}
	}
	return nil
}
