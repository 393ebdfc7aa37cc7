// Package runner provides multi-file linting orchestration.
package runner

import (
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
)

// Ignore file names read during discovery.
const (
	GitignoreFile = ".gitignore"
	IgnoreFile    = ".downlintignore"
)

// Options controls discovery and multi-file linting.
type Options struct {
	// Paths are files, directories, or doublestar globs to process.
	// If empty, defaults to the working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered Markdown. Defaults to DefaultExtensions().
	Extensions []string

	// Exclude are glob patterns, relative to WorkingDir, used to skip
	// files or directories.
	Exclude []string

	// RespectGitignore honors .gitignore files.
	RespectGitignore bool

	// RespectIgnore honors .downlintignore files.
	RespectIgnore bool

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// MaxViolations stops dispatching new files once this many violations
	// have been found. Zero means no limit.
	MaxViolations int

	// Config is the resolved configuration for this run.
	Config *config.ResolvedConfig

	// Fix controls fixing and writing.
	Fix lint.FixOptions
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown", ".mdown", ".mkd"}
}

// OptionsFromSettings fills the discovery and scheduling fields from
// resolved lint settings.
func OptionsFromSettings(cfg *config.ResolvedConfig) Options {
	settings := cfg.Settings
	return Options{
		Exclude:          append([]string(nil), settings.Exclude...),
		RespectGitignore: settings.RespectGitignore,
		RespectIgnore:    settings.RespectIgnore,
		Jobs:             settings.Jobs,
		MaxViolations:    settings.MaxViolations,
		Config:           cfg,
	}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// ignoreFiles returns the ignore file names enabled by o.
func (o Options) ignoreFiles() []string {
	var names []string
	if o.RespectGitignore {
		names = append(names, GitignoreFile)
	}
	if o.RespectIgnore {
		names = append(names, IgnoreFile)
	}
	return names
}
