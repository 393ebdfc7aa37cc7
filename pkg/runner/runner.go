package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Runner orchestrates multi-file linting using a lint.Pipeline.
type Runner struct {
	// Pipeline handles per-file processing with safety guarantees.
	Pipeline *lint.Pipeline
}

// New creates a new Runner with the given pipeline.
func New(pipeline *lint.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files under opts.Paths and processes them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate stats.
//
// The runner:
//   - Discovers files matching the options criteria
//   - Processes files on a bounded worker pool
//   - Records unreadable or undecodable files without aborting the batch
//   - Stops dispatching new files on cancellation or once MaxViolations
//     is reached; files already started complete
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files, opts)
}

// RunFiles processes an explicit list of files, skipping discovery.
func (r *Runner) RunFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than files.
	jobs = min(jobs, len(files))

	base := configBase(opts)
	outcomes := make([]*FileOutcome, len(files))
	var found atomic.Int64
	var truncated atomic.Bool

	logger.Debug("linting files", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	// A slot is taken before the violation limit is checked so that the
	// check sees every file finished so far.
	slots := make(chan struct{}, jobs)
	var group errgroup.Group

dispatch:
	for idx, path := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case slots <- struct{}{}:
		}
		if opts.MaxViolations > 0 && found.Load() >= int64(opts.MaxViolations) {
			<-slots
			truncated.Store(true)
			break
		}

		group.Go(func() error {
			defer func() { <-slots }()
			outcome := r.processFile(ctx, path, base, opts)
			if outcome.Outcome != nil {
				found.Add(int64(len(outcome.Outcome.Violations)))
			}
			outcomes[idx] = &outcome
			return nil
		})
	}

	// Workers never return errors; file failures live in the outcomes.
	_ = group.Wait()

	for _, outcome := range outcomes {
		if outcome == nil {
			result.Stats.FilesNotDispatched++
			continue
		}
		result.accumulate(*outcome)
	}
	result.Truncated = truncated.Load()

	logger.Debug("lint finished",
		logging.FieldFiles, result.Stats.FilesProcessed,
		logging.FieldViolations, result.Stats.Violations,
		logging.FieldFailed, result.Stats.FilesErrored,
		logging.FieldFixed, result.Stats.FilesModified,
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

// processFile lints one file with the configuration for its path.
func (r *Runner) processFile(ctx context.Context, path, base string, opts Options) FileOutcome {
	outcome := FileOutcome{Path: path}
	ctx = logging.With(ctx, logging.FieldPath, path)

	cfg := opts.Config
	if cfg != nil {
		cfg = cfg.ForPath(relativeTo(base, path))
	}

	fixOpts := opts.Fix
	if fixOpts.DryRun && fixOpts.DiffPath == "" {
		fixOpts.DiffPath = displayPath(opts.WorkingDir, path)
	}

	out, err := r.Pipeline.ProcessFile(ctx, path, cfg, fixOpts)
	if err != nil {
		outcome.Error = classify(path, err)
		logging.FromContext(ctx).Debug("file not checked", logging.FieldError, err)
		return outcome
	}
	outcome.Outcome = out
	return outcome
}

// classify keeps parse errors and wraps everything else as an IOError.
func classify(path string, err error) error {
	var parseErr *mdast.ParseError
	if errors.As(err, &parseErr) {
		return parseErr
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ioErr
	}
	return &IOError{Path: path, Err: err}
}

// configBase is the directory override patterns are relative to: the
// project file's directory, else the working directory.
func configBase(opts Options) string {
	if opts.Config != nil && opts.Config.Path != "" {
		return filepath.Dir(opts.Config.Path)
	}
	if wd, err := resolveWorkDir(opts.WorkingDir); err == nil {
		return wd
	}
	return ""
}

func relativeTo(base, path string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

// displayPath is path relative to the working directory, or path itself
// when it lies outside it.
func displayPath(workDir, path string) string {
	wd, err := resolveWorkDir(workDir)
	if err != nil {
		return path
	}
	rel := relativeTo(wd, path)
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// ResolvedFor is a convenience for callers that lint a single file outside
// a run, such as the language server.
func ResolvedFor(cfg *config.ResolvedConfig, path string) *config.ResolvedConfig {
	if cfg == nil {
		return nil
	}
	base := ""
	if cfg.Path != "" {
		base = filepath.Dir(cfg.Path)
	}
	return cfg.ForPath(relativeTo(base, path))
}
