package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/yaklabco/downlint/internal/logging"
)

// Discover finds Markdown files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
//
// Paths may be files, directories, or doublestar globs such as
// "docs/**/*.md". Directories are walked recursively, skipping hidden
// directories, excluded paths, and paths listed in enabled ignore files.
// Files named explicitly are kept unless they match an exclude pattern.
// A named path that cannot be stat'ed is kept too, so that Run reports it
// as a failed file instead of aborting the batch.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	d := &discoverer{
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		excludes:   excludes,
		ignores:    newIgnoreSet(workDir, opts.ignoreFiles()),
		follow:     opts.FollowSymlinks,
		seen:       make(map[string]struct{}),
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		if hasGlobMeta(inputPath) {
			if err := d.glob(ctx, absPath); err != nil {
				return nil, err
			}
			continue
		}

		info, err := os.Stat(absPath)
		if err != nil {
			// Kept so the run records the read failure for this path alone.
			logging.FromContext(ctx).Debug("cannot stat path",
				logging.FieldPath, inputPath, logging.FieldError, err)
			d.add(absPath)
			continue
		}

		if info.IsDir() {
			if err := d.walk(ctx, absPath); err != nil {
				return nil, err
			}
		} else if d.matchesFile(absPath, false) {
			d.add(absPath)
		}
	}

	sort.Strings(d.files)

	logging.FromContext(ctx).Debug("discovered files",
		logging.FieldWorkingDir, workDir, logging.FieldFiles, len(d.files))

	return d.files, nil
}

type discoverer struct {
	workDir    string
	extensions []string
	excludes   []glob.Glob
	ignores    *ignoreSet
	follow     bool

	seen  map[string]struct{}
	files []string
}

func (d *discoverer) add(path string) {
	if _, ok := d.seen[path]; ok {
		return
	}
	d.seen[path] = struct{}{}
	d.files = append(d.files, path)
}

// glob expands a doublestar pattern and processes each match.
func (d *discoverer) glob(ctx context.Context, pattern string) error {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.IsDir() {
			if err := d.walk(ctx, match); err != nil {
				return err
			}
			continue
		}
		if d.matchesFile(match, true) {
			d.add(match)
		}
	}
	return nil
}

// walk recursively walks a directory and collects matching Markdown files.
func (d *discoverer) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			// Handle permission errors gracefully.
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") || d.excluded(path, true) || d.ignores.Ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				// Broken symlink, skip silently.
				return nil //nolint:nilerr // Intentionally skip broken symlinks
			}
			if info.IsDir() {
				if !d.follow || d.excluded(path, true) || d.ignores.Ignored(path, true) {
					return nil
				}
				realPath, evalErr := filepath.EvalSymlinks(path)
				if evalErr != nil {
					return nil //nolint:nilerr // Intentionally skip inaccessible symlink targets
				}
				// Walk the target, not the link, since WalkDir uses Lstat on root.
				return d.walk(ctx, realPath)
			}
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if d.matchesFile(path, true) {
			d.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// matchesFile checks the extension, exclude patterns, and, when
// checkIgnores is set, the ignore files.
func (d *discoverer) matchesFile(path string, checkIgnores bool) bool {
	if !hasMatchingExtension(path, d.extensions) {
		return false
	}
	if d.excluded(path, false) {
		return false
	}
	if checkIgnores && d.ignores.Ignored(path, false) {
		return false
	}
	return true
}

// excluded matches the path relative to the working directory, and its
// base name, against the exclude patterns.
func (d *discoverer) excluded(path string, isDir bool) bool {
	if len(d.excludes) == 0 {
		return false
	}

	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	for _, g := range d.excludes {
		if g.Match(rel) || g.Match(base) {
			return true
		}
		if isDir && g.Match(rel+"/") {
			return true
		}
	}
	return false
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
