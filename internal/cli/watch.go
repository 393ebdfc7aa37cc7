package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/runner"
)

// watchDebounce coalesces bursts of events, such as an editor's
// write-then-rename, into one run.
const watchDebounce = 200 * time.Millisecond

// watch lints once, then re-lints whenever a Markdown file under the
// watched paths changes, until ctx is cancelled.
func (r *lintRun) watch(ctx context.Context, paths []string) error {
	logger := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs, err := watchDirs(paths, r.workDir)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	logger.Info("watching for changes", logging.FieldPaths, dirs)

	r.watchRun(ctx, paths)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() && !isHidden(event.Name) {
					if addErr := watcher.Add(event.Name); addErr != nil {
						logger.Warn("cannot watch directory", logging.FieldPath, event.Name, logging.FieldError, addErr)
					}
					continue
				}
			}
			if !isMarkdownEvent(event) {
				continue
			}
			logger.Debug("change detected", logging.FieldPath, event.Name)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C

		case <-trigger:
			trigger = nil
			r.watchRun(ctx, paths)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logging.FieldError, watchErr)
		}
	}
}

// watchRun runs one pass and logs its outcome instead of ending the watch.
func (r *lintRun) watchRun(ctx context.Context, paths []string) {
	logger := logging.FromContext(ctx)

	err := r.once(ctx, paths)
	switch {
	case err == nil, errors.Is(err, ErrLintIssuesFound):
	case errors.Is(err, context.Canceled):
	default:
		logger.Error("lint run failed", logging.FieldError, err)
	}
}

func isMarkdownEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return slices.Contains(runner.DefaultExtensions(), ext)
}

func isHidden(path string) bool {
	name := filepath.Base(path)
	return len(name) > 1 && name[0] == '.'
}

// watchDirs returns every directory to watch for the given lint paths:
// directories recursively, a file's parent, and a glob's static prefix.
func watchDirs(paths []string, workDir string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		if strings.ContainsAny(path, "*?[{") {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(path))
			path = filepath.FromSlash(base)
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() {
				return nil
			}
			if p != path && isHidden(p) {
				return filepath.SkipDir
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	slices.Sort(dirs)
	return dirs, nil
}
