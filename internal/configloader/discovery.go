package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileNames are the project file names searched for, most preferred
// first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ConfigFileNames = []string{
	".downlint.yml",
	".downlint.yaml",
	"downlint.yml",
	"downlint.yaml",
}

//nolint:gochecknoglobals // Read-only lookup table.
var markdownlintConfigFiles = []string{
	".markdownlint.json",
	".markdownlint.jsonc",
	".markdownlint.yaml",
	".markdownlint.yml",
	".markdownlint.cjs",
	".markdownlint.mjs",
}

//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// FindProjectConfig searches startDir and its parents for a project file
// and returns the first one found, or "" if there is none. The search ends
// at the first VCS root, the home directory, or the filesystem root,
// whichever comes first.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	dir, err := absDir(startDir)
	if err != nil {
		return "", err
	}
	home, _ := os.UserHomeDir()

	for ; ; dir = filepath.Dir(dir) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}
		if found := firstFile(dir, ConfigFileNames); found != "" {
			return found, nil
		}
		if isVCSRoot(dir) || dir == home || filepath.Dir(dir) == dir {
			return "", nil
		}
	}
}

// FindMarkdownlintConfig returns the markdownlint config file in dir, or "".
func FindMarkdownlintConfig(dir string) string {
	return firstFile(dir, markdownlintConfigFiles)
}

func absDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return abs, nil
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	for _, name := range names {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return ""
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsJavaScriptConfig reports whether path is a markdownlint JavaScript
// config, which cannot be converted.
func IsJavaScriptConfig(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cjs", ".mjs", ".js":
		return true
	}
	return false
}

// IsJSONConfig reports whether path is a JSON or JSONC config.
func IsJSONConfig(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	}
	return false
}
