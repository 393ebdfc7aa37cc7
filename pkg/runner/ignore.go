package runner

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ignoreRule is one line of a gitignore-style file.
type ignoreRule struct {
	glob    glob.Glob
	negate  bool
	dirOnly bool
}

// ignoreFile holds the rules read from the ignore files of one directory.
type ignoreFile struct {
	dir   string
	rules []ignoreRule
}

// ignoreSet evaluates ignore files lazily, caching them per directory.
// It is not safe for concurrent use.
type ignoreSet struct {
	names []string
	top   string
	cache map[string]*ignoreFile
}

func newIgnoreSet(top string, names []string) *ignoreSet {
	return &ignoreSet{
		names: names,
		top:   top,
		cache: make(map[string]*ignoreFile),
	}
}

// Ignored reports whether path is ignored by any ignore file between the
// top directory and the directory containing path. Rules in deeper files
// come later, and the last matching rule wins.
func (s *ignoreSet) Ignored(path string, isDir bool) bool {
	if s == nil || len(s.names) == 0 {
		return false
	}

	ignored := false
	for _, dir := range s.ancestors(filepath.Dir(path)) {
		file := s.load(dir)
		if len(file.rules) == 0 {
			continue
		}
		rel, err := filepath.Rel(file.dir, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, rule := range file.rules {
			if rule.dirOnly && !isDir {
				continue
			}
			if rule.glob.Match(rel) {
				ignored = !rule.negate
			}
		}
	}
	return ignored
}

// ancestors lists dir and its parents up to top, outermost first. A dir
// outside top yields only itself.
func (s *ignoreSet) ancestors(dir string) []string {
	rel, err := filepath.Rel(s.top, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return []string{dir}
	}

	dirs := []string{s.top}
	if rel == "." {
		return dirs
	}
	current := s.top
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		dirs = append(dirs, current)
	}
	return dirs
}

func (s *ignoreSet) load(dir string) *ignoreFile {
	if file, ok := s.cache[dir]; ok {
		return file
	}

	file := &ignoreFile{dir: dir}
	for _, name := range s.names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		file.rules = append(file.rules, parseIgnore(content)...)
	}
	s.cache[dir] = file
	return file
}

// parseIgnore parses gitignore-style content. Lines that fail to compile
// are skipped.
func parseIgnore(content []byte) []ignoreRule {
	var rules []ignoreRule

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rule ignoreRule
		if strings.HasPrefix(line, "!") {
			rule.negate = true
			line = line[1:]
		}
		line = strings.TrimPrefix(line, `\`)
		if strings.HasSuffix(line, "/") {
			rule.dirOnly = true
			line = strings.TrimRight(line, "/")
		}
		if line == "" {
			continue
		}

		// A pattern with a slash is anchored to the ignore file's directory.
		pattern := line
		if strings.Contains(line, "/") {
			pattern = strings.TrimPrefix(line, "/")
		} else {
			pattern = "{" + line + ",**/" + line + "}"
		}

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		rule.glob = g
		rules = append(rules, rule)
	}
	return rules
}
