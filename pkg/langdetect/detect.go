// Package langdetect guesses the language of a code snippet so that a
// fenced code block without an info string can be given a suggestion.
// It uses go-enry for shebangs, editor modelines, and statistical
// classification, with a few cheap signatures that are more reliable on
// short snippets checked before the classifier.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language can be determined with confidence.
const Text = "text"

// signature recognizes a language from unmistakable markers.
type signature struct {
	lang  string
	match func(content, trimmed []byte) bool
}

func hasPrefix(prefixes ...string) func(_, trimmed []byte) bool {
	return func(_, trimmed []byte) bool {
		for _, p := range prefixes {
			if bytes.HasPrefix(trimmed, []byte(p)) {
				return true
			}
		}
		return false
	}
}

func containsAny(needles ...string) func(content, _ []byte) bool {
	return func(content, _ []byte) bool {
		for _, n := range needles {
			if bytes.Contains(content, []byte(n)) {
				return true
			}
		}
		return false
	}
}

// signatures are checked in order; the first match wins.
//
//nolint:gochecknoglobals // Immutable lookup table.
var signatures = []signature{
	{"go", hasPrefix("package ")},
	{"python", func(content, _ []byte) bool {
		return (bytes.Contains(content, []byte("def ")) && bytes.Contains(content, []byte("):"))) ||
			bytes.Contains(content, []byte("__name__"))
	}},
	{"html", func(_, trimmed []byte) bool {
		lower := bytes.ToLower(trimmed)
		return containsAny("<!doctype html", "<html", "<head>", "<body>")(lower, nil)
	}},
	{"json", func(_, trimmed []byte) bool {
		return (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
			bytes.Contains(trimmed, []byte(`"`))
	}},
	{"dockerfile", func(content, trimmed []byte) bool {
		return bytes.HasPrefix(trimmed, []byte("FROM ")) ||
			(bytes.Contains(content, []byte("WORKDIR ")) && bytes.Contains(content, []byte("COPY ")))
	}},
	{"sql", func(_, trimmed []byte) bool {
		return hasPrefix("SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE ")(nil, bytes.ToUpper(trimmed))
	}},
	{"rust", containsAny("fn main()", "println!", "let mut ")},
	{"javascript", containsAny("=>", "console.log", "const ")},
	{"yaml", looksLikeYAML},
}

// classifierCandidates limits the statistical classifier to languages
// commonly found in documentation.
//
//nolint:gochecknoglobals // Immutable lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript", "Ruby", "Rust",
	"Java", "C", "C++", "SQL", "JSON", "YAML", "HTML", "CSS", "Dockerfile",
}

// Detect returns a fence tag for content, or Text.
func Detect(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return fenceTag(lang)
	}
	if lang, safe := enry.GetLanguageByModeline(content); safe {
		return fenceTag(lang)
	}
	for _, sig := range signatures {
		if sig.match(content, trimmed) {
			return sig.lang
		}
	}
	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return fenceTag(lang)
	}
	return Text
}

// looksLikeYAML counts "key: value" lines and list items.
func looksLikeYAML(content, _ []byte) bool {
	score := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0, line[0] == '#':
		case bytes.HasPrefix(line, []byte("- ")):
			score++
		case bytes.Contains(line, []byte(": ")) && !bytes.ContainsAny(line, "({") && line[0] != '"':
			score++
		}
	}
	return score >= 2
}

// fenceTag converts a go-enry language name to the usual fence tag.
func fenceTag(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
