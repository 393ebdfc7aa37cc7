package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes every rule with its parameters and documentation.
	// If false, generates a minimal template.
	Full bool

	// IncludeRules limits the full template to these rule codes.
	IncludeRules []string
}

// GenerateTemplate creates a project file template for the given defaults.
// The output always resolves cleanly against the same defaults.
func GenerateTemplate(defaults Defaults, opts TemplateOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n\n")

	writeLintSection(&buf, defaults.Settings)

	if !opts.Full {
		buf.WriteString(`
# Rules accept true/false, or a mapping with enabled, severity, and
# parameters. Keys may be codes (MD013), aliases (line-length), or tags
# (headers).
rules:
#   MD013:
#     line_length: 100
#   no-trailing-spaces: false

# Per-file rule settings, matched with glob patterns.
# overrides:
#   - files: ["CHANGELOG.md"]
#     rules:
#       MD024: false
`)
		return buf.Bytes(), nil
	}

	buf.WriteString("\nrules:\n")
	for _, rule := range defaults.Rules {
		if len(opts.IncludeRules) > 0 && !slices.Contains(opts.IncludeRules, rule.Code) {
			continue
		}
		writeRule(&buf, rule)
	}
	return buf.Bytes(), nil
}

func writeLintSection(buf *bytes.Buffer, s Settings) {
	formats := make([]string, 0, len(OutputFormats()))
	for _, f := range OutputFormats() {
		formats = append(formats, string(f))
	}

	fmt.Fprintf(buf, "lint:\n")
	fmt.Fprintf(buf, "  # Report format: %s\n", strings.Join(formats, ", "))
	fmt.Fprintf(buf, "  output-format: %s\n", s.OutputFormat)
	fmt.Fprintf(buf, "  quiet: %t\n", s.Quiet)
	fmt.Fprintf(buf, "  # Skip files listed in .downlintignore and .gitignore\n")
	fmt.Fprintf(buf, "  respect-ignore: %t\n", s.RespectIgnore)
	fmt.Fprintf(buf, "  respect-gitignore: %t\n", s.RespectGitignore)
	fmt.Fprintf(buf, "  exclude: %s\n", formatValue(s.Exclude))
	fmt.Fprintf(buf, "  # Lowest severity that fails the run: error, warning, or info\n")
	fmt.Fprintf(buf, "  fail-on: %s\n", s.FailOn)
	fmt.Fprintf(buf, "  # Markdown flavor: commonmark or gfm\n")
	fmt.Fprintf(buf, "  flavor: %s\n", s.Flavor)
	fmt.Fprintf(buf, "  # Parallel workers (0 = number of CPUs)\n")
	fmt.Fprintf(buf, "  jobs: %d\n", s.Jobs)
}

func writeRule(buf *bytes.Buffer, rule RuleSpec) {
	fmt.Fprintf(buf, "\n  # %s\n", wrapComment(rule.Name+": "+rule.Description, commentWrapWidth))
	if len(rule.Tags) > 0 {
		fmt.Fprintf(buf, "  # Tags: %s\n", strings.Join(rule.Tags, ", "))
	}
	fmt.Fprintf(buf, "  %s:\n", rule.Code)
	fmt.Fprintf(buf, "    enabled: %t\n", rule.Enabled)
	sev := rule.Severity
	if sev == "" {
		sev = DefaultSeverity
	}
	fmt.Fprintf(buf, "    severity: %s\n", sev)

	for _, p := range rule.Params {
		if p.Description != "" {
			fmt.Fprintf(buf, "    # %s\n", wrapComment(p.Description, commentWrapWidth-2))
		}
		if len(p.Enum) > 0 {
			fmt.Fprintf(buf, "    # One of: %s\n", strings.Join(p.Enum, ", "))
		}
		fmt.Fprintf(buf, "    %s: %s\n", p.Name, formatValue(p.Default))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		out, err := yaml.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%q", val)
		}
		return strings.TrimSpace(string(out))
	case []string:
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# downlint configuration
# See: https://github.com/yaklabco/downlint`
}
