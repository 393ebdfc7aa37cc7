package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
)

// FormatViolation formats a violation as "path:line:col: CODE message".
func (s *Styles) FormatViolation(path string, v *lint.Violation) string {
	location := fmt.Sprintf("%d:%d:", v.Start.Line, v.Start.Column)
	return fmt.Sprintf("%s:%s %s %s\n",
		s.FilePath.Render(path),
		s.Location.Render(location),
		s.severityStyle(v.Severity).Render(v.RuleCode),
		s.Message.Render(v.Message),
	)
}

// FormatFailure formats a file that could not be linted.
func (s *Styles) FormatFailure(path, message string) string {
	return fmt.Sprintf("%s: %s %s\n",
		s.FilePath.Render(path),
		s.Error.Render("parse-error"),
		s.Message.Render(message),
	)
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	return s.severityStyle(sev).Render(string(sev))
}

func (s *Styles) severityStyle(sev config.Severity) lipgloss.Style {
	switch sev {
	case config.SeverityWarning:
		return s.Warning
	case config.SeverityInfo:
		return s.Info
	default:
		return s.Error
	}
}

// FormatDiff colors a unified diff line by line.
func (s *Styles) FormatDiff(diff string) string {
	if !s.enabled || diff == "" {
		return diff
	}

	var builder strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "---"), strings.HasPrefix(body, "+++"):
			builder.WriteString(s.DiffHeader.Render(body))
		case strings.HasPrefix(body, "@@"):
			builder.WriteString(s.DiffHunk.Render(body))
		case strings.HasPrefix(body, "+"):
			builder.WriteString(s.DiffAdd.Render(body))
		case strings.HasPrefix(body, "-"):
			builder.WriteString(s.DiffRemove.Render(body))
		default:
			builder.WriteString(body)
		}
		builder.WriteString(nl)
	}
	return builder.String()
}
