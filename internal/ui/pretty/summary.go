package pretty

import (
	"fmt"
	"strings"
)

// Tally holds the counts shown in the closing summary line.
type Tally struct {
	Files      int
	Violations int
	Errors     int
	Warnings   int
	Infos      int
	Fixable    int
	Failed     int
	// Fixed is the number of files rewritten by --fix.
	Fixed int
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatSummary formats a run as one line, for example
// "Found 3 errors. (2 error, 1 warning) 1 fixable with --fix." Every
// violation counts as an error here whatever its severity. A clean run
// reads "All checks passed!".
func (s *Styles) FormatSummary(t Tally) string {
	var fixed string
	if t.Fixed > 0 {
		fixed = " " + s.Success.Render("Fixed "+plural(t.Fixed, "file")+".")
	}

	if t.Violations == 0 && t.Failed == 0 {
		return s.Success.Render("All checks passed!") + fixed + "\n"
	}

	var builder strings.Builder
	if t.Violations > 0 {
		builder.WriteString(s.Failure.Render("Found " + plural(t.Violations, "error") + "."))

		var parts []string
		if t.Errors > 0 {
			parts = append(parts, s.Error.Render(fmt.Sprintf("%d error", t.Errors)))
		}
		if t.Warnings > 0 {
			parts = append(parts, s.Warning.Render(fmt.Sprintf("%d warning", t.Warnings)))
		}
		if t.Infos > 0 {
			parts = append(parts, s.Info.Render(fmt.Sprintf("%d info", t.Infos)))
		}
		if len(parts) > 1 {
			builder.WriteString(s.Dim.Render(" (") + strings.Join(parts, s.Dim.Render(", ")) + s.Dim.Render(")"))
		}
		if t.Fixable > 0 {
			builder.WriteString(s.Dim.Render(fmt.Sprintf(" %d fixable with --fix.", t.Fixable)))
		}
	}
	if t.Failed > 0 {
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(s.Failure.Render(plural(t.Failed, "file") + " could not be checked."))
	}
	builder.WriteString(fixed)
	builder.WriteString("\n")
	return builder.String()
}
