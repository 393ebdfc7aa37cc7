package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/downlint/internal/ui/pretty"
)

// helpStyles contains Lipgloss styles for command help.
type helpStyles struct {
	Command    lipgloss.Style
	Heading    lipgloss.Style
	Subcommand lipgloss.Style
	Flag       lipgloss.Style
	Example    lipgloss.Style
	Dim        lipgloss.Style
}

func newHelpStyles(colorEnabled bool) *helpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &helpStyles{plain, plain, plain, plain, plain, plain}
	}
	return &helpStyles{
		Command:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Example:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// minFlagWrapWidth keeps flag descriptions readable on narrow terminals.
const minFlagWrapWidth = 60

const usageTemplate = `{{ heading "Usage:" }}
  {{if .Runnable}}{{ command .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ command .CommandPath }} [command]{{end}}

{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{if or .Runnable .HasSubCommands}}{{ command .CommandPath }}{{if .Version}} {{ dim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ . | trimTrailingWhitespaces }}

{{end}}` + usageTemplate

// applyHelp installs styled help and usage output on cmd and, through
// inheritance, on every subcommand. Color follows the --color flag of the
// command being described.
func applyHelp(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return renderHelp(command, usageTemplate, command.OutOrStderr())
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := renderHelp(command, helpTemplate, command.OutOrStdout()); err != nil {
			command.PrintErrln(err)
		}
	})
}

func renderHelp(cmd *cobra.Command, text string, w io.Writer) error {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = pretty.ColorAuto
	}
	styles := newHelpStyles(pretty.IsColorEnabled(colorMode, w))

	tmpl, err := template.New("help").Funcs(helpFuncs(styles)).Parse(text)
	if err != nil {
		return fmt.Errorf("parse help template: %w", err)
	}
	if err := tmpl.Execute(w, cmd); err != nil {
		return fmt.Errorf("render help: %w", err)
	}
	return nil
}

func helpFuncs(styles *helpStyles) template.FuncMap {
	return template.FuncMap{
		"command":                 styles.Command.Render,
		"heading":                 styles.Heading.Render,
		"subcommand":              styles.Subcommand.Render,
		"example":                 styles.Example.Render,
		"dim":                     styles.Dim.Render,
		"flags":                   func(fs *pflag.FlagSet) string { return styleFlagUsages(styles, fs) },
		"join":                    strings.Join,
		"rpad":                    rpad,
		"trimTrailingWhitespaces": trimTrailingWhitespaces,
	}
}

// styleFlagUsages colors the flag names and type hints of pflag's usage
// block, wrapped to the terminal width.
func styleFlagUsages(styles *helpStyles, fs *pflag.FlagSet) string {
	width := terminalWidth()
	if width > 0 && width < minFlagWrapWidth {
		width = minFlagWrapWidth
	}
	usages := strings.TrimSuffix(fs.FlagUsagesWrapped(width), "\n")
	if usages == "" {
		return ""
	}

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = styleFlagLine(styles, line)
	}
	return strings.Join(lines, "\n")
}

// styleFlagLine styles one line of the form "  -f, --flag type   text".
// Continuation lines of wrapped descriptions are returned unchanged.
func styleFlagLine(styles *helpStyles, line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "-") {
		return line
	}
	indent := line[:len(line)-len(trimmed)]

	head, desc, found := strings.Cut(trimmed, "   ")
	if !found {
		return line
	}
	gap := len(desc) - len(strings.TrimLeft(desc, " "))

	tokens := strings.Fields(head)
	for i, token := range tokens {
		if !strings.HasPrefix(token, "-") {
			tokens[i] = styles.Dim.Render(token)
			continue
		}
		name, comma := strings.CutSuffix(token, ",")
		tokens[i] = styles.Flag.Render(name)
		if comma {
			tokens[i] += ","
		}
	}

	// Keep the column alignment computed by pflag.
	return indent + strings.Join(tokens, " ") + strings.Repeat(" ", gap+3) + strings.TrimLeft(desc, " ")
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
