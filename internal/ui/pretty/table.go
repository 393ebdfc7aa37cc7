package pretty

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RuleRow is one line of the rules table.
type RuleRow struct {
	Code        string
	Name        string
	Tags        []string
	Enabled     bool
	Fixable     bool
	Description string
}

// Table column widths.
const (
	tagsColumnWidth        = 24
	descriptionColumnWidth = 50
	defaultTermWidth       = 100
)

// RenderRulesTable writes rows as a table sized to termWidth.
func (s *Styles) RenderRulesTable(w io.Writer, rows []RuleRow, termWidth int) {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.DrawBorder = false
	tw.Style().Format.Header = text.FormatUpper
	if s.enabled {
		tw.Style().Color.Header = text.Colors{text.Bold}
	}
	tw.SetAllowedRowLength(termWidth)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tags", WidthMax: tagsColumnWidth},
		{Name: "Description", WidthMax: descriptionColumnWidth},
	})

	tw.AppendHeader(table.Row{"Code", "Alias", "Tags", "Default", "Fix", "Description"})
	for _, row := range rows {
		state := s.Success.Render("on")
		if !row.Enabled {
			state = s.Dim.Render("off")
		}
		fixable := ""
		if row.Fixable {
			fixable = s.Success.Render("yes")
		}
		tw.AppendRow(table.Row{
			s.Bold.Render(row.Code),
			row.Name,
			strings.Join(row.Tags, ", "),
			state,
			fixable,
			row.Description,
		})
	}
	tw.Render()
}

// StatRow is one line of the statistics table.
type StatRow struct {
	Count   int
	Code    string
	Name    string
	Fixable int
}

// RenderStatisticsTable writes per-rule violation counts, most frequent
// first as given.
func (s *Styles) RenderStatisticsTable(w io.Writer, rows []StatRow) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateHeader = false
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	for _, row := range rows {
		fixable := ""
		if row.Fixable > 0 {
			fixable = s.Dim.Render(fmt.Sprintf("[%d fixable]", row.Fixable))
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(row.Count),
			s.Bold.Render(row.Code),
			row.Name,
			fixable,
		})
	}
	tw.Render()
}
