package rules

import (
	"regexp"
	"slices"
	"strings"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// openingTag matches the start of an HTML opening tag and captures the
// element name. Closing tags, comments, and declarations do not match.
//
//nolint:gochecknoglobals // Compiled once.
var openingTag = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9-]*)(?:[\s/>]|$)`)

//nolint:gochecknoglobals // Compiled once.
var htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)

// InlineHTMLRule checks for raw HTML elements.
type InlineHTMLRule struct {
	lint.BaseRule
}

// NewInlineHTMLRule creates the MD033 rule.
func NewInlineHTMLRule() *InlineHTMLRule {
	return &InlineHTMLRule{
		BaseRule: lint.NewBaseRule("MD033", "no-inline-html", "Inline HTML", "html").
			WithParams(config.StringsParam("allowed_elements", []string{}, "Element names that may be used")),
	}
}

// Check reports every opening tag in HTML blocks and inline HTML whose
// element is not allowed. Tags inside comments are ignored and element
// names compare case-insensitively.
func (r *InlineHTMLRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	allowed := make([]string, 0, len(ctx.Strings("allowed_elements")))
	for _, name := range ctx.Strings("allowed_elements") {
		allowed = append(allowed, strings.ToLower(name))
	}

	for _, id := range doc.OfKind(mdast.KindHTMLBlock, mdast.KindRawHTML) {
		span := doc.Node(id).Span
		text := doc.Text(id)
		comments := htmlComment.FindAllIndex(text, -1)
		for _, m := range openingTag.FindAllSubmatchIndex(text, -1) {
			if inRanges(comments, m[0]) {
				continue
			}
			name := strings.ToLower(string(text[m[2]:m[3]]))
			if slices.Contains(allowed, name) {
				continue
			}
			tag := mdast.Span{Start: span.Start + m[0], End: span.Start + m[3]}
			reportf(ctx, r, tag, "Element: %s", name)
		}
	}
	return nil
}

// inRanges reports whether offset falls inside one of the [start, end)
// pairs.
func inRanges(ranges [][]int, offset int) bool {
	for _, r := range ranges {
		if offset >= r[0] && offset < r[1] {
			return true
		}
	}
	return false
}
