package rules

import (
	"bytes"
	"regexp"

	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// bareURL finds URLs in text that the parser left unlinked.
//
//nolint:gochecknoglobals // Compiled once.
var bareURL = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s<>]+|\bwww\.[^\s<>]+`)

// BareURLsRule checks for URLs that are not links.
type BareURLsRule struct {
	lint.BaseRule
}

// NewBareURLsRule creates the MD034 rule.
func NewBareURLsRule() *BareURLsRule {
	return &BareURLsRule{
		BaseRule: lint.NewBaseRule("MD034", "no-bare-urls", "Bare URL used", "links", "url").
			Fixable(),
	}
}

// Check reports bare URLs and wraps them in angle brackets. Under GFM the
// parser turns them into autolinks without brackets; under CommonMark they
// stay in text nodes and are found by pattern.
func (r *BareURLsRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindAutoLink, mdast.KindText) {
		if doc.HasAncestor(id, mdast.KindLink, mdast.KindImage) {
			continue
		}
		node := doc.Node(id)
		if node.Kind == mdast.KindAutoLink {
			if !node.Link.Angle && !node.Span.IsEmpty() {
				r.report(ctx, node.Span)
			}
			continue
		}

		text := doc.Text(id)
		for _, m := range bareURL.FindAllIndex(text, -1) {
			end := m[0] + len(bytes.TrimRight(text[m[0]:m[1]], ".,;:!?)'\""))
			r.report(ctx, mdast.Span{Start: node.Span.Start + m[0], End: node.Span.Start + end})
		}
	}
	return nil
}

func (r *BareURLsRule) report(ctx *lint.Context, span mdast.Span) {
	url := string(ctx.Doc.Source[span.Start:span.End])
	ctx.ReportFix(span, detail(r.Description(), "Context: %s", url),
		lint.Fix{Span: span, Replacement: "<" + url + ">"})
}

// SpaceInLinksRule checks for blanks just inside link brackets.
type SpaceInLinksRule struct {
	lint.BaseRule
}

// NewSpaceInLinksRule creates the MD039 rule.
func NewSpaceInLinksRule() *SpaceInLinksRule {
	return &SpaceInLinksRule{
		BaseRule: lint.NewBaseRule("MD039", "no-space-in-links", "Spaces inside link text", "whitespace", "links").
			Fixable(),
	}
}

// Check reports links whose label starts or ends with blanks and trims the
// label.
func (r *SpaceInLinksRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindLink) {
		node := doc.Node(id)
		children := doc.Children(id)
		if len(children) == 0 || doc.Source[node.Span.Start] != '[' {
			continue
		}
		lastEnd := doc.Node(children[len(children)-1]).Span.End
		closing := bytes.IndexByte(doc.Source[lastEnd:node.Span.End], ']')
		if closing < 0 {
			continue
		}

		label := mdast.Span{Start: node.Span.Start + 1, End: lastEnd + closing}
		text := doc.Source[label.Start:label.End]
		trimmed := bytes.Trim(text, " \t")
		if len(trimmed) == len(text) || len(trimmed) == 0 {
			continue
		}
		ctx.ReportFix(node.Span, r.Description(), lint.Fix{Span: label, Replacement: string(trimmed)})
	}
	return nil
}
