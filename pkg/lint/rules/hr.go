package rules

import (
	"bytes"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// HRStyleRule checks that horizontal rules are written the same way.
type HRStyleRule struct {
	lint.BaseRule
}

// NewHRStyleRule creates the MD035 rule.
func NewHRStyleRule() *HRStyleRule {
	return &HRStyleRule{
		BaseRule: lint.NewBaseRule("MD035", "hr-style", "Horizontal rule style", "hr").
			WithParams(config.StringParam(paramStyle, styleConsistent,
				`"consistent" or the exact text every rule must use, such as "---"`)),
	}
}

// Check reports thematic breaks whose text differs from the configured text
// or, in consistent mode, from the first break.
func (r *HRStyleRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	want := ctx.String(paramStyle)
	for _, id := range doc.OfKind(mdast.KindThematicBreak) {
		actual := string(bytes.TrimSpace(doc.Text(id)))
		if want == styleConsistent {
			want = actual
			continue
		}
		if actual != want {
			reportf(ctx, r, doc.Node(id).Span, "Expected: %s; Actual: %s", want, actual)
		}
	}
	return nil
}
