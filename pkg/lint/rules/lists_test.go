package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/lint/rules"
)

func TestULStyle(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewULStyleRule(), []ruleCase{
		{name: "consistent", src: "* a\n* b\n"},
		{name: "second list differs", src: "* a\n* b\n\n- c\n", want: []int{4}},
		{name: "dash required", src: "* a\n", params: map[string]any{"style": "dash"}, want: []int{1}},
		{name: "sublist repeats parent", src: "* a\n  * b\n", params: map[string]any{"style": "sublist"}, want: []int{2}},
		{name: "sublist alternates", src: "* a\n  - b\n", params: map[string]any{"style": "sublist"}},
	})

	runFixCases(t, rules.NewULStyleRule(), []fixCase{
		{name: "to dash", src: "* a\n* b\n", params: map[string]any{"style": "dash"}, want: "- a\n- b\n"},
		{name: "sublist", src: "* a\n  * b\n", params: map[string]any{"style": "sublist"}, want: "* a\n  - b\n"},
	})

	violations := lintSource(t, rules.NewULStyleRule(), "- a\n", map[string]any{"style": "plus"})
	require.Len(t, violations, 1)
	assert.Equal(t, "Unordered list style [Expected: plus; Actual: dash]", violations[0].Message)
	assert.Equal(t, 1, violations[0].Start.Column)
}

func TestListIndent(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewListIndentRule(), []ruleCase{
		{name: "aligned", src: "* a\n* b\n"},
		{name: "shifted item", src: "* a\n * b\n", want: []int{2}},
		{name: "right aligned numbers", src: " 9. a\n10. b\n"},
	})
}

func TestULStartLeft(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewULStartLeftRule(), []ruleCase{
		{name: "indented list", src: " * a\n * b\n", want: []int{1, 2}},
		{name: "flush", src: "* a\n"},
		{name: "nested list", src: "* a\n  * b\n"},
		{name: "ordered list", src: " 1. a\n"},
	})
}

func TestULIndent(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewULIndentRule(), []ruleCase{
		{name: "four spaces", src: "* a\n    * b\n"},
		{name: "two spaces", src: "* a\n  * b\n", want: []int{2}},
		{name: "two spaces configured", src: "* a\n  * b\n", params: map[string]any{"indent": 2}},
		{name: "under ordered list", src: "1. a\n   * b\n"},
	})
}

func TestOLPrefix(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewOLPrefixRule(), []ruleCase{
		{name: "all ones", src: "1. a\n1. b\n"},
		{name: "incrementing under one", src: "1. a\n2. b\n3. c\n", want: []int{2, 3}},
		{name: "incrementing", src: "1. a\n2. b\n3. c\n", params: map[string]any{"style": "ordered"}},
		{name: "repeated under ordered", src: "1. a\n1. b\n", params: map[string]any{"style": "ordered"}, want: []int{2}},
		{name: "zeros", src: "0. a\n0. b\n", params: map[string]any{"style": "zero"}},
	})
}

func TestListMarkerSpace(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewListMarkerSpaceRule(), []ruleCase{
		{name: "two spaces", src: "*  a\n", want: []int{1}},
		{name: "one space", src: "* a\n"},
		{name: "ordered configured", src: "1.  a\n", params: map[string]any{"ol_single": 2}},
		{name: "multi-line items", src: "* a\n  more\n", params: map[string]any{"ul_multi": 3}, want: []int{1}},
	})

	runFixCases(t, rules.NewListMarkerSpaceRule(), []fixCase{
		{name: "collapses", src: "-   a\n-   b\n", want: "- a\n- b\n"},
	})
}

func TestBlanksAroundLists(t *testing.T) {
	t.Parallel()

	runCases(t, rules.NewBlanksAroundListsRule(), []ruleCase{
		{name: "text above", src: "Text\n* a\n", want: []int{2}},
		{name: "heading below", src: "* a\n# H\n", want: []int{1}},
		{name: "lazy continuation", src: "* a\nText\n", want: []int{2}},
		{name: "separated", src: "Text\n\n* a\n* b\n\nMore\n"},
		{name: "nested list", src: "* a\n  * b\n"},
	})
}
