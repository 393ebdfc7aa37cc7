package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/parser/goldmark"
)

// ruleCase is one input for a single rule. Want lists the 1-based lines of
// the expected violations in order.
type ruleCase struct {
	name   string
	src    string
	params map[string]any
	want   []int
}

func setup(t *testing.T, rule lint.Rule, params map[string]any) (*lint.Pipeline, *config.ResolvedConfig) {
	t.Helper()

	reg := lint.NewRegistry()
	require.NoError(t, reg.Register(rule))

	var overrides config.Overrides
	if params != nil {
		overrides.Rules = map[string]config.RuleOverride{rule.Code(): {Params: params}}
	}
	cfg, err := config.Resolve(reg.Defaults(), nil, overrides)
	require.NoError(t, err)

	engine := lint.NewEngine(reg, lint.Options{})
	return lint.NewPipeline(engine, goldmark.New(goldmark.FlavorGFM)), cfg
}

// lintSource runs rule alone over src.
func lintSource(t *testing.T, rule lint.Rule, src string, params map[string]any) []lint.Violation {
	t.Helper()

	pipeline, cfg := setup(t, rule, params)
	out, err := pipeline.Process(context.Background(), "test.md", []byte(src), cfg, lint.FixOptions{})
	require.NoError(t, err)
	for _, v := range out.Violations {
		require.Equal(t, lint.KindRule, v.Kind, "rule failed: %s", v.Message)
	}
	return out.Violations
}

// fixSource applies rule's fixes to src until stable and returns the
// result.
func fixSource(t *testing.T, rule lint.Rule, src string, params map[string]any) string {
	t.Helper()

	pipeline, cfg := setup(t, rule, params)
	out, err := pipeline.Process(context.Background(), "test.md", []byte(src), cfg, lint.FixOptions{Fix: true})
	require.NoError(t, err)
	if !out.Changed() {
		return src
	}
	return string(out.Fixed)
}

func violationLines(violations []lint.Violation) []int {
	lines := make([]int, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, v.Start.Line)
	}
	return lines
}

// runCases checks the violation lines of each case. Rules hold no state, so
// one instance serves every case.
func runCases(t *testing.T, rule lint.Rule, cases []ruleCase) {
	t.Helper()

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := lintSource(t, rule, testCase.src, testCase.params)
			want := testCase.want
			if want == nil {
				want = []int{}
			}
			require.Equal(t, want, violationLines(got))
		})
	}
}

// fixCase is one input for a fixable rule and the content expected after
// its fixes are applied.
type fixCase struct {
	name   string
	src    string
	params map[string]any
	want   string
}

func runFixCases(t *testing.T, rule lint.Rule, cases []fixCase) {
	t.Helper()

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.want, fixSource(t, rule, testCase.src, testCase.params))
		})
	}
}
