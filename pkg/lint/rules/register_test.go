package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/lint/rules"
)

func TestAll_CodesInOrder(t *testing.T) {
	t.Parallel()

	want := []string{
		"MD001", "MD002", "MD003", "MD004", "MD005", "MD006", "MD007", "MD009",
		"MD010", "MD012", "MD013", "MD014", "MD018", "MD019", "MD020", "MD021",
		"MD022", "MD023", "MD024", "MD025", "MD026", "MD027", "MD028", "MD029",
		"MD030", "MD031", "MD032", "MD033", "MD034", "MD035", "MD036", "MD037",
		"MD038", "MD039", "MD040", "MD041", "MD046", "MD047",
	}

	all := rules.All()
	got := make([]string, 0, len(all))
	for _, rule := range all {
		got = append(got, rule.Code())
	}
	assert.Equal(t, want, got)
}

func TestRegisterAll(t *testing.T) {
	t.Parallel()

	reg := lint.NewRegistry()
	require.NoError(t, rules.RegisterAll(reg))
	assert.Equal(t, len(rules.All()), reg.Len())

	byName, ok := reg.Resolve("line-length")
	require.True(t, ok)
	assert.Equal(t, "MD013", byName.Code())

	byCode, ok := reg.Resolve("md013")
	require.True(t, ok)
	assert.Equal(t, "MD013", byCode.Code())

	headers := reg.Expand("headers")
	assert.NotEmpty(t, headers)
	for _, rule := range headers {
		assert.Contains(t, rule.Tags(), "headers", rule.Code())
	}

	assert.Error(t, rules.RegisterAll(reg), "registering twice must fail")
}

func TestAll_Metadata(t *testing.T) {
	t.Parallel()

	names := make(map[string]string)
	for _, rule := range rules.All() {
		assert.NotEmpty(t, rule.Name(), rule.Code())
		assert.NotEmpty(t, rule.Description(), rule.Code())
		assert.NotEmpty(t, rule.Tags(), rule.Code())
		assert.True(t, rule.DefaultEnabled(), rule.Code())

		prev, dup := names[rule.Name()]
		assert.False(t, dup, "%s reuses the name of %s", rule.Code(), prev)
		names[rule.Name()] = rule.Code()

		for _, p := range rule.Params() {
			_, err := p.Coerce(p.Default)
			assert.NoError(t, err, "%s.%s default", rule.Code(), p.Name)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	rule, ok := lint.DefaultRegistry.Get("MD047")
	require.True(t, ok)
	assert.Equal(t, "single-trailing-newline", rule.Name())
	assert.True(t, rule.CanFix())
}

func TestAll_CleanDocument(t *testing.T) {
	t.Parallel()

	src := "# Title\n\nSome text with a [link](https://example.com).\n\n" +
		"## Section\n\n- one\n- two\n\n```go\npackage main\n```\n"

	for _, rule := range rules.All() {
		assert.Empty(t, lintSource(t, rule, src, nil), rule.Code())
	}
}
