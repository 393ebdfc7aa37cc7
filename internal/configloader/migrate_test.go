package configloader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/downlint/internal/configloader"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
)

func convert(t *testing.T, name, content string) *configloader.MigrationResult {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeFile(t, path, content)

	result, err := configloader.ConvertMarkdownlintConfig(path, lint.DefaultRegistry.Defaults())
	require.NoError(t, err)
	return result
}

func convertedRules(t *testing.T, result *configloader.MigrationResult) map[string]any {
	t.Helper()
	var doc struct {
		Rules map[string]any `yaml:"rules"`
	}
	require.NoError(t, yaml.Unmarshal(result.Content, &doc))
	return doc.Rules
}

func TestConvertMarkdownlintConfig_JSON(t *testing.T) {
	t.Parallel()

	result := convert(t, ".markdownlint.json", `{
  "$schema": "https://example.com/schema.json",
  "heading-increment": false,
  "line-length": { "line_length": 120, "tables": false },
  "MD009": true,
  "no-such-rule": true
}`)

	rules := convertedRules(t, result)
	assert.Equal(t, false, rules["MD001"])
	assert.Equal(t, map[string]any{"line_length": 120}, rules["MD013"])
	assert.Equal(t, true, rules["MD009"])
	assert.NotContains(t, rules, "$schema")

	assert.Contains(t, string(result.Content), "# Migrated from: .markdownlint.json")
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings, `MD013: option "tables" has no downlint equivalent; skipping`)
	assert.Contains(t, result.Warnings, `unknown key "no-such-rule"; skipping`)
}

func TestConvertMarkdownlintConfig_Tags(t *testing.T) {
	t.Parallel()

	result := convert(t, ".markdownlint.yaml", "whitespace: false\nno-hard-tabs: true\n")

	rules := convertedRules(t, result)
	assert.Equal(t, false, rules["MD009"])
	assert.Equal(t, false, rules["MD012"])
	assert.Equal(t, true, rules["MD010"], "a named rule wins over its tag")
	assert.Empty(t, result.Warnings)
}

func TestConvertMarkdownlintConfig_DefaultFalse(t *testing.T) {
	t.Parallel()

	result := convert(t, ".markdownlint.yml", "default: false\nMD013: true\nextends: base.json\n")

	rules := convertedRules(t, result)
	assert.Equal(t, true, rules["MD013"])
	assert.Equal(t, false, rules["MD001"])
	assert.Len(t, rules, lint.DefaultRegistry.Len())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "extends")

	resolved, err := config.Resolve(lint.DefaultRegistry.Defaults(), result.Content, config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"MD013"}, resolved.EnabledCodes())
}

func TestConvertMarkdownlintConfig_JSONC(t *testing.T) {
	t.Parallel()

	result := convert(t, ".markdownlint.jsonc", `{
  // Tabs are fine in this repo.
  "no-hard-tabs": false,
  /* URLs are "written" by hand */
  "no-bare-urls": "off // not a comment"
}`)

	rules := convertedRules(t, result)
	assert.Equal(t, false, rules["MD010"])
	assert.Equal(t, true, rules["MD034"])
}

func TestConvertMarkdownlintConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	defaults := lint.DefaultRegistry.Defaults()

	jsPath := filepath.Join(dir, ".markdownlint.cjs")
	writeFile(t, jsPath, "module.exports = {}")
	_, err := configloader.ConvertMarkdownlintConfig(jsPath, defaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JavaScript")

	badPath := filepath.Join(dir, ".markdownlint.json")
	writeFile(t, badPath, "{ not json")
	_, err = configloader.ConvertMarkdownlintConfig(badPath, defaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse JSON")

	_, err = configloader.ConvertMarkdownlintConfig(filepath.Join(dir, "missing.yaml"), defaults)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizeRuleID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"MD013", "MD013"},
		{"md013", "MD013"},
		{"heading-increment", "MD001"},
		{"Line-Length", "MD013"},
		{"single-title", "MD025"},
		{"whitespace", ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.key, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, configloader.NormalizeRuleID(testCase.key))
		})
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".downlint.yml")
	require.NoError(t, configloader.WriteConfig(path, []byte("rules: {}\n"), false))

	err := configloader.WriteConfig(path, []byte("rules:\n  MD013: false\n"), false)
	require.ErrorIs(t, err, configloader.ErrConfigExists)

	require.NoError(t, configloader.WriteConfig(path, []byte("rules:\n  MD013: false\n"), true))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rules:\n  MD013: false\n", string(content))
}
