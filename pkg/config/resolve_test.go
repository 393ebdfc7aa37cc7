package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/config"
)

func testDefaults() config.Defaults {
	return config.Defaults{
		Settings: config.DefaultSettings(),
		Rules: []config.RuleSpec{
			{
				Code: "MD003", Name: "header-style", Description: "Header style",
				Tags: []string{"headers"}, Enabled: true,
				Params: []config.Param{
					config.StringParam("style", "consistent", "Header style", "consistent", "atx", "setext"),
				},
			},
			{
				Code: "MD009", Name: "no-trailing-spaces", Description: "Trailing spaces",
				Tags: []string{"whitespace"}, Enabled: true,
				Params: []config.Param{config.IntParam("br_spaces", 2, "Spaces for a hard break")},
			},
			{
				Code: "MD013", Name: "line-length", Description: "Line length",
				Tags: []string{"line_length"}, Enabled: true,
				Params: []config.Param{
					config.IntParam("line_length", 80, "Maximum line length"),
					config.BoolParam("code_blocks", true, "Check code blocks"),
				},
			},
			{
				Code: "MD025", Name: "single-h1", Description: "Single top level header",
				Tags: []string{"headers"}, Enabled: true, Severity: config.SeverityWarning,
			},
			{
				Code: "MD033", Name: "no-inline-html", Description: "Inline HTML",
				Tags: []string{"html"}, Enabled: true,
				Params: []config.Param{config.StringsParam("allowed_elements", nil, "Allowed elements")},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestResolve_Layering(t *testing.T) {
	t.Parallel()

	project := []byte("rules:\n  MD013:\n    line_length: 100\n")
	cli := config.Overrides{Rules: map[string]config.RuleOverride{
		"MD013": {Enabled: boolPtr(false)},
	}}

	resolved, err := config.Resolve(testDefaults(), project, cli)
	require.NoError(t, err)

	rule, ok := resolved.Rule("MD013")
	require.True(t, ok)
	assert.False(t, rule.Enabled)
	assert.Equal(t, 100, rule.Params["line_length"])
	assert.Equal(t, true, rule.Params["code_blocks"])
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	resolved, err := config.Resolve(testDefaults(), nil, config.Overrides{})
	require.NoError(t, err)

	rule, ok := resolved.Rule("md013")
	require.True(t, ok)
	assert.True(t, rule.Enabled)
	assert.Equal(t, config.SeverityError, rule.Severity)
	assert.Equal(t, 80, rule.Params["line_length"])

	h1, _ := resolved.Rule("MD025")
	assert.Equal(t, config.SeverityWarning, h1.Severity)

	assert.Equal(t, []string{"MD003", "MD009", "MD013", "MD025", "MD033"}, resolved.EnabledCodes())
	assert.Equal(t, config.DefaultSettings(), resolved.Settings)
}

func TestResolve_ProjectFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		yaml  string
		check func(t *testing.T, resolved *config.ResolvedConfig)
	}{
		{
			name: "bool shorthand by alias",
			yaml: "rules:\n  no-trailing-spaces: false\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				assert.False(t, resolved.Enabled("MD009"))
				assert.True(t, resolved.Enabled("MD013"))
			},
		},
		{
			name: "tag disables a group",
			yaml: "rules:\n  headers: false\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				assert.False(t, resolved.Enabled("MD003"))
				assert.False(t, resolved.Enabled("MD025"))
				assert.True(t, resolved.Enabled("MD009"))
			},
		},
		{
			name: "later entry wins over tag",
			yaml: "rules:\n  headers: false\n  MD025: true\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				assert.False(t, resolved.Enabled("MD003"))
				assert.True(t, resolved.Enabled("MD025"))
			},
		},
		{
			name: "severity and params",
			yaml: "rules:\n  MD033:\n    severity: warning\n    allowed-elements: [br, sup]\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				rule, _ := resolved.Rule("MD033")
				assert.Equal(t, config.SeverityWarning, rule.Severity)
				assert.Equal(t, []string{"br", "sup"}, rule.Params["allowed_elements"])
			},
		},
		{
			name: "null entry enables with defaults",
			yaml: "rules:\n  MD013:\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				rule, _ := resolved.Rule("MD013")
				assert.True(t, rule.Enabled)
				assert.Equal(t, 80, rule.Params["line_length"])
			},
		},
		{
			name: "lint settings",
			yaml: "lint:\n  output-format: json\n  quiet: true\n  exclude: [\"vendor/**\"]\n" +
				"  fail-on: error\n  jobs: 4\n  rule-timeout: 2s\n  flavor: commonmark\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				s := resolved.Settings
				assert.Equal(t, config.FormatJSON, s.OutputFormat)
				assert.True(t, s.Quiet)
				assert.Equal(t, []string{"vendor/**"}, s.Exclude)
				assert.Equal(t, config.SeverityError, s.FailOn)
				assert.Equal(t, 4, s.Jobs)
				assert.Equal(t, 2*time.Second, s.RuleTimeout)
				assert.Equal(t, config.FlavorCommonMark, s.Flavor)
				assert.True(t, s.RespectGitignore)
			},
		},
		{
			name: "empty document",
			yaml: "# only a comment\n",
			check: func(t *testing.T, resolved *config.ResolvedConfig) {
				t.Helper()
				assert.True(t, resolved.Enabled("MD013"))
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resolved, err := config.ResolveFile(testDefaults(), ".downlint.yml", []byte(testCase.yaml), config.Overrides{})
			require.NoError(t, err)
			testCase.check(t, resolved)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr error
		line    int
		key     string
	}{
		{"malformed yaml", "rules: [unclosed\n", config.ErrSyntax, 0, ""},
		{"top level scalar", "just text\n", config.ErrSyntax, 1, ""},
		{"unknown top level key", "lint: {}\nflavour: gfm\n", config.ErrUnknownKey, 2, "flavour"},
		{"unknown lint key", "lint:\n  colour: true\n", config.ErrUnknownKey, 2, "lint.colour"},
		{"unknown rule", "rules:\n  MD999: false\n", config.ErrUnknownRule, 2, "MD999"},
		{"unknown param", "rules:\n  MD013:\n    width: 10\n", config.ErrUnknownParam, 3, "MD013.width"},
		{"param type mismatch", "rules:\n  MD013:\n    line_length: long\n", config.ErrInvalidValue, 3, "MD013.line_length"},
		{"enum violation", "rules:\n  MD003:\n    style: fancy\n", config.ErrInvalidValue, 3, "MD003.style"},
		{"params on tag", "rules:\n  headers:\n    style: atx\n", config.ErrUnknownParam, 3, "headers.style"},
		{"non bool rule value", "rules:\n  MD013: 80\n", config.ErrInvalidValue, 2, "MD013"},
		{"bad severity", "rules:\n  MD013:\n    severity: fatal\n", config.ErrInvalidValue, 3, "MD013.severity"},
		{"bad output format", "lint:\n  output-format: xml\n", config.ErrInvalidValue, 2, "lint.output-format"},
		{"bad duration", "lint:\n  rule-timeout: soon\n", config.ErrInvalidValue, 2, "lint.rule-timeout"},
		{"override without files", "overrides:\n  - rules:\n      MD013: false\n", config.ErrInvalidValue, 2, "overrides.files"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.ResolveFile(testDefaults(), "cfg.yml", []byte(testCase.yaml), config.Overrides{})
			require.Error(t, err)
			require.ErrorIs(t, err, testCase.wantErr)

			var cerr *config.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "cfg.yml", cerr.Path)
			assert.Equal(t, testCase.line, cerr.Line)
			assert.Equal(t, testCase.key, cerr.Key)
		})
	}
}

func TestResolve_CLIOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		overrides config.Overrides
		enabled   map[string]bool
	}{
		{
			name:      "disable by tag",
			overrides: config.Overrides{Disable: []string{"headers"}},
			enabled:   map[string]bool{"MD003": false, "MD025": false, "MD013": true},
		},
		{
			name:      "disable wins over enable",
			overrides: config.Overrides{Enable: []string{"MD013"}, Disable: []string{"line-length"}},
			enabled:   map[string]bool{"MD013": false},
		},
		{
			name: "cli beats project file",
			overrides: config.Overrides{Rules: map[string]config.RuleOverride{
				"MD009": {Enabled: boolPtr(true)},
			}},
			enabled: map[string]bool{"MD009": true},
		},
	}

	project := []byte("rules:\n  MD009: false\n")
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resolved, err := config.Resolve(testDefaults(), project, testCase.overrides)
			require.NoError(t, err)
			for code, want := range testCase.enabled {
				assert.Equal(t, want, resolved.Enabled(code), code)
			}
		})
	}
}

func TestResolve_CLIErrors(t *testing.T) {
	t.Parallel()

	_, err := config.Resolve(testDefaults(), nil, config.Overrides{Enable: []string{"nope"}})
	require.ErrorIs(t, err, config.ErrUnknownRule)

	_, err = config.Resolve(testDefaults(), nil, config.Overrides{Rules: map[string]config.RuleOverride{
		"MD013": {Params: map[string]any{"line_length": "wide"}},
	}})
	require.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestResolvedConfig_ForPath(t *testing.T) {
	t.Parallel()

	project := []byte(`rules:
  MD013:
    line_length: 100
overrides:
  - files: ["docs/**/*.md", "CHANGELOG.md"]
    rules:
      MD013:
        line_length: 120
      MD009: false
`)
	cli := config.Overrides{Rules: map[string]config.RuleOverride{
		"MD009": {Enabled: boolPtr(true)},
	}}

	resolved, err := config.Resolve(testDefaults(), project, cli)
	require.NoError(t, err)

	assert.Same(t, resolved, resolved.ForPath("README.md"))

	docs := resolved.ForPath("./docs/guide/intro.md")
	rule, _ := docs.Rule("MD013")
	assert.Equal(t, 120, rule.Params["line_length"])
	assert.True(t, docs.Enabled("MD009"), "command line wins over overrides")

	changelog := resolved.ForPath("sub/CHANGELOG.md")
	rule, _ = changelog.Rule("MD013")
	assert.Equal(t, 120, rule.Params["line_length"])

	base, _ := resolved.Rule("MD013")
	assert.Equal(t, 100, base.Params["line_length"], "base config is unchanged")
}

func TestResolvedConfig_WithSettings(t *testing.T) {
	t.Parallel()

	resolved, err := config.Resolve(testDefaults(), nil, config.Overrides{})
	require.NoError(t, err)

	settings := resolved.Settings
	settings.OutputFormat = config.FormatText
	updated, err := resolved.WithSettings(settings)
	require.NoError(t, err)
	assert.Equal(t, config.FormatText, updated.Settings.OutputFormat)
	assert.Equal(t, config.FormatConcise, resolved.Settings.OutputFormat)

	settings.FailOn = "fatal"
	_, err = resolved.WithSettings(settings)
	require.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestSeverity(t *testing.T) {
	t.Parallel()

	sev, err := config.ParseSeverity(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, config.SeverityWarning, sev)

	_, err = config.ParseSeverity("fatal")
	require.ErrorIs(t, err, config.ErrInvalidValue)

	assert.True(t, config.SeverityError.AtLeast(config.SeverityWarning))
	assert.True(t, config.SeverityWarning.AtLeast(config.SeverityWarning))
	assert.False(t, config.SeverityInfo.AtLeast(config.SeverityWarning))
}

func TestParamCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		param   config.Param
		value   any
		want    any
		wantErr bool
	}{
		{"int", config.IntParam("n", 1, ""), 5, 5, false},
		{"int from float", config.IntParam("n", 1, ""), float64(7), 7, false},
		{"fractional float", config.IntParam("n", 1, ""), 7.5, nil, true},
		{"bool", config.BoolParam("b", false, ""), true, true, false},
		{"bool from string", config.BoolParam("b", false, ""), "yes", nil, true},
		{"enum ok", config.StringParam("s", "a", "", "a", "b"), "b", "b", false},
		{"enum bad", config.StringParam("s", "a", "", "a", "b"), "c", nil, true},
		{"strings from any", config.StringsParam("l", nil, ""), []any{"x", "y"}, []string{"x", "y"}, false},
		{"strings bad element", config.StringsParam("l", nil, ""), []any{"x", 1}, nil, true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := testCase.param.Coerce(testCase.value)
			if testCase.wantErr {
				require.ErrorIs(t, err, config.ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestGenerateTemplate_Resolves(t *testing.T) {
	t.Parallel()

	for _, full := range []bool{false, true} {
		text, err := config.GenerateTemplate(testDefaults(), config.TemplateOptions{Full: full})
		require.NoError(t, err)
		assert.Contains(t, string(text), "# downlint configuration")

		resolved, err := config.Resolve(testDefaults(), text, config.Overrides{})
		require.NoError(t, err, string(text))
		assert.Equal(t, config.DefaultSettings().OutputFormat, resolved.Settings.OutputFormat)

		rule, _ := resolved.Rule("MD013")
		assert.Equal(t, 80, rule.Params["line_length"])
	}
}
