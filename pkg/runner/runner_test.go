package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/lint/rules"
	"github.com/yaklabco/downlint/pkg/mdast"
	"github.com/yaklabco/downlint/pkg/parser/goldmark"
	"github.com/yaklabco/downlint/pkg/runner"
)

// newRunner builds a runner over the built-in rules with the given codes.
func newRunner(t *testing.T, codes ...string) (*runner.Runner, *lint.Registry) {
	t.Helper()

	reg := lint.NewRegistry()
	for _, rule := range rules.All() {
		for _, code := range codes {
			if rule.Code() == code {
				require.NoError(t, reg.Register(rule))
			}
		}
	}
	require.Equal(t, len(codes), reg.Len())

	engine := lint.NewEngine(reg, lint.Options{})
	return runner.New(lint.NewPipeline(engine, goldmark.New(goldmark.FlavorGFM))), reg
}

func longLine() string {
	return strings.Repeat("a", 81) + "\n"
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	lintRunner, _ := newRunner(t, "MD013")
	result, err := lintRunner.Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, 0, result.Stats.FilesDiscovered)
}

func TestRunner_Run_LineLength(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"clean.md": "# Title\n",
		"long.md":  longLine(),
	})

	lintRunner, reg := newRunner(t, "MD013")
	result, err := lintRunner.Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Jobs:       2,
		Config:     reg.DefaultConfig(),
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, 2, result.Stats.FilesProcessed)
	assert.Equal(t, 1, result.Stats.Violations)

	results := result.LintResults()
	assert.Equal(t, lint.StatusClean, results[0].Status)

	long := results[1]
	assert.Equal(t, filepath.Join(dir, "long.md"), long.Path)
	require.Len(t, long.Violations, 1)
	assert.Equal(t, "MD013", long.Violations[0].RuleCode)
	assert.Equal(t, 1, long.Violations[0].Start.Line)
	assert.Equal(t, 81, long.Violations[0].Start.Column)
}

func TestRunner_Run_RuleDisabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"long.md": longLine()})

	lintRunner, reg := newRunner(t, "MD013")
	cfg, err := config.Resolve(reg.Defaults(), nil, config.Overrides{Disable: []string{"line-length"}})
	require.NoError(t, err)

	result, err := lintRunner.Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.Violations)
}

func TestRunner_Run_ParseFailureIsolated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"bad.md":  "# Title\n\xff\xfe\n",
		"long.md": longLine(),
	})

	lintRunner, reg := newRunner(t, "MD013")
	result, err := lintRunner.Run(context.Background(), runner.Options{WorkingDir: dir, Config: reg.DefaultConfig()})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesErrored)
	assert.Equal(t, 1, result.Stats.FilesProcessed)

	bad := result.Files[0]
	var parseErr *mdast.ParseError
	require.ErrorAs(t, bad.Error, &parseErr)
	assert.Equal(t, lint.StatusParseFailed, bad.LintResult().Status)

	require.NoError(t, result.Files[1].Error)
	assert.Len(t, result.Files[1].Outcome.Violations, 1)
}

func TestRunner_RunFiles_IOError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lintRunner, _ := newRunner(t, "MD013")

	result, err := lintRunner.RunFiles(context.Background(), []string{filepath.Join(dir, "gone.md")}, runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	var ioErr *runner.IOError
	require.ErrorAs(t, result.Files[0].Error, &ioErr)
	assert.ErrorIs(t, ioErr, os.ErrNotExist)
}

func TestRunner_Run_MissingPathIsolated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"long.md": longLine()})

	lintRunner, reg := newRunner(t, "MD013")
	result, err := lintRunner.Run(context.Background(), runner.Options{
		Paths:      []string{"long.md", "nope.md"},
		WorkingDir: dir,
		Config:     reg.DefaultConfig(),
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.Equal(t, 1, result.Stats.FilesErrored)

	require.NoError(t, result.Files[0].Error)
	assert.Len(t, result.Files[0].Outcome.Violations, 1)

	missing := result.Files[1]
	assert.Equal(t, filepath.Join(dir, "nope.md"), missing.Path)
	var ioErr *runner.IOError
	require.ErrorAs(t, missing.Error, &ioErr)
	assert.ErrorIs(t, ioErr, os.ErrNotExist)
	assert.Equal(t, lint.StatusParseFailed, missing.LintResult().Status)
}

func TestRunner_Run_MaxViolations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.md": longLine(),
		"b.md": longLine(),
		"c.md": longLine(),
	})

	lintRunner, reg := newRunner(t, "MD013")
	result, err := lintRunner.Run(context.Background(), runner.Options{
		WorkingDir:    dir,
		Jobs:          1,
		MaxViolations: 1,
		Config:        reg.DefaultConfig(),
	})
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "a.md"), result.Files[0].Path)
	assert.Equal(t, 2, result.Stats.FilesNotDispatched)
}

func TestRunner_Run_PerPathOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"long.md":      longLine(),
		"skip/long.md": longLine(),
	})

	lintRunner, reg := newRunner(t, "MD013")
	project := []byte("overrides:\n  - files: [\"skip/**\"]\n    rules:\n      MD013: false\n")
	cfg, err := config.ResolveFile(reg.Defaults(), filepath.Join(dir, ".downlint.yml"), project, config.Overrides{})
	require.NoError(t, err)

	result, err := lintRunner.Run(context.Background(), runner.Options{WorkingDir: dir, Config: cfg})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Len(t, result.Files[0].Outcome.Violations, 1, "long.md")
	assert.Empty(t, result.Files[1].Outcome.Violations, "skip/long.md")
}

func TestRunner_Run_Fix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"doc.md": "# Title \n\nText   \n"})

	lintRunner, reg := newRunner(t, "MD009")
	result, err := lintRunner.Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Config:     reg.DefaultConfig(),
		Fix:        lint.FixOptions{Fix: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesModified)
	assert.Equal(t, 0, result.Stats.Violations)

	content, err := os.ReadFile(filepath.Join(dir, "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nText\n", string(content))
}

func TestRunner_Run_FixDryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := "Text   \n"
	writeTree(t, dir, map[string]string{"doc.md": original})

	lintRunner, reg := newRunner(t, "MD009")
	result, err := lintRunner.Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Config:     reg.DefaultConfig(),
		Fix:        lint.FixOptions{Fix: true, DryRun: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Stats.FilesModified)
	diffs := result.Diffs()
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "-Text   ")
	assert.Contains(t, diffs[0], "+Text")
	assert.True(t, strings.HasPrefix(diffs[0], "--- a/doc.md\n+++ b/doc.md\n"), diffs[0])

	content, err := os.ReadFile(filepath.Join(dir, "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.md": ""})

	lintRunner, _ := newRunner(t, "MD013")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lintRunner.RunFiles(ctx, []string{filepath.Join(dir, "a.md")}, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptionsFromSettings(t *testing.T) {
	t.Parallel()

	_, reg := newRunner(t, "MD013")
	cfg := reg.DefaultConfig()
	settings := cfg.Settings
	settings.Exclude = []string{"vendor/**"}
	settings.Jobs = 3
	settings.MaxViolations = 10
	settings.RespectGitignore = false
	cfg, err := cfg.WithSettings(settings)
	require.NoError(t, err)

	opts := runner.OptionsFromSettings(cfg)
	assert.Equal(t, []string{"vendor/**"}, opts.Exclude)
	assert.Equal(t, 3, opts.Jobs)
	assert.Equal(t, 10, opts.MaxViolations)
	assert.False(t, opts.RespectGitignore)
	assert.True(t, opts.RespectIgnore)
	assert.Same(t, cfg, opts.Config)
}
