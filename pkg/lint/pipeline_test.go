package lint_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/fsutil"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
	"github.com/yaklabco/downlint/pkg/parser/goldmark"
)

// trailingSpaces reports and removes trailing spaces on each line.
func trailingSpaces() *funcRule {
	rule := newRule("T001", "trailing", func(ctx *lint.Context) error {
		for n := 1; n <= ctx.Doc.LineCount(); n++ {
			line := ctx.Doc.LineText(n)
			trimmed := bytes.TrimRight(line, " ")
			if len(trimmed) == len(line) {
				continue
			}
			start := ctx.Doc.LineSpan(n).Start + len(trimmed)
			span := mdast.Span{Start: start, End: ctx.Doc.LineSpan(n).End}
			ctx.ReportFix(span, "trailing spaces", lint.Fix{Span: span})
		}
		return nil
	})
	rule.BaseRule = rule.Fixable()
	return rule
}

// shrinkRun removes one 'x' from the first run of two or more, so each
// pass leaves work for the next.
func shrinkRun() *funcRule {
	return newRule("T002", "shrink", func(ctx *lint.Context) error {
		src := string(ctx.Doc.Source)
		if idx := strings.Index(src, "xx"); idx >= 0 {
			span := mdast.Span{Start: idx, End: idx + 2}
			ctx.ReportFix(span, "run", lint.Fix{Span: span, Replacement: "x"})
		}
		return nil
	})
}

func newPipeline(t *testing.T, rules ...lint.Rule) *lint.Pipeline {
	t.Helper()
	return lint.NewPipeline(lint.NewEngine(registryOf(t, rules...), lint.Options{}), goldmark.New(""))
}

func TestPipeline_LintOnly(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, trailingSpaces())
	out, err := p.Process(context.Background(), "a.md", []byte("text  \n"), nil, lint.FixOptions{})
	require.NoError(t, err)

	assert.False(t, out.Changed())
	assert.Zero(t, out.Passes)
	require.Len(t, out.Violations, 1)
	assert.True(t, out.Violations[0].HasFix())
	assert.Equal(t, lint.StatusHasErrors, out.Status)
}

func TestPipeline_Fix(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, trailingSpaces())
	out, err := p.Process(context.Background(), "a.md", []byte("one  \ntwo \nthree\n"), nil, lint.FixOptions{Fix: true})
	require.NoError(t, err)

	assert.Equal(t, "one\ntwo\nthree\n", string(out.Fixed))
	assert.Equal(t, 1, out.Passes)
	assert.Equal(t, 2, out.Applied)
	assert.Empty(t, out.Violations, "violations describe the fixed content")
	assert.Equal(t, lint.StatusClean, out.Status)
}

func TestPipeline_MultiPass(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, shrinkRun())

	out, err := p.Process(context.Background(), "a.md", []byte("xxxx\n"), nil, lint.FixOptions{Fix: true})
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(out.Fixed))
	assert.Equal(t, 3, out.Passes)
	assert.Empty(t, out.Violations)

	limited, err := p.Process(context.Background(), "a.md", []byte("xxxx\n"), nil,
		lint.FixOptions{Fix: true, MaxPasses: 2})
	require.NoError(t, err)
	assert.Equal(t, "xx\n", string(limited.Fixed))
	assert.Equal(t, 2, limited.Passes)
	assert.Len(t, limited.Violations, 1)
}

func TestPipeline_DryRunDiff(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, trailingSpaces())
	out, err := p.Process(context.Background(), "a.md", []byte("one  \n"), nil,
		lint.FixOptions{Fix: true, DryRun: true})
	require.NoError(t, err)

	assert.Contains(t, out.Diff, "-one  \n+one\n")
	assert.True(t, strings.HasPrefix(out.Diff, "--- a/a.md\n+++ b/a.md\n"))

	labelled, err := p.Process(context.Background(), "/abs/dir/a.md", []byte("one  \n"), nil,
		lint.FixOptions{Fix: true, DryRun: true, DiffPath: "dir/a.md"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(labelled.Diff, "--- a/dir/a.md\n+++ b/dir/a.md\n"))
}

func TestPipeline_PreservesBOM(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, trailingSpaces())
	out, err := p.Process(context.Background(), "a.md", []byte("\xEF\xBB\xBFone  \n"), nil, lint.FixOptions{Fix: true})
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFone\n", string(out.Fixed))
}

func TestPipeline_ParseError(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, trailingSpaces())
	_, err := p.Process(context.Background(), "bad.md", []byte("ok\n\xff\n"), nil, lint.FixOptions{})

	var parseErr *mdast.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
}

func TestPipeline_ProcessFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("a  \nb\n"), 0o644))

	p := newPipeline(t, trailingSpaces())

	out, err := p.ProcessFile(context.Background(), path, nil, lint.FixOptions{Fix: true, DryRun: true})
	require.NoError(t, err)
	assert.True(t, out.Changed())
	assert.False(t, out.Written)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a  \nb\n", string(got), "dry run must not write")

	out, err = p.ProcessFile(context.Background(), path, nil, lint.FixOptions{Fix: true, Backup: true})
	require.NoError(t, err)
	assert.True(t, out.Written)
	assert.True(t, out.BackupCreated)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(got))

	backup, err := os.ReadFile(fsutil.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "a  \nb\n", string(backup))
}

func TestPipeline_ProcessFileMissing(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, trailingSpaces())
	_, err := p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.md"), nil, lint.FixOptions{})
	require.ErrorIs(t, err, fsutil.ErrNotFound)
}
