package lsp_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yaklabco/downlint/internal/lsp"
	_ "github.com/yaklabco/downlint/pkg/lint/rules" // Register rules
)

const docURI = "file:///workspace/README.md"

func newServer(t *testing.T) *lsp.Server {
	t.Helper()
	server, err := lsp.New(context.Background(), lsp.Options{Version: "test"})
	require.NoError(t, err)
	return server
}

// recorder captures notifications sent to the client.
type recorder struct {
	published []protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method != "textDocument/publishDiagnostics" {
				return
			}
			if p, ok := params.(protocol.PublishDiagnosticsParams); ok {
				r.published = append(r.published, p)
			}
		},
	}
}

func open(t *testing.T, server *lsp.Server, rec *recorder, text string) {
	t.Helper()
	err := server.Handler().TextDocumentDidOpen(rec.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "markdown", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func TestDiagnostics_LineLength(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	content := []byte("# Title\n\n" + strings.Repeat("a", 81) + "\n")

	diagnostics := server.Diagnostics(docURI, content)
	require.Len(t, diagnostics, 1)

	diag := diagnostics[0]
	assert.Equal(t, protocol.Position{Line: 2, Character: 80}, diag.Range.Start)
	require.NotNil(t, diag.Code)
	assert.Equal(t, "MD013", diag.Code.Value)
	require.NotNil(t, diag.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diag.Severity)
	assert.True(t, strings.HasPrefix(diag.Message, "MD013/line-length: "))
}

func TestDiagnostics_ParseError(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	diagnostics := server.Diagnostics(docURI, []byte("# T\xff\n"))

	require.Len(t, diagnostics, 1)
	assert.Equal(t, "parse-error", diagnostics[0].Code.Value)
	assert.Equal(t, protocol.UInteger(0), diagnostics[0].Range.Start.Line)
}

func TestDidOpenAndClose_Publish(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	rec := &recorder{}
	open(t, server, rec, "# Title\n\nText   \n")

	require.Len(t, rec.published, 1)
	assert.Equal(t, docURI, rec.published[0].URI)
	require.Len(t, rec.published[0].Diagnostics, 1)
	assert.Equal(t, "MD009", rec.published[0].Diagnostics[0].Code.Value)

	err := server.Handler().TextDocumentDidClose(rec.context(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	require.NoError(t, err)
	require.Len(t, rec.published, 2)
	assert.Empty(t, rec.published[1].Diagnostics)
}

func TestDidChange_FullText(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	rec := &recorder{}
	open(t, server, rec, "# Title\n\nText   \n")

	err := server.Handler().TextDocumentDidChange(rec.context(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "# Title\n\nText\n"}},
	})
	require.NoError(t, err)

	require.Len(t, rec.published, 2)
	assert.Empty(t, rec.published[1].Diagnostics)
}

func TestCodeActions(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	rec := &recorder{}
	open(t, server, rec, "# Title\n\nText   \n")

	actions := server.CodeActions(docURI, protocol.Range{
		Start: protocol.Position{Line: 2, Character: 0},
		End:   protocol.Position{Line: 2, Character: 0},
	})
	require.Len(t, actions, 2)

	quick := actions[0]
	require.NotNil(t, quick.Kind)
	assert.Equal(t, protocol.CodeActionKindQuickFix, *quick.Kind)
	edits := quick.Edit.Changes[docURI]
	require.Len(t, edits, 1)
	assert.Equal(t, protocol.Position{Line: 2, Character: 4}, edits[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 7}, edits[0].Range.End)
	assert.Empty(t, edits[0].NewText)

	fixAll := actions[1]
	assert.Equal(t, "Fix all downlint problems", fixAll.Title)

	none := server.CodeActions(docURI, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	})
	require.Len(t, none, 1, "only the fix-all action applies outside the violation")
}

func TestFixAll(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	rec := &recorder{}
	open(t, server, rec, "# Title\n\nText   \n")

	edits := server.FixAll(docURI)
	require.Len(t, edits, 1)
	assert.Equal(t, "# Title\n\nText\n", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 3, Character: 0}, edits[0].Range.End)

	assert.Nil(t, server.FixAll("file:///not/open.md"))
}

func TestConfigure_ProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".downlint.yml"), []byte("rules:\n  line-length: false\n"), 0o644))

	server := newServer(t)
	content := []byte("# Title\n\n" + strings.Repeat("a", 81) + "\n")
	uri := "file://" + filepath.ToSlash(filepath.Join(dir, "doc.md"))
	require.Len(t, server.Diagnostics(uri, content), 1)

	require.NoError(t, server.Configure(dir))
	assert.Empty(t, server.Diagnostics(uri, content))
}
