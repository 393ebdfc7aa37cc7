package lsp

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
	"github.com/yaklabco/downlint/pkg/runner"
)

const methodPublishDiagnostics = "textDocument/publishDiagnostics"

// codeActionKindFixAll is the LSP "source.fixAll" kind.
const codeActionKindFixAll protocol.CodeActionKind = "source.fixAll"

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if root := workspaceRoot(params); root != "" {
		if err := s.Configure(root); err != nil {
			// Keep serving with the built-in defaults.
			s.log.Errorf("load configuration: %s", err)
		}
	}

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.False},
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix, codeActionKindFixAll},
	}

	version := s.opts.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &version,
		},
	}, nil
}

func workspaceRoot(params *protocol.InitializeParams) string {
	if params.RootURI != nil && *params.RootURI != "" {
		return uriToPath(*params.RootURI)
	}
	if len(params.WorkspaceFolders) > 0 {
		return uriToPath(params.WorkspaceFolders[0].URI)
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.log.Info("client initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	content := []byte(params.TextDocument.Text)
	s.setDocument(uri, content)
	s.publish(ctx, uri, content)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	content, _ := s.document(uri)
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = []byte(change.Text)
		case protocol.TextDocumentContentChangeEvent:
			content = applyChange(content, change)
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}
	s.setDocument(uri, content)
	s.publish(ctx, uri, content)
	return nil
}

// applyChange applies one incremental edit. A change without a range
// replaces the whole document.
func applyChange(content []byte, change protocol.TextDocumentContentChangeEvent) []byte {
	if change.Range == nil {
		return []byte(change.Text)
	}
	start := offsetAt(content, change.Range.Start)
	end := offsetAt(content, change.Range.End)
	if end < start {
		start, end = end, start
	}
	out := make([]byte, 0, len(content)-(end-start)+len(change.Text))
	out = append(out, content[:start]...)
	out = append(out, change.Text...)
	return append(out, content[end:]...)
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	content, ok := s.document(uri)
	if !ok {
		return nil
	}
	s.publish(ctx, uri, content)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.dropDocument(uri)
	ctx.Notify(methodPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, _ *protocol.DidChangeConfigurationParams) error {
	cfg, _, _ := s.current()
	if cfg.Path != "" {
		if err := s.Configure(filepath.Dir(cfg.Path)); err != nil {
			s.log.Errorf("reload configuration: %s", err)
			return nil
		}
	}
	for _, uri := range s.openURIs() {
		if content, ok := s.document(uri); ok {
			s.publish(ctx, uri, content)
		}
	}
	return nil
}

// publish lints content and sends its diagnostics. An empty list is sent
// too, so fixed problems disappear from the client.
func (s *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) {
	ctx.Notify(methodPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: s.Diagnostics(uri, content),
	})
}

// Diagnostics converts the lint result for content into LSP diagnostics. A
// document that cannot be parsed yields a single diagnostic at its start.
func (s *Server) Diagnostics(uri protocol.DocumentUri, content []byte) []protocol.Diagnostic {
	violations, err := s.Lint(uri, content)
	if err != nil {
		return []protocol.Diagnostic{parseDiagnostic(content, err)}
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(violations))
	for i := range violations {
		diagnostics = append(diagnostics, toDiagnostic(content, &violations[i]))
	}
	return diagnostics
}

func toDiagnostic(content []byte, v *lint.Violation) protocol.Diagnostic {
	severity := toSeverity(v.Severity)
	source := ServerName
	return protocol.Diagnostic{
		Range:    rangeOf(content, v.Span.Start, v.Span.End),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: v.RuleCode},
		Source:   &source,
		Message:  fmt.Sprintf("%s/%s: %s", v.RuleCode, v.RuleName, v.Message),
	}
}

func parseDiagnostic(content []byte, err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := ServerName
	offset := 0
	var perr *mdast.ParseError
	if errors.As(err, &perr) {
		offset = perr.Offset
	}
	return protocol.Diagnostic{
		Range:    rangeOf(content, offset, offset),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: "parse-error"},
		Source:   &source,
		Message:  err.Error(),
	}
}

func toSeverity(sev config.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case config.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case config.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	return s.CodeActions(params.TextDocument.URI, params.Range), nil
}

// CodeActions returns a quick fix for each fixable violation touching rng,
// plus one action that applies every fix in the document.
func (s *Server) CodeActions(uri protocol.DocumentUri, rng protocol.Range) []protocol.CodeAction {
	content, ok := s.document(uri)
	if !ok {
		return nil
	}
	violations, err := s.Lint(uri, content)
	if err != nil {
		return nil
	}

	var actions []protocol.CodeAction
	quickFix := protocol.CodeActionKindQuickFix
	for i := range violations {
		v := &violations[i]
		if !v.HasFix() {
			continue
		}
		diagnostic := toDiagnostic(content, v)
		if !rangesOverlap(diagnostic.Range, rng) {
			continue
		}
		actions = append(actions, protocol.CodeAction{
			Title:       fmt.Sprintf("Fix %s (%s)", v.RuleCode, v.RuleName),
			Kind:        &quickFix,
			Diagnostics: []protocol.Diagnostic{diagnostic},
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					uri: {{
						Range:   rangeOf(content, v.Fix.Span.Start, v.Fix.Span.End),
						NewText: v.Fix.Replacement,
					}},
				},
			},
		})
	}

	if edits := s.FixAll(uri); len(edits) > 0 {
		fixAll := codeActionKindFixAll
		actions = append(actions, protocol.CodeAction{
			Title: "Fix all downlint problems",
			Kind:  &fixAll,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
			},
		})
	}
	return actions
}

func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	return s.FixAll(params.TextDocument.URI), nil
}

// FixAll runs the fix loop over an open document and returns one edit that
// replaces the whole text, or nil when nothing changes.
func (s *Server) FixAll(uri protocol.DocumentUri) []protocol.TextEdit {
	content, ok := s.document(uri)
	if !ok {
		return nil
	}
	path := uriToPath(uri)
	cfg, pipeline, _ := s.current()
	outcome, err := pipeline.Process(s.base, path, content, runner.ResolvedFor(cfg, path), lint.FixOptions{Fix: true})
	if err != nil || !outcome.Changed() {
		return nil
	}
	return []protocol.TextEdit{{
		Range:   rangeOf(content, 0, len(content)),
		NewText: string(outcome.Fixed),
	}}
}
