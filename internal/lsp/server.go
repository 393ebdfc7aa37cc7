// Package lsp serves downlint diagnostics over the Language Server Protocol.
// Open documents are linted on every change; results are cached by content
// hash so unchanged text is never linted twice.
package lsp

import (
	"context"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/yaklabco/downlint/internal/configloader"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	goldmarkparser "github.com/yaklabco/downlint/pkg/parser/goldmark"
	"github.com/yaklabco/downlint/pkg/runner"
)

// ServerName identifies the server to clients and in diagnostics.
const ServerName = "downlint"

// Options configures a Server.
type Options struct {
	// Version is reported to the client.
	Version string

	// Registry holds the rules to run. Defaults to lint.DefaultRegistry.
	Registry *lint.Registry

	// CacheSize bounds the result cache. Zero means DefaultCacheSize.
	CacheSize int

	// ConfigPath is an explicit project file, as with --config.
	ConfigPath string
}

// Server lints open Markdown documents for an LSP client.
type Server struct {
	opts    Options
	handler protocol.Handler
	log     commonlog.Logger
	cache   *resultCache

	// base carries the charmbracelet logger into lint runs.
	base context.Context

	mu       sync.RWMutex
	docs     map[protocol.DocumentUri][]byte
	cfg      *config.ResolvedConfig
	pipeline *lint.Pipeline
	// generation counts configuration changes. Results linted under an
	// older generation are not cached.
	generation uint64
}

// New creates a server using the built-in defaults until the client
// initializes it with a workspace root.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Registry == nil {
		opts.Registry = lint.DefaultRegistry
	}
	cache, err := newResultCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:  opts,
		log:   commonlog.GetLogger("downlint.lsp"),
		cache: cache,
		base:  ctx,
		docs:  make(map[protocol.DocumentUri][]byte),
	}
	s.setConfig(opts.Registry.DefaultConfig())

	s.handler = protocol.Handler{
		Initialize:                      s.initialize,
		Initialized:                     s.initialized,
		Shutdown:                        s.shutdown,
		SetTrace:                        s.setTrace,
		TextDocumentDidOpen:             s.textDocumentDidOpen,
		TextDocumentDidChange:           s.textDocumentDidChange,
		TextDocumentDidSave:             s.textDocumentDidSave,
		TextDocumentDidClose:            s.textDocumentDidClose,
		TextDocumentCodeAction:          s.textDocumentCodeAction,
		TextDocumentFormatting:          s.textDocumentFormatting,
		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,
	}
	return s, nil
}

// Handler returns the protocol handler.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio serves the protocol over standard input and output until the
// client exits.
func (s *Server) RunStdio() error {
	return server.NewServer(&s.handler, ServerName, false).RunStdio()
}

// Configure loads the project configuration for workDir and drops cached
// results. On error the previous configuration stays in effect.
func (s *Server) Configure(workDir string) error {
	loaded, err := configloader.Load(s.base, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: s.opts.ConfigPath,
		Defaults:     s.opts.Registry.Defaults(),
	})
	if err != nil {
		return err
	}
	for _, warning := range loaded.Warnings {
		s.log.Warning(warning)
	}
	if loaded.Path != "" {
		s.log.Infof("using configuration %s", loaded.Path)
	}
	s.setConfig(loaded.Config)
	return nil
}

func (s *Server) setConfig(cfg *config.ResolvedConfig) {
	engine := lint.NewEngine(s.opts.Registry, lint.Options{
		Parallel:    true,
		RuleTimeout: cfg.Settings.RuleTimeout,
	})
	pipeline := lint.NewPipeline(engine, goldmarkparser.New(string(cfg.Settings.Flavor)))

	s.mu.Lock()
	s.cfg = cfg
	s.pipeline = pipeline
	s.generation++
	s.cache.purge()
	s.mu.Unlock()
}

func (s *Server) current() (*config.ResolvedConfig, *lint.Pipeline, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.pipeline, s.generation
}

// remember caches entry unless the configuration changed after generation.
func (s *Server) remember(generation uint64, key string, entry cachedResult) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation != generation {
		return false
	}
	s.cache.add(key, entry)
	return true
}

func (s *Server) document(uri protocol.DocumentUri) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.docs[uri]
	return content, ok
}

func (s *Server) setDocument(uri protocol.DocumentUri, content []byte) {
	s.mu.Lock()
	s.docs[uri] = content
	s.mu.Unlock()
}

func (s *Server) dropDocument(uri protocol.DocumentUri) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

func (s *Server) openURIs() []protocol.DocumentUri {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]protocol.DocumentUri, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

// Lint returns the violations for content, linting only on a cache miss.
// A parse failure is returned as the error.
func (s *Server) Lint(uri protocol.DocumentUri, content []byte) ([]lint.Violation, error) {
	path := uriToPath(uri)
	key := cacheKey(path, content)
	if hit, ok := s.cache.get(key); ok {
		return hit.violations, hit.err
	}

	cfg, pipeline, generation := s.current()
	var entry cachedResult
	outcome, err := pipeline.Process(s.base, path, content, runner.ResolvedFor(cfg, path), lint.FixOptions{})
	if err != nil {
		entry.err = err
	} else {
		entry.violations = outcome.Violations
	}
	s.remember(generation, key, entry)
	return entry.violations, entry.err
}

// uriToPath returns the file system path of a file URI. Other schemes are
// returned unchanged.
func uriToPath(uri protocol.DocumentUri) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}
