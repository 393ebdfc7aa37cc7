// Package reporter aggregates lint results and renders them in the
// supported output formats.
package reporter

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yaklabco/downlint/internal/ui/pretty"
	"github.com/yaklabco/downlint/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// parseErrorCode labels files that could not be checked.
const parseErrorCode = "parse-error"

// Options configures rendering.
type Options struct {
	// Styles colors concise output. Nil means no color.
	Styles *pretty.Styles

	// Quiet suppresses the summary line.
	Quiet bool

	// Compact disables indentation in JSON and SARIF output.
	Compact bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is.
	WorkingDir string

	// Version is the tool version recorded in SARIF output.
	Version string

	// RuleDescriptions maps rule codes to their one-line descriptions.
	RuleDescriptions map[string]string

	// Fixed is the number of files rewritten by --fix.
	Fixed int
}

// Renderer writes a Report in one output format.
type Renderer interface {
	Render(w io.Writer, report *Report) error
}

// New returns the renderer for format.
func New(format config.OutputFormat, opts Options) (Renderer, error) {
	if opts.Styles == nil {
		opts.Styles = pretty.NewStyles(false)
	}

	switch format {
	case config.FormatConcise, "":
		return &conciseRenderer{opts: opts}, nil
	case config.FormatText:
		return &textRenderer{opts: opts}, nil
	case config.FormatMDL:
		return &mdlRenderer{opts: opts}, nil
	case config.FormatMarkdownlint:
		return &markdownlintRenderer{opts: opts}, nil
	case config.FormatJSON:
		return &jsonRenderer{opts: opts}, nil
	case config.FormatSARIF:
		return &sarifRenderer{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Render writes report to w in the given format.
func Render(w io.Writer, report *Report, format config.OutputFormat, opts Options) error {
	renderer, err := New(format, opts)
	if err != nil {
		return err
	}
	return renderer.Render(w, report)
}

// lineWriter buffers line-oriented output and keeps the first write error.
type lineWriter struct {
	bw  *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{bw: bufio.NewWriterSize(w, bufWriterSize)}
}

func (lw *lineWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.bw, format, args...)
}

func (lw *lineWriter) write(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = lw.bw.WriteString(s)
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return fmt.Errorf("write report: %w", lw.err)
	}
	if err := lw.bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// failureMessage is the failure's error text with the file path shown the
// way the rest of the output shows it.
func (o Options) failureMessage(failure Failure) string {
	msg := failure.Err.Error()
	if failure.Path == "" {
		return msg
	}
	return strings.ReplaceAll(msg, failure.Path, o.displayPath(failure.Path))
}

// displayPath makes path relative to the working directory when possible.
func (o Options) displayPath(path string) string {
	if o.WorkingDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(o.WorkingDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
