package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/fix"
	"github.com/yaklabco/downlint/pkg/fsutil"
)

// DefaultMaxFixPasses bounds the lint-fix loop. Rules whose fixes keep
// creating work for each other stop here.
const DefaultMaxFixPasses = 10

//nolint:gochecknoglobals // Immutable byte order mark.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FixOptions controls what the pipeline does with fixes.
type FixOptions struct {
	// Fix applies fixes and re-lints until stable.
	Fix bool

	// DryRun computes fixes and a diff but never writes.
	DryRun bool

	// Backup keeps a copy of the original next to each rewritten file.
	Backup bool

	// MaxPasses limits fix iterations. Zero means DefaultMaxFixPasses.
	MaxPasses int

	// DiffPath labels the dry-run diff. Empty means the processed path.
	DiffPath string
}

// Outcome is the result of running the pipeline over one file.
type Outcome struct {
	// Result holds the violations of the final content.
	Result

	// Original is the content as read.
	Original []byte

	// Fixed is the content after fixes, or nil when nothing changed.
	Fixed []byte

	// Passes is the number of passes that changed the content.
	Passes int

	// Applied counts fixes written across all passes.
	Applied int

	// Skipped counts fixes dropped because they overlapped another fix.
	Skipped int

	// Diff is the unified diff of Original and Fixed in dry-run mode.
	Diff string

	// Written is true when the fixed content was written to disk.
	Written bool

	// BackupCreated is true when a backup was written before the fix.
	BackupCreated bool

	// SkipReason explains why fixed content was not written.
	SkipReason string
}

// Changed reports whether fixes altered the content.
func (o *Outcome) Changed() bool {
	return o.Fixed != nil
}

// Pipeline ties parsing, linting, and fixing together for one file.
type Pipeline struct {
	Engine *Engine
	Parser Parser
}

// NewPipeline creates a pipeline over engine and parser.
func NewPipeline(engine *Engine, parser Parser) *Pipeline {
	return &Pipeline{Engine: engine, Parser: parser}
}

// Process lints content and, when opts.Fix is set, applies fixes in memory
// until no rule proposes a change or the pass limit is reached. The returned
// violations always describe the final content. Parse failures are returned
// as errors.
func (p *Pipeline) Process(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.ResolvedConfig,
	opts FixOptions,
) (*Outcome, error) {
	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxFixPasses
	}

	out := &Outcome{Original: content}
	src := content
	bom := false

	for pass := 0; ; pass++ {
		doc, err := p.Parser.Parse(ctx, path, src)
		if err != nil {
			return nil, err
		}
		if pass == 0 {
			bom = doc.BOM
		}

		out.Result = p.Engine.LintDocument(ctx, doc, cfg)
		if !opts.Fix || out.Passes >= maxPasses {
			if opts.Fix && out.Passes >= maxPasses {
				logging.FromContext(ctx).Debug("fix pass limit reached",
					logging.FieldPath, path, logging.FieldPasses, out.Passes)
			}
			break
		}

		edits := collectEdits(out.Violations)
		if len(edits) == 0 {
			break
		}
		applied, err := fix.Apply(doc.Source, edits)
		if err != nil {
			return nil, fmt.Errorf("apply fixes to %s: %w", path, err)
		}
		if !applied.Changed() || bytes.Equal(applied.Content, doc.Source) {
			break
		}

		out.Passes++
		out.Applied += len(applied.Applied)
		out.Skipped += len(applied.Skipped)
		src = applied.Content
	}

	if out.Passes == 0 {
		return out, nil
	}

	if bom {
		out.Fixed = append(bytes.Clone(utf8BOM), src...)
	} else {
		out.Fixed = src
	}
	if opts.DryRun {
		label := opts.DiffPath
		if label == "" {
			label = path
		}
		out.Diff = fix.Diff(label, out.Original, out.Fixed)
	}
	return out, nil
}

// ProcessFile reads path, runs Process, and writes the fixed content back
// unless opts.DryRun is set. A file that changed on disk while it was being
// processed is left alone and reported through SkipReason.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	path string,
	cfg *config.ResolvedConfig,
	opts FixOptions,
) (*Outcome, error) {
	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	out, err := p.Process(ctx, path, content, cfg, opts)
	if err != nil {
		return nil, err
	}
	if !out.Changed() || opts.DryRun {
		return out, nil
	}

	if opts.Backup {
		created, err := fsutil.Backup(ctx, snap, content)
		if err != nil {
			return nil, err
		}
		out.BackupCreated = created
	}

	if err := fsutil.WriteIfUnchanged(ctx, snap, out.Fixed); err != nil {
		if errors.Is(err, fsutil.ErrModified) {
			out.SkipReason = "file modified during processing"
			logging.FromContext(ctx).Warn("not writing fixes", logging.FieldPath, path, logging.FieldReason, out.SkipReason)
			return out, nil
		}
		return nil, fmt.Errorf("write fixes: %w", err)
	}
	out.Written = true
	return out, nil
}

func collectEdits(violations []Violation) []fix.Edit {
	var edits []fix.Edit
	for i := range violations {
		if f := violations[i].Fix; f != nil {
			edits = append(edits, fix.Edit{Start: f.Span.Start, End: f.Span.End, Text: f.Replacement})
		}
	}
	return edits
}
