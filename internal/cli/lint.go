package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/downlint/internal/configloader"
	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/internal/ui/pretty"
	"github.com/yaklabco/downlint/pkg/analysis"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	_ "github.com/yaklabco/downlint/pkg/lint/rules" // Register built-in rules
	goldmarkparser "github.com/yaklabco/downlint/pkg/parser/goldmark"
	"github.com/yaklabco/downlint/pkg/reporter"
	"github.com/yaklabco/downlint/pkg/runner"
)

type lintFlags struct {
	format        string
	fix           bool
	diff          bool
	backup        bool
	quiet         bool
	failOn        string
	enable        []string
	disable       []string
	jobs          int
	maxViolations int
	exclude       []string
	noGitignore   bool
	noIgnore      bool
	watch         bool
	statistics    bool
	sort          string
	ruleTimeout   time.Duration
	flavor        string
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:     "check [paths...]",
		Short:   "Lint Markdown files",
		Long:    lintLongDescription,
		Example: lintExamples,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, info, flags)
		},
	}

	addLintFlags(cmd, flags)

	return cmd
}

const lintLongDescription = `Lint Markdown files for style and syntax issues.

Paths may be files, directories, or glob patterns such as "docs/**/*.md".
With no paths the current directory is checked. Explicitly named files are
always checked, even when an ignore file lists them.`

const lintExamples = `  downlint                          # Check the current directory
  downlint check docs/              # Check one directory
  downlint check --fix              # Fix what can be fixed, report the rest
  downlint check --diff             # Show fixes as a diff without writing
  downlint check --format json      # Machine-readable output
  downlint check --disable MD013    # Turn a rule off for this run
  downlint check --watch docs/      # Re-check on every change`

func addLintFlags(cmd *cobra.Command, flags *lintFlags) {
	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatConcise),
		"output format: concise, text, json, mdl, markdownlint, sarif")
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "automatically fix issues")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show fixes as a diff without writing files")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a .downlint.bak copy of each fixed file")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "print violations only, without the summary")
	cmd.Flags().StringVar(&flags.failOn, "fail-on", string(config.SeverityWarning),
		"lowest severity that fails the run: error, warning, info")
	cmd.Flags().StringSliceVar(&flags.enable, "enable", nil, "rule codes, aliases, or tags to enable")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "rule codes, aliases, or tags to disable")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&flags.maxViolations, "max-violations", 0,
		"stop checking new files after this many violations (0 = no limit)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().BoolVar(&flags.noGitignore, "no-gitignore", false, "do not honor .gitignore files")
	cmd.Flags().BoolVar(&flags.noIgnore, "no-ignore", false, "do not honor .downlintignore files")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-check when Markdown files change")
	cmd.Flags().BoolVar(&flags.statistics, "statistics", false, "print violation counts per rule")
	cmd.Flags().StringVar(&flags.sort, "sort", string(analysis.SortByCount),
		"order of --statistics: count, alpha, severity")
	cmd.Flags().DurationVar(&flags.ruleTimeout, "rule-timeout", 0,
		"abandon a rule that runs longer than this on one file (0 = no limit)")
	cmd.Flags().StringVar(&flags.flavor, "flavor", string(config.FlavorGFM), "Markdown flavor: commonmark, gfm")
}

// lintRun is one configured lint invocation.
type lintRun struct {
	cmd     *cobra.Command
	info    BuildInfo
	flags   *lintFlags
	workDir string
	cfg     *config.ResolvedConfig
	runner  *runner.Runner
	styles  *pretty.Styles
	sortBy  analysis.SortField
}

func runLint(cmd *cobra.Command, args []string, info BuildInfo, flags *lintFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if _, err := reporter.ParseFormat(flags.format); err != nil {
		return err
	}
	sortBy, err := analysis.ParseSortField(flags.sort)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Defaults:     lint.DefaultRegistry.Defaults(),
		Overrides:    config.Overrides{Enable: flags.enable, Disable: flags.disable},
		Flags:        cmd.Flags(),
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}

	cfg := loaded.Config
	logger.Debug("configuration loaded",
		logging.FieldConfig, loaded.Path,
		logging.FieldFormat, cfg.Settings.OutputFormat,
		logging.FieldFlavor, cfg.Settings.Flavor,
		logging.FieldFailOn, cfg.Settings.FailOn,
		logging.FieldJobs, cfg.Settings.Jobs,
		logging.FieldFix, flags.fix,
	)

	engine := lint.NewEngine(lint.DefaultRegistry, lint.Options{
		Parallel:    true,
		RuleTimeout: cfg.Settings.RuleTimeout,
	})
	pipeline := lint.NewPipeline(engine, goldmarkparser.New(string(cfg.Settings.Flavor)))

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = pretty.ColorAuto
	}

	run := &lintRun{
		cmd:     cmd,
		info:    info,
		flags:   flags,
		workDir: workDir,
		cfg:     cfg,
		runner:  runner.New(pipeline),
		styles:  pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout())),
		sortBy:  sortBy,
	}

	if flags.watch {
		return run.watch(ctx, args)
	}
	return run.once(ctx, args)
}

func (r *lintRun) options(paths []string) runner.Options {
	opts := runner.OptionsFromSettings(r.cfg)
	opts.Paths = paths
	opts.WorkingDir = r.workDir
	opts.Fix = lint.FixOptions{
		Fix:    r.flags.fix || r.flags.diff,
		DryRun: r.flags.diff,
		Backup: r.flags.backup,
	}
	return opts
}

// once runs a single lint pass and renders it. The returned error carries
// the exit status.
func (r *lintRun) once(ctx context.Context, paths []string) error {
	logger := logging.FromContext(ctx)
	logger.Debug("starting lint run",
		logging.FieldPaths, paths,
		logging.FieldWorkingDir, r.workDir,
	)

	result, err := r.runner.Run(ctx, r.options(paths))
	if err != nil {
		return fmt.Errorf("lint run failed: %w", err)
	}
	if result.Truncated {
		logger.Warn("stopped early: violation limit reached",
			logging.FieldViolations, result.Stats.Violations,
			logging.FieldFiles, result.Stats.FilesNotDispatched)
	}

	settings := r.cfg.Settings
	report := reporter.Aggregate(result.LintResults(), settings.FailOn)
	logger.Debug("lint run complete",
		logging.FieldFiles, report.Files,
		logging.FieldViolations, len(report.Violations),
		logging.FieldFixed, result.Stats.FilesModified,
		logging.FieldFailed, len(report.Failures),
	)

	out := r.cmd.OutOrStdout()
	if err := r.render(out, report, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if len(report.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, len(report.Failures), report.Files)
	}
	if !report.ExitOK {
		return ErrLintIssuesFound
	}
	return nil
}

func (r *lintRun) render(out io.Writer, report *reporter.Report, result *runner.Result) error {
	settings := r.cfg.Settings
	textual := settings.OutputFormat != config.FormatJSON && settings.OutputFormat != config.FormatSARIF

	if r.flags.diff && textual {
		for _, diff := range result.Diffs() {
			if _, err := io.WriteString(out, r.styles.FormatDiff(diff)); err != nil {
				return err
			}
		}
	}

	if r.flags.statistics {
		return r.renderStatistics(out, report, textual)
	}

	return reporter.Render(out, report, settings.OutputFormat, reporter.Options{
		Styles:           r.styles,
		Quiet:            settings.Quiet,
		WorkingDir:       r.workDir,
		Version:          r.info.Version,
		RuleDescriptions: ruleDescriptions(),
		Fixed:            result.Stats.FilesModified,
	})
}

// renderStatistics prints one line per rule instead of every violation.
func (r *lintRun) renderStatistics(out io.Writer, report *reporter.Report, textual bool) error {
	opts := analysis.DefaultOptions()
	opts.SortBy = r.sortBy
	summary := analysis.Analyze(report, opts)
	if !textual {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encode statistics: %w", err)
		}
		return nil
	}

	rows := make([]pretty.StatRow, 0, len(summary.ByRule))
	for _, rule := range summary.ByRule {
		rows = append(rows, pretty.StatRow{
			Count:   rule.Violations,
			Code:    rule.RuleCode,
			Name:    rule.RuleName,
			Fixable: rule.Fixable,
		})
	}
	r.styles.RenderStatisticsTable(out, rows)
	if !r.cfg.Settings.Quiet {
		if _, err := io.WriteString(out, r.styles.FormatSummary(report.Tally())); err != nil {
			return err
		}
	}
	return nil
}

func ruleDescriptions() map[string]string {
	rules := lint.DefaultRegistry.Rules()
	descriptions := make(map[string]string, len(rules))
	for _, rule := range rules {
		descriptions[rule.Code()] = rule.Description()
	}
	return descriptions
}
