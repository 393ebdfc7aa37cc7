// Package cli provides the Cobra command structure for downlint.
package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/internal/ui/pretty"
)

// EnvDebug enables debug logging like --debug.
const EnvDebug = "DOWNLINT_DEBUG"

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
}

// NewRootCommand creates the root downlint command with all subcommands.
// The root command itself lints, like "downlint check".
func NewRootCommand(info BuildInfo) *cobra.Command {
	global := &globalFlags{}
	flags := &lintFlags{}

	rootCmd := &cobra.Command{
		Use:   "downlint [paths...]",
		Short: "A fast, rule-based Markdown linter",
		Long: `downlint checks Markdown files against a catalog of style and syntax
rules and can fix many of them in place.

With no arguments it checks every Markdown file under the current
directory, honoring .gitignore and .downlintignore. Rules, severities, and
run settings come from .downlint.yml, DOWNLINT_* environment variables, and
flags, in increasing order of precedence.`,
		Example: lintExamples,
		Version: info.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd, global)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, info, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("downlint {{.Version}}\n")

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&global.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&global.color, "color", pretty.ColorAuto,
		"colorize output: auto, always, never")

	addLintFlags(rootCmd, flags)

	// Add subcommands.
	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newLSPCommand(info))
	rootCmd.AddCommand(newVersionCommand(info))

	applyHelp(rootCmd)

	return rootCmd
}

// setupLogging installs the command logger, writing to the command's error
// stream, into the command context.
func setupLogging(cmd *cobra.Command, global *globalFlags) {
	level := "info"
	if global.debug || envBool(EnvDebug) {
		level = "debug"
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}
