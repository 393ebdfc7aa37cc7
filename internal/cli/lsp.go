package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // Register the commonlog backend

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/internal/lsp"
)

type lspFlags struct {
	logFile string
	verbose int
}

func newLSPCommand(info BuildInfo) *cobra.Command {
	flags := &lspFlags{}

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdio",
		Long: `Run a Language Server Protocol server on stdin and stdout. Editors get
diagnostics as documents change, quick fixes for fixable violations, and
document formatting that applies every fix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, info, flags)
		},
	}

	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "write server logs to this file instead of stderr")
	cmd.Flags().CountVarP(&flags.verbose, "verbose", "v", "increase server log verbosity")

	return cmd
}

func runLSP(cmd *cobra.Command, info BuildInfo, flags *lspFlags) error {
	var logFile *string
	if flags.logFile != "" {
		logFile = &flags.logFile
	}
	commonlog.Configure(flags.verbose, logFile)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	server, err := lsp.New(cmd.Context(), lsp.Options{
		Version:    info.Version,
		ConfigPath: configPath,
	})
	if err != nil {
		return fmt.Errorf("start language server: %w", err)
	}

	logging.FromContext(cmd.Context()).Debug("language server starting", logging.FieldVersion, info.Version)
	if err := server.RunStdio(); err != nil {
		return fmt.Errorf("language server: %w", err)
	}
	return nil
}
