package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/downlint/internal/configloader"
	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/lint"
)

// migrateFlags holds the flags for the migrate command.
type migrateFlags struct {
	force  bool
	dryRun bool
	output string
}

func newMigrateCommand() *cobra.Command {
	flags := &migrateFlags{}

	cmd := &cobra.Command{
		Use:   "migrate [input]",
		Short: "Convert a markdownlint configuration to downlint format",
		Long: `Convert an existing markdownlint configuration file (.markdownlint.json,
.markdownlint.yaml, etc.) to a downlint project file.

If no input file is given, the current directory is searched for one.
JavaScript configuration files cannot be converted automatically.`,
		Example: `  downlint migrate                       # Auto-detect and convert
  downlint migrate .markdownlint.json    # Convert a specific file
  downlint migrate --dry-run             # Print the result instead of writing`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runMigrate(cmd, input, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing output file")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the converted configuration to stdout")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ConfigFileNames[0], "output file path")

	return cmd
}

func runMigrate(cmd *cobra.Command, input string, flags *migrateFlags) error {
	logger := logging.FromContext(cmd.Context())

	if input == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		input = configloader.FindMarkdownlintConfig(cwd)
		if input == "" {
			return errors.New("no markdownlint configuration file found in current directory")
		}
		logger.Info("found markdownlint config", logging.FieldPath, input)
	}

	result, err := configloader.ConvertMarkdownlintConfig(input, lint.DefaultRegistry.Defaults())
	if err != nil {
		return fmt.Errorf("convert configuration: %w", err)
	}
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	if flags.dryRun {
		if _, err := cmd.OutOrStdout().Write(result.Content); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if err := configloader.WriteConfig(flags.output, result.Content, flags.force); err != nil {
		return fmt.Errorf("%w; use --force to overwrite", err)
	}

	logger.Info("migration complete", logging.FieldPath, flags.output)
	if len(result.Warnings) > 0 {
		logger.Warn("review the warnings above and verify the migrated configuration")
	}

	return nil
}
