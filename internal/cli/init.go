package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/downlint/internal/configloader"
	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	rules  []string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new downlint configuration file",
		Long: `Create a new .downlint.yml configuration file in the current directory
with sensible defaults. The file can be customized to enable or disable rules,
change severities, and set rule parameters.`,
		Example: `  downlint init                      # Create a minimal .downlint.yml
  downlint init --full               # Document every rule and parameter
  downlint init --full --rule MD013  # Document selected rules only
  downlint init -o docs/.downlint.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "document every rule with its parameters")
	cmd.Flags().StringSliceVar(&flags.rules, "rule", nil, "limit --full to these rule codes or names")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ConfigFileNames[0], "output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.FromContext(cmd.Context())

	var include []string
	for _, ref := range flags.rules {
		rule, ok := lint.DefaultRegistry.Resolve(ref)
		if !ok {
			return fmt.Errorf("unknown rule %q", ref)
		}
		include = append(include, rule.Code())
	}

	content, err := config.GenerateTemplate(lint.DefaultRegistry.Defaults(), config.TemplateOptions{
		Full:         flags.full,
		IncludeRules: include,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(flags.output, content, flags.force); err != nil {
		return fmt.Errorf("%w; use --force to overwrite", err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'downlint rules' to see all available rules")

	return nil
}
