package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/downlint/internal/configloader"
	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/internal/ui/pretty"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
)

type rulesFlags struct {
	json    bool
	tag     string
	enabled bool
}

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Aliases     []string       `json:"aliases,omitempty"`
	Tags        []string       `json:"tags"`
	Description string         `json:"description"`
	Enabled     bool           `json:"enabled"`
	Severity    string         `json:"severity"`
	Fixable     bool           `json:"fixable"`
	Params      map[string]any `json:"params,omitempty"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available lint rules",
		Long: `List all available lint rules with their codes, names, tags, and whether
they support auto-fixing. The enabled column reflects the project
configuration when one is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "output as JSON")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "only list rules with this tag")
	cmd.Flags().BoolVar(&flags.enabled, "enabled", false, "only list enabled rules")

	return cmd
}

func runRules(cmd *cobra.Command, flags *rulesFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		ExplicitPath: configPath,
		Defaults:     lint.DefaultRegistry.Defaults(),
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}

	infos := collectRules(lint.DefaultRegistry.Rules(), loaded.Config, flags)

	if flags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return fmt.Errorf("encoding rules: %w", err)
		}
		return nil
	}

	if len(infos) == 0 {
		logger.Info("no rules match")
		return nil
	}

	rows := make([]pretty.RuleRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, pretty.RuleRow{
			Code:        info.Code,
			Name:        info.Name,
			Tags:        info.Tags,
			Enabled:     info.Enabled,
			Fixable:     info.Fixable,
			Description: info.Description,
		})
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = pretty.ColorAuto
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))
	styles.RenderRulesTable(cmd.OutOrStdout(), rows, terminalWidth())
	return nil
}

func collectRules(rules []lint.Rule, cfg *config.ResolvedConfig, flags *rulesFlags) []ruleInfo {
	infos := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		if flags.tag != "" && !slices.Contains(rule.Tags(), strings.ToLower(flags.tag)) {
			continue
		}

		settings, ok := cfg.Rule(rule.Code())
		if !ok {
			settings = config.RuleSettings{Enabled: rule.DefaultEnabled(), Severity: rule.DefaultSeverity()}
		}
		if flags.enabled && !settings.Enabled {
			continue
		}

		infos = append(infos, ruleInfo{
			Code:        rule.Code(),
			Name:        rule.Name(),
			Aliases:     rule.Aliases(),
			Tags:        rule.Tags(),
			Description: rule.Description(),
			Enabled:     settings.Enabled,
			Severity:    string(settings.Severity),
			Fixable:     rule.CanFix(),
			Params:      settings.Params,
		})
	}
	return infos
}

// terminalWidth returns stdout's width, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
