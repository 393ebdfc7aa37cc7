// Package configloader finds and loads the downlint project file and layers
// lint settings from defaults, the file, the environment, and command line
// flags. Rule sections are resolved by pkg/config.
package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/config"
)

// EnvPrefix is the prefix for downlint environment variables.
const EnvPrefix = "DOWNLINT_"

// EnvConfig names the environment variable holding a project file path.
const EnvConfig = EnvPrefix + "CONFIG"

// lintSection is the project file section holding run-wide settings.
const lintSection = "lint"

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	// If set, project config discovery is skipped.
	ExplicitPath string

	// Defaults is the built-in layer, normally lint.Registry.Defaults().
	Defaults config.Defaults

	// Overrides are the rule selections from the command line.
	Overrides config.Overrides

	// Flags are the parsed command line flags. Only flags the user set are
	// applied.
	Flags *pflag.FlagSet

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final layered configuration.
	Config *config.ResolvedConfig

	// Path is the project file that was loaded, or empty.
	Path string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration.
// Precedence for lint settings (highest to lowest):
//  1. CLI flags (opts.Flags)
//  2. Environment variables (DOWNLINT_*)
//  3. Project file (explicit, else .downlint.yml upward search)
//  4. Defaults
//
// Rule settings follow command line rule selections, then the project file,
// then rule defaults.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	logger := logging.FromContext(ctx)
	result := &LoadResult{}

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	path, err := projectPath(ctx, workDir, opts)
	if err != nil {
		return nil, err
	}
	result.Path = path

	var text []byte
	if path != "" {
		text, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		logger.Debug("loaded project file", logging.FieldConfig, path)
	} else if mdl := FindMarkdownlintConfig(workDir); mdl != "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("found %s but no .downlint.yml; run 'downlint migrate' to convert", filepath.Base(mdl)))
	}

	// The rule sections and the file's lint section are validated here,
	// with line numbers.
	resolved, err := config.ResolveFile(opts.Defaults, path, text, opts.Overrides)
	if err != nil {
		return nil, err
	}

	settings, err := layerSettings(opts, path)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	resolved, err = resolved.WithSettings(settings)
	if err != nil {
		return nil, err
	}
	result.Config = resolved
	return result, nil
}

// projectPath returns the explicit path, the path from the environment, or
// the discovered project file.
func projectPath(ctx context.Context, workDir string, opts LoadOptions) (string, error) {
	explicit := opts.ExplicitPath
	if explicit == "" && !opts.IgnoreEnv {
		explicit = os.Getenv(EnvConfig)
	}
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(workDir, explicit)
		}
		if !fileExists(explicit) {
			return "", fmt.Errorf("config file %s: %w", explicit, os.ErrNotExist)
		}
		return explicit, nil
	}
	return FindProjectConfig(ctx, workDir)
}

// layerSettings loads lint settings with koanf: defaults, then the file's
// lint section, then the environment, then flags.
func layerSettings(opts LoadOptions, path string) (config.Settings, error) {
	var settings config.Settings
	k := koanf.New(".")

	defaults := opts.Defaults.Settings
	if defaults.OutputFormat == "" {
		defaults = config.DefaultSettings()
	}
	if err := k.Load(confmap.Provider(defaults.Map(), "."), nil); err != nil {
		return settings, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		fk := koanf.New(".")
		if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
			return settings, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := k.Merge(fk.Cut(lintSection)); err != nil {
			return settings, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	if !opts.IgnoreEnv {
		// DOWNLINT_FAIL_ON -> fail-on
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return settings, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKey(opts.Flags)), nil); err != nil {
			return settings, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &settings); err != nil {
		return settings, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func envKey(name string) string {
	key := strings.TrimPrefix(name, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// flagSettings maps flag names to setting keys.
//
//nolint:gochecknoglobals // Read-only lookup table.
var flagSettings = map[string]string{
	"format":         "output-format",
	"quiet":          "quiet",
	"fail-on":        "fail-on",
	"jobs":           "jobs",
	"max-violations": "max-violations",
	"exclude":        "exclude",
	"rule-timeout":   "rule-timeout",
	"flavor":         "flavor",
}

// flagKey returns the posflag callback: only flags the user set are
// applied, and negated flags are inverted onto their setting.
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		switch f.Name {
		case "no-gitignore":
			v, _ := flags.GetBool(f.Name)
			return "respect-gitignore", !v
		case "no-ignore":
			v, _ := flags.GetBool(f.Name)
			return "respect-ignore", !v
		}
		if key, ok := flagSettings[f.Name]; ok {
			return key, posflag.FlagVal(flags, f)
		}
		return "", nil
	}
}
