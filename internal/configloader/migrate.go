package configloader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/downlint/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

// ErrConfigExists is returned when a migration would overwrite a project file.
var ErrConfigExists = errors.New("config file already exists")

// MigrationResult contains the result of converting a markdownlint config.
type MigrationResult struct {
	// Content is the converted project file, ready to write.
	Content []byte

	// Warnings contains non-fatal issues encountered during conversion.
	Warnings []string

	// SourcePath is the path to the original markdownlint config.
	SourcePath string
}

// ConvertMarkdownlintConfig converts a markdownlint config file into a
// downlint project file. Rule names and tags are translated to rule codes;
// options without a downlint parameter are dropped with a warning. The
// output is checked with config.Resolve before it is returned.
func ConvertMarkdownlintConfig(path string, defaults config.Defaults) (*MigrationResult, error) {
	if IsJavaScriptConfig(path) {
		return nil, fmt.Errorf("cannot convert JavaScript config file %q; run 'downlint init' instead", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var raw map[string]any
	if IsJSONConfig(path) {
		if err := parseJSONC(content, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	conv := &converter{
		result: &MigrationResult{SourcePath: path},
		specs:  make(map[string]config.RuleSpec, len(defaults.Rules)),
		rules:  make(map[string]any),
	}
	for _, spec := range defaults.Rules {
		conv.specs[spec.Code] = spec
	}

	allDisabled := conv.processSpecialKeys(raw)

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	// Tags first, so a rule named on its own wins over its tag.
	var ruleKeys []string
	for _, key := range keys {
		if NormalizeRuleID(key) != "" {
			ruleKeys = append(ruleKeys, key)
			continue
		}
		conv.processTag(key, raw[key])
	}
	for _, key := range ruleKeys {
		conv.processRule(key, raw[key])
	}

	if allDisabled {
		for _, spec := range defaults.Rules {
			if _, ok := conv.rules[spec.Code]; !ok {
				conv.rules[spec.Code] = false
			}
		}
	}

	body, err := yaml.Marshal(map[string]any{"rules": conv.rules})
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(GenerateMigrationHeader(path))
	buf.Write(body)
	conv.result.Content = buf.Bytes()

	if _, err := config.Resolve(defaults, conv.result.Content, config.Overrides{}); err != nil {
		return nil, fmt.Errorf("converted config is invalid: %w", err)
	}
	return conv.result, nil
}

type converter struct {
	result *MigrationResult
	specs  map[string]config.RuleSpec
	rules  map[string]any
}

func (c *converter) warnf(format string, args ...any) {
	c.result.Warnings = append(c.result.Warnings, fmt.Sprintf(format, args...))
}

// processSpecialKeys removes markdownlint's non-rule keys and reports
// whether "default: false" disabled every rule not named.
func (c *converter) processSpecialKeys(raw map[string]any) bool {
	allDisabled := false
	if defaultVal, ok := raw["default"].(bool); ok {
		allDisabled = !defaultVal
		delete(raw, "default")
	}

	if extends, ok := raw["extends"].(string); ok {
		c.warnf("'extends: %q' is not supported; merge that file by hand", extends)
		delete(raw, "extends")
	}

	delete(raw, "$schema")
	return allDisabled
}

func (c *converter) processTag(key string, value any) {
	codes := TagRules(key)
	if codes == nil {
		c.warnf("unknown key %q; skipping", key)
		return
	}
	enabled := valueToBool(value)
	for _, code := range codes {
		if _, ok := c.specs[code]; ok {
			c.rules[code] = enabled
		}
	}
}

func (c *converter) processRule(key string, value any) {
	code := NormalizeRuleID(key)
	spec, ok := c.specs[code]
	if !ok {
		c.warnf("rule %q is not implemented by downlint; skipping", key)
		return
	}
	c.rules[code] = c.convertRuleValue(spec, value)
}

// convertRuleValue converts a markdownlint rule value to a rules entry:
// a bool, or a mapping of known parameters.
func (c *converter) convertRuleValue(spec config.RuleSpec, value any) any {
	options, ok := value.(map[string]any)
	if !ok {
		return valueToBool(value)
	}

	params := make(map[string]any)
	for name, optVal := range options {
		if !hasParam(spec, name) {
			c.warnf("%s: option %q has no downlint equivalent; skipping", spec.Code, name)
			continue
		}
		params[name] = optVal
	}
	if len(params) == 0 {
		return true
	}
	return params
}

func hasParam(spec config.RuleSpec, name string) bool {
	for _, p := range spec.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// valueToBool converts various value types to a boolean.
func valueToBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case nil:
		return false
	default:
		return true
	}
}

// parseJSONC parses JSON with comments (JSONC format).
// It strips comments before parsing.
func parseJSONC(content []byte, target any) error {
	// Many .jsonc files are valid JSON
	if err := json.Unmarshal(content, target); err == nil {
		return nil
	}

	stripped := stripJSONComments(content)
	if err := json.Unmarshal(stripped, target); err != nil {
		return fmt.Errorf("unmarshal stripped JSON: %w", err)
	}
	return nil
}

// stripJSONComments removes JavaScript-style comments from JSON content.
func stripJSONComments(content []byte) []byte {
	var result []byte
	inString := false
	inSingleComment := false
	inMultiComment := false

	for idx := 0; idx < len(content); idx++ {
		char := content[idx]

		if inSingleComment {
			if char == '\n' {
				inSingleComment = false
				result = append(result, char)
			}
			continue
		}

		if inMultiComment {
			if char == '*' && idx+1 < len(content) && content[idx+1] == '/' {
				inMultiComment = false
				idx++
			}
			continue
		}

		if inString {
			result = append(result, char)
			if char == '\\' && idx+1 < len(content) {
				idx++
				result = append(result, content[idx])
			} else if char == '"' {
				inString = false
			}
			continue
		}

		if char == '"' {
			inString = true
			result = append(result, char)
			continue
		}

		if char == '/' && idx+1 < len(content) {
			switch content[idx+1] {
			case '/':
				inSingleComment = true
				idx++
				continue
			case '*':
				inMultiComment = true
				idx++
				continue
			}
		}

		result = append(result, char)
	}

	return result
}

// GenerateMigrationHeader returns a header comment for migrated configs.
func GenerateMigrationHeader(sourcePath string) string {
	return fmt.Sprintf("# downlint configuration\n# Migrated from: %s\n\n", filepath.Base(sourcePath))
}

// WriteConfig writes content to path. An existing file is only replaced
// when force is set.
func WriteConfig(path string, content []byte, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.WriteFile(path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
