package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// project is the decoded project file.
type project struct {
	settings  Settings
	entries   []entry
	overrides []fileOverride
}

// parser walks a project file's YAML node tree so that every error can
// carry the line of the offending key.
type parser struct {
	path string
	cat  *catalog
}

func (p *parser) errorf(node *yaml.Node, key string, err error) *ConfigError {
	line := 0
	if node != nil {
		line = node.Line
	}
	return &ConfigError{Path: p.path, Line: line, Key: key, Err: err}
}

func parseProject(path string, text []byte, cat *catalog, base Settings) (*project, error) {
	proj := &project{settings: base}
	if strings.TrimSpace(string(text)) == "" {
		return proj, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("%w: %w", ErrSyntax, err)}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return proj, nil
	}

	p := &parser{path: path, cat: cat}
	doc := root.Content[0]
	if isNull(doc) {
		return proj, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, p.errorf(doc, "", fmt.Errorf("%w: top level must be a mapping", ErrSyntax))
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		var err error
		switch key.Value {
		case "lint":
			err = p.parseLint(value, &proj.settings)
		case "rules":
			var entries []entry
			entries, err = p.parseRules(value)
			proj.entries = append(proj.entries, entries...)
		case "overrides":
			proj.overrides, err = p.parseOverrides(value)
		default:
			err = p.errorf(key, key.Value, ErrUnknownKey)
		}
		if err != nil {
			return nil, err
		}
	}
	return proj, nil
}

func (p *parser) parseLint(node *yaml.Node, settings *Settings) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return p.errorf(node, "lint", fmt.Errorf("%w: expected a mapping", ErrInvalidValue))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value

		var err error
		switch name {
		case "output-format":
			var s string
			if err = value.Decode(&s); err == nil {
				settings.OutputFormat = OutputFormat(strings.ToLower(s))
				if !settings.OutputFormat.IsValid() {
					err = fmt.Errorf("%w: %q", ErrInvalidValue, s)
				}
			}
		case "quiet":
			err = decodeBool(value, &settings.Quiet)
		case "respect-ignore":
			err = decodeBool(value, &settings.RespectIgnore)
		case "respect-gitignore":
			err = decodeBool(value, &settings.RespectGitignore)
		case "exclude":
			err = value.Decode(&settings.Exclude)
		case "fail-on":
			var s string
			if err = value.Decode(&s); err == nil {
				settings.FailOn, err = ParseSeverity(s)
			}
		case "jobs":
			err = value.Decode(&settings.Jobs)
		case "max-violations":
			err = value.Decode(&settings.MaxViolations)
		case "rule-timeout":
			var s string
			if err = value.Decode(&s); err == nil {
				settings.RuleTimeout, err = time.ParseDuration(s)
			}
		case "flavor":
			var s string
			if err = value.Decode(&s); err == nil {
				settings.Flavor = Flavor(strings.ToLower(s))
				if !settings.Flavor.IsValid() {
					err = fmt.Errorf("%w: %q", ErrInvalidValue, s)
				}
			}
		default:
			return p.errorf(key, "lint."+name, ErrUnknownKey)
		}
		if err != nil {
			return p.errorf(value, "lint."+name, wrapInvalid(err))
		}
	}
	return nil
}

func (p *parser) parseRules(node *yaml.Node) ([]entry, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, p.errorf(node, "rules", fmt.Errorf("%w: expected a mapping", ErrInvalidValue))
	}

	entries := make([]entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		e, err := p.parseRule(key, value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parseRule decodes one rule entry: a bool, null (enable with defaults), or
// a mapping of enabled, severity, and parameters.
func (p *parser) parseRule(key, value *yaml.Node) (entry, error) {
	ref := key.Value
	codes, isTag, ok := p.cat.lookup(ref)
	if !ok {
		return entry{}, p.errorf(key, ref, ErrUnknownRule)
	}
	e := entry{codes: codes}

	switch {
	case isNull(value):
		enabled := true
		e.enabled = &enabled
		return e, nil
	case value.Kind == yaml.ScalarNode:
		var enabled bool
		if err := decodeBool(value, &enabled); err != nil {
			return entry{}, p.errorf(value, ref, wrapInvalid(err))
		}
		e.enabled = &enabled
		return e, nil
	case value.Kind != yaml.MappingNode:
		return entry{}, p.errorf(value, ref, fmt.Errorf("%w: expected true, false, or a mapping", ErrInvalidValue))
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		switch k.Value {
		case "enabled":
			var enabled bool
			if err := decodeBool(v, &enabled); err != nil {
				return entry{}, p.errorf(v, ref+".enabled", wrapInvalid(err))
			}
			e.enabled = &enabled
		case "severity":
			var s string
			if err := v.Decode(&s); err != nil {
				return entry{}, p.errorf(v, ref+".severity", wrapInvalid(err))
			}
			sev, err := ParseSeverity(s)
			if err != nil {
				return entry{}, p.errorf(v, ref+".severity", err)
			}
			e.severity = sev
		default:
			if isTag {
				return entry{}, p.errorf(k, ref+"."+k.Value,
					fmt.Errorf("%w: parameters cannot be set on a tag", ErrUnknownParam))
			}
			param, ok := findParam(p.cat.specs[codes[0]].Params, k.Value)
			if !ok {
				return entry{}, p.errorf(k, ref+"."+k.Value, ErrUnknownParam)
			}
			var raw any
			if err := v.Decode(&raw); err != nil {
				return entry{}, p.errorf(v, ref+"."+k.Value, wrapInvalid(err))
			}
			coerced, err := param.Coerce(raw)
			if err != nil {
				return entry{}, p.errorf(v, ref+"."+k.Value, err)
			}
			if e.params == nil {
				e.params = make(map[string]any)
			}
			e.params[param.Name] = coerced
		}
	}
	return e, nil
}

func (p *parser) parseOverrides(node *yaml.Node) ([]fileOverride, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, p.errorf(node, "overrides", fmt.Errorf("%w: expected a list", ErrInvalidValue))
	}

	overrides := make([]fileOverride, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, p.errorf(item, "overrides", fmt.Errorf("%w: expected a mapping", ErrInvalidValue))
		}

		var o fileOverride
		var files []string
		for i := 0; i+1 < len(item.Content); i += 2 {
			k, v := item.Content[i], item.Content[i+1]
			switch k.Value {
			case "files":
				if err := v.Decode(&files); err != nil {
					return nil, p.errorf(v, "overrides.files", wrapInvalid(err))
				}
			case "rules":
				entries, err := p.parseRules(v)
				if err != nil {
					return nil, err
				}
				o.entries = entries
			default:
				return nil, p.errorf(k, "overrides."+k.Value, ErrUnknownKey)
			}
		}
		if len(files) == 0 {
			return nil, p.errorf(item, "overrides.files", fmt.Errorf("%w: at least one pattern is required", ErrInvalidValue))
		}
		for _, pattern := range files {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return nil, p.errorf(item, "overrides.files", fmt.Errorf("%w: pattern %q: %w", ErrInvalidValue, pattern, err))
			}
			o.patterns = append(o.patterns, g)
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// decodeBool accepts only plain true or false.
func decodeBool(node *yaml.Node, out *bool) error {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!bool" {
		return fmt.Errorf("expected true or false, got %q", node.Value)
	}
	return node.Decode(out)
}

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidValue, err)
}
