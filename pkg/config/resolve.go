package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// RuleSpec is the configuration-facing description of a registered rule.
type RuleSpec struct {
	Code        string
	Name        string
	Description string
	Aliases     []string
	Tags        []string
	Enabled     bool
	Severity    Severity
	Params      []Param
}

// Defaults is the built-in layer: the rule catalog with its defaults and the
// default lint settings.
type Defaults struct {
	Rules    []RuleSpec
	Settings Settings
}

// RuleOverride is a partial rule setting from the command line. Zero fields
// leave the lower layers untouched.
type RuleOverride struct {
	Enabled  *bool
	Severity Severity
	Params   map[string]any
}

// Overrides is the command line layer.
type Overrides struct {
	// Enable and Disable accept rule codes, aliases, or tags. Disable is
	// applied after Enable.
	Enable  []string
	Disable []string
	// Rules is keyed by rule code, alias, or tag.
	Rules map[string]RuleOverride
}

// RuleSettings is the resolved configuration of one rule.
type RuleSettings struct {
	Enabled  bool
	Severity Severity
	Params   map[string]any
}

// entry is one partial rule setting, already expanded to rule codes.
type entry struct {
	codes    []string
	enabled  *bool
	severity Severity
	params   map[string]any
}

type fileOverride struct {
	patterns []glob.Glob
	entries  []entry
}

func (o fileOverride) matches(path string) bool {
	rel := filepath.ToSlash(filepath.Clean(path))
	rel = strings.TrimPrefix(rel, "./")
	base := filepath.Base(rel)
	for _, g := range o.patterns {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// ResolvedConfig is the final layered configuration for a lint run. It is
// immutable after Resolve returns and safe for concurrent use.
type ResolvedConfig struct {
	// Settings are the run-wide lint settings.
	Settings Settings
	// Path is the project file the configuration was read from, if any.
	Path string

	catalog   *catalog
	rules     map[string]RuleSettings
	file      []entry
	overrides []fileOverride
	cli       []entry
}

// Resolve layers cli over projectText over defaults. projectText may be
// empty. Precedence, highest wins: command line, project file, built-in
// defaults. Rule parameters merge by key.
func Resolve(defaults Defaults, projectText []byte, cli Overrides) (*ResolvedConfig, error) {
	return ResolveFile(defaults, "", projectText, cli)
}

// ResolveFile is Resolve with the project file name recorded in errors.
func ResolveFile(defaults Defaults, path string, projectText []byte, cli Overrides) (*ResolvedConfig, error) {
	cat := newCatalog(defaults.Rules)

	proj, err := parseProject(path, projectText, cat, defaults.Settings)
	if err != nil {
		return nil, err
	}

	cliEntries, err := cli.entries(cat)
	if err != nil {
		return nil, err
	}

	if err := proj.settings.Validate(); err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}

	resolved := &ResolvedConfig{
		Settings:  proj.settings,
		Path:      path,
		catalog:   cat,
		file:      proj.entries,
		overrides: proj.overrides,
		cli:       cliEntries,
	}
	resolved.rules = cat.layer(resolved.file, resolved.cli)
	return resolved, nil
}

// WithSettings returns a copy of c with different lint settings.
func (c *ResolvedConfig) WithSettings(settings Settings) (*ResolvedConfig, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	clone := *c
	clone.Settings = settings
	return &clone, nil
}

// Rule returns the settings for a rule code.
func (c *ResolvedConfig) Rule(code string) (RuleSettings, bool) {
	rs, ok := c.rules[strings.ToUpper(code)]
	return rs, ok
}

// Enabled reports whether the rule with code is enabled.
func (c *ResolvedConfig) Enabled(code string) bool {
	rs, ok := c.Rule(code)
	return ok && rs.Enabled
}

// EnabledCodes returns the enabled rule codes in catalog order.
func (c *ResolvedConfig) EnabledCodes() []string {
	var codes []string
	for _, code := range c.catalog.order {
		if c.rules[code].Enabled {
			codes = append(codes, code)
		}
	}
	return codes
}

// ForPath returns the configuration with the project file's overrides for
// path applied. Command line settings still win over overrides. When no
// override matches, c itself is returned.
func (c *ResolvedConfig) ForPath(path string) *ResolvedConfig {
	var matched []entry
	for _, o := range c.overrides {
		if o.matches(path) {
			matched = append(matched, o.entries...)
		}
	}
	if len(matched) == 0 {
		return c
	}

	clone := *c
	clone.rules = c.catalog.layer(slices.Concat(c.file, matched), c.cli)
	return &clone
}

func (o Overrides) entries(cat *catalog) ([]entry, error) {
	var out []entry

	refs := slices.Sorted(maps.Keys(o.Rules))
	for _, ref := range refs {
		ov := o.Rules[ref]
		codes, isTag, ok := cat.lookup(ref)
		if !ok {
			return nil, &ConfigError{Key: ref, Err: ErrUnknownRule}
		}
		e := entry{codes: codes, enabled: ov.Enabled}
		if ov.Severity != "" {
			sev, err := ParseSeverity(string(ov.Severity))
			if err != nil {
				return nil, &ConfigError{Key: ref, Err: err}
			}
			e.severity = sev
		}
		if len(ov.Params) > 0 {
			if isTag {
				return nil, &ConfigError{Key: ref, Err: fmt.Errorf("%w: parameters cannot be set on a tag", ErrUnknownParam)}
			}
			params, err := cat.coerceParams(codes[0], ov.Params)
			if err != nil {
				return nil, &ConfigError{Key: ref, Err: err}
			}
			e.params = params
		}
		out = append(out, e)
	}

	toggle := func(refs []string, enabled bool) error {
		for _, ref := range refs {
			codes, _, ok := cat.lookup(ref)
			if !ok {
				return &ConfigError{Key: ref, Err: ErrUnknownRule}
			}
			out = append(out, entry{codes: codes, enabled: &enabled})
		}
		return nil
	}
	if err := toggle(o.Enable, true); err != nil {
		return nil, err
	}
	if err := toggle(o.Disable, false); err != nil {
		return nil, err
	}
	return out, nil
}

// catalog indexes rule specs by code, alias, and tag.
type catalog struct {
	order   []string
	specs   map[string]RuleSpec
	aliases map[string]string
	tags    map[string][]string
}

func newCatalog(specs []RuleSpec) *catalog {
	cat := &catalog{
		specs:   make(map[string]RuleSpec, len(specs)),
		aliases: make(map[string]string),
		tags:    make(map[string][]string),
	}
	for _, spec := range specs {
		code := strings.ToUpper(spec.Code)
		cat.order = append(cat.order, code)
		cat.specs[code] = spec
		if spec.Name != "" {
			cat.aliases[strings.ToLower(spec.Name)] = code
		}
		for _, alias := range spec.Aliases {
			cat.aliases[strings.ToLower(alias)] = code
		}
		for _, tag := range spec.Tags {
			tag = strings.ToLower(tag)
			cat.tags[tag] = append(cat.tags[tag], code)
		}
	}
	return cat
}

// lookup resolves a rule code, alias, or tag to rule codes.
func (c *catalog) lookup(ref string) ([]string, bool, bool) {
	if _, ok := c.specs[strings.ToUpper(ref)]; ok {
		return []string{strings.ToUpper(ref)}, false, true
	}
	key := strings.ToLower(ref)
	if code, ok := c.aliases[key]; ok {
		return []string{code}, false, true
	}
	if codes, ok := c.tags[key]; ok {
		return slices.Clone(codes), true, true
	}
	return nil, false, false
}

func (c *catalog) coerceParams(code string, raw map[string]any) (map[string]any, error) {
	spec := c.specs[code]
	out := make(map[string]any, len(raw))
	for name, value := range raw {
		param, ok := findParam(spec.Params, name)
		if !ok {
			return nil, fmt.Errorf("%w %q for %s", ErrUnknownParam, name, code)
		}
		v, err := param.Coerce(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", param.Name, err)
		}
		out[param.Name] = v
	}
	return out, nil
}

// layer builds the rule settings from the catalog defaults and the given
// entry layers, applied in order.
func (c *catalog) layer(layers ...[]entry) map[string]RuleSettings {
	rules := make(map[string]RuleSettings, len(c.order))
	for _, code := range c.order {
		spec := c.specs[code]
		sev := spec.Severity
		if sev == "" {
			sev = DefaultSeverity
		}
		params := make(map[string]any, len(spec.Params))
		for _, p := range spec.Params {
			params[p.Name] = cloneValue(p.Default)
		}
		rules[code] = RuleSettings{Enabled: spec.Enabled, Severity: sev, Params: params}
	}

	for _, entries := range layers {
		for _, e := range entries {
			for _, code := range e.codes {
				rs := rules[code]
				if e.enabled != nil {
					rs.Enabled = *e.enabled
				}
				if e.severity != "" {
					rs.Severity = e.severity
				}
				for name, v := range e.params {
					rs.Params[name] = cloneValue(v)
				}
				rules[code] = rs
			}
		}
	}
	return rules
}
