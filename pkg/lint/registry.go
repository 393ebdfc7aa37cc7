package lint

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/yaklabco/downlint/pkg/config"
)

// Registry holds lint rules in registration order, which is also the order
// the engine runs them in.
type Registry struct {
	mu      sync.RWMutex
	rules   []Rule
	byCode  map[string]Rule
	byAlias map[string]Rule
	byTag   map[string][]Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		byCode:  make(map[string]Rule),
		byAlias: make(map[string]Rule),
		byTag:   make(map[string][]Rule),
	}
}

// Register adds a rule. It fails if the code or any alias is taken.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := strings.ToUpper(rule.Code())
	if _, ok := r.byCode[code]; ok {
		return fmt.Errorf("%w: code %s", ErrDuplicateRule, code)
	}

	names := ruleNames(rule)
	for _, name := range names {
		if other, ok := r.byAlias[name]; ok {
			return fmt.Errorf("%w: alias %q already used by %s", ErrDuplicateRule, name, other.Code())
		}
	}

	r.rules = append(r.rules, rule)
	r.byCode[code] = rule
	for _, name := range names {
		r.byAlias[name] = rule
	}
	for _, tag := range rule.Tags() {
		tag = strings.ToLower(tag)
		r.byTag[tag] = append(r.byTag[tag], rule)
	}
	return nil
}

// MustRegister is Register for init-time registration; it panics on error.
func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
}

func ruleNames(rule Rule) []string {
	var names []string
	if rule.Name() != "" {
		names = append(names, strings.ToLower(rule.Name()))
	}
	for _, alias := range rule.Aliases() {
		names = append(names, strings.ToLower(alias))
	}
	return names
}

// Rules returns all registered rules in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rules)
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Get retrieves a rule by its code.
func (r *Registry) Get(code string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byCode[strings.ToUpper(code)]
	return rule, ok
}

// Resolve retrieves a rule by code or alias, case-insensitively.
func (r *Registry) Resolve(ref string) (Rule, bool) {
	if rule, ok := r.Get(ref); ok {
		return rule, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byAlias[strings.ToLower(ref)]
	return rule, ok
}

// Expand maps a code, alias, or tag to the rules it names, in registration
// order. Unknown references expand to nil.
func (r *Registry) Expand(ref string) []Rule {
	if rule, ok := r.Resolve(ref); ok {
		return []Rule{rule}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byTag[strings.ToLower(ref)])
}

// Tags returns all tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Defaults returns the built-in configuration layer for the registered
// rules.
func (r *Registry) Defaults() config.Defaults {
	rules := r.Rules()
	specs := make([]config.RuleSpec, 0, len(rules))
	for _, rule := range rules {
		specs = append(specs, config.RuleSpec{
			Code:        rule.Code(),
			Name:        rule.Name(),
			Description: rule.Description(),
			Aliases:     rule.Aliases(),
			Tags:        rule.Tags(),
			Enabled:     rule.DefaultEnabled(),
			Severity:    rule.DefaultSeverity(),
			Params:      rule.Params(),
		})
	}
	return config.Defaults{Rules: specs, Settings: config.DefaultSettings()}
}

// DefaultConfig resolves the registry defaults with no project file and no
// overrides.
func (r *Registry) DefaultConfig() *config.ResolvedConfig {
	resolved, err := config.Resolve(r.Defaults(), nil, config.Overrides{})
	if err != nil {
		// Defaults come from registered rules and always resolve.
		panic(fmt.Sprintf("resolve rule defaults: %v", err))
	}
	return resolved
}

// DefaultRegistry is the global registry for built-in rules.
// Rules register themselves during init().
//
//nolint:gochecknoglobals // Global registry is intentional for rule registration
var DefaultRegistry = NewRegistry()
