package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// ParamType is the type of a rule parameter.
type ParamType int

const (
	ParamInt ParamType = iota + 1
	ParamBool
	ParamString
	ParamStrings
)

func (t ParamType) String() string {
	switch t {
	case ParamInt:
		return "integer"
	case ParamBool:
		return "boolean"
	case ParamString:
		return "string"
	case ParamStrings:
		return "list of strings"
	default:
		return "unknown"
	}
}

// Param describes one configurable rule parameter.
type Param struct {
	Name        string
	Type        ParamType
	Default     any
	Enum        []string
	Description string
}

// IntParam declares an integer parameter.
func IntParam(name string, def int, description string) Param {
	return Param{Name: name, Type: ParamInt, Default: def, Description: description}
}

// BoolParam declares a boolean parameter.
func BoolParam(name string, def bool, description string) Param {
	return Param{Name: name, Type: ParamBool, Default: def, Description: description}
}

// StringParam declares a string parameter. A non-empty enum restricts the
// accepted values.
func StringParam(name, def, description string, enum ...string) Param {
	return Param{Name: name, Type: ParamString, Default: def, Enum: enum, Description: description}
}

// StringsParam declares a string list parameter.
func StringsParam(name string, def []string, description string) Param {
	return Param{Name: name, Type: ParamStrings, Default: def, Description: description}
}

// Coerce converts a decoded value into the parameter's Go type: int, bool,
// string, or []string.
func (p Param) Coerce(value any) (any, error) {
	switch p.Type {
	case ParamInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case uint64:
			if v <= math.MaxInt32 {
				return int(v), nil
			}
		case float64:
			if v == math.Trunc(v) {
				return int(v), nil
			}
		}
	case ParamBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case ParamString:
		if v, ok := value.(string); ok {
			if len(p.Enum) > 0 && !slices.Contains(p.Enum, v) {
				return nil, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidValue, v, strings.Join(p.Enum, ", "))
			}
			return v, nil
		}
	case ParamStrings:
		switch v := value.(type) {
		case []string:
			return slices.Clone(v), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: expected %s, got element %v", ErrInvalidValue, p.Type, item)
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: expected %s, got %T", ErrInvalidValue, p.Type, value)
}

// normalizeParamName accepts both snake_case and kebab-case spellings.
func normalizeParamName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

func findParam(params []Param, name string) (Param, bool) {
	want := normalizeParamName(name)
	for _, p := range params {
		if p.Name == want {
			return p, true
		}
	}
	return Param{}, false
}

func cloneValue(v any) any {
	if s, ok := v.([]string); ok {
		return slices.Clone(s)
	}
	return v
}
