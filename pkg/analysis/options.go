package analysis

import (
	"fmt"
	"strings"
)

// SortField orders the per-rule and per-file statistics.
type SortField string

const (
	SortByCount    SortField = "count"    // most violations first
	SortByAlpha    SortField = "alpha"    // rule code or path
	SortBySeverity SortField = "severity" // most errors, then warnings
)

// SortFields returns every sort field in display order.
func SortFields() []SortField {
	return []SortField{SortByCount, SortByAlpha, SortBySeverity}
}

// IsValid reports whether s is a known sort field.
func (s SortField) IsValid() bool {
	for _, known := range SortFields() {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSortField parses a --sort value. The empty string means SortByCount.
func ParseSortField(value string) (SortField, error) {
	if value == "" {
		return SortByCount, nil
	}
	field := SortField(strings.ToLower(value))
	if !field.IsValid() {
		names := make([]string, 0, len(SortFields()))
		for _, f := range SortFields() {
			names = append(names, string(f))
		}
		return "", fmt.Errorf("invalid sort %q: must be one of %s", value, strings.Join(names, ", "))
	}
	return field, nil
}

// Options configures Analyze.
type Options struct {
	SortBy SortField

	// SortDesc puts the highest count first. Only SortByCount uses it.
	SortDesc bool
}

// DefaultOptions sorts by count, highest first.
func DefaultOptions() Options {
	return Options{SortBy: SortByCount, SortDesc: true}
}
