package reporter

import (
	"fmt"
	"strings"

	"github.com/yaklabco/downlint/pkg/config"
)

// ParseFormat parses a format name, returning an error for unknown formats.
// An empty name selects the concise format.
func ParseFormat(formatStr string) (config.OutputFormat, error) {
	if formatStr == "" {
		return config.FormatConcise, nil
	}

	format := config.OutputFormat(strings.ToLower(formatStr))
	if !format.IsValid() {
		names := make([]string, 0, len(config.OutputFormats()))
		for _, known := range config.OutputFormats() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("unknown format %q; valid formats: %s", formatStr, strings.Join(names, ", "))
	}
	return format, nil
}
