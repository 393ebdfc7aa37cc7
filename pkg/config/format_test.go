package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/downlint/pkg/config"
)

func TestFormatRuleID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   config.RuleFormat
		code     string
		ruleName string
		want     string
	}{
		{"name format", config.RuleFormatName, "MD009", "no-trailing-spaces", "no-trailing-spaces"},
		{"id format", config.RuleFormatID, "MD009", "no-trailing-spaces", "MD009"},
		{"combined format", config.RuleFormatCombined, "MD009", "no-trailing-spaces", "MD009/no-trailing-spaces"},
		{"combined without name", config.RuleFormatCombined, "MD009", "", "MD009"},
		{"default to code", config.RuleFormat(""), "MD009", "no-trailing-spaces", "MD009"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := config.FormatRuleID(testCase.format, testCase.code, testCase.ruleName)
			assert.Equal(t, testCase.want, got)
		})
	}
}
