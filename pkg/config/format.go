package config

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatName     RuleFormat = "name"     // "no-trailing-spaces"
	RuleFormatID       RuleFormat = "id"       // "MD009"
	RuleFormatCombined RuleFormat = "combined" // "MD009/no-trailing-spaces"
)

// FormatRuleID formats a rule identifier based on the given format.
// Falls back to the code if name is empty.
func FormatRuleID(format RuleFormat, code, name string) string {
	if name == "" {
		return code
	}

	switch format {
	case RuleFormatName:
		return name
	case RuleFormatCombined:
		return code + "/" + name
	default:
		return code
	}
}
