package rules

import "github.com/yaklabco/downlint/pkg/lint"

// All returns a fresh instance of every built-in rule in code order.
func All() []lint.Rule {
	return []lint.Rule{
		NewHeaderIncrementRule(),         // MD001
		NewFirstHeaderH1Rule(),           // MD002
		NewHeaderStyleRule(),             // MD003
		NewULStyleRule(),                 // MD004
		NewListIndentRule(),              // MD005
		NewULStartLeftRule(),             // MD006
		NewULIndentRule(),                // MD007
		NewTrailingSpacesRule(),          // MD009
		NewHardTabsRule(),                // MD010
		NewMultipleBlanksRule(),          // MD012
		NewLineLengthRule(),              // MD013
		NewCommandsShowOutputRule(),      // MD014
		NewMissingSpaceATXRule(),         // MD018
		NewMultipleSpaceATXRule(),        // MD019
		NewMissingSpaceClosedATXRule(),   // MD020
		NewMultipleSpaceClosedATXRule(),  // MD021
		NewBlanksAroundHeadersRule(),     // MD022
		NewHeaderStartLeftRule(),         // MD023
		NewDuplicateHeaderRule(),         // MD024
		NewSingleH1Rule(),                // MD025
		NewTrailingPunctuationRule(),     // MD026
		NewMultipleSpaceBlockquoteRule(), // MD027
		NewBlanksBlockquoteRule(),        // MD028
		NewOLPrefixRule(),                // MD029
		NewListMarkerSpaceRule(),         // MD030
		NewBlanksAroundFencesRule(),      // MD031
		NewBlanksAroundListsRule(),       // MD032
		NewInlineHTMLRule(),              // MD033
		NewBareURLsRule(),                // MD034
		NewHRStyleRule(),                 // MD035
		NewEmphasisAsHeaderRule(),        // MD036
		NewSpaceInEmphasisRule(),         // MD037
		NewSpaceInCodeRule(),             // MD038
		NewSpaceInLinksRule(),            // MD039
		NewFencedCodeLanguageRule(),      // MD040
		NewFirstLineH1Rule(),             // MD041
		NewCodeBlockStyleRule(),          // MD046
		NewSingleTrailingNewlineRule(),   // MD047
	}
}

// RegisterAll registers all built-in rules with the given registry. It
// fails if any of them collides with a rule already registered.
func RegisterAll(registry *lint.Registry) error {
	for _, rule := range All() {
		if err := registry.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

//nolint:gochecknoinits // Registration of built-in rules.
func init() {
	if err := RegisterAll(lint.DefaultRegistry); err != nil {
		panic(err)
	}
}
