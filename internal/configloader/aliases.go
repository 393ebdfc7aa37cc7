package configloader

import "strings"

// markdownlintAliases maps markdownlint rule names to rule codes. downlint
// uses the older mdl names ("header-increment"), so markdownlint files need
// translating.
//
//nolint:gochecknoglobals // Read-only lookup table.
var markdownlintAliases = map[string]string{
	// Headings
	"heading-increment":            "MD001",
	"first-heading-h1":             "MD002",
	"heading-style":                "MD003",
	"blanks-around-headings":       "MD022",
	"heading-start-left":           "MD023",
	"no-duplicate-heading":         "MD024",
	"single-title":                 "MD025",
	"single-h1":                    "MD025",
	"no-trailing-punctuation":      "MD026",
	"first-line-heading":           "MD041",
	"first-line-h1":                "MD041",
	"no-missing-space-atx":         "MD018",
	"no-multiple-space-atx":        "MD019",
	"no-missing-space-closed-atx":  "MD020",
	"no-multiple-space-closed-atx": "MD021",

	// Lists
	"ul-style":            "MD004",
	"list-indent":         "MD005",
	"ul-start-left":       "MD006",
	"ul-indent":           "MD007",
	"ol-prefix":           "MD029",
	"list-marker-space":   "MD030",
	"blanks-around-lists": "MD032",

	// Whitespace
	"no-trailing-spaces":      "MD009",
	"no-hard-tabs":            "MD010",
	"no-multiple-blanks":      "MD012",
	"line-length":             "MD013",
	"single-trailing-newline": "MD047",

	// Code
	"commands-show-output": "MD014",
	"blanks-around-fences": "MD031",
	"no-space-in-code":     "MD038",
	"fenced-code-language": "MD040",
	"code-block-style":     "MD046",

	// Links
	"no-bare-urls":      "MD034",
	"no-space-in-links": "MD039",

	// Blockquote
	"no-multiple-space-blockquote": "MD027",
	"no-blanks-blockquote":         "MD028",

	// HTML
	"no-inline-html": "MD033",

	// HR
	"hr-style": "MD035",

	// Emphasis
	"no-emphasis-as-heading": "MD036",
	"no-space-in-emphasis":   "MD037",
}

// markdownlintTags maps markdownlint tag names to the rule codes they
// contain, limited to rules downlint implements.
//
//nolint:gochecknoglobals // Read-only lookup table.
var markdownlintTags = map[string][]string{
	"atx":         {"MD018", "MD019"},
	"atx_closed":  {"MD020", "MD021"},
	"blank_lines": {"MD012", "MD022", "MD031", "MD032", "MD047"},
	"blockquote":  {"MD027", "MD028"},
	"bullet":      {"MD004", "MD005", "MD006", "MD007", "MD032"},
	"code":        {"MD014", "MD031", "MD038", "MD040", "MD046"},
	"emphasis":    {"MD036", "MD037"},
	"hard_tab":    {"MD010"},
	"headings": {
		"MD001", "MD002", "MD003", "MD018", "MD019", "MD020", "MD021",
		"MD022", "MD023", "MD024", "MD025", "MD026", "MD036", "MD041",
	},
	"hr":          {"MD035"},
	"html":        {"MD033"},
	"indentation": {"MD005", "MD006", "MD007", "MD027"},
	"language":    {"MD040"},
	"line_length": {"MD013"},
	"links":       {"MD034", "MD039"},
	"ol":          {"MD029", "MD030", "MD032"},
	"spaces":      {"MD018", "MD019", "MD020", "MD021", "MD023"},
	"ul":          {"MD004", "MD005", "MD006", "MD007", "MD030", "MD032"},
	"url":         {"MD034"},
	"whitespace":  {"MD009", "MD010", "MD012", "MD027", "MD028", "MD030", "MD037", "MD038", "MD039"},
}

// NormalizeRuleID converts a markdownlint rule name or code to a rule code.
// Returns empty string if the key is not a recognized rule code or name.
func NormalizeRuleID(key string) string {
	upper := strings.ToUpper(key)
	if strings.HasPrefix(upper, "MD") {
		return upper
	}
	return markdownlintAliases[strings.ToLower(key)]
}

// TagRules returns the rule codes in a markdownlint tag, or nil if the
// tag is not recognized.
func TagRules(tag string) []string {
	return markdownlintTags[strings.ToLower(tag)]
}
