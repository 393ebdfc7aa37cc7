package analysis

// Summary holds per-rule and per-file views of a report.
type Summary struct {
	// ByRule groups violations by rule.
	ByRule []RuleStats `json:"byRule"`

	// ByFile groups violations by file path. Clean files are omitted.
	ByFile []FileStats `json:"byFile"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"totals"`
}

// Totals contains aggregate statistics for a summary.
type Totals struct {
	Files           int `json:"filesChecked"`
	FilesWithIssues int `json:"filesWithIssues"`
	Violations      int `json:"violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
	Fixable         int `json:"fixable"`
	Failed          int `json:"failed"`
}

// FileStats contains aggregated data for a single file.
type FileStats struct {
	Path       string   `json:"path"`
	Violations int      `json:"violations"`
	Errors     int      `json:"errors"`
	Warnings   int      `json:"warnings"`
	Infos      int      `json:"infos"`
	Rules      []string `json:"rules,omitempty"`
}

// RuleStats contains aggregated data for a single rule.
type RuleStats struct {
	RuleCode   string   `json:"ruleCode"`
	RuleName   string   `json:"ruleName"`
	Violations int      `json:"violations"`
	Errors     int      `json:"errors"`
	Warnings   int      `json:"warnings"`
	Infos      int      `json:"infos"`
	Fixable    int      `json:"fixable"`
	Files      []string `json:"files,omitempty"`
}
