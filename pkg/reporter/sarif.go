package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/yaklabco/downlint/pkg/config"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

const (
	toolName           = "downlint"
	toolInformationURI = "https://github.com/yaklabco/downlint"
)

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes a rule (linter check).
type SARIFRule struct {
	ID               string               `json:"id"`
	Name             string               `json:"name,omitempty"`
	ShortDescription SARIFMultiformatText `json:"shortDescription"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFResult represents a single diagnostic result.
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations"`
	Fixes     []SARIFFix      `json:"fixes,omitempty"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes the affected text region by line and column.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIFCharRegion describes a region by byte offset.
type SARIFCharRegion struct {
	CharOffset int `json:"charOffset"`
	CharLength int `json:"charLength"`
}

// SARIFFix represents a proposed fix.
type SARIFFix struct {
	Description     SARIFMessage          `json:"description"`
	ArtifactChanges []SARIFArtifactChange `json:"artifactChanges"`
}

// SARIFArtifactChange describes changes to a file.
type SARIFArtifactChange struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Replacements     []SARIFReplacement    `json:"replacements"`
}

// SARIFReplacement describes a text replacement.
type SARIFReplacement struct {
	DeletedRegion   SARIFCharRegion       `json:"deletedRegion"`
	InsertedContent *SARIFInsertedContent `json:"insertedContent,omitempty"`
}

// SARIFInsertedContent contains the replacement text.
type SARIFInsertedContent struct {
	Text string `json:"text"`
}

type sarifRenderer struct {
	opts Options
}

func (r *sarifRenderer) Render(w io.Writer, report *Report) error {
	output := r.buildOutput(report)

	lw := newLineWriter(w)
	encoder := json.NewEncoder(lw.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encode SARIF: %w", err)
	}
	return lw.flush()
}

func (r *sarifRenderer) buildOutput(report *Report) *SARIFOutput {
	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFDriver{
				Name:           toolName,
				Version:        r.opts.Version,
				InformationURI: toolInformationURI,
				Rules:          make([]SARIFRule, 0),
			},
		},
		Results: make([]SARIFResult, 0, len(report.Violations)+len(report.Failures)),
	}

	rulesSeen := make(map[string]bool)
	addRule := func(id, name, description string, severity config.Severity) {
		if rulesSeen[id] {
			return
		}
		rulesSeen[id] = true
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SARIFRule{
			ID:               id,
			Name:             name,
			ShortDescription: SARIFMultiformatText{Text: description},
			DefaultConfig:    &SARIFRuleConfig{Level: severityToSARIFLevel(severity)},
		})
	}

	for i := range report.Violations {
		v := &report.Violations[i]
		description := r.opts.RuleDescriptions[v.RuleCode]
		if description == "" {
			description = stripDetail(v.Message)
		}
		addRule(v.RuleCode, v.RuleName, description, v.Severity)

		uri := filepath.ToSlash(r.opts.displayPath(v.Path))
		result := SARIFResult{
			RuleID:  v.RuleCode,
			Level:   severityToSARIFLevel(v.Severity),
			Message: SARIFMessage{Text: v.Message},
			Locations: []SARIFLocation{{
				PhysicalLocation: SARIFPhysicalLocation{
					ArtifactLocation: SARIFArtifactLocation{URI: uri},
					Region: SARIFRegion{
						StartLine:   v.Start.Line,
						StartColumn: v.Start.Column,
						EndLine:     v.End.Line,
						EndColumn:   v.End.Column,
					},
				},
			}},
		}

		if v.Fix != nil {
			result.Fixes = []SARIFFix{{
				Description: SARIFMessage{Text: v.Message},
				ArtifactChanges: []SARIFArtifactChange{{
					ArtifactLocation: SARIFArtifactLocation{URI: uri},
					Replacements: []SARIFReplacement{{
						DeletedRegion: SARIFCharRegion{
							CharOffset: v.Fix.Span.Start,
							CharLength: v.Fix.Span.Len(),
						},
						InsertedContent: &SARIFInsertedContent{Text: v.Fix.Replacement},
					}},
				}},
			}}
		}

		run.Results = append(run.Results, result)
	}

	for _, failure := range report.Failures {
		addRule(parseErrorCode, parseErrorCode, "File could not be read or parsed", config.SeverityError)
		run.Results = append(run.Results, SARIFResult{
			RuleID:  parseErrorCode,
			Level:   severityToSARIFLevel(config.SeverityError),
			Message: SARIFMessage{Text: r.opts.failureMessage(failure)},
			Locations: []SARIFLocation{{
				PhysicalLocation: SARIFPhysicalLocation{
					ArtifactLocation: SARIFArtifactLocation{URI: filepath.ToSlash(r.opts.displayPath(failure.Path))},
					Region:           SARIFRegion{StartLine: 1},
				},
			}},
		})
	}

	return &SARIFOutput{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs:    []SARIFRun{run},
	}
}

// severityToSARIFLevel converts a severity to a SARIF level.
func severityToSARIFLevel(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "error"
	case config.SeverityWarning:
		return "warning"
	case config.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
