package models

// ValidationResult is the outcome of a structural or expression validation
// pass. Findings are values, never Go errors: Errors block save/activation,
// Warnings are informational.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError records a blocking finding and marks the result invalid.
func (r *ValidationResult) AddError(message string) {
	r.Valid = false
	r.Errors = append(r.Errors, message)
}

// AddWarning records an informational finding.
func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// LintSeverity classifies a lint finding.
type LintSeverity string

const (
	LintSeverityError   LintSeverity = "error"
	LintSeverityWarning LintSeverity = "warning"
)

// LintIssue is a single heuristic finding from the workflow linter.
type LintIssue struct {
	Severity LintSeverity `json:"severity"`
	Message  string       `json:"message"`
	NodeName string       `json:"nodeName,omitempty"`
}

// LintReport scores a workflow 0-100 and carries the individual findings.
type LintReport struct {
	Score   int         `json:"score"`
	Issues  []LintIssue `json:"issues"`
	Summary string      `json:"summary"`
}

// Suggestion is one structural improvement proposed by the advisor.
type Suggestion struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	NodeName string `json:"nodeName,omitempty"`
}

// SuggestionReport is the union of all advisor passes over a workflow.
type SuggestionReport struct {
	Suggestions []Suggestion `json:"suggestions"`
	Summary     string       `json:"summary"`
}
