// Package expression checks the {{ ... }} micro-expressions embedded in node
// parameters: balanced delimiters and known variable roots. It does not
// attempt full expression-language parsing.
package expression

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nkko/flowvault/pkg/models"
)

// expressionPattern matches one {{ ... }} span inside a scalar string.
var expressionPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// variablePattern matches a $-prefixed identifier inside an expression.
var variablePattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// knownRoots is the fixed whitelist of root variable names the platform
// exposes to expressions.
var knownRoots = map[string]bool{
	"json":      true,
	"node":      true,
	"vars":      true,
	"parameter": true,
	"now":       true,
	"today":     true,
	"workflow":  true,
	"execution": true,
	"input":     true,
	"binary":    true,
}

// Result is the outcome of checking one expression.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Extract returns all {{ ... }} spans in value, trimmed. Non-string input
// yields an empty slice.
func Extract(value any) []string {
	text, ok := value.(string)
	if !ok {
		return []string{}
	}

	matches := expressionPattern.FindAllStringSubmatch(text, -1)

	expressions := make([]string, 0, len(matches))
	for _, match := range matches {
		expressions = append(expressions, strings.TrimSpace(match[1]))
	}

	return expressions
}

// Validate checks a single expression for balanced parentheses and known
// $-variable roots. Expressions without any $ reference are accepted.
func Validate(expr string) Result {
	depth := 0

	for _, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return Result{Error: "unbalanced parentheses in expression"}
			}
		}
	}

	if depth != 0 {
		return Result{Error: "unbalanced parentheses in expression"}
	}

	for _, match := range variablePattern.FindAllStringSubmatch(expr, -1) {
		if !knownRoots[match[1]] {
			return Result{Error: fmt.Sprintf("invalid variable reference: $%s", match[1])}
		}
	}

	return Result{Valid: true}
}

// ValidateWorkflow sweeps every node's parameter tree, extracts embedded
// expressions and validates each. Findings are reported per node; the sweep
// never fails as a whole.
func ValidateWorkflow(workflow *models.Workflow) models.ValidationResult {
	result := models.ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}

	for _, node := range workflow.Nodes {
		for _, expr := range extractAll(node.Parameters) {
			if check := Validate(expr); !check.Valid {
				result.AddError(fmt.Sprintf("node %q: %s (in {{ %s }})", node.Name, check.Error, expr))
			}
		}
	}

	return result
}

// extractAll walks an arbitrary parameter tree collecting expressions from
// every scalar string it contains.
func extractAll(value any) []string {
	switch v := value.(type) {
	case string:
		return Extract(v)
	case map[string]any:
		var expressions []string
		for _, item := range v {
			expressions = append(expressions, extractAll(item)...)
		}

		return expressions
	case []any:
		var expressions []string
		for _, item := range v {
			expressions = append(expressions, extractAll(item)...)
		}

		return expressions
	default:
		return nil
	}
}
