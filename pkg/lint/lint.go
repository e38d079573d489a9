// Package lint layers heuristic quality checks on top of the structural
// model: scoring, issue detection and improvement suggestions. Everything
// here is a pure function over the workflow; no external calls.
package lint

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/nkko/flowvault/pkg/models"
)

const (
	maxScore       = 100
	pointsPerIssue = 5

	// fewNodes is the size under which a workflow gets a pass on missing
	// error handling.
	fewNodes = 3
)

// placeholderName matches names nobody bothered to change.
var placeholderName = regexp.MustCompile(`(?i)^(node|untitled|new node|my node)\s*\d*$`)

// secretPattern matches likely hardcoded secrets inside serialized parameters.
var secretPattern = regexp.MustCompile(
	`(?i)"(api[_-]?key|password|secret|token|authorization)"\s*:\s*"[^"{][^"]{7,}"`)

// bearerPattern matches literal bearer tokens in header values.
var bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-z0-9_\-.]{16,}`)

// Lint runs every heuristic pass over the workflow and produces a scored
// report. Passes are independent and additive; nothing short-circuits.
func Lint(workflow *models.Workflow) models.LintReport {
	var issues []models.LintIssue

	issues = append(issues, orphanedNodes(workflow)...)
	issues = append(issues, missingErrorHandling(workflow)...)
	issues = append(issues, placeholderNames(workflow)...)
	issues = append(issues, hardcodedSecrets(workflow)...)
	issues = append(issues, unboundedLoops(workflow)...)

	score := maxScore - pointsPerIssue*len(issues)
	if score < 0 {
		score = 0
	}

	summary := fmt.Sprintf("score %d/100, %d issue(s) found", score, len(issues))
	if len(issues) == 0 {
		summary = "score 100/100, no issues found"
	}

	return models.LintReport{Score: score, Issues: issues, Summary: summary}
}

// orphanedNodes flags nodes that neither feed nor receive any connection.
func orphanedNodes(workflow *models.Workflow) []models.LintIssue {
	if len(workflow.Nodes) < 2 {
		return nil
	}

	connected := make(map[string]bool)

	for _, edge := range workflow.Connections.Edges() {
		connected[edge[0]] = true
		connected[edge[1]] = true
	}

	var issues []models.LintIssue

	for _, node := range workflow.Nodes {
		if !connected[node.ID] {
			issues = append(issues, models.LintIssue{
				Severity: models.LintSeverityWarning,
				Message:  fmt.Sprintf("node %q is not connected to anything", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return issues
}

// missingErrorHandling warns when a non-trivial workflow has no error
// handling configured anywhere.
func missingErrorHandling(workflow *models.Workflow) []models.LintIssue {
	if len(workflow.Nodes) <= fewNodes {
		return nil
	}

	for _, node := range workflow.Nodes {
		if node.ContinueOnFail || node.OnError != "" {
			return nil
		}
	}

	if _, ok := workflow.Settings["errorWorkflow"]; ok {
		return nil
	}

	return []models.LintIssue{{
		Severity: models.LintSeverityWarning,
		Message:  "workflow has no error handling configured on any node",
	}}
}

func placeholderNames(workflow *models.Workflow) []models.LintIssue {
	var issues []models.LintIssue

	for _, node := range workflow.Nodes {
		if placeholderName.MatchString(node.Name) {
			issues = append(issues, models.LintIssue{
				Severity: models.LintSeverityWarning,
				Message:  fmt.Sprintf("node %q has a generic placeholder name", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return issues
}

// hardcodedSecrets pattern-matches serialized parameter blobs for credential
// material. These are error severity, unlike the other passes.
func hardcodedSecrets(workflow *models.Workflow) []models.LintIssue {
	var issues []models.LintIssue

	for _, node := range workflow.Nodes {
		if len(node.Parameters) == 0 {
			continue
		}

		blob, err := json.Marshal(node.Parameters)
		if err != nil {
			continue
		}

		if secretPattern.Match(blob) || bearerPattern.Match(blob) {
			issues = append(issues, models.LintIssue{
				Severity: models.LintSeverityError,
				Message:  fmt.Sprintf("node %q appears to contain a hardcoded secret; use a credential instead", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return issues
}

// unboundedLoops warns about loop-type nodes without an explicit batch size.
func unboundedLoops(workflow *models.Workflow) []models.LintIssue {
	var issues []models.LintIssue

	for _, node := range workflow.Nodes {
		if !isLoopType(node.Type) {
			continue
		}

		if _, ok := node.Parameters["batchSize"]; !ok {
			issues = append(issues, models.LintIssue{
				Severity: models.LintSeverityWarning,
				Message:  fmt.Sprintf("loop node %q has no explicit batch size limit", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return issues
}

func isLoopType(nodeType string) bool {
	lower := strings.ToLower(nodeType)

	return strings.Contains(lower, "splitinbatches") || strings.Contains(lower, "loop")
}
