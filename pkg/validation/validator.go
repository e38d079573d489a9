// Package validation statically validates workflow graphs before they reach
// the platform: required fields, id/name uniqueness, node-type existence,
// connection referential integrity and cycle detection. Findings accumulate
// into a report; the validator never fails an operation for a finding.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nkko/flowvault/pkg/models"
	"github.com/nkko/flowvault/pkg/platform"
)

// DefaultMaxDepth bounds the cycle-detection walk on adversarial or
// malformed graphs.
const DefaultMaxDepth = 1000

// Validator runs the structural checks. It holds no per-workflow state; each
// call is independent.
type Validator struct {
	client platform.Client
	logger *slog.Logger

	// MaxDepth overrides the DFS depth bound. Zero means DefaultMaxDepth.
	MaxDepth int
}

// NewValidator creates a structural validator backed by the given platform
// client for node-type lookups.
func NewValidator(client platform.Client, logger *slog.Logger) *Validator {
	return &Validator{
		client:   client,
		logger:   logger,
		MaxDepth: DefaultMaxDepth,
	}
}

// ValidateStructure runs all structural checks over the workflow and returns
// the accumulated report. Errors block save/activation; warnings are
// informational.
func (v *Validator) ValidateStructure(ctx context.Context, workflow *models.Workflow) models.ValidationResult {
	result := models.ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}

	if workflow.Name == "" {
		result.AddError("workflow name is required")
	}

	// An empty node set fails the required-fields check and invalidates
	// everything downstream; report both findings and stop here.
	if len(workflow.Nodes) == 0 {
		result.AddError("workflow nodes are required")
		result.AddError("workflow has no nodes")

		return result
	}

	v.checkDuplicateIDs(workflow, &result)
	v.checkDuplicateNames(workflow, &result)
	v.checkNodeTypes(ctx, workflow, &result)
	v.checkConnections(workflow, &result)
	v.checkTriggerPresence(workflow, &result)
	v.checkCycles(workflow, &result)
	v.checkDisabledNodes(workflow, &result)

	return result
}

// checkDuplicateIDs reports all duplicated node ids as one aggregated error.
func (v *Validator) checkDuplicateIDs(workflow *models.Workflow, result *models.ValidationResult) {
	seen := make(map[string]int, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		seen[node.ID]++
	}

	var duplicates []string

	for id, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, id)
		}
	}

	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		result.AddError(fmt.Sprintf("duplicate node ids: %s", strings.Join(duplicates, ", ")))
	}
}

// checkDuplicateNames reports one error per duplicated name, carrying all ids
// sharing it. The platform requires name uniqueness even though name is not
// the primary key.
func (v *Validator) checkDuplicateNames(workflow *models.Workflow, result *models.ValidationResult) {
	byName := make(map[string][]string, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		byName[node.Name] = append(byName[node.Name], node.ID)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		ids := byName[name]
		if len(ids) > 1 {
			result.AddError(fmt.Sprintf("duplicate node name %q used by nodes: %s", name, strings.Join(ids, ", ")))
		}
	}
}

// checkNodeTypes verifies every node type against the platform registry. A
// registry lookup failure degrades to a warning; validation stays useful in
// reduced form.
func (v *Validator) checkNodeTypes(ctx context.Context, workflow *models.Workflow, result *models.ValidationResult) {
	types, err := v.client.ListNodeTypes(ctx)
	if err != nil {
		v.logger.WarnContext(ctx, "Node type registry unavailable, skipping type check", "error", err)
		result.AddWarning(fmt.Sprintf("could not validate node types: %v", err))

		return
	}

	known := make(map[string]bool, len(types))
	for _, t := range types {
		known[t.Name] = true
	}

	for _, node := range workflow.Nodes {
		if !known[node.Type] {
			result.AddError(fmt.Sprintf("node %q has unknown type %q", node.Name, node.Type))
		}
	}
}

// checkTriggerPresence warns when an active workflow has no node whose type
// looks like a trigger; such a workflow can never run.
func (v *Validator) checkTriggerPresence(workflow *models.Workflow, result *models.ValidationResult) {
	if !workflow.Active {
		return
	}

	for _, node := range workflow.Nodes {
		lower := strings.ToLower(node.Type)
		if strings.Contains(lower, "trigger") || strings.Contains(lower, "webhook") {
			return
		}
	}

	result.AddWarning("workflow is active but has no trigger node and cannot run")
}

// checkDisabledNodes warns per disabled node that still has outgoing
// connections, and once more when every node is disabled.
func (v *Validator) checkDisabledNodes(workflow *models.Workflow, result *models.ValidationResult) {
	allDisabled := true

	for _, node := range workflow.Nodes {
		if !node.Disabled {
			allDisabled = false

			continue
		}

		if channels, ok := workflow.Connections[node.ID]; ok && len(channels) > 0 {
			result.AddWarning(fmt.Sprintf("disabled node %q still has outgoing connections", node.Name))
		}
	}

	if allDisabled {
		result.AddWarning("all nodes in the workflow are disabled")
	}
}
