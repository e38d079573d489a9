package validation

import (
	"errors"
	"fmt"

	"github.com/nkko/flowvault/pkg/models"
)

// ErrMaxDepthExceeded is raised when the cycle-detection walk passes the
// configured depth bound. This is a distinct outcome from a found cycle.
var ErrMaxDepthExceeded = errors.New("maximum graph depth exceeded")

// checkConnections verifies referential integrity of every edge: known
// source, non-empty known target, non-negative index. All violations in the
// workflow surface, not just the first.
func (v *Validator) checkConnections(workflow *models.Workflow, result *models.ValidationResult) {
	knownIDs := workflow.NodeIDs()

	for sourceID, channels := range workflow.Connections {
		if !knownIDs[sourceID] {
			result.AddError(fmt.Sprintf("connection source %q is not a known node", sourceID))
		}

		for channel, slots := range channels {
			for slotIndex, slot := range slots {
				for _, target := range slot {
					v.checkConnectionTarget(sourceID, channel, slotIndex, target, knownIDs, result)
				}
			}
		}
	}
}

func (v *Validator) checkConnectionTarget(
	sourceID, channel string,
	slotIndex int,
	target models.ConnectionTarget,
	knownIDs map[string]bool,
	result *models.ValidationResult,
) {
	if target.Node == "" {
		result.AddError(fmt.Sprintf(
			"connection from %q (%s[%d]) has no target node", sourceID, channel, slotIndex))

		return
	}

	if target.Index < 0 {
		result.AddError(fmt.Sprintf(
			"connection from %q to %q has negative input index %d", sourceID, target.Node, target.Index))
	}

	if target.Type == "" {
		result.AddError(fmt.Sprintf(
			"connection from %q to %q has no channel type", sourceID, target.Node))
	}

	if !knownIDs[target.Node] {
		result.AddError(fmt.Sprintf(
			"connection from %q references unknown target node %q", sourceID, target.Node))
	}
}

// checkCycles runs the depth-bounded DFS and maps its two failure modes onto
// distinct errors.
func (v *Validator) checkCycles(workflow *models.Workflow, result *models.ValidationResult) {
	maxDepth := v.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	found, err := DetectCycles(workflow, maxDepth)
	if err != nil {
		result.AddError(fmt.Sprintf("cycle detection aborted: maximum graph depth %d exceeded", maxDepth))

		return
	}

	if found {
		result.AddError("workflow connections contain a cycle")
	}
}

// DetectCycles reports whether the workflow's connection graph contains a
// cycle, walking only valid edges (both endpoints known). The walk is a
// three-color DFS: visited marks finished or in-progress nodes, the recursion
// stack marks nodes on the current path, and an edge into the stack is a
// back-edge. Exceeding maxDepth returns ErrMaxDepthExceeded instead of a
// cycle verdict, bounding stack usage on malformed graphs. A self-loop is a
// cycle without special-casing.
func DetectCycles(workflow *models.Workflow, maxDepth int) (bool, error) {
	knownIDs := workflow.NodeIDs()

	adjacency := make(map[string][]string, len(workflow.Connections))

	for sourceID, channels := range workflow.Connections {
		if !knownIDs[sourceID] {
			continue
		}

		for _, slots := range channels {
			for _, slot := range slots {
				for _, target := range slot {
					if target.Node != "" && knownIDs[target.Node] {
						adjacency[sourceID] = append(adjacency[sourceID], target.Node)
					}
				}
			}
		}
	}

	visited := make(map[string]bool, len(workflow.Nodes))
	onStack := make(map[string]bool, len(workflow.Nodes))

	var walk func(id string, depth int) (bool, error)

	walk = func(id string, depth int) (bool, error) {
		if depth > maxDepth {
			return false, ErrMaxDepthExceeded
		}

		visited[id] = true
		onStack[id] = true

		for _, next := range adjacency[id] {
			if onStack[next] {
				return true, nil
			}

			if !visited[next] {
				found, err := walk(next, depth+1)
				if found || err != nil {
					return found, err
				}
			}
		}

		onStack[id] = false

		return false, nil
	}

	for _, node := range workflow.Nodes {
		if visited[node.ID] {
			continue
		}

		found, err := walk(node.ID, 1)
		if found || err != nil {
			return found, err
		}
	}

	return false, nil
}
