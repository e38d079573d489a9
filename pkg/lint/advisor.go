package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nkko/flowvault/pkg/models"
)

// SuggestImprovements runs the advisor passes and unions their output. Each
// pass proposes structural changes rather than flagging defects; all passes
// always run.
func SuggestImprovements(workflow *models.Workflow) models.SuggestionReport {
	var suggestions []models.Suggestion

	suggestions = append(suggestions, suggestDataShaping(workflow)...)
	suggestions = append(suggestions, suggestErrorHandling(workflow)...)
	suggestions = append(suggestions, suggestMergeNode(workflow)...)
	suggestions = append(suggestions, suggestCredentialUse(workflow)...)
	suggestions = append(suggestions, suggestBatching(workflow)...)
	suggestions = append(suggestions, suggestTrigger(workflow)...)

	summary := fmt.Sprintf("%d suggestion(s)", len(suggestions))
	if len(suggestions) == 0 {
		summary = "no suggestions; workflow structure looks good"
	}

	return models.SuggestionReport{Suggestions: suggestions, Summary: summary}
}

// suggestDataShaping proposes a data-shaping node after each HTTP-type node
// that feeds raw responses straight onward.
func suggestDataShaping(workflow *models.Workflow) []models.Suggestion {
	shapingTargets := downstreamTypes(workflow)

	var suggestions []models.Suggestion

	for _, node := range workflow.Nodes {
		if !typeContains(node.Type, "http") {
			continue
		}

		if !hasShapingDownstream(shapingTargets[node.ID]) {
			suggestions = append(suggestions, models.Suggestion{
				Type:     "data_shaping",
				Message:  fmt.Sprintf("add a data-shaping node (set/code) after HTTP node %q to normalize its response", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return suggestions
}

// suggestErrorHandling targets the node categories that fail in practice.
func suggestErrorHandling(workflow *models.Workflow) []models.Suggestion {
	var suggestions []models.Suggestion

	for _, node := range workflow.Nodes {
		risky := typeContains(node.Type, "http") ||
			typeContains(node.Type, "database") || typeContains(node.Type, "postgres") ||
			typeContains(node.Type, "mysql") || typeContains(node.Type, "email")

		if risky && !node.ContinueOnFail && node.OnError == "" {
			suggestions = append(suggestions, models.Suggestion{
				Type:     "error_handling",
				Message:  fmt.Sprintf("configure error handling on %q; %s nodes fail on transient outages", node.Name, node.Type),
				NodeName: node.Name,
			})
		}
	}

	return suggestions
}

// suggestMergeNode proposes a merge node when a fan-out creates parallel
// branches and no merge-type node exists anywhere in the workflow.
func suggestMergeNode(workflow *models.Workflow) []models.Suggestion {
	for _, node := range workflow.Nodes {
		if typeContains(node.Type, "merge") {
			return nil
		}
	}

	for sourceID, channels := range workflow.Connections {
		fanOut := 0

		for _, slots := range channels {
			for _, slot := range slots {
				fanOut += len(slot)
			}
		}

		if fanOut > 1 {
			source := workflow.NodeByID(sourceID)

			name := sourceID
			if source != nil {
				name = source.Name
			}

			return []models.Suggestion{{
				Type:     "merge",
				Message:  fmt.Sprintf("node %q fans out into parallel branches; add a merge node to join them", name),
				NodeName: name,
			}}
		}
	}

	return nil
}

// suggestCredentialUse flags likely hardcoded authorization values.
func suggestCredentialUse(workflow *models.Workflow) []models.Suggestion {
	var suggestions []models.Suggestion

	for _, node := range workflow.Nodes {
		if len(node.Parameters) == 0 {
			continue
		}

		blob, err := json.Marshal(node.Parameters)
		if err != nil {
			continue
		}

		if bearerPattern.Match(blob) || secretPattern.Match(blob) {
			suggestions = append(suggestions, models.Suggestion{
				Type:     "credentials",
				Message:  fmt.Sprintf("node %q carries what looks like a hardcoded authorization value; move it into a credential", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return suggestions
}

// suggestBatching warns about loops configured to process one item at a time.
func suggestBatching(workflow *models.Workflow) []models.Suggestion {
	var suggestions []models.Suggestion

	for _, node := range workflow.Nodes {
		if !isLoopType(node.Type) {
			continue
		}

		if size, ok := node.Parameters["batchSize"].(float64); ok && size == 1 {
			suggestions = append(suggestions, models.Suggestion{
				Type:     "batching",
				Message:  fmt.Sprintf("loop node %q processes one item at a time; raise its batch size", node.Name),
				NodeName: node.Name,
			})
		}
	}

	return suggestions
}

// suggestTrigger requires a trigger on active workflows.
func suggestTrigger(workflow *models.Workflow) []models.Suggestion {
	if !workflow.Active {
		return nil
	}

	for _, node := range workflow.Nodes {
		if typeContains(node.Type, "trigger") || typeContains(node.Type, "webhook") {
			return nil
		}
	}

	return []models.Suggestion{{
		Type:    "trigger",
		Message: "active workflow has no trigger node; add one so it can run",
	}}
}

// downstreamTypes maps each node id to the types of its direct successors.
func downstreamTypes(workflow *models.Workflow) map[string][]string {
	types := make(map[string][]string)

	for _, edge := range workflow.Connections.Edges() {
		if target := workflow.NodeByID(edge[1]); target != nil {
			types[edge[0]] = append(types[edge[0]], target.Type)
		}
	}

	return types
}

func hasShapingDownstream(types []string) bool {
	for _, t := range types {
		if typeContains(t, "set") || typeContains(t, "code") ||
			typeContains(t, "function") || typeContains(t, "transform") {
			return true
		}
	}

	return false
}

func typeContains(nodeType, marker string) bool {
	return strings.Contains(strings.ToLower(nodeType), marker)
}
