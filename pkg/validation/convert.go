package validation

import (
	"fmt"
	"math"

	"github.com/nkko/flowvault/pkg/models"
)

// ConvertConnections is the boundary between unvalidated JSON and the strict
// connection model. It converts a decoded-but-unchecked connection tree into
// a models.ConnectionMap, reporting every shape violation it finds. Graph
// algorithms only ever run over the strict form.
func ConvertConnections(raw any) (models.ConnectionMap, []string) {
	var violations []string

	if raw == nil {
		return models.ConnectionMap{}, nil
	}

	container, ok := raw.(map[string]any)
	if !ok {
		return models.ConnectionMap{}, []string{"connections container is not an object"}
	}

	converted := make(models.ConnectionMap, len(container))

	for sourceID, rawChannels := range container {
		channels, ok := rawChannels.(map[string]any)
		if !ok {
			violations = append(violations, fmt.Sprintf("connections for node %q are not an object", sourceID))

			continue
		}

		converted[sourceID] = make(map[string][][]models.ConnectionTarget, len(channels))

		for channel, rawSlots := range channels {
			slots, ok := rawSlots.([]any)
			if !ok {
				violations = append(violations, fmt.Sprintf(
					"output channel %q of node %q is not an array of arrays", channel, sourceID))

				continue
			}

			for slotIndex, rawSlot := range slots {
				slot, ok := rawSlot.([]any)
				if !ok {
					violations = append(violations, fmt.Sprintf(
						"output slot %d on channel %q of node %q is not an array", slotIndex, channel, sourceID))

					continue
				}

				targets := make([]models.ConnectionTarget, 0, len(slot))

				for _, rawTarget := range slot {
					target, targetViolations := convertTarget(sourceID, rawTarget)
					violations = append(violations, targetViolations...)

					if target != nil {
						targets = append(targets, *target)
					}
				}

				converted[sourceID][channel] = append(converted[sourceID][channel], targets)
			}
		}
	}

	return converted, violations
}

func convertTarget(sourceID string, raw any) (*models.ConnectionTarget, []string) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return nil, []string{fmt.Sprintf("connection entry from node %q is not an object", sourceID)}
	}

	var violations []string

	node, ok := entry["node"].(string)
	if !ok || node == "" {
		violations = append(violations, fmt.Sprintf(
			"connection entry from node %q is missing a target node id", sourceID))
	}

	channelType, _ := entry["type"].(string)
	if channelType == "" {
		violations = append(violations, fmt.Sprintf(
			"connection from %q to %q has no channel type", sourceID, node))
	}

	index, indexOK := toNonNegativeInt(entry["index"])
	if !indexOK {
		violations = append(violations, fmt.Sprintf(
			"connection from %q to %q has an invalid input index", sourceID, node))
	}

	if len(violations) > 0 {
		return nil, violations
	}

	return &models.ConnectionTarget{Node: node, Type: channelType, Index: index}, nil
}

// toNonNegativeInt accepts the JSON number encodings an index can arrive as.
func toNonNegativeInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return 0, false
		}

		return int(v), true
	case int:
		if v < 0 {
			return 0, false
		}

		return v, true
	case nil:
		// Absent index defaults to slot 0.
		return 0, true
	default:
		return 0, false
	}
}
