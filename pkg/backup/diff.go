package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nkko/flowvault/pkg/models"
)

// noChangesSummary is the sentinel summary when the two snapshots hold the
// same node set.
const noChangesSummary = "no changes between snapshots"

// Diff compares two snapshots of a workflow node-by-node. Nodes are keyed by
// name (the platform's effective identity key); content comparison is deep
// structural equality of the serialized node. Input containing duplicate
// names is rejected rather than silently collapsed by the set comparison.
func (s *Store) Diff(ctx context.Context, workflowID, backupID1, backupID2 string) (*models.WorkflowDiff, error) {
	snapshots := make([]*models.Snapshot, 2)
	errs := make([]error, 2)

	done := make(chan int, 2)

	for i, id := range []string{backupID1, backupID2} {
		go func(slot int, backupID string) {
			snapshots[slot], errs[slot] = s.loadSnapshot(backupID)
			done <- slot
		}(i, id)
	}

	<-done
	<-done

	for i, id := range []string{backupID1, backupID2} {
		if errs[i] != nil {
			return nil, &BackupError{Op: "Diff", WorkflowID: workflowID, BackupID: id, Err: errs[i]}
		}
	}

	first, err := nodesByName(snapshots[0])
	if err != nil {
		return nil, &BackupError{Op: "Diff", WorkflowID: workflowID, BackupID: backupID1, Err: err}
	}

	second, err := nodesByName(snapshots[1])
	if err != nil {
		return nil, &BackupError{Op: "Diff", WorkflowID: workflowID, BackupID: backupID2, Err: err}
	}

	diff := &models.WorkflowDiff{Added: []string{}, Removed: []string{}, Modified: []string{}}

	for name, node := range second {
		previous, ok := first[name]
		if !ok {
			diff.Added = append(diff.Added, name)

			continue
		}

		if !bytes.Equal(previous, node) {
			diff.Modified = append(diff.Modified, name)
		}
	}

	for name := range first {
		if _, ok := second[name]; !ok {
			diff.Removed = append(diff.Removed, name)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Modified)

	diff.Summary = summarize(diff)

	return diff, nil
}

// nodesByName serializes each node under its name, failing on duplicates.
func nodesByName(snapshot *models.Snapshot) (map[string]json.RawMessage, error) {
	nodes := make(map[string]json.RawMessage, len(snapshot.Workflow.Nodes))

	var duplicates []string

	for _, node := range snapshot.Workflow.Nodes {
		if _, ok := nodes[node.Name]; ok {
			duplicates = append(duplicates, node.Name)

			continue
		}

		data, err := json.Marshal(node)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize node %q: %w", node.Name, err)
		}

		nodes[node.Name] = data
	}

	if len(duplicates) > 0 {
		sort.Strings(duplicates)

		return nil, fmt.Errorf("%w: %s", ErrDuplicateNodeNames, strings.Join(duplicates, ", "))
	}

	return nodes, nil
}

func summarize(diff *models.WorkflowDiff) string {
	if len(diff.Added) == 0 && len(diff.Removed) == 0 && len(diff.Modified) == 0 {
		return noChangesSummary
	}

	return fmt.Sprintf("%d added, %d removed, %d modified",
		len(diff.Added), len(diff.Removed), len(diff.Modified))
}
