package backup

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema is the structural contract a snapshot document must satisfy
// before its workflow is pushed anywhere: metadata and workflow present,
// workflow.nodes an array. Anything else is a corrupted backup.
const snapshotSchema = `{
	"type": "object",
	"required": ["metadata", "workflow"],
	"properties": {
		"metadata": {
			"type": "object",
			"required": ["backupId", "workflowId", "timestamp"]
		},
		"workflow": {
			"type": "object",
			"required": ["nodes"],
			"properties": {
				"nodes": {"type": "array"}
			}
		}
	}
}`

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

// validateSnapshotDocument checks the raw snapshot bytes against the schema.
func validateSnapshotDocument(data []byte) error {
	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrCorruptedBackup, strings.Join(details, "; "))
}
