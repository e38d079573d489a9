// Package platform is the boundary to the remote automation platform. The
// integrity engine treats it as an opaque collaborator exposing workflow
// fetch/update and node-type introspection.
package platform

import (
	"context"
	"errors"

	"github.com/nkko/flowvault/pkg/models"
)

// ErrWorkflowNotFound indicates the platform has no workflow for the given id.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Client is the remote platform API surface the integrity engine consumes.
type Client interface {
	// FetchWorkflow returns the current definition of a workflow.
	FetchWorkflow(ctx context.Context, id string) (*models.Workflow, error)

	// PushWorkflow replaces a workflow's definition and returns the stored result.
	PushWorkflow(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error)

	// ListNodeTypes returns the installed node types.
	ListNodeTypes(ctx context.Context) ([]models.NodeType, error)
}
