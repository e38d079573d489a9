// Package web provides the HTTP surface over the integrity engine: backup,
// validation, lint and lock endpoints. Handlers are thin; all semantics live
// in the services and below.
package web

import (
	"github.com/nkko/flowvault/pkg/models"
	"github.com/nkko/flowvault/pkg/validation"
)

// CreateBackupRequest is the body for snapshot creation.
type CreateBackupRequest struct {
	Description string `json:"description"`
}

// RestoreBackupRequest is the body for snapshot restore.
type RestoreBackupRequest struct {
	AutoBackupCurrent *bool `json:"autoBackupCurrent,omitempty"`
}

// WorkflowPayload is a workflow as submitted for validation: nodes are typed,
// connections arrive as unvalidated JSON and cross the strict-conversion
// boundary before any graph algorithm sees them.
type WorkflowPayload struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Nodes       []*models.Node `json:"nodes"`
	Connections any            `json:"connections"`
	Active      bool           `json:"active"`
	Settings    map[string]any `json:"settings,omitempty"`
	StaticData  map[string]any `json:"staticData,omitempty"`
	PinData     map[string]any `json:"pinData,omitempty"`
	VersionID   string         `json:"versionId,omitempty"`
}

// ToWorkflow converts the payload into the strict model, returning any
// connection shape violations found at the boundary.
func (p *WorkflowPayload) ToWorkflow() (*models.Workflow, []string) {
	connections, violations := validation.ConvertConnections(p.Connections)

	return &models.Workflow{
		ID:          p.ID,
		Name:        p.Name,
		Nodes:       p.Nodes,
		Connections: connections,
		Active:      p.Active,
		Settings:    p.Settings,
		StaticData:  p.StaticData,
		PinData:     p.PinData,
		VersionID:   p.VersionID,
	}, violations
}

// LockStatusResponse reports a resource's lock state.
type LockStatusResponse struct {
	ResourceID string   `json:"resourceId"`
	Locked     bool     `json:"locked"`
	Holders    []string `json:"holders"`
}
