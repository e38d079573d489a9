// Package models defines the core domain models for node-based workflow automation.
package models

// Workflow represents a node-based workflow definition as held by the
// automation platform: a set of typed nodes plus the directed, multi-port
// connections between them.
type Workflow struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"              validate:"required"`
	Nodes       []*Node        `json:"nodes"             validate:"required"`
	Connections ConnectionMap  `json:"connections"`
	Active      bool           `json:"active"`
	Settings    map[string]any `json:"settings,omitempty"`
	StaticData  map[string]any `json:"staticData,omitempty"`
	PinData     map[string]any `json:"pinData,omitempty"`
	VersionID   string         `json:"versionId,omitempty"`
}

// NodeByID returns the node with the given id, or nil when no such node exists.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// NodeIDs returns the set of node ids present in the workflow.
func (w *Workflow) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(w.Nodes))
	for _, node := range w.Nodes {
		ids[node.ID] = true
	}

	return ids
}
