package models

// CredentialRef points a node at a stored platform credential.
type CredentialRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Node represents a single typed step in a workflow. Within one workflow both
// ID and Name are unique; the platform treats Name as the effective identity
// key even though ID is the primary key.
type Node struct {
	ID             string                   `json:"id"          validate:"required"`
	Name           string                   `json:"name"        validate:"required,min=1"`
	Type           string                   `json:"type"        validate:"required"`
	TypeVersion    float64                  `json:"typeVersion"`
	Position       [2]float64               `json:"position"`
	Parameters     map[string]any           `json:"parameters"`
	Credentials    map[string]CredentialRef `json:"credentials,omitempty"`
	Disabled       bool                     `json:"disabled,omitempty"`
	ContinueOnFail bool                     `json:"continueOnFail,omitempty"`
	OnError        string                   `json:"onError,omitempty"`
}

// NodeType describes an installed node type as reported by the platform's
// node-type registry.
type NodeType struct {
	Name string `json:"name"`
}
