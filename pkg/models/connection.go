package models

// ConnectionTarget is one directed edge endpoint: the target node, the
// channel the data travels on, and the input slot index on the target.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// ConnectionMap is the sparse adjacency structure the platform uses:
// source node id -> output channel -> output slot index -> fan-out edges.
// The outer slice dimension is the output slot; each slot holds zero or more
// edges leaving it.
type ConnectionMap map[string]map[string][][]ConnectionTarget

// Edges flattens the map into a list of (source, target) pairs, skipping
// entries without a target node id. Structural validation of malformed shapes
// happens elsewhere; this is a convenience for well-formed maps.
func (cm ConnectionMap) Edges() [][2]string {
	var edges [][2]string

	for sourceID, channels := range cm {
		for _, slots := range channels {
			for _, slot := range slots {
				for _, target := range slot {
					if target.Node != "" {
						edges = append(edges, [2]string{sourceID, target.Node})
					}
				}
			}
		}
	}

	return edges
}
