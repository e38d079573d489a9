package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkko/flowvault/pkg/models"
)

// chainWorkflow builds n nodes connected in a straight line n0 -> n1 -> ... .
func chainWorkflow(n int) *models.Workflow {
	workflow := &models.Workflow{Name: "chain", Connections: models.ConnectionMap{}}

	for i := range n {
		id := nodeID(i)
		workflow.Nodes = append(workflow.Nodes, &models.Node{ID: id, Name: id, Type: "set"})

		if i+1 < n {
			workflow.Connections[id] = map[string][][]models.ConnectionTarget{
				"main": {{{Node: nodeID(i + 1), Type: "main", Index: 0}}},
			}
		}
	}

	return workflow
}

func nodeID(i int) string {
	return "n" + string(rune('a'+i%26)) + string(rune('a'+i/26%26)) + string(rune('a'+i/676))
}

func edges(pairs ...[2]string) models.ConnectionMap {
	connections := models.ConnectionMap{}
	for _, pair := range pairs {
		connections[pair[0]] = map[string][][]models.ConnectionTarget{
			"main": {{{Node: pair[1], Type: "main", Index: 0}}},
		}
	}

	return connections
}

func TestDetectCycles_TwoNodeCycle(t *testing.T) {
	workflow := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
		},
		Connections: edges([2]string{"a", "b"}, [2]string{"b", "a"}),
	}

	found, err := DetectCycles(workflow, DefaultMaxDepth)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	workflow := &models.Workflow{
		Nodes:       []*models.Node{{ID: "a", Name: "A"}},
		Connections: edges([2]string{"a", "a"}),
	}

	found, err := DetectCycles(workflow, DefaultMaxDepth)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDetectCycles_EmbeddedCycle(t *testing.T) {
	// a -> b -> c -> d -> b: the cycle does not include the entry node.
	workflow := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C"},
			{ID: "d", Name: "D"},
		},
		Connections: edges(
			[2]string{"a", "b"},
			[2]string{"b", "c"},
			[2]string{"c", "d"},
			[2]string{"d", "b"},
		),
	}

	found, err := DetectCycles(workflow, DefaultMaxDepth)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDetectCycles_AcyclicDiamond(t *testing.T) {
	// a fans out to b and c, both converge on d. Converging is not a cycle.
	workflow := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C"},
			{ID: "d", Name: "D"},
		},
		Connections: models.ConnectionMap{
			"a": {"main": {{{Node: "b", Type: "main"}, {Node: "c", Type: "main"}}}},
			"b": {"main": {{{Node: "d", Type: "main"}}}},
			"c": {"main": {{{Node: "d", Type: "main"}}}},
		},
	}

	found, err := DetectCycles(workflow, DefaultMaxDepth)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDetectCycles_DepthExceeded(t *testing.T) {
	workflow := chainWorkflow(50)

	found, err := DetectCycles(workflow, 10)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)
}

func TestDetectCycles_DeepChainWithinBound(t *testing.T) {
	workflow := chainWorkflow(50)

	found, err := DetectCycles(workflow, DefaultMaxDepth)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDetectCycles_IgnoresEdgesToUnknownNodes(t *testing.T) {
	// The dangling edge is a referential-integrity finding, not a cycle
	// input; the walk skips it.
	workflow := &models.Workflow{
		Nodes:       []*models.Node{{ID: "a", Name: "A"}},
		Connections: edges([2]string{"a", "ghost"}),
	}

	found, err := DetectCycles(workflow, DefaultMaxDepth)
	require.NoError(t, err)
	assert.False(t, found)
}
