package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkko/flowvault/pkg/models"
)

func decode(t *testing.T, raw string) any {
	t.Helper()

	var value any

	require.NoError(t, json.Unmarshal([]byte(raw), &value))

	return value
}

func TestConvertConnections_WellFormed(t *testing.T) {
	raw := decode(t, `{
		"a": {"main": [[{"node": "b", "type": "main", "index": 0}]]}
	}`)

	converted, violations := ConvertConnections(raw)

	assert.Empty(t, violations)
	require.Contains(t, converted, "a")
	assert.Equal(t,
		models.ConnectionTarget{Node: "b", Type: "main", Index: 0},
		converted["a"]["main"][0][0])
}

func TestConvertConnections_Nil(t *testing.T) {
	converted, violations := ConvertConnections(nil)

	assert.Empty(t, violations)
	assert.Empty(t, converted)
	assert.NotNil(t, converted)
}

func TestConvertConnections_ContainerNotObject(t *testing.T) {
	converted, violations := ConvertConnections(decode(t, `["not", "an", "object"]`))

	assert.Empty(t, converted)
	assert.Equal(t, []string{"connections container is not an object"}, violations)
}

func TestConvertConnections_MissingIndexDefaultsToZero(t *testing.T) {
	raw := decode(t, `{
		"a": {"main": [[{"node": "b", "type": "main"}]]}
	}`)

	converted, violations := ConvertConnections(raw)

	assert.Empty(t, violations)
	assert.Equal(t, 0, converted["a"]["main"][0][0].Index)
}

func TestConvertConnections_InvalidIndex(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"negative", `{"a": {"main": [[{"node": "b", "type": "main", "index": -1}]]}}`},
		{"fractional", `{"a": {"main": [[{"node": "b", "type": "main", "index": 1.5}]]}}`},
		{"string", `{"a": {"main": [[{"node": "b", "type": "main", "index": "0"}]]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converted, violations := ConvertConnections(decode(t, tt.raw))

			require.Len(t, violations, 1)
			assert.Contains(t, violations[0], "invalid input index")
			// The malformed target is dropped, not half-converted.
			assert.Empty(t, converted["a"]["main"][0])
		})
	}
}

func TestConvertConnections_MalformedShapes(t *testing.T) {
	raw := decode(t, `{
		"a": "not an object",
		"b": {"main": "not an array"},
		"c": {"main": ["not a slot array"]},
		"d": {"main": [["not a target object"]]}
	}`)

	_, violations := ConvertConnections(raw)

	assert.Len(t, violations, 4)
}

func TestConvertConnections_MissingTargetNode(t *testing.T) {
	raw := decode(t, `{
		"a": {"main": [[{"type": "main", "index": 0}]]}
	}`)

	_, violations := ConvertConnections(raw)

	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "missing a target node id")
}
