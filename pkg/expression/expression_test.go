package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkko/flowvault/pkg/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{"single expression", "{{ $json.name }}", []string{"$json.name"}},
		{"multiple expressions", "{{ $json.a }}-{{ $json.b }}", []string{"$json.a", "$json.b"}},
		{"no expressions", "plain text", []string{}},
		{"non-string input", 42, []string{}},
		{"empty expression", "{{}}", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.input))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		valid bool
	}{
		{"known root", "$json.name", true},
		{"known root with call", "$now.plus(1, 'day')", true},
		{"no variables", "1 + 2", true},
		{"balanced nesting", "($json.a + ($json.b))", true},
		{"unknown root", "$bogus.x", false},
		{"unclosed paren", "(1 + 2", false},
		{"close before open", ")(", false},
		{"extra close", "$json.a)", false},
		{"workflow root", "$workflow.id", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.expr)
			assert.Equal(t, tt.valid, result.Valid)

			if !tt.valid {
				assert.NotEmpty(t, result.Error)
			}
		})
	}
}

func TestValidateWorkflow(t *testing.T) {
	workflow := &models.Workflow{
		Name: "Test",
		Nodes: []*models.Node{
			{
				ID:   "n1",
				Name: "Good Node",
				Parameters: map[string]any{
					"url": "https://example.com/{{ $json.path }}",
				},
			},
			{
				ID:   "n2",
				Name: "Bad Node",
				Parameters: map[string]any{
					"value": "{{ $unknown.field }}",
					"nested": map[string]any{
						"deep": []any{"{{ (1 + 2 }}"},
					},
				},
			},
		},
	}

	result := ValidateWorkflow(workflow)

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	for _, msg := range result.Errors {
		assert.Contains(t, msg, "Bad Node")
	}
}

func TestValidateWorkflow_NoExpressions(t *testing.T) {
	workflow := &models.Workflow{
		Name: "Plain",
		Nodes: []*models.Node{
			{ID: "n1", Name: "Static", Parameters: map[string]any{"value": "hello"}},
		},
	}

	result := ValidateWorkflow(workflow)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}
