package platform

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkko/flowvault/pkg/models"
)

func TestHTTPClient_FetchWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/workflows/wf-1", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		_ = json.NewEncoder(w).Encode(models.Workflow{ID: "wf-1", Name: "Fetched"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")

	workflow, err := client.FetchWorkflow(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Fetched", workflow.Name)
}

func TestHTTPClient_FetchWorkflow_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")

	_, err := client.FetchWorkflow(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestHTTPClient_PushWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var workflow models.Workflow

		require.NoError(t, json.NewDecoder(r.Body).Decode(&workflow))
		assert.Equal(t, "Pushed", workflow.Name)

		_ = json.NewEncoder(w).Encode(workflow)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")

	updated, err := client.PushWorkflow(t.Context(), "wf-1", &models.Workflow{ID: "wf-1", Name: "Pushed"})
	require.NoError(t, err)
	assert.Equal(t, "Pushed", updated.Name)
}

func TestHTTPClient_ListNodeTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/node-types", r.URL.Path)

		_ = json.NewEncoder(w).Encode([]models.NodeType{{Name: "set"}, {Name: "webhook"}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")

	types, err := client.ListNodeTypes(t.Context())
	require.NoError(t, err)
	assert.Len(t, types, 2)
}

func TestHTTPClient_ServerErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")

	_, err := client.FetchWorkflow(t.Context(), "wf-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}
