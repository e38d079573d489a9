// Package mocks provides testify mocks for the external collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nkko/flowvault/pkg/models"
)

// MockPlatformClient is a mock implementation of the platform.Client interface.
type MockPlatformClient struct {
	mock.Mock
}

func (m *MockPlatformClient) FetchWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockPlatformClient) PushWorkflow(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	args := m.Called(ctx, id, workflow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockPlatformClient) ListNodeTypes(ctx context.Context) ([]models.NodeType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.NodeType), args.Error(1)
}
