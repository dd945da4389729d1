package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/stretchr/testify/mock"
)

// MockRunRepository is a mock.Mock consolidation.RunRepository
type MockRunRepository struct {
	mock.Mock
}

var _ consolidation.RunRepository = (*MockRunRepository)(nil)

func (m *MockRunRepository) Save(ctx context.Context, run *consolidation.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockRunRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.Run, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.Run), args.Error(1)
}

func (m *MockRunRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]consolidation.Run, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.Run), args.Error(1)
}
