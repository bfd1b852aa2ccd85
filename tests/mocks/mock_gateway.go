package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/umeloans/loan-wizard/internal/domain"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SaveProgress(ctx context.Context, sessionID string, formData domain.LoanFormData, step int) error {
	args := m.Called(ctx, sessionID, formData, step)
	return args.Error(0)
}

func (m *MockGateway) GetProgress(ctx context.Context, sessionID string) (*domain.SavedSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedSession), args.Error(1)
}

func (m *MockGateway) ClearProgress(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
