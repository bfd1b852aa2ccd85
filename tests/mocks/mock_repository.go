package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/umeloans/loan-wizard/internal/domain"
)

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Archive(ctx context.Context, app *domain.SubmittedApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByLeadID(ctx context.Context, leadID string) (*domain.SubmittedApplication, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmittedApplication), args.Error(1)
}
