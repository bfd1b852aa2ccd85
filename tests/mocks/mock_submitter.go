package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/umeloans/loan-wizard/internal/domain"
)

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitLead(ctx context.Context, data domain.LoanFormData) (*domain.CRMResponse, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CRMResponse), args.Error(1)
}

func (m *MockSubmitter) CreateAccount(ctx context.Context, leadID string, data domain.LoanFormData) (*domain.CRMResponse, error) {
	args := m.Called(ctx, leadID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CRMResponse), args.Error(1)
}
