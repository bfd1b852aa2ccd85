package repository

import (
	"context"

	"github.com/umeloans/loan-wizard/internal/domain"
)

// ApplicationRepository defines the interface for the submitted-application archive
type ApplicationRepository interface {
	// Archive stores a successfully submitted application
	Archive(ctx context.Context, app *domain.SubmittedApplication) error

	// GetByLeadID retrieves an archived application by its CRM lead ID
	GetByLeadID(ctx context.Context, leadID string) (*domain.SubmittedApplication, error)
}
