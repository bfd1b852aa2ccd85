package repository

import (
	"context"

	"github.com/umeloans/loan-wizard/internal/domain"

	"github.com/jmoiron/sqlx"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Archive(ctx context.Context, app *domain.SubmittedApplication) error {
	query := `
		INSERT INTO submitted_applications (id, lead_id, account_id, salesforce_id, name, email, phone, loan_amount, loan_type, personality, loan_purpose, monthly_estimate, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		app.ID,
		app.LeadID,
		app.AccountID,
		app.SalesforceID,
		app.Name,
		app.Email,
		app.Phone,
		app.LoanAmount,
		app.LoanType,
		app.Personality,
		app.LoanPurpose,
		app.MonthlyEstimate,
		app.SubmittedAt,
	)

	return err
}

func (r *applicationRepository) GetByLeadID(ctx context.Context, leadID string) (*domain.SubmittedApplication, error) {
	query := `
		SELECT id, lead_id, account_id, salesforce_id, name, email, phone, loan_amount, loan_type, personality, loan_purpose, monthly_estimate, submitted_at
		FROM submitted_applications
		WHERE lead_id = $1
	`

	var app domain.SubmittedApplication
	err := r.db.GetContext(ctx, &app, query, leadID)
	if err != nil {
		return nil, err
	}

	return &app, nil
}
