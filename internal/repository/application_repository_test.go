package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umeloans/loan-wizard/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func sampleApplication() *domain.SubmittedApplication {
	return &domain.SubmittedApplication{
		ID:              uuid.New(),
		LeadID:          "LEAD-AB12CD34",
		AccountID:       "ACC-AB12CD34",
		SalesforceID:    "003XXXXXXXXXXXXXXX",
		Name:            "John Doe",
		Email:           "john@example.com",
		Phone:           "0412345678",
		LoanAmount:      100000,
		LoanType:        domain.LoanTypeAuto,
		Personality:     domain.PersonalityPlanner,
		LoanPurpose:     domain.LoanPurposeImmediate,
		MonthlyEstimate: decimal.NewFromInt(3066),
		SubmittedAt:     time.Now(),
	}
}

func TestArchive(t *testing.T) {
	app := sampleApplication()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectExec("INSERT INTO submitted_applications").
			WithArgs(
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
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Archive(context.Background(), app)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - database error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectExec("INSERT INTO submitted_applications").
			WillReturnError(errors.New("connection refused"))

		err := repo.Archive(context.Background(), app)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByLeadID(t *testing.T) {
	app := sampleApplication()

	columns := []string{
		"id", "lead_id", "account_id", "salesforce_id", "name", "email", "phone",
		"loan_amount", "loan_type", "personality", "loan_purpose", "monthly_estimate", "submitted_at",
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		rows := sqlmock.NewRows(columns).AddRow(
			app.ID.String(),
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
			app.MonthlyEstimate.String(),
			app.SubmittedAt,
		)

		mock.ExpectQuery("SELECT (.+) FROM submitted_applications").
			WithArgs(app.LeadID).
			WillReturnRows(rows)

		got, err := repo.GetByLeadID(context.Background(), app.LeadID)

		require.NoError(t, err)
		assert.Equal(t, app.LeadID, got.LeadID)
		assert.Equal(t, app.AccountID, got.AccountID)
		assert.Equal(t, app.LoanAmount, got.LoanAmount)
		assert.True(t, got.MonthlyEstimate.Equal(app.MonthlyEstimate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM submitted_applications").
			WithArgs("LEAD-UNKNOWN").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.GetByLeadID(context.Background(), "LEAD-UNKNOWN")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
