package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmittedApplication is the archived record of a successfully submitted
// loan application, written after both CRM calls have succeeded.
type SubmittedApplication struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LeadID          string          `json:"lead_id" db:"lead_id"`
	AccountID       string          `json:"account_id" db:"account_id"`
	SalesforceID    string          `json:"salesforce_id" db:"salesforce_id"`
	Name            string          `json:"name" db:"name"`
	Email           string          `json:"email" db:"email"`
	Phone           string          `json:"phone" db:"phone"`
	LoanAmount      int             `json:"loan_amount" db:"loan_amount"`
	LoanType        string          `json:"loan_type" db:"loan_type"`
	Personality     string          `json:"personality" db:"personality"`
	LoanPurpose     string          `json:"loan_purpose" db:"loan_purpose"`
	MonthlyEstimate decimal.Decimal `json:"monthly_estimate" db:"monthly_estimate"`
	SubmittedAt     time.Time       `json:"submitted_at" db:"submitted_at"`
}
