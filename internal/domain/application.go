package domain

import (
	"github.com/shopspring/decimal"
)

// Personality quiz answers
const (
	PersonalityPlanner  = "planner"
	PersonalityBalanced = "balanced"
	PersonalityDreamer  = "dreamer"
)

// Loan purpose answers
const (
	LoanPurposeImmediate = "immediate"
	LoanPurposeShortTerm = "shortTerm"
	LoanPurposePlanning  = "planning"
)

// Loan types
const (
	LoanTypePersonal = "personal"
	LoanTypeAuto     = "auto"
	LoanTypeHome     = "home"
	LoanTypeBusiness = "business"
)

// Loan amount bounds
const (
	MinLoanAmount     = 1000
	MaxLoanAmount     = 500000
	DefaultLoanAmount = 50000
)

// QuickSelectAmounts are the preset loan amounts offered on the loan details step.
var QuickSelectAmounts = []int{10000, 25000, 50000, 100000, 250000}

// LoanFormData holds the wizard's accumulated answers. Identifier fields are
// populated only after both submission calls succeed.
type LoanFormData struct {
	Personality string `json:"personality,omitempty"`
	LoanPurpose string `json:"loanPurpose,omitempty"`

	LoanAmount int    `json:"loanAmount"`
	LoanType   string `json:"loanType"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	LeadID       string `json:"leadId,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	SalesforceID string `json:"salesforceId,omitempty"`
}

// NewLoanFormData returns form data at its defaults.
func NewLoanFormData() LoanFormData {
	return LoanFormData{
		LoanAmount: DefaultLoanAmount,
		LoanType:   LoanTypePersonal,
	}
}

// ValidLoanType reports whether t is one of the four supported loan types.
func ValidLoanType(t string) bool {
	switch t {
	case LoanTypePersonal, LoanTypeAuto, LoanTypeHome, LoanTypeBusiness:
		return true
	}
	return false
}

// ValidPersonality reports whether p is a known quiz personality answer.
func ValidPersonality(p string) bool {
	switch p {
	case PersonalityPlanner, PersonalityBalanced, PersonalityDreamer:
		return true
	}
	return false
}

// ValidLoanPurpose reports whether p is a known quiz purpose answer.
func ValidLoanPurpose(p string) bool {
	switch p {
	case LoanPurposeImmediate, LoanPurposeShortTerm, LoanPurposePlanning:
		return true
	}
	return false
}

// FormPatch is an explicit patch over LoanFormData. A present (non-nil) field
// always overwrites the current value; absent fields are left unchanged.
type FormPatch struct {
	Personality *string `json:"personality,omitempty"`
	LoanPurpose *string `json:"loanPurpose,omitempty"`

	LoanAmount *int    `json:"loanAmount,omitempty"`
	LoanType   *string `json:"loanType,omitempty"`

	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`

	LeadID       *string `json:"leadId,omitempty"`
	AccountID    *string `json:"accountId,omitempty"`
	SalesforceID *string `json:"salesforceId,omitempty"`
}

// Apply merges the patch into data. Loan amounts are clamped into
// [MinLoanAmount, MaxLoanAmount] and unknown enum values are dropped, so the
// stored record never leaves its domain.
func (p FormPatch) Apply(data *LoanFormData) {
	if p.Personality != nil && ValidPersonality(*p.Personality) {
		data.Personality = *p.Personality
	}
	if p.LoanPurpose != nil && ValidLoanPurpose(*p.LoanPurpose) {
		data.LoanPurpose = *p.LoanPurpose
	}
	if p.LoanAmount != nil {
		data.LoanAmount = clampAmount(*p.LoanAmount)
	}
	if p.LoanType != nil && ValidLoanType(*p.LoanType) {
		data.LoanType = *p.LoanType
	}
	if p.Name != nil {
		data.Name = *p.Name
	}
	if p.Email != nil {
		data.Email = *p.Email
	}
	if p.Phone != nil {
		data.Phone = *p.Phone
	}
	if p.LeadID != nil {
		data.LeadID = *p.LeadID
	}
	if p.AccountID != nil {
		data.AccountID = *p.AccountID
	}
	if p.SalesforceID != nil {
		data.SalesforceID = *p.SalesforceID
	}
}

func clampAmount(amount int) int {
	if amount < MinLoanAmount {
		return MinLoanAmount
	}
	if amount > MaxLoanAmount {
		return MaxLoanAmount
	}
	return amount
}

// ContactInfo is the contact step's validated input.
type ContactInfo struct {
	Name          string `json:"name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,len=10,numeric"`
	AgreedToTerms bool   `json:"agreedToTerms"`
}

// LoanTypeAPRs maps each loan type to its advertised annual percentage rate.
var LoanTypeAPRs = map[string]decimal.Decimal{
	LoanTypePersonal: decimal.NewFromFloat(12.5),
	LoanTypeAuto:     decimal.NewFromFloat(6.5),
	LoanTypeHome:     decimal.NewFromFloat(4.5),
	LoanTypeBusiness: decimal.NewFromFloat(9.5),
}

// EstimateTermMonths is the term used for the indicative repayment estimate.
const EstimateTermMonths = 36

// APRForLoanType returns the APR for a loan type, defaulting to the personal
// loan rate for unknown values.
func APRForLoanType(loanType string) decimal.Decimal {
	if apr, ok := LoanTypeAPRs[loanType]; ok {
		return apr
	}
	return LoanTypeAPRs[LoanTypePersonal]
}
