package domain

// CRM submission response statuses
const (
	CRMStatusSuccess = "success"
	CRMStatusError   = "error"
)

// CRM payload constants
const (
	LeadSource        = "Web Form"
	LeadStatusNew     = "New"
	AccountTypeIndividual = "Individual"
	AccountStatusActive   = "Active"
)

// LeadPayload is the lead-creation request body.
type LeadPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LoanAmount  int    `json:"loanAmount"`
	LoanType    string `json:"loanType"`
	Personality string `json:"personality,omitempty"`
	LoanPurpose string `json:"loanPurpose,omitempty"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	CreatedDate string `json:"createdDate"`
}

// AccountPayload is the account-creation request body. LeadID must be the
// identifier returned by the preceding successful lead call.
type AccountPayload struct {
	LeadID      string `json:"leadId"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	AccountType string `json:"accountType"`
	Status      string `json:"status"`
	CreatedDate string `json:"createdDate"`
}

// CRMResponse is the shared success/error response shape of both CRM
// endpoints. Any status other than "success" is a failure, regardless of the
// HTTP status code it arrived with.
type CRMResponse struct {
	Status       string `json:"status"`
	LeadID       string `json:"leadId"`
	SalesforceID string `json:"salesforceId"`
	AccountID    string `json:"accountId"`
	Message      string `json:"message,omitempty"`
	Code         string `json:"code,omitempty"`
}

// IsSuccess reports whether the response carries a success status.
func (r *CRMResponse) IsSuccess() bool {
	return r != nil && r.Status == CRMStatusSuccess
}
