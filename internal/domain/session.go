package domain

import "time"

// Wizard steps
const (
	StepQuiz        = 0
	StepLoanDetails = 1
	StepContact     = 2
	StepCompleted   = 3
)

// ClampStep forces a wizard position into [StepQuiz, StepCompleted].
func ClampStep(step int) int {
	if step < StepQuiz {
		return StepQuiz
	}
	if step > StepCompleted {
		return StepCompleted
	}
	return step
}

// SavedSession is the durable snapshot used to resume a wizard session
// across reloads. A session older than the expiry window is treated as absent.
type SavedSession struct {
	FormData  LoanFormData `json:"formData"`
	Step      int          `json:"step"`
	Timestamp int64        `json:"timestamp"` // epoch millis
}

// Age returns how long ago the snapshot was saved.
func (s SavedSession) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.Timestamp))
}

// SubmissionState tracks the two-phase network submission.
// IsSubmitting and a non-empty Error are mutually exclusive in steady state;
// IsSuccess implies both responses are present.
type SubmissionState struct {
	IsSubmitting    bool         `json:"isSubmitting"`
	IsSuccess       bool         `json:"isSuccess"`
	Error           string       `json:"error,omitempty"`
	LeadResponse    *CRMResponse `json:"leadResponse,omitempty"`
	AccountResponse *CRMResponse `json:"accountResponse,omitempty"`
}

// SubmissionPatch is an explicit patch over SubmissionState.
type SubmissionPatch struct {
	IsSubmitting    *bool        `json:"isSubmitting,omitempty"`
	IsSuccess       *bool        `json:"isSuccess,omitempty"`
	Error           *string      `json:"error,omitempty"`
	LeadResponse    *CRMResponse `json:"leadResponse,omitempty"`
	AccountResponse *CRMResponse `json:"accountResponse,omitempty"`
}

// Apply merges the patch into state; present fields always overwrite.
func (p SubmissionPatch) Apply(state *SubmissionState) {
	if p.IsSubmitting != nil {
		state.IsSubmitting = *p.IsSubmitting
	}
	if p.IsSuccess != nil {
		state.IsSuccess = *p.IsSuccess
	}
	if p.Error != nil {
		state.Error = *p.Error
	}
	if p.LeadResponse != nil {
		state.LeadResponse = p.LeadResponse
	}
	if p.AccountResponse != nil {
		state.AccountResponse = p.AccountResponse
	}
}
