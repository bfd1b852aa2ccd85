package wizard

import (
	"sync"
	"time"

	"github.com/umeloans/loan-wizard/internal/domain"
)

// Store is the single source of truth for one wizard session: form data,
// wizard position and the completion/terms/submission flags. Every mutation
// goes through an action method; callers never touch the fields directly.
// Persistence is not a Store concern — the service observes mutations and
// snapshots the durable subset afterwards.
type Store struct {
	mu sync.Mutex

	formData        domain.LoanFormData
	currentStep     int
	isCompleted     bool
	showWelcomeBack bool
	agreedToTerms   bool
	lastSaved       time.Time
	submission      domain.SubmissionState

	now func() time.Time
}

// State is a read-only copy of the container's contents.
type State struct {
	FormData        domain.LoanFormData    `json:"formData"`
	CurrentStep     int                    `json:"currentStep"`
	IsCompleted     bool                   `json:"isCompleted"`
	ShowWelcomeBack bool                   `json:"showWelcomeBack"`
	AgreedToTerms   bool                   `json:"agreedToTerms"`
	LastSaved       time.Time              `json:"lastSaved,omitzero"`
	Submission      domain.SubmissionState `json:"submission"`
}

// NewStore creates a container at its defaults.
func NewStore() *Store {
	return &Store{
		formData: domain.NewLoanFormData(),
		now:      time.Now,
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		FormData:        s.formData,
		CurrentStep:     s.currentStep,
		IsCompleted:     s.isCompleted,
		ShowWelcomeBack: s.showWelcomeBack,
		AgreedToTerms:   s.agreedToTerms,
		LastSaved:       s.lastSaved,
		Submission:      s.submission,
	}
}

// FormData returns a copy of the current form data.
func (s *Store) FormData() domain.LoanFormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formData
}

// CurrentStep returns the wizard position.
func (s *Store) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStep
}

// Submission returns a copy of the submission sub-state.
func (s *Store) Submission() domain.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

// UpdateFormData merges the patch into the form data and stamps last-saved.
// Field validation is the owning step's responsibility before calling this;
// the patch itself keeps amounts and enums inside their domain.
func (s *Store) UpdateFormData(patch domain.FormPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch.Apply(&s.formData)
	s.lastSaved = s.now()
}

// SetStep sets an absolute wizard position, clamped to the valid range.
func (s *Store) SetStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = domain.ClampStep(step)
}

// NextStep advances the wizard by one position.
func (s *Store) NextStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = domain.ClampStep(s.currentStep + 1)
}

// PreviousStep retreats the wizard by one position.
func (s *Store) PreviousStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = domain.ClampStep(s.currentStep - 1)
}

// CompleteForm marks the wizard completed without resetting data.
func (s *Store) CompleteForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isCompleted = true
}

// ResetForm restores form data, position and flags to their defaults.
func (s *Store) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formData = domain.NewLoanFormData()
	s.currentStep = domain.StepQuiz
	s.isCompleted = false
	s.agreedToTerms = false
	s.submission = domain.SubmissionState{}
	s.lastSaved = time.Time{}
}

// RestoreSession merges a saved snapshot into the container, sets the
// position directly and dismisses the welcome-back prompt.
func (s *Store) RestoreSession(formData domain.LoanFormData, step int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formData = formData
	s.currentStep = domain.ClampStep(step)
	s.showWelcomeBack = false
	s.lastSaved = s.now()
}

// SetShowWelcomeBack toggles the restore-or-discard prompt flag.
func (s *Store) SetShowWelcomeBack(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showWelcomeBack = show
}

// SetAgreedToTerms records the terms-agreement checkbox.
func (s *Store) SetAgreedToTerms(agreed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agreedToTerms = agreed
}

// SetSubmission merges the patch into the submission sub-state.
func (s *Store) SetSubmission(patch domain.SubmissionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.Apply(&s.submission)
}

// ResetSubmission clears the submission sub-state.
func (s *Store) ResetSubmission() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submission = domain.SubmissionState{}
}

// BeginSubmission atomically flips the container into the submitting state.
// It reports false when a submission is already in flight, so concurrent
// submit attempts from the same session cannot double-fire.
func (s *Store) BeginSubmission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submission.IsSubmitting {
		return false
	}

	s.submission.IsSubmitting = true
	s.submission.IsSuccess = false
	s.submission.Error = ""
	return true
}
