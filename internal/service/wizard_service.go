package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umeloans/loan-wizard/internal/crm"
	"github.com/umeloans/loan-wizard/internal/domain"
	"github.com/umeloans/loan-wizard/internal/repository"
	"github.com/umeloans/loan-wizard/internal/session"
	"github.com/umeloans/loan-wizard/internal/wizard"
	apperrors "github.com/umeloans/loan-wizard/pkg/errors"
	"github.com/umeloans/loan-wizard/pkg/utils"
)

// WizardService owns the wizard sessions: one state container per session,
// snapshotting after qualifying mutations, the restore-or-discard decision at
// session open, and the two-phase submission sequence.
type WizardService struct {
	gateway session.Gateway
	crm     crm.Submitter
	appRepo repository.ApplicationRepository
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*wizard.Store
	pending  map[string]*domain.SavedSession
}

func NewWizardService(
	gateway session.Gateway,
	submitter crm.Submitter,
	appRepo repository.ApplicationRepository,
	log *zap.Logger,
) *WizardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WizardService{
		gateway:  gateway,
		crm:      submitter,
		appRepo:  appRepo,
		log:      log,
		sessions: make(map[string]*wizard.Store),
		pending:  make(map[string]*domain.SavedSession),
	}
}

// OpenSession returns the container for sessionID, creating it when absent.
// An empty sessionID mints a new one. On first open, a non-expired snapshot
// at a position past the quiz raises the welcome-back prompt; the snapshot is
// held until the client chooses restore or discard. No silent restore.
func (s *WizardService) OpenSession(ctx context.Context, sessionID string) (string, wizard.State, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	store, exists := s.sessions[sessionID]
	if !exists {
		store = wizard.NewStore()
		s.sessions[sessionID] = store
	}
	s.mu.Unlock()

	if !exists {
		snapshot, err := s.gateway.GetProgress(ctx, sessionID)
		if err != nil {
			// Degrade to "no saved session"; the wizard must not crash on a
			// broken or corrupt store.
			s.log.Warn("failed to read saved session",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			snapshot = nil
		}

		if snapshot != nil && snapshot.Step > domain.StepQuiz {
			store.SetShowWelcomeBack(true)
			s.mu.Lock()
			s.pending[sessionID] = snapshot
			s.mu.Unlock()
		}
	}

	return sessionID, store.State(), nil
}

// PendingSnapshot returns the snapshot awaiting a restore-or-discard choice.
func (s *WizardService) PendingSnapshot(sessionID string) *domain.SavedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[sessionID]
}

// RestoreSession merges the held snapshot into the container and dismisses
// the prompt.
func (s *WizardService) RestoreSession(ctx context.Context, sessionID string) (wizard.State, error) {
	store := s.store(sessionID)

	s.mu.Lock()
	snapshot := s.pending[sessionID]
	delete(s.pending, sessionID)
	s.mu.Unlock()

	if snapshot == nil {
		store.SetShowWelcomeBack(false)
		return store.State(), apperrors.NewAppError(
			apperrors.ErrCodeSessionState,
			"No saved session to restore",
			apperrors.ErrSessionNotFound,
		)
	}

	store.RestoreSession(snapshot.FormData, snapshot.Step)
	s.snapshot(ctx, sessionID, store)

	s.log.Info("session restored",
		zap.String("session_id", sessionID),
		zap.Int("step", snapshot.Step),
	)

	return store.State(), nil
}

// DiscardSession is the "start fresh" choice: defaults restored, prompt
// dismissed, durable snapshot deleted.
func (s *WizardService) DiscardSession(ctx context.Context, sessionID string) (wizard.State, error) {
	store := s.store(sessionID)

	s.mu.Lock()
	delete(s.pending, sessionID)
	s.mu.Unlock()

	store.ResetForm()
	store.SetShowWelcomeBack(false)

	if err := s.gateway.ClearProgress(ctx, sessionID); err != nil {
		s.log.Warn("failed to clear saved session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return store.State(), nil
}

// ResetSession restores defaults and deletes the snapshot (the success
// screen's "start over" action).
func (s *WizardService) ResetSession(ctx context.Context, sessionID string) (wizard.State, error) {
	return s.DiscardSession(ctx, sessionID)
}

// ApplyPatch merges form fields (quiz and loan-details paths) and snapshots
// the new state.
func (s *WizardService) ApplyPatch(ctx context.Context, sessionID string, patch domain.FormPatch) (wizard.State, error) {
	store := s.store(sessionID)
	store.UpdateFormData(patch)
	s.snapshot(ctx, sessionID, store)
	return store.State(), nil
}

// Advance moves the wizard forward one step and snapshots.
func (s *WizardService) Advance(ctx context.Context, sessionID string) (wizard.State, error) {
	store := s.store(sessionID)
	store.NextStep()
	s.snapshot(ctx, sessionID, store)
	return store.State(), nil
}

// Back moves the wizard back one step and snapshots.
func (s *WizardService) Back(ctx context.Context, sessionID string) (wizard.State, error) {
	store := s.store(sessionID)
	store.PreviousStep()
	s.snapshot(ctx, sessionID, store)
	return store.State(), nil
}

// SetContact records validated contact details and the terms agreement.
// Field validation happens at the handler; the phone arrives normalized to
// pure digits.
func (s *WizardService) SetContact(ctx context.Context, sessionID string, contact domain.ContactInfo) (wizard.State, error) {
	store := s.store(sessionID)

	phone := utils.NormalizePhone(contact.Phone)
	store.UpdateFormData(domain.FormPatch{
		Name:  &contact.Name,
		Email: &contact.Email,
		Phone: &phone,
	})
	store.SetAgreedToTerms(contact.AgreedToTerms)
	s.snapshot(ctx, sessionID, store)

	return store.State(), nil
}

// Submit runs the two-phase submission: create the lead, then create the
// account with the returned lead identifier. Both phases are sequential.
// A failure at either phase lands in the submission sub-state with a
// user-facing message and leaves the wizard at the contact step; retrying
// re-runs the whole sequence from lead creation.
func (s *WizardService) Submit(ctx context.Context, sessionID string) (wizard.State, error) {
	store := s.store(sessionID)

	if err := s.checkReadyToSubmit(store); err != nil {
		return store.State(), err
	}

	if !store.BeginSubmission() {
		return store.State(), apperrors.WrapSubmissionInFlight()
	}

	data := store.FormData()

	leadResp, err := s.crm.SubmitLead(ctx, data)
	if err != nil {
		return s.failSubmission(store, sessionID, "lead", err)
	}
	store.SetSubmission(domain.SubmissionPatch{LeadResponse: leadResp})

	accountResp, err := s.crm.CreateAccount(ctx, leadResp.LeadID, data)
	if err != nil {
		return s.failSubmission(store, sessionID, "account", err)
	}

	store.UpdateFormData(domain.FormPatch{
		LeadID:       &leadResp.LeadID,
		AccountID:    &accountResp.AccountID,
		SalesforceID: &accountResp.SalesforceID,
	})

	submitting := false
	success := true
	clearErr := ""
	store.SetSubmission(domain.SubmissionPatch{
		IsSubmitting:    &submitting,
		IsSuccess:       &success,
		Error:           &clearErr,
		AccountResponse: accountResp,
	})

	store.SetStep(domain.StepCompleted)
	store.CompleteForm()

	// The snapshot's job is done once the application is submitted.
	if err := s.gateway.ClearProgress(ctx, sessionID); err != nil {
		s.log.Warn("failed to clear snapshot after submission",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	s.archive(ctx, store.FormData())

	s.log.Info("application submitted",
		zap.String("session_id", sessionID),
		zap.String("lead_id", leadResp.LeadID),
		zap.String("account_id", accountResp.AccountID),
	)

	return store.State(), nil
}

func (s *WizardService) checkReadyToSubmit(store *wizard.Store) error {
	state := store.State()

	if state.FormData.Name == "" || state.FormData.Email == "" || state.FormData.Phone == "" {
		return apperrors.WrapValidationError("contact", "contact details are incomplete")
	}
	if !state.AgreedToTerms {
		return apperrors.NewAppError(
			apperrors.ErrCodeValidation,
			"Please agree to the terms and conditions",
			apperrors.ErrTermsNotAgreed,
		)
	}
	return nil
}

// failSubmission writes the failure into the submission sub-state. The
// wizard stays where it is; the error is retryable, never thrown upward.
func (s *WizardService) failSubmission(store *wizard.Store, sessionID, phase string, err error) (wizard.State, error) {
	message := apperrors.UserMessage(err)

	submitting := false
	store.SetSubmission(domain.SubmissionPatch{
		IsSubmitting: &submitting,
		Error:        &message,
	})

	s.log.Warn("submission failed",
		zap.String("session_id", sessionID),
		zap.String("phase", phase),
		zap.Error(err),
	)

	return store.State(), err
}

// archive stores the submitted application; failures are logged, not
// surfaced, because the CRM already holds the record of truth.
func (s *WizardService) archive(ctx context.Context, data domain.LoanFormData) {
	if s.appRepo == nil {
		return
	}

	app := &domain.SubmittedApplication{
		ID:           uuid.New(),
		LeadID:       data.LeadID,
		AccountID:    data.AccountID,
		SalesforceID: data.SalesforceID,
		Name:         data.Name,
		Email:        data.Email,
		Phone:        data.Phone,
		LoanAmount:   data.LoanAmount,
		LoanType:     data.LoanType,
		Personality:  data.Personality,
		LoanPurpose:  data.LoanPurpose,
		MonthlyEstimate: utils.EstimateMonthlyRepayment(
			data.LoanAmount,
			domain.APRForLoanType(data.LoanType),
			domain.EstimateTermMonths,
		),
		SubmittedAt: time.Now(),
	}

	if err := s.appRepo.Archive(ctx, app); err != nil {
		s.log.Warn("failed to archive submitted application",
			zap.String("lead_id", app.LeadID),
			zap.Error(err),
		)
	}
}

// store returns the container for sessionID, creating one on demand.
func (s *WizardService) store(sessionID string) *wizard.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.sessions[sessionID]
	if !ok {
		store = wizard.NewStore()
		s.sessions[sessionID] = store
	}
	return store
}

// snapshot persists the durable subset (form data + step) after a mutation.
// Storage failures degrade to "no persistence this turn".
func (s *WizardService) snapshot(ctx context.Context, sessionID string, store *wizard.Store) {
	if err := s.gateway.SaveProgress(ctx, sessionID, store.FormData(), store.CurrentStep()); err != nil {
		s.log.Warn("failed to save progress",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
