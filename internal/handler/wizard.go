package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/umeloans/loan-wizard/internal/domain"
	"github.com/umeloans/loan-wizard/internal/service"
	"github.com/umeloans/loan-wizard/internal/wizard"
	apperrors "github.com/umeloans/loan-wizard/pkg/errors"
	"github.com/umeloans/loan-wizard/pkg/response"
	"github.com/umeloans/loan-wizard/pkg/utils"
)

// SessionHeader carries the wizard session identifier. The server mints one
// on first contact and echoes it back.
const SessionHeader = "X-Session-ID"

type WizardHandler struct {
	service   *service.WizardService
	validator *validator.Validate
}

func NewWizardHandler(service *service.WizardService) *WizardHandler {
	return &WizardHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Register mounts the wizard routes on the given router.
func (h *WizardHandler) Register(api *mux.Router) {
	api.HandleFunc("/session", h.OpenSession).Methods("GET")
	api.HandleFunc("/session/restore", h.RestoreSession).Methods("POST")
	api.HandleFunc("/session/discard", h.DiscardSession).Methods("POST")
	api.HandleFunc("/session/reset", h.ResetSession).Methods("POST")
	api.HandleFunc("/application", h.PatchApplication).Methods("PATCH")
	api.HandleFunc("/application/advance", h.Advance).Methods("POST")
	api.HandleFunc("/application/back", h.Back).Methods("POST")
	api.HandleFunc("/application/contact", h.SetContact).Methods("POST")
	api.HandleFunc("/application/submit", h.Submit).Methods("POST")
}

// sessionPayload is the wire shape of a wizard session.
type sessionPayload struct {
	SessionID       string       `json:"sessionId"`
	State           wizard.State `json:"state"`
	PhoneDisplay    string       `json:"phoneDisplay,omitempty"`
	MonthlyEstimate string       `json:"monthlyEstimate"`
	SavedSessionAge int64        `json:"savedSessionAgeSeconds,omitempty"`
}

func (h *WizardHandler) payload(sessionID string, state wizard.State) sessionPayload {
	p := sessionPayload{
		SessionID: sessionID,
		State:     state,
		MonthlyEstimate: utils.EstimateMonthlyRepayment(
			state.FormData.LoanAmount,
			domain.APRForLoanType(state.FormData.LoanType),
			domain.EstimateTermMonths,
		).String(),
	}
	if state.FormData.Phone != "" {
		p.PhoneDisplay = utils.FormatPhone(state.FormData.Phone)
	}
	return p
}

// OpenSession handles GET /session: open or resume a wizard session. When a
// resumable snapshot exists the response carries the welcome-back flag and
// the snapshot's age so the client can prompt restore-or-discard.
func (h *WizardHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	sessionID, state, err := h.service.OpenSession(r.Context(), r.Header.Get(SessionHeader))
	if err != nil {
		writeAppError(w, err)
		return
	}

	p := h.payload(sessionID, state)
	if snapshot := h.service.PendingSnapshot(sessionID); snapshot != nil {
		p.SavedSessionAge = int64(snapshot.Age(time.Now()).Seconds())
	}

	w.Header().Set(SessionHeader, sessionID)
	response.Success(w, p)
}

// RestoreSession handles POST /session/restore.
func (h *WizardHandler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.RestoreSession)
}

// DiscardSession handles POST /session/discard ("start fresh").
func (h *WizardHandler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.DiscardSession)
}

// ResetSession handles POST /session/reset ("start over" after completion).
func (h *WizardHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.ResetSession)
}

// Advance handles POST /application/advance.
func (h *WizardHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Advance)
}

// Back handles POST /application/back.
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Back)
}

// Submit handles POST /application/submit, including retries after a failed
// attempt.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Submit)
}

// PatchApplication handles PATCH /application: the quiz and loan-details
// mutation path. Out-of-range amounts are clamped, unknown enum values
// dropped, so nothing stored ever leaves its domain.
func (h *WizardHandler) PatchApplication(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		response.BadRequest(w, "missing "+SessionHeader+" header", nil)
		return
	}

	var patch domain.FormPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	state, err := h.service.ApplyPatch(r.Context(), sessionID, patch)
	if err != nil {
		writeAppError(w, err)
		return
	}

	response.Success(w, h.payload(sessionID, state))
}

// SetContact handles POST /application/contact. Field validation lives here,
// at the owning step; the state container never sees invalid input.
func (h *WizardHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		response.BadRequest(w, "missing "+SessionHeader+" header", nil)
		return
	}

	var contact domain.ContactInfo
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	contact.Phone = utils.NormalizePhone(contact.Phone)
	if err := h.validator.Struct(contact); err != nil {
		response.UnprocessableEntity(w, "invalid contact information", err)
		return
	}

	state, err := h.service.SetContact(r.Context(), sessionID, contact)
	if err != nil {
		writeAppError(w, err)
		return
	}

	response.Success(w, h.payload(sessionID, state))
}

// act wires the common session-scoped action shape.
func (h *WizardHandler) act(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, sessionID string) (wizard.State, error),
) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		response.BadRequest(w, "missing "+SessionHeader+" header", nil)
		return
	}

	state, err := fn(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	response.Success(w, h.payload(sessionID, state))
}

// writeAppError maps the error taxonomy onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		response.InternalServerError(w, "unexpected error", err)
		return
	}

	switch appErr.Code {
	case apperrors.ErrCodeValidation:
		response.ErrorWithCode(w, http.StatusUnprocessableEntity, appErr.Message, appErr.Code)
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeRemote:
		response.ErrorWithCode(w, http.StatusBadGateway, appErr.Message, appErr.Code)
	case apperrors.ErrCodeSubmission:
		response.ErrorWithCode(w, http.StatusConflict, appErr.Message, appErr.Code)
	case apperrors.ErrCodeSessionState:
		response.ErrorWithCode(w, http.StatusNotFound, appErr.Message, appErr.Code)
	default:
		response.ErrorWithCode(w, http.StatusInternalServerError, appErr.Message, appErr.Code)
	}
}
