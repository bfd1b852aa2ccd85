// Package crmmock provides the demo-mode CRM backend. It mirrors the real
// lead/account endpoints closely enough to drive the full wizard flow,
// including forced failures keyed off well-known email addresses.
package crmmock

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/umeloans/loan-wizard/internal/domain"
	"github.com/umeloans/loan-wizard/pkg/response"
)

// Forced-error trigger emails. Submitting with one of these always fails
// with the mapped status, which keeps demo walkthroughs reproducible.
var forcedErrors = map[string]forcedError{
	"test@error.com": {status: http.StatusInternalServerError, message: "Forced server error for testing"},
	"demo@500.com":   {status: http.StatusInternalServerError, message: "Internal server error. Please try again."},
	"user@422.com":   {status: http.StatusUnprocessableEntity, message: "Validation failed. Please check your information."},
	"user@503.com":   {status: http.StatusServiceUnavailable, message: "Service temporarily unavailable. Please try again later."},
}

type forcedError struct {
	status  int
	message string
}

// seeded emails for the check-email endpoint
var existingEmails = map[string]bool{
	"test@example.com":   true,
	"demo@test.com":      true,
	"existing@email.com": true,
}

// Server is the mock CRM handler set.
type Server struct {
	log *zap.Logger

	// FailureRate injects random failures in [0,1). Zero keeps the mock
	// deterministic, which tests rely on.
	failureRate float64
	delay       time.Duration
}

// New creates a mock CRM. delay simulates network latency per request.
func New(log *zap.Logger, failureRate float64, delay time.Duration) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:         log,
		failureRate: failureRate,
		delay:       delay,
	}
}

// Register mounts the mock CRM routes on the given router.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/leads", s.CreateLead).Methods("POST")
	router.HandleFunc("/accounts", s.CreateAccount).Methods("POST")
	router.HandleFunc("/check-email/{email}", s.CheckEmail).Methods("GET")
	router.HandleFunc("/health", s.Health).Methods("GET")
}

// CreateLead handles POST /leads.
func (s *Server) CreateLead(w http.ResponseWriter, r *http.Request) {
	s.simulateLatency()

	var payload domain.LeadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeCRMError(w, http.StatusBadRequest, "invalid lead payload", "ERR_400")
		return
	}

	if fe, ok := forcedErrors[payload.Email]; ok {
		s.log.Info("mock crm: forcing lead error", zap.String("email", payload.Email))
		writeCRMError(w, fe.status, fe.message, errCode(fe.status))
		return
	}

	if s.randomFailure() {
		writeCRMError(w, http.StatusInternalServerError, "Internal server error. Please try again.", "ERR_500")
		return
	}

	resp := domain.CRMResponse{
		Status:       domain.CRMStatusSuccess,
		LeadID:       generateID("LEAD"),
		SalesforceID: salesforceID(),
		AccountID:    "", // set after account creation
		Message:      "Lead submitted successfully",
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateAccount handles POST /accounts.
func (s *Server) CreateAccount(w http.ResponseWriter, r *http.Request) {
	s.simulateLatency()

	var payload domain.AccountPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeCRMError(w, http.StatusBadRequest, "invalid account payload", "ERR_400")
		return
	}

	if payload.LeadID == "" {
		writeCRMError(w, http.StatusUnprocessableEntity, "leadId is required", "ERR_ACCOUNT_422")
		return
	}

	if fe, ok := forcedErrors[payload.Email]; ok {
		s.log.Info("mock crm: forcing account error", zap.String("email", payload.Email))
		writeCRMError(w, fe.status, "Account creation failed: "+fe.message, "ERR_ACCOUNT_"+errCode(fe.status)[4:])
		return
	}

	if s.randomFailure() {
		writeCRMError(w, http.StatusInternalServerError, "Failed to create account. Please contact support.", "ERR_ACCOUNT_CREATION")
		return
	}

	resp := domain.CRMResponse{
		Status:       domain.CRMStatusSuccess,
		LeadID:       payload.LeadID,
		SalesforceID: salesforceID(),
		AccountID:    generateID("ACC"),
		Message:      "Account created successfully",
	}

	writeJSON(w, http.StatusOK, resp)
}

// CheckEmail handles GET /check-email/{email}.
func (s *Server) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	writeJSON(w, http.StatusOK, map[string]bool{"exists": existingEmails[email]})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": "1.0.0",
	})
}

func (s *Server) simulateLatency() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func (s *Server) randomFailure() bool {
	return s.failureRate > 0 && rand.Float64() < s.failureRate
}

func generateID(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + suffix
}

func salesforceID() string {
	return "003" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:15])
}

func errCode(status int) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return "ERR_422"
	case http.StatusServiceUnavailable:
		return "ERR_503"
	default:
		return "ERR_500"
	}
}

func writeCRMError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, domain.CRMResponse{
		Status:  domain.CRMStatusError,
		Message: message,
		Code:    code,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
