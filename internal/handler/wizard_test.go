package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umeloans/loan-wizard/internal/crm"
	"github.com/umeloans/loan-wizard/internal/crm/crmmock"
	"github.com/umeloans/loan-wizard/internal/domain"
	"github.com/umeloans/loan-wizard/internal/service"
	"github.com/umeloans/loan-wizard/internal/session"
)

// testEnv wires the full request path: handler, service, a miniredis-backed
// gateway and the mock CRM behind a real HTTP server.
type testEnv struct {
	t       *testing.T
	router  *mux.Router
	gateway session.Gateway
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gateway := session.NewRedisGateway(client, session.DefaultKeyPrefix, session.DefaultExpiry)

	crmRouter := mux.NewRouter()
	crmmock.New(nil, 0, 0).Register(crmRouter)
	crmServer := httptest.NewServer(crmRouter)
	t.Cleanup(crmServer.Close)

	crmClient := crm.NewClient(crmServer.URL, 5*time.Second, nil)
	svc := service.NewWizardService(gateway, crmClient, nil, nil)

	router := mux.NewRouter()
	NewWizardHandler(svc).Register(router.PathPrefix("/api/v1").Subrouter())

	return &testEnv{t: t, router: router, gateway: gateway}
}

func (e *testEnv) do(method, path, sessionID string, body interface{}) (int, envelope) {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &env))

	return rec.Code, env
}

func (e *testEnv) payload(env envelope) sessionPayload {
	e.t.Helper()

	var p sessionPayload
	require.NoError(e.t, json.Unmarshal(env.Data, &p))
	return p
}

func TestWizardFlowEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	// open a fresh session, no identifier yet
	status, body := env.do(http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, status)

	p := env.payload(body)
	sessionID := p.SessionID
	require.NotEmpty(t, sessionID)
	assert.Equal(t, domain.StepQuiz, p.State.CurrentStep)
	assert.False(t, p.State.ShowWelcomeBack)
	assert.Equal(t, domain.DefaultLoanAmount, p.State.FormData.LoanAmount)

	// quiz answers
	status, body = env.do(http.MethodPatch, "/application", sessionID, map[string]interface{}{
		"personality": domain.PersonalityPlanner,
		"loanPurpose": domain.LoanPurposeImmediate,
	})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(http.MethodPost, "/application/advance", sessionID, nil)
	require.Equal(t, http.StatusOK, status)
	p = env.payload(body)
	assert.Equal(t, domain.StepLoanDetails, p.State.CurrentStep)
	assert.Equal(t, domain.PersonalityPlanner, p.State.FormData.Personality)

	// loan details
	status, body = env.do(http.MethodPatch, "/application", sessionID, map[string]interface{}{
		"loanAmount": 100000,
		"loanType":   domain.LoanTypeAuto,
	})
	require.Equal(t, http.StatusOK, status)
	p = env.payload(body)
	assert.Equal(t, 100000, p.State.FormData.LoanAmount)
	assert.NotEmpty(t, p.MonthlyEstimate)

	status, _ = env.do(http.MethodPost, "/application/advance", sessionID, nil)
	require.Equal(t, http.StatusOK, status)

	// contact details; phone arrives with display grouping and is stored
	// as pure digits
	status, body = env.do(http.MethodPost, "/application/contact", sessionID, map[string]interface{}{
		"name":          "John Doe",
		"email":         "john@example.com",
		"phone":         "0412 345 678",
		"agreedToTerms": true,
	})
	require.Equal(t, http.StatusOK, status)
	p = env.payload(body)
	assert.Equal(t, "0412345678", p.State.FormData.Phone)
	assert.Equal(t, "0412 345 678", p.PhoneDisplay)

	// submit: lead then account
	status, body = env.do(http.MethodPost, "/application/submit", sessionID, nil)
	require.Equal(t, http.StatusOK, status)
	p = env.payload(body)

	assert.True(t, p.State.Submission.IsSuccess)
	assert.Equal(t, domain.StepCompleted, p.State.CurrentStep)
	assert.True(t, p.State.IsCompleted)
	assert.True(t, strings.HasPrefix(p.State.FormData.LeadID, "LEAD-"))
	assert.True(t, strings.HasPrefix(p.State.FormData.AccountID, "ACC-"))
	assert.True(t, strings.HasPrefix(p.State.FormData.SalesforceID, "003"))
}

func TestSubmitRemoteFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, status)
	sessionID := env.payload(body).SessionID

	// user@503.com forces a remote failure at the lead phase
	status, _ = env.do(http.MethodPost, "/application/contact", sessionID, map[string]interface{}{
		"name":          "John Doe",
		"email":         "user@503.com",
		"phone":         "0412345678",
		"agreedToTerms": true,
	})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(http.MethodPost, "/application/submit", sessionID, nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.False(t, body.Success)
	assert.Equal(t, "Service temporarily unavailable. Please try again later.", body.Message)

	// the session stays submittable: state carries the error, nothing
	// completed
	status, body = env.do(http.MethodGet, "/session", sessionID, nil)
	require.Equal(t, http.StatusOK, status)
	p := env.payload(body)
	assert.False(t, p.State.Submission.IsSuccess)
	assert.False(t, p.State.Submission.IsSubmitting)
	assert.Equal(t, "Service temporarily unavailable. Please try again later.", p.State.Submission.Error)
	assert.False(t, p.State.IsCompleted)
}

func TestContactValidation(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, status)
	sessionID := env.payload(body).SessionID

	tests := []struct {
		name    string
		contact map[string]interface{}
	}{
		{
			name: "invalid email",
			contact: map[string]interface{}{
				"name": "John Doe", "email": "not-an-email", "phone": "0412345678", "agreedToTerms": true,
			},
		},
		{
			name: "short phone",
			contact: map[string]interface{}{
				"name": "John Doe", "email": "john@example.com", "phone": "0412", "agreedToTerms": true,
			},
		},
		{
			name: "missing name",
			contact: map[string]interface{}{
				"email": "john@example.com", "phone": "0412345678", "agreedToTerms": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(http.MethodPost, "/application/contact", sessionID, tt.contact)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.False(t, body.Success)
		})
	}
}

func TestMissingSessionHeader(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, "/application/advance", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, body.Success)
}

func TestWelcomeBackOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// a snapshot from an earlier visit, two steps in
	formData := domain.NewLoanFormData()
	formData.Personality = domain.PersonalityPlanner
	formData.LoanPurpose = domain.LoanPurposeImmediate
	formData.LoanAmount = 100000
	formData.LoanType = domain.LoanTypeAuto
	require.NoError(t, env.gateway.SaveProgress(ctx, "returning-visitor", formData, domain.StepContact))

	status, body := env.do(http.MethodGet, "/session", "returning-visitor", nil)
	require.Equal(t, http.StatusOK, status)
	p := env.payload(body)

	assert.True(t, p.State.ShowWelcomeBack)
	assert.GreaterOrEqual(t, p.SavedSessionAge, int64(0))
	// nothing restored until the visitor chooses
	assert.Equal(t, domain.StepQuiz, p.State.CurrentStep)

	status, body = env.do(http.MethodPost, "/session/restore", "returning-visitor", nil)
	require.Equal(t, http.StatusOK, status)
	p = env.payload(body)

	assert.False(t, p.State.ShowWelcomeBack)
	assert.Equal(t, domain.StepContact, p.State.CurrentStep)
	assert.Equal(t, 100000, p.State.FormData.LoanAmount)
}

func TestDiscardOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	formData := domain.NewLoanFormData()
	formData.LoanAmount = 250000
	require.NoError(t, env.gateway.SaveProgress(ctx, "returning-visitor", formData, domain.StepLoanDetails))

	status, _ := env.do(http.MethodGet, "/session", "returning-visitor", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(http.MethodPost, "/session/discard", "returning-visitor", nil)
	require.Equal(t, http.StatusOK, status)
	p := env.payload(body)

	assert.False(t, p.State.ShowWelcomeBack)
	assert.Equal(t, domain.StepQuiz, p.State.CurrentStep)
	assert.Equal(t, domain.DefaultLoanAmount, p.State.FormData.LoanAmount)

	// the snapshot is gone
	saved, err := env.gateway.GetProgress(ctx, "returning-visitor")
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestPatchClampsAndDrops(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, status)
	sessionID := env.payload(body).SessionID

	status, body = env.do(http.MethodPatch, "/application", sessionID, map[string]interface{}{
		"loanAmount": 900000,
		"loanType":   "yacht",
	})
	require.Equal(t, http.StatusOK, status)
	p := env.payload(body)

	assert.Equal(t, domain.MaxLoanAmount, p.State.FormData.LoanAmount)
	assert.Equal(t, domain.LoanTypePersonal, p.State.FormData.LoanType, "unknown loan types are dropped")
}
