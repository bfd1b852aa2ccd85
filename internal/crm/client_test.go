package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umeloans/loan-wizard/internal/crm/crmmock"
	"github.com/umeloans/loan-wizard/internal/domain"
	apperrors "github.com/umeloans/loan-wizard/pkg/errors"
)

func newMockCRMServer(t *testing.T) *httptest.Server {
	t.Helper()

	router := mux.NewRouter()
	crmmock.New(nil, 0, 0).Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func testFormData() domain.LoanFormData {
	data := domain.NewLoanFormData()
	data.Personality = domain.PersonalityPlanner
	data.LoanPurpose = domain.LoanPurposeImmediate
	data.LoanAmount = 100000
	data.LoanType = domain.LoanTypeAuto
	data.Name = "John Doe"
	data.Email = "john@example.com"
	data.Phone = "0412345678"
	return data
}

func TestSubmitLeadSuccess(t *testing.T) {
	server := newMockCRMServer(t)
	client := NewClient(server.URL, DefaultTimeout, nil)

	resp, err := client.SubmitLead(context.Background(), testFormData())
	require.NoError(t, err)

	assert.Equal(t, domain.CRMStatusSuccess, resp.Status)
	assert.NotEmpty(t, resp.LeadID)
	assert.NotEmpty(t, resp.SalesforceID)
	assert.Empty(t, resp.AccountID, "accountId is only set by account creation")
}

func TestSubmitLeadPayloadMapping(t *testing.T) {
	tests := []struct {
		name          string
		formName      string
		expectedFirst string
		expectedLast  string
	}{
		{name: "two-token name", formName: "John Doe", expectedFirst: "John", expectedLast: "Doe"},
		{name: "single-token name", formName: "Madonna", expectedFirst: "Madonna", expectedLast: "Madonna"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured domain.LeadPayload
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				_ = json.NewEncoder(w).Encode(domain.CRMResponse{
					Status: domain.CRMStatusSuccess,
					LeadID: "LEAD-1",
				})
			}))
			defer server.Close()

			data := testFormData()
			data.Name = tt.formName

			_, err := NewClient(server.URL, DefaultTimeout, nil).SubmitLead(context.Background(), data)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedFirst, captured.FirstName)
			assert.Equal(t, tt.expectedLast, captured.LastName)
			assert.Equal(t, "john@example.com", captured.Email)
			assert.Equal(t, "0412345678", captured.Phone)
			assert.Equal(t, 100000, captured.LoanAmount)
			assert.Equal(t, domain.LoanTypeAuto, captured.LoanType)
			assert.Equal(t, domain.LeadSource, captured.Source)
			assert.Equal(t, domain.LeadStatusNew, captured.Status)
			assert.NotEmpty(t, captured.CreatedDate)
		})
	}
}

func TestSubmitLeadRemoteError(t *testing.T) {
	server := newMockCRMServer(t)
	client := NewClient(server.URL, DefaultTimeout, nil)

	data := testFormData()
	data.Email = "user@503.com"

	resp, err := client.SubmitLead(context.Background(), data)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Equal(t, "Service temporarily unavailable. Please try again later.", apperrors.UserMessage(err))
}

func TestSubmitLeadNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, DefaultTimeout, nil)

	resp, err := client.SubmitLead(context.Background(), testFormData())
	assert.Nil(t, resp)
	assert.True(t, apperrors.IsNetwork(err))
}

func TestSubmitLeadTimeoutIsNetworkError(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer func() {
		close(blocked)
		server.Close()
	}()

	client := NewClient(server.URL, 50*time.Millisecond, nil)

	_, err := client.SubmitLead(context.Background(), testFormData())
	assert.True(t, apperrors.IsNetwork(err))
}

func TestNonSuccessStatusOnHTTP200IsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 carrying an error status must still be treated as failure
		_ = json.NewEncoder(w).Encode(domain.CRMResponse{
			Status:  domain.CRMStatusError,
			Message: "Email already exists",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, DefaultTimeout, nil)

	resp, err := client.SubmitLead(context.Background(), testFormData())
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Equal(t, "Email already exists", apperrors.UserMessage(err))
}

func TestCreateAccountSuccess(t *testing.T) {
	server := newMockCRMServer(t)
	client := NewClient(server.URL, DefaultTimeout, nil)

	resp, err := client.CreateAccount(context.Background(), "LEAD-123", testFormData())
	require.NoError(t, err)

	assert.Equal(t, domain.CRMStatusSuccess, resp.Status)
	assert.Equal(t, "LEAD-123", resp.LeadID, "account response echoes the lead it references")
	assert.NotEmpty(t, resp.AccountID)
}

func TestCreateAccountPayloadMapping(t *testing.T) {
	var captured domain.AccountPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(domain.CRMResponse{
			Status:    domain.CRMStatusSuccess,
			LeadID:    captured.LeadID,
			AccountID: "ACC-1",
		})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, DefaultTimeout, nil).CreateAccount(context.Background(), "LEAD-9", testFormData())
	require.NoError(t, err)

	assert.Equal(t, "LEAD-9", captured.LeadID)
	assert.Equal(t, "John Doe", captured.Name)
	assert.Equal(t, domain.AccountTypeIndividual, captured.AccountType)
	assert.Equal(t, domain.AccountStatusActive, captured.Status)
}

func TestCreateAccountRequiresLeadID(t *testing.T) {
	client := NewClient("http://localhost:0", DefaultTimeout, nil)

	resp, err := client.CreateAccount(context.Background(), "", testFormData())
	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestCreateAccountForcedError(t *testing.T) {
	server := newMockCRMServer(t)
	client := NewClient(server.URL, DefaultTimeout, nil)

	data := testFormData()
	data.Email = "test@error.com"

	_, err := client.CreateAccount(context.Background(), "LEAD-123", data)
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Contains(t, apperrors.UserMessage(err), "Account creation failed")
}
