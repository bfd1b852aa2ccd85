package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/umeloans/loan-wizard/internal/domain"
	apperrors "github.com/umeloans/loan-wizard/pkg/errors"
	"github.com/umeloans/loan-wizard/pkg/utils"
)

// DefaultTimeout bounds each CRM request.
const DefaultTimeout = 10 * time.Second

// Submitter performs the two-phase remote submission.
type Submitter interface {
	// SubmitLead creates a CRM lead from the form data.
	SubmitLead(ctx context.Context, data domain.LoanFormData) (*domain.CRMResponse, error)

	// CreateAccount creates a CRM account referencing a lead. It must only be
	// called with the leadID returned by a successful SubmitLead.
	CreateAccount(ctx context.Context, leadID string, data domain.LoanFormData) (*domain.CRMResponse, error)
}

// Client submits leads and accounts to the CRM over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
}

// NewClient creates a CRM client against baseURL with a bounded per-request
// timeout.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
		now: time.Now,
	}
}

func (c *Client) SubmitLead(ctx context.Context, data domain.LoanFormData) (*domain.CRMResponse, error) {
	firstName, lastName := utils.SplitName(data.Name)

	payload := domain.LeadPayload{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       data.Email,
		Phone:       data.Phone,
		LoanAmount:  data.LoanAmount,
		LoanType:    data.LoanType,
		Personality: data.Personality,
		LoanPurpose: data.LoanPurpose,
		Source:      domain.LeadSource,
		Status:      domain.LeadStatusNew,
		CreatedDate: c.now().UTC().Format(time.RFC3339),
	}

	resp, err := c.post(ctx, "/leads", payload)
	if err != nil {
		return nil, err
	}

	c.log.Info("lead submitted",
		zap.String("lead_id", resp.LeadID),
		zap.String("salesforce_id", resp.SalesforceID),
	)

	return resp, nil
}

func (c *Client) CreateAccount(ctx context.Context, leadID string, data domain.LoanFormData) (*domain.CRMResponse, error) {
	if leadID == "" {
		return nil, apperrors.NewAppError(apperrors.ErrCodeSessionState, "account creation requires a lead", apperrors.ErrLeadNotCreated)
	}

	payload := domain.AccountPayload{
		LeadID:      leadID,
		Email:       data.Email,
		Name:        data.Name,
		Phone:       data.Phone,
		AccountType: domain.AccountTypeIndividual,
		Status:      domain.AccountStatusActive,
		CreatedDate: c.now().UTC().Format(time.RFC3339),
	}

	resp, err := c.post(ctx, "/accounts", payload)
	if err != nil {
		return nil, err
	}

	c.log.Info("account created",
		zap.String("lead_id", resp.LeadID),
		zap.String("account_id", resp.AccountID),
	)

	return resp, nil
}

// post sends the payload and normalizes failures: transport errors become
// NetworkError, structured error bodies and non-success statuses become
// RemoteError with the server-supplied message.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (*domain.CRMResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.WrapNetworkError(fmt.Errorf("failed to marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.WrapNetworkError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("crm request failed", zap.String("path", path), zap.Error(err))
		return nil, apperrors.WrapNetworkError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.WrapNetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	var crmResp domain.CRMResponse
	if err := json.Unmarshal(respBody, &crmResp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return nil, apperrors.WrapRemoteError(
				fmt.Sprintf("submission failed (status %d)", httpResp.StatusCode),
				fmt.Errorf("unparseable error body: %s", string(respBody)),
			)
		}
		return nil, apperrors.WrapNetworkError(fmt.Errorf("failed to unmarshal response: %w", err))
	}

	// A non-"success" status is a failure even on HTTP 200.
	if !crmResp.IsSuccess() {
		message := crmResp.Message
		if message == "" {
			message = fmt.Sprintf("submission failed (status %d)", httpResp.StatusCode)
		}
		c.log.Warn("crm rejected request",
			zap.String("path", path),
			zap.String("code", crmResp.Code),
			zap.Int("http_status", httpResp.StatusCode),
		)
		return nil, apperrors.WrapRemoteError(message, nil)
	}

	return &crmResp, nil
}
