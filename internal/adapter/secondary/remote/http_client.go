package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/output"
)

const networkErrorMessage = "Network error: Unable to connect to payment service"

// HTTPClient is a secondary adapter that implements RemotePaymentService over JSON/HTTP
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client for the payment backend at baseURL
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// errorResponse is the error body returned by the backend
type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Submit posts the transaction to the backend
func (c *HTTPClient) Submit(ctx context.Context, payload output.TransactionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/transactions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return decodeError(resp)
}

// ListAll fetches every transaction known to the backend
func (c *HTTPClient) ListAll(ctx context.Context) ([]output.TransactionPayload, error) {
	resp, err := c.do(ctx, http.MethodGet, "/transactions", nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var payloads []output.TransactionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, &core.TransportError{Message: "Malformed response from payment service"}
	}
	return payloads, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, &core.TransportError{Message: "Request cancelled"}
		}
		return nil, &core.TransportError{Message: networkErrorMessage}
	}
	return resp, nil
}

// closeBody drains what is left of the body so the connection can be reused
func closeBody(resp *http.Response) error {
	_, drainErr := io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return errors.Join(drainErr, resp.Body.Close())
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	// bodies are optional; a missing or non-JSON body falls through to the status code
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.ErrAuthenticationRequired
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if len(body.Errors) > 0 {
			return &core.RemoteValidationError{Fields: body.Errors}
		}
	}

	if body.Message != "" {
		return &core.TransportError{Message: body.Message}
	}
	return &core.TransportError{Message: fmt.Sprintf("Payment service returned status %d", resp.StatusCode)}
}
