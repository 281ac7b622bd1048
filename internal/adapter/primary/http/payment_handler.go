package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PaymentHandler is a primary adapter (HTTP handler)
type PaymentHandler struct {
	paymentService input.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService input.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePaymentRequest represents the HTTP request to send a payment
type CreatePaymentRequest struct {
	RecipientEmail string `json:"recipient_email"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// TransactionResponse represents the HTTP response for a transaction
type TransactionResponse struct {
	ID             string `json:"id"`
	RecipientEmail string `json:"recipient_email"`
	Amount         int64  `json:"amount"`
	DisplayAmount  string `json:"display_amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

func newTransactionResponse(tx core.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID.String(),
		RecipientEmail: tx.RecipientEmail,
		Amount:         tx.Amount,
		DisplayAmount:  tx.DisplayAmount(),
		Currency:       tx.Currency.Code(),
		Status:         string(tx.Status),
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
	}
}

func fromServiceResponse(r *input.TransactionResponse) TransactionResponse {
	return newTransactionResponse(core.Transaction{
		ID:             r.ID,
		RecipientEmail: r.RecipientEmail,
		Amount:         r.Amount,
		Currency:       r.Currency,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	})
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}

// CreatePayment handles payment submission
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Unsupported currency")
	}

	response, err := h.paymentService.SubmitPayment(c.Request().Context(), input.SubmitPaymentRequest{
		RecipientEmail: req.RecipientEmail,
		Amount:         req.Amount,
		Currency:       currency,
	})
	if err != nil {
		return submitError(c, err)
	}

	return c.JSON(http.StatusCreated, fromServiceResponse(response))
}

func submitError(c echo.Context, err error) error {
	var validation *core.ValidationError
	var remoteValidation *core.RemoteValidationError
	var transport *core.TransportError

	switch {
	case errors.As(err, &validation):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &remoteValidation):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  err.Error(),
			"fields": remoteValidation.Fields,
		})
	case errors.Is(err, core.ErrAuthenticationRequired):
		return errorJSON(c, http.StatusUnauthorized, err.Error())
	case errors.As(err, &transport):
		return errorJSON(c, http.StatusBadGateway, err.Error())
	default:
		c.Logger().Errorf("submitting payment: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to submit payment")
	}
}

// GetTransaction handles transaction retrieval by ID
func (h *PaymentHandler) GetTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid transaction ID")
	}

	response, err := h.paymentService.GetTransaction(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Transaction not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve transaction")
	}

	return c.JSON(http.StatusOK, fromServiceResponse(response))
}
