package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/labstack/echo/v4"
)

// HistoryHandler serves the transaction history read model
type HistoryHandler struct {
	history input.HistoryService
}

func NewHistoryHandler(history input.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// HistoryStateResponse is one server-sent history event
type HistoryStateResponse struct {
	State        string                `json:"state"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
	Message      string                `json:"message,omitempty"`
}

func newTransactionList(txs []core.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	return out
}

// ListTransactions returns the first local snapshot. Opening the history also
// starts a background refresh from the remote service.
func (h *HistoryHandler) ListTransactions(c echo.Context) error {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	for state := range h.history.Observe(ctx) {
		switch state.Kind {
		case input.HistorySuccess:
			return c.JSON(http.StatusOK, newTransactionList(state.Transactions))
		case input.HistoryError:
			return errorJSON(c, http.StatusInternalServerError, state.Message)
		}
	}
	return errorJSON(c, http.StatusServiceUnavailable, "History unavailable")
}

// StreamTransactions streams history states as server-sent events until the client leaves
func (h *HistoryHandler) StreamTransactions(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for state := range h.history.Observe(c.Request().Context()) {
		body, err := json.Marshal(HistoryStateResponse{
			State:        string(state.Kind),
			Transactions: newTransactionList(state.Transactions),
			Message:      state.Message,
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", state.Kind, body); err != nil {
			return nil
		}
		res.Flush()
	}
	return nil
}

// SyncTransactions runs a synchronization pass, the manual retry after an error
func (h *HistoryHandler) SyncTransactions(c echo.Context) error {
	if err := h.history.Sync(c.Request().Context()); err != nil {
		return errorJSON(c, http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "synced"})
}

// SummaryResponse is the completed total for one currency
type SummaryResponse struct {
	Currency      string `json:"currency"`
	Total         int64  `json:"total"`
	DisplayAmount string `json:"display_amount"`
}

// Summary returns completed totals per currency
func (h *HistoryHandler) Summary(c echo.Context) error {
	totals, err := h.history.Summary(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to summarize transactions")
	}

	out := make([]SummaryResponse, 0, len(totals))
	for _, currency := range core.Currencies() {
		total := totals[currency]
		out = append(out, SummaryResponse{
			Currency:      currency.Code(),
			Total:         total,
			DisplayAmount: core.FormatAmount(total, currency),
		})
	}
	return c.JSON(http.StatusOK, out)
}
