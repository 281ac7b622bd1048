package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cashflow/payment-sync/internal/config"
	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/cashflow/payment-sync/internal/port/output"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryBackend(t *testing.T) {
	e := echo.New()
	e.POST("/transactions", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	e.GET("/transactions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []output.TransactionPayload{})
	})
	backend := httptest.NewServer(e)
	defer backend.Close()

	cfg := config.DefaultConfig()
	cfg.StoreBackend = config.BackendMemory
	cfg.RemoteURL = backend.URL

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	require.Nil(t, a.Broker)
	require.IsType(t, output.NopTransactionEvents{}, a.Events)

	resp, err := a.Payments.SubmitPayment(context.Background(), input.SubmitPaymentRequest{
		RecipientEmail: "a@b.com",
		Amount:         150,
		Currency:       core.CurrencyUSD,
	})
	require.NoError(t, err)
	require.Equal(t, core.TransactionStatusCompleted, resp.Status)

	require.NoError(t, a.History.Sync(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := New(cfg, slog.Default())
	require.ErrorContains(t, err, "REMOTE_URL is required")
}
