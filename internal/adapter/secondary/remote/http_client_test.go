package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/output"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var _ output.RemotePaymentService = (*HTTPClient)(nil)
var _ output.RemotePaymentService = (*Scripted)(nil)

// fakeBackend answers Submit according to the payload amount.
func fakeBackend(t *testing.T, stored []output.TransactionPayload) *httptest.Server {
	e := echo.New()

	e.POST("/transactions", func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer secret" {
			return c.NoContent(http.StatusUnauthorized)
		}
		var p output.TransactionPayload
		if err := c.Bind(&p); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "bad body"})
		}
		switch p.Amount {
		case 999_999:
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": map[string][]string{"amount": {"Amount exceeds daily limit"}},
			})
		case 500:
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "Service temporarily unavailable"})
		case 501:
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusCreated, p)
	})

	e.GET("/transactions", func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer secret" {
			return c.NoContent(http.StatusForbidden)
		}
		return c.JSON(http.StatusOK, stored)
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func payload(amount int64) output.TransactionPayload {
	return output.TransactionPayload{
		ID:        uuid.NewString(),
		Recipient: "a@b.com",
		Amount:    amount,
		Currency:  "USD",
		Timestamp: time.Now().UnixMilli(),
		Status:    "PENDING",
	}
}

func TestHTTPClient_Submit(t *testing.T) {
	srv := fakeBackend(t, nil)
	client := NewHTTPClient(srv.URL+"/", "secret", 2*time.Second)
	ctx := context.Background()

	t.Run("accepted", func(t *testing.T) {
		require.NoError(t, client.Submit(ctx, payload(150)))
	})

	t.Run("validation rejected", func(t *testing.T) {
		err := client.Submit(ctx, payload(999_999))
		var verr *core.RemoteValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, []string{"Amount exceeds daily limit"}, verr.Fields["amount"])
	})

	t.Run("transport failure with message", func(t *testing.T) {
		err := client.Submit(ctx, payload(500))
		var terr *core.TransportError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, "Service temporarily unavailable", terr.Message)
	})

	t.Run("transport failure without body", func(t *testing.T) {
		err := client.Submit(ctx, payload(501))
		require.EqualError(t, err, "Payment service returned status 500")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		anon := NewHTTPClient(srv.URL, "", 2*time.Second)
		err := anon.Submit(ctx, payload(150))
		require.True(t, errors.Is(err, core.ErrAuthenticationRequired))
	})
}

func TestHTTPClient_ListAll(t *testing.T) {
	stored := []output.TransactionPayload{payload(100), payload(200)}
	srv := fakeBackend(t, stored)
	ctx := context.Background()

	got, err := NewHTTPClient(srv.URL, "secret", 2*time.Second).ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, stored, got)

	_, err = NewHTTPClient(srv.URL, "wrong", 2*time.Second).ListAll(ctx)
	require.True(t, errors.Is(err, core.ErrAuthenticationRequired))
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPClient(url, "secret", time.Second).Submit(context.Background(), payload(150))
	require.EqualError(t, err, networkErrorMessage)
}

type trackedBody struct {
	*strings.Reader
	closed   bool
	closeErr error
}

func (b *trackedBody) Close() error {
	b.closed = true
	return b.closeErr
}

func TestCloseBody(t *testing.T) {
	body := &trackedBody{Reader: strings.NewReader(`{"id":"unread"}`)}
	require.NoError(t, closeBody(&http.Response{Body: body}))
	require.True(t, body.closed)
	require.Zero(t, body.Len(), "body must be drained before close")

	failing := &trackedBody{Reader: strings.NewReader(""), closeErr: errors.New("reset")}
	require.EqualError(t, closeBody(&http.Response{Body: failing}), "reset")
}
