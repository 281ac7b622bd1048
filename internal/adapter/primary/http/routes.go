package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the API under /api/v1 and the health check
func RegisterRoutes(e *echo.Echo, payments *PaymentHandler, history *HistoryHandler) {
	api := e.Group("/api/v1")
	api.POST("/payments", payments.CreatePayment)
	api.GET("/transactions", history.ListTransactions)
	api.GET("/transactions/stream", history.StreamTransactions)
	api.GET("/transactions/summary", history.Summary)
	api.POST("/transactions/sync", history.SyncTransactions)
	api.GET("/transactions/:id", payments.GetTransaction)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
