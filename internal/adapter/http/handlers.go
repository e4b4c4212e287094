package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the operational endpoints that have no usecase behind them.
type Handler struct {
	started time.Time
}

func NewHandler() *Handler { return &Handler{started: time.Now().UTC()} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "lenme",
		"uptime":  time.Since(h.started).Truncate(time.Second).String(),
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}
