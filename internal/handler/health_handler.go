package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// PingFunc checks a dependency.
type PingFunc func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pingStore PingFunc
}

// NewHealthHandler creates a health handler probing the store with pingStore.
func NewHealthHandler(pingStore PingFunc) *HealthHandler {
	return &HealthHandler{pingStore: pingStore}
}

// Live godoc
// @Summary Liveness probe
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (h *HealthHandler) Live(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings the store, connecting first if needed.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errors.ErrorResponse
// @Router /readyz [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.pingStore(ctx); err != nil {
		c.Logger().Warnj(log.JSON{"action": "readiness_failed", "error": err.Error()})
		return respondError(err, "Database unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
