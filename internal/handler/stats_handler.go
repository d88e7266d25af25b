package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogdesk/internal/service"
)

// StatsHandler serves the dashboard numbers.
type StatsHandler struct {
	svc service.StatsService
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Dashboard godoc
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/stats [get]
func (h *StatsHandler) Dashboard(c echo.Context) error {
	stats, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return respondError(err, "Failed to load statistics")
	}
	return c.JSON(http.StatusOK, stats)
}
