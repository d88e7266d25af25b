package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogdesk/internal/auth"
	"blogdesk/internal/errors"
)

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps err to its status and body. Unexpected errors are
// reported with fallback and keep the cause as the internal error for logging.
func respondError(err error, fallback string) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		httpErr.Message = fallback
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// actorID is the id of the session user, empty when there is no session.
func actorID(c echo.Context) string {
	if session := auth.SessionFrom(c); session != nil {
		return session.UserID
	}
	return ""
}
