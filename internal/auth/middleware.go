package auth

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"blogdesk/internal/errors"
	"blogdesk/internal/model"
)

// ContextKey is the echo context key holding the *Claims of a valid session.
const ContextKey = "session"

// SessionMiddleware authenticates requests from the session cookie or a
// bearer Authorization header. Requests without a valid token get 401.
func SessionMiddleware(jwtService *JWTService, cookieName string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + cookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Debugj(log.JSON{
				"action":     "session_rejected",
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"reason":     err.Error(),
			})
			return errors.ErrUnauthenticated
		},
	})
}

// SessionFrom returns the session claims set by SessionMiddleware, or nil.
func SessionFrom(c echo.Context) *Claims {
	claims, _ := c.Get(ContextKey).(*Claims)
	return claims
}

// RequireRole gates the wrapped handlers behind Authorize.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := SessionFrom(c)
			if err := Authorize(session, role); err != nil {
				if session != nil {
					c.Logger().Warnj(log.JSON{
						"action":   "authorization_denied",
						"user_id":  session.UserID,
						"role":     session.Role,
						"required": role,
						"path":     c.Path(),
					})
				}
				return err
			}
			return next(c)
		}
	}
}
