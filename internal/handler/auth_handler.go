package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"blogdesk/internal/auth"
	"blogdesk/internal/errors"
	"blogdesk/internal/service"
)

// SessionCookie configures the cookie carrying the session token.
// Its lifetime follows the token expiry.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookie      SessionCookie
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

var signupRules = []fieldRule{
	{"Email", "required", "Email and password are required"},
	{"Password", "required", "Email and password are required"},
	{"Name", "", "Full name is required"},
	{"Password", "min", "Password must be at least 6 characters"},
	{"Email", "email", "Invalid email address"},
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var loginRules = []fieldRule{
	{"Email", "", "Email and password are required"},
	{"Password", "", "Email and password are required"},
}

// SignupResponse is returned after a successful signup.
type SignupResponse struct {
	Message string           `json:"message"`
	User    auth.SessionUser `json:"user"`
}

// LoginResponse represents an authentication response.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      auth.SessionUser `json:"user"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User    auth.SessionUser `json:"user"`
	Expires time.Time        `json:"expires"`
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	normalize := func() {
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
	}
	if err := bindAndValidate(c, &req, normalize, signupRules); err != nil {
		return respondError(err, invalidBody)
	}

	user, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(err, "Signup failed. Please try again.")
	}

	return c.JSON(http.StatusCreated, SignupResponse{
		Message: "Account created successfully",
		User:    auth.SessionUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	})
}

// Login godoc
// @Summary Login user
// @Description Verifies credentials, sets the session cookie and returns the token for bearer use.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	normalize := func() { req.Email = strings.TrimSpace(req.Email) }
	if err := bindAndValidate(c, &req, normalize, loginRules); err != nil {
		return respondError(err, invalidBody)
	}

	token, claims, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err, "Login failed. Please try again.")
	}

	expiresAt := claims.ExpiresAt.Time
	c.SetCookie(h.sessionCookie(token, int(time.Until(expiresAt).Seconds()), expiresAt))
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      claims.User(),
	})
}

// Logout godoc
// @Summary Logout user
// @Description Expires the session cookie. Tokens are stateless, so a copied token stays valid until it expires.
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1, time.Unix(0, 0)))
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Session godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	session := auth.SessionFrom(c)
	if session == nil {
		return respondError(errors.ErrUnauthenticated, "")
	}
	return c.JSON(http.StatusOK, SessionResponse{
		User:    session.User(),
		Expires: session.ExpiresAt.Time,
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
