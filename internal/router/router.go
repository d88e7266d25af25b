package router

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"blogdesk/internal/auth"
	"blogdesk/internal/config"
	"blogdesk/internal/errors"
	"blogdesk/internal/handler"
	"blogdesk/internal/model"
)

const (
	loginBurst    = 10
	maxUploadBody = "8M"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	blogHandler *handler.BlogHandler,
	imageHandler *handler.ImageHandler,
	userHandler *handler.UserHandler,
	statsHandler *handler.StatsHandler,
	healthHandler *handler.HealthHandler,
) {
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = NewValidator()

	e.GET("/healthz", healthHandler.Live)
	e.GET("/readyz", healthHandler.Ready)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	session := auth.SessionMiddleware(jwtService, cfg.SessionCookie)

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login, loginLimiter(cfg.LoginRateLimit))
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/blogs", blogHandler.ListPublished)
	api.GET("/blogs/:id", blogHandler.GetBlog)

	// Session routes
	api.GET("/auth/session", authHandler.Session, session)

	// Admin routes
	admin := api.Group("/admin", session, auth.RequireRole(model.RoleAdmin))

	admin.GET("/blogs", blogHandler.ListAll)
	admin.POST("/blogs", blogHandler.CreateBlog)
	admin.PUT("/blogs/:id", blogHandler.UpdateBlog)
	admin.DELETE("/blogs/:id", blogHandler.DeleteBlog)

	admin.GET("/images", imageHandler.ListImages)
	admin.POST("/images", imageHandler.UploadImage, middleware.BodyLimit(maxUploadBody))
	admin.DELETE("/images/:id", imageHandler.DeleteImage)

	admin.GET("/users", userHandler.ListUsers)
	admin.PUT("/users/:id", userHandler.UpdateRole)

	admin.GET("/stats", statsHandler.Dashboard)
}

// loginLimiter throttles login attempts per client IP. A non-positive limit disables it.
func loginLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     loginBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Logger().Warnj(log.JSON{"action": "login_rate_limited", "ip": identifier})
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "Too many login attempts. Please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// ErrorHandler renders every error as an errors.ErrorResponse body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body, cause := errorBody(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorj(log.JSON{
			"action":     "request_failed",
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"method":     c.Request().Method,
			"path":       c.Path(),
			"status":     status,
			"error":      cause.Error(),
		})
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func errorBody(err error) (int, errors.ErrorResponse, error) {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		cause := err
		if he.Internal != nil {
			cause = he.Internal
		}
		switch msg := he.Message.(type) {
		case errors.ErrorResponse:
			return he.Code, msg, cause
		case string:
			return he.Code, errors.ErrorResponse{Error: msg, Code: statusCode(he.Code)}, cause
		default:
			return he.Code, errors.ErrorResponse{Error: http.StatusText(he.Code), Code: statusCode(he.Code)}, cause
		}
	}

	mapped := errors.MapErrorToHTTP(err)
	return mapped.StatusCode, mapped.ToErrorResponse(), err
}

// statusCode derives a machine code from the status text, e.g. 404 becomes NOT_FOUND.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator installed on echo.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
