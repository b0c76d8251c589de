package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	httpHandlers "github.com/michael-i-mclean/toggle/internal/adapters/http"
	"github.com/michael-i-mclean/toggle/internal/application/services"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/config"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
	"github.com/michael-i-mclean/toggle/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	repo   ports.ToggleRepository
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance. The repository must already be loaded;
// its lifecycle (startup load, shutdown flush) belongs to the caller.
func New(cfg *config.Config, repo ports.ToggleRepository, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize services
	toggleService := services.NewToggleService(repo, appLogger)

	// Initialize handlers
	toggleHandler := httpHandlers.NewToggleHandler(toggleService, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		repo:   repo,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(toggleHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(toggleHandler *httpHandlers.ToggleHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API documentation
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	// Toggle routes. These paths are the service's public contract and sit
	// at the root, unversioned.
	s.echo.POST("/create", toggleHandler.CreateToggle)
	s.echo.POST("/toggle/:guid", toggleHandler.ToggleState)
	s.echo.GET("/status/:guid", toggleHandler.GetStatus)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	checks := map[string]interface{}{
		"store": map[string]interface{}{
			"status":  "ok",
			"toggles": s.repo.Len(),
			"path":    s.config.Store.Path,
		},
	}

	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  "1.21",
		},
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	// The store lives in memory and is loaded before the listener starts,
	// so a server that answers at all is ready.
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Handler exposes the underlying mux so tests can drive the full middleware
// and routing stack without opening a listener.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
		} else {
			msg = err.Error()
		}

		// Log error
		if code >= 500 {
			logger.Errorw("HTTP error",
				"error", err,
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", code,
				"ip", c.RealIP(),
			)
		} else if code >= 400 {
			logger.Warnw("HTTP client error",
				"error", err,
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", code,
				"ip", c.RealIP(),
			)
		}

		// Send error response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				response := map[string]interface{}{
					"error": msg,
					"code":  code,
				}

				// Add request ID for debugging
				if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
					response["request_id"] = reqID
				}

				err = c.JSON(code, response)
			}
			if err != nil {
				logger.Errorw("Failed to send error response", "error", err)
			}
		}
	}
}
