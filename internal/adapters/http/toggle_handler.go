package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/michael-i-mclean/toggle/internal/domain/entities"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
	"github.com/michael-i-mclean/toggle/internal/ports"
)

// ToggleHandler handles toggle-related requests
type ToggleHandler struct {
	service ports.ToggleService
	logger  *logger.Logger
}

// NewToggleHandler creates a new toggle handler
func NewToggleHandler(service ports.ToggleService, logger *logger.Logger) *ToggleHandler {
	return &ToggleHandler{
		service: service,
		logger:  logger,
	}
}

// CreateToggle godoc
// @Summary Create a new toggle
// @Description Mint a toggle with a generated identifier and initial state false
// @Tags toggles
// @Produce json
// @Success 200 {object} ports.ToggleResponse
// @Failure 500 {object} ports.ErrorResponse
// @Router /create [post]
func (h *ToggleHandler) CreateToggle(c echo.Context) error {
	resp, err := h.service.CreateToggle(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Create toggle failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create toggle")
	}

	return c.JSON(http.StatusOK, resp)
}

// ToggleState godoc
// @Summary Flip a toggle
// @Description Invert the boolean state of the toggle with the given identifier
// @Tags toggles
// @Produce json
// @Param guid path string true "Toggle identifier"
// @Success 200 {object} ports.ToggleResponse
// @Failure 404 {object} ports.ErrorResponse
// @Failure 500 {object} ports.ErrorResponse
// @Router /toggle/{guid} [post]
func (h *ToggleHandler) ToggleState(c echo.Context) error {
	guid := c.Param("guid")

	resp, err := h.service.ToggleState(c.Request().Context(), guid)
	if err != nil {
		if errors.Is(err, entities.ErrToggleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Toggle not found")
		}
		h.logger.Errorw("Toggle state failed", "error", err, "guid", guid)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist toggle")
	}

	return c.JSON(http.StatusOK, resp)
}

// GetStatus godoc
// @Summary Get a toggle's state
// @Description Report the current boolean state of the toggle with the given identifier
// @Tags toggles
// @Produce json
// @Param guid path string true "Toggle identifier"
// @Success 200 {object} ports.ToggleResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /status/{guid} [get]
func (h *ToggleHandler) GetStatus(c echo.Context) error {
	guid := c.Param("guid")

	resp, err := h.service.GetStatus(c.Request().Context(), guid)
	if err != nil {
		if errors.Is(err, entities.ErrToggleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Toggle not found")
		}
		h.logger.Errorw("Get status failed", "error", err, "guid", guid)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read toggle")
	}

	return c.JSON(http.StatusOK, resp)
}
