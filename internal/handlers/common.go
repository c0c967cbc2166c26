package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/logger"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// sendError logs the error and sends a JSON error response.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// sendCalcError maps a typed calculation error onto a 422 with its taxonomy
// fields exposed, so callers can point at the offending input.
func sendCalcError(c *gin.Context, err error) {
	var calcErr *calc.CalculationError
	if !errors.As(err, &calcErr) {
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	logger.Warn("calculation rejected",
		zap.String("kind", string(calcErr.Kind)),
		zap.String("field", calcErr.Field),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error: calcErr.Error(),
		Kind:  string(calcErr.Kind),
		Field: calcErr.Field,
	})
}

// handleDBError maps database errors onto HTTP status codes.
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
