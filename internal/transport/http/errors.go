package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Method string `json:"method,omitempty"`
	Status *int   `json:"status,omitempty"`
}

// writeSessionError maps a session error onto an HTTP response.
// Server rejections become 502 and carry the protocol status code.
func writeSessionError(c *gin.Context, logger *zerolog.Logger, op string, err error) {
	var re *loco.RequestError
	switch {
	case errors.As(err, &re):
		status := re.Status
		logger.Warn().Err(err).Str("op", op).Msg("request rejected by server")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Method: re.Method, Status: &status})
	case errors.Is(err, session.ErrTransportClosed), errors.Is(err, loco.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "connection closed"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"})
	default:
		logger.Error().Err(err).Str("op", op).Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// int64Param parses a path parameter, writing 400 on failure.
func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return v, true
}
