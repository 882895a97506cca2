package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grimoire-server/internal/models"
)

// handleServiceError maps service errors to HTTP responses. Sentinel
// errors get stable codes the client can branch on; anything else is an
// opaque 500.
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeValidation,
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrLevelNotFound), errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    models.ErrCodeNotFound,
			Message: "Resource not found",
		})
	case errors.Is(err, models.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    models.ErrCodeTokenExpired,
			Message: "Access token has expired",
		})
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    models.ErrCodeTokenInvalid,
			Message: "Unauthorized",
		})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Code:    models.ErrCodeForbidden,
			Message: "Forbidden",
		})
	case errors.Is(err, models.ErrTurnInFlight):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Code:    models.ErrCodeTurnInFlight,
			Message: "A turn is already being processed for this session",
		})
	case errors.Is(err, models.ErrAIUnavailable), errors.Is(err, models.ErrMalformedAIResponse):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Code:    models.ErrCodeAIUnavailable,
			Message: "The storyteller is unavailable, please try again",
		})
	default:
		h.logger.Error("Unhandled service error",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    models.ErrCodeInternal,
			Message: "Internal server error",
		})
	}
}
