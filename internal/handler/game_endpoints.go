package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"grimoire-server/internal/models"
)

// @Summary Submit one RPG turn
// @Description Appends the player's message and plays one model turn
// @Tags game
// @Accept json
// @Produce json
// @Param request body turnRequest true "Player message"
// @Success 200 {object} turnResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 409 {object} models.ErrorResponse "Turn already in flight"
// @Failure 502 {object} models.ErrorResponse "Model unavailable"
// @Router /game/rpg [post]
// @Security BearerAuth
func (h *Handler) submitTurn(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	snap, err := h.sessions.SubmitUtterance(c.Request.Context(), userID, req.Message)
	switch {
	case err == nil:
		turnsTotal.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, turnResponse{Snapshot: snap})
	case errors.Is(err, models.ErrTurnInFlight):
		turnsTotal.WithLabelValues("in_flight").Inc()
		h.handleServiceError(c, err)
	case errors.Is(err, models.ErrAIUnavailable), errors.Is(err, models.ErrMalformedAIResponse):
		// The session keeps the player's message; surface a transient
		// notice alongside the unchanged game state so the client can
		// offer a retry.
		turnsTotal.WithLabelValues("ai_error").Inc()
		c.JSON(http.StatusOK, turnResponse{
			Snapshot: snap,
			Notice:   "Le narrateur est momentanément indisponible, réessayez.",
		})
	default:
		turnsTotal.WithLabelValues("error").Inc()
		h.handleServiceError(c, err)
	}
}

// @Summary Current RPG session
// @Description Returns the transcript and game state of the active session
// @Tags game
// @Produce json
// @Success 200 {object} turnResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /game/rpg [get]
// @Security BearerAuth
func (h *Handler) getSession(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, turnResponse{Snapshot: h.sessions.Snapshot(userID)})
}

// @Summary Reset the RPG session
// @Description Starts a fresh session, optionally on another level
// @Tags game
// @Accept json
// @Produce json
// @Param request body resetRequest false "Target level"
// @Success 200 {object} turnResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Level not found"
// @Router /game/rpg/reset [post]
// @Security BearerAuth
func (h *Handler) resetSession(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req resetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
			c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
			return
		}
	}

	// An omitted level restarts the session on the chapter it is already
	// playing.
	targetID := req.LevelID
	if targetID == "" {
		targetID = h.sessions.Snapshot(userID).LevelID
	}

	var target *models.Level
	for _, lvl := range h.progression.Levels(c.Request.Context(), userID) {
		if lvl.ID == targetID {
			found := lvl
			target = &found
			break
		}
	}
	if target == nil {
		h.handleServiceError(c, models.ErrLevelNotFound)
		return
	}
	if target.Status == models.LevelStatusLocked {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Code:    models.ErrCodeForbidden,
			Message: "Level is locked",
		})
		return
	}

	snap := h.sessions.Reset(userID, *target)
	sessionResetsTotal.Inc()
	c.JSON(http.StatusOK, turnResponse{Snapshot: snap})
}
