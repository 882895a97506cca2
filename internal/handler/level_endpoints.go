package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grimoire-server/internal/middleware"
	"grimoire-server/internal/models"
	"grimoire-server/internal/progression"
)

// @Summary List levels
// @Description Built-in chapters plus custom levels, with per-user statuses when authenticated
// @Tags levels
// @Produce json
// @Success 200 {array} models.Level
// @Router /levels [get]
func (h *Handler) listLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.levelsFor(c))
}

// @Summary Create a custom level
// @Description Registers a user-authored level; it starts locked at the end of the list
// @Tags levels
// @Accept json
// @Produce json
// @Param request body createLevelRequest true "Level definition"
// @Success 201 {object} models.Level
// @Failure 400 {object} models.ErrorResponse "Invalid level definition"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /levels [post]
// @Security BearerAuth
func (h *Handler) createLevel(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req createLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	level := &models.Level{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	}
	if err := h.registry.Create(c.Request.Context(), level, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, level)
}

// @Summary Complete a level
// @Description Marks an unlocked level completed and unlocks the next one
// @Tags levels
// @Produce json
// @Success 200 {object} progressionResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Level not found"
// @Router /levels/{id}/complete [post]
// @Security BearerAuth
func (h *Handler) completeLevel(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.progression.CompleteLevel(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	levelCompletionsTotal.Inc()

	c.JSON(http.StatusOK, h.progressionView(c))
}

// @Summary Progression overview
// @Description Levels with statuses, the current level and the completion percentage
// @Tags levels
// @Produce json
// @Success 200 {object} progressionResponse
// @Router /progression [get]
func (h *Handler) getProgression(c *gin.Context) {
	c.JSON(http.StatusOK, h.progressionView(c))
}

// levelsFor returns the level list with the caller's statuses applied.
// Anonymous callers see the default view: the first chapter unlocked,
// everything else locked.
func (h *Handler) levelsFor(c *gin.Context) []models.Level {
	if userID, ok := middleware.UserID(c); ok {
		return h.progression.Levels(c.Request.Context(), userID)
	}

	all := h.registry.List(c.Request.Context())
	snapshot := progression.InitialSnapshot(all)
	for i := range all {
		if status, ok := snapshot[all[i].ID]; ok {
			all[i].Status = status
		} else {
			all[i].Status = models.LevelStatusLocked
		}
	}
	return all
}

func (h *Handler) progressionView(c *gin.Context) progressionResponse {
	all := h.levelsFor(c)
	resp := progressionResponse{
		Levels:             all,
		ProgressPercentage: progression.ProgressPercentage(all),
	}
	if current, ok := progression.CurrentLevel(all); ok {
		resp.CurrentLevelID = current.ID
	}
	return resp
}
