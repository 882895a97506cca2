package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimoire-server/internal/auth"
	"grimoire-server/internal/levels"
	"grimoire-server/internal/middleware"
	"grimoire-server/internal/models"
	"grimoire-server/internal/session"
)

// Assistant is the slice of the AI client the chat-mode handlers need.
type Assistant interface {
	Chat(ctx context.Context, transcript []models.ChatMessage) (string, error)
	AnalyzeEmotion(ctx context.Context, text string) (*models.EmotionAnalysis, error)
}

// Progression is the slice of the progression service the handlers need.
type Progression interface {
	Levels(ctx context.Context, userID uuid.UUID) []models.Level
	CompleteLevel(ctx context.Context, userID uuid.UUID, levelID string) error
}

// Handler wires the HTTP API to the session manager, progression service,
// level registry and AI client.
type Handler struct {
	sessions    *session.Manager
	progression Progression
	registry    *levels.Registry
	assistant   Assistant
	logger      *zap.Logger
}

// New creates the handler set.
func New(sessions *session.Manager, prog Progression, registry *levels.Registry, assistant Assistant, logger *zap.Logger) *Handler {
	return &Handler{
		sessions:    sessions,
		progression: prog,
		registry:    registry,
		assistant:   assistant,
		logger:      logger.Named("HTTPHandler"),
	}
}

// RegisterRoutes attaches all API routes. Turn submission, session reset
// and level creation require a valid access token; the auth check runs
// before any external model call.
func (h *Handler) RegisterRoutes(router *gin.Engine, verifier *auth.Verifier) {
	api := router.Group("/api")
	{
		api.POST("/chat", h.chat)
		api.POST("/analyze-emotion", h.analyzeEmotion)

		api.GET("/levels", middleware.OptionalAuth(verifier), h.listLevels)
		api.GET("/progression", middleware.OptionalAuth(verifier), h.getProgression)

		protected := api.Group("", middleware.RequireAuth(verifier))
		{
			protected.POST("/game/rpg", h.submitTurn)
			protected.POST("/game/rpg/reset", h.resetSession)
			protected.GET("/game/rpg", h.getSession)
			protected.POST("/levels", h.createLevel)
			protected.POST("/levels/:id/complete", h.completeLevel)
		}
	}
}

// mustUserID pulls the authenticated user from the context; the auth
// middleware guarantees it on protected routes.
func mustUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    models.ErrCodeTokenInvalid,
			Message: "Unauthorized",
		})
	}
	return id, ok
}
