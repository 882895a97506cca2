package handler

import (
	"grimoire-server/internal/models"
	"grimoire-server/internal/session"
)

type chatRequest struct {
	Messages []models.ChatMessage `json:"messages" binding:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type emotionRequest struct {
	Text string `json:"text" binding:"required"`
}

type turnRequest struct {
	Message string `json:"message"`
}

type resetRequest struct {
	LevelID string `json:"level_id"`
}

type createLevelRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Content     *models.LevelContent `json:"content" binding:"required"`
}

type turnResponse struct {
	session.Snapshot
	// Notice carries a transient, user-facing message when the turn could
	// not be played; the session itself stays usable.
	Notice string `json:"notice,omitempty"`
}

type progressionResponse struct {
	Levels             []models.Level `json:"levels"`
	CurrentLevelID     string         `json:"current_level_id,omitempty"`
	ProgressPercentage float64        `json:"progress_percentage"`
}
