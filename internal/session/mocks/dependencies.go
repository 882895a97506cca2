package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"grimoire-server/internal/models"
)

// Mock TurnPlayer
type TurnPlayer struct {
	mock.Mock
}

func (m *TurnPlayer) PlayTurn(ctx context.Context, level *models.Level, transcript []models.ChatMessage, userTurns int) (*models.GameState, error) {
	args := m.Called(ctx, level, transcript, userTurns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameState), args.Error(1)
}

// Mock LevelCompleter
type LevelCompleter struct {
	mock.Mock
}

func (m *LevelCompleter) CompleteLevel(ctx context.Context, userID uuid.UUID, levelID string) error {
	args := m.Called(ctx, userID, levelID)
	return args.Error(0)
}
