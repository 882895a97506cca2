package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"grimoire-server/internal/models"
)

// Mock LevelRepository
type LevelRepository struct {
	mock.Mock
}

func (m *LevelRepository) ListCustom(ctx context.Context) ([]models.Level, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Level), args.Error(1)
}

func (m *LevelRepository) Insert(ctx context.Context, level *models.Level, ownerID uuid.UUID) error {
	args := m.Called(ctx, level, ownerID)
	return args.Error(0)
}

// Mock ProgressRepository
type ProgressRepository struct {
	mock.Mock
}

func (m *ProgressRepository) Load(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.ProgressSnapshot), args.Error(1)
}

func (m *ProgressRepository) Save(ctx context.Context, userID uuid.UUID, snapshot models.ProgressSnapshot) error {
	args := m.Called(ctx, userID, snapshot)
	return args.Error(0)
}
