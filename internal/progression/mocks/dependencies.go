package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"grimoire-server/internal/models"
	"grimoire-server/internal/progression"
)

// Mock LevelSource
type LevelSource struct {
	mock.Mock
}

func (m *LevelSource) List(ctx context.Context) []models.Level {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Level)
}

// Mock SnapshotCache
type SnapshotCache struct {
	mock.Mock
}

func (m *SnapshotCache) Get(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.ProgressSnapshot), args.Error(1)
}

func (m *SnapshotCache) Set(ctx context.Context, userID uuid.UUID, snapshot models.ProgressSnapshot) {
	m.Called(ctx, userID, snapshot)
}

func (m *SnapshotCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

// Mock EventPublisher
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishLevelCompleted(ctx context.Context, event progression.LevelCompletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
