package progression_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	databaseMocks "grimoire-server/internal/database/mocks"
	"grimoire-server/internal/models"
	"grimoire-server/internal/progression"
	progressionMocks "grimoire-server/internal/progression/mocks"
)

func threeLevels() []models.Level {
	return []models.Level{
		{ID: "level-a", Title: "A", Order: 1},
		{ID: "level-b", Title: "B", Order: 2},
		{ID: "level-c", Title: "C", Order: 3},
	}
}

func TestInitialSnapshot(t *testing.T) {
	t.Run("Lowest order unlocked, rest locked", func(t *testing.T) {
		snapshot := progression.InitialSnapshot(threeLevels())
		assert.Equal(t, models.LevelStatusUnlocked, snapshot["level-a"])
		assert.Equal(t, models.LevelStatusLocked, snapshot["level-b"])
		assert.Equal(t, models.LevelStatusLocked, snapshot["level-c"])
	})

	t.Run("Empty level set", func(t *testing.T) {
		assert.Empty(t, progression.InitialSnapshot(nil))
	})
}

func TestCompleteLevel(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Completing the unlocked level unlocks the next", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()
		mockRepo.On("Save", ctx, userID, mock.MatchedBy(func(s models.ProgressSnapshot) bool {
			return s["level-a"] == models.LevelStatusCompleted &&
				s["level-b"] == models.LevelStatusUnlocked &&
				s["level-c"] == models.LevelStatusLocked
		})).Return(nil).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, nil, zap.NewNop())

		err := svc.CompleteLevel(ctx, userID, "level-a")
		assert.NoError(t, err)

		all := svc.Levels(ctx, userID)
		assert.Equal(t, models.LevelStatusCompleted, all[0].Status)
		assert.Equal(t, models.LevelStatusUnlocked, all[1].Status)
		assert.Equal(t, models.LevelStatusLocked, all[2].Status)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Locked and unknown levels are no-ops", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, nil, zap.NewNop())

		assert.NoError(t, svc.CompleteLevel(ctx, userID, "level-c"))
		assert.NoError(t, svc.CompleteLevel(ctx, userID, "does-not-exist"))

		// No Save expected for no-ops.
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Completing an already completed level is a no-op", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()
		mockRepo.On("Save", ctx, userID, mock.Anything).Return(nil).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, nil, zap.NewNop())

		assert.NoError(t, svc.CompleteLevel(ctx, userID, "level-a"))
		assert.NoError(t, svc.CompleteLevel(ctx, userID, "level-a"))

		mockRepo.AssertExpectations(t)
	})

	t.Run("Save failure rolls back the optimistic update", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()
		saveErr := errors.New("connection reset")
		mockRepo.On("Save", ctx, userID, mock.Anything).Return(saveErr).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, nil, zap.NewNop())

		err := svc.CompleteLevel(ctx, userID, "level-a")
		assert.ErrorIs(t, err, saveErr)

		all := svc.Levels(ctx, userID)
		assert.Equal(t, models.LevelStatusUnlocked, all[0].Status)
		assert.Equal(t, models.LevelStatusLocked, all[1].Status)
	})

	t.Run("Save failure invalidates the cached snapshot", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockCache := new(progressionMocks.SnapshotCache)
		mockSource.On("List", ctx).Return(threeLevels())
		mockCache.On("Get", ctx, userID).Return(nil, models.ErrNotFound).Once()
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()
		mockRepo.On("Save", ctx, userID, mock.Anything).Return(errors.New("connection reset")).Once()
		mockCache.On("Invalidate", ctx, userID).Return().Once()

		svc := progression.NewService(mockSource, mockRepo, mockCache, nil, zap.NewNop())

		assert.Error(t, svc.CompleteLevel(ctx, userID, "level-a"))

		// The cache must not keep the optimistic snapshot around.
		mockCache.AssertCalled(t, "Invalidate", ctx, userID)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Completion event carries the unlocked level", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockEvents := new(progressionMocks.EventPublisher)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()
		mockRepo.On("Save", ctx, userID, mock.Anything).Return(nil).Once()
		mockEvents.On("PublishLevelCompleted", ctx, mock.MatchedBy(func(e progression.LevelCompletedEvent) bool {
			return e.UserID == userID.String() && e.LevelID == "level-a" && e.UnlockedLevelID == "level-b"
		})).Return(nil).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, mockEvents, zap.NewNop())

		assert.NoError(t, svc.CompleteLevel(ctx, userID, "level-a"))
		mockEvents.AssertExpectations(t)
	})

	t.Run("Publish failure does not fail the completion", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockEvents := new(progressionMocks.EventPublisher)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, models.ErrNotFound).Once()
		mockRepo.On("Save", ctx, userID, mock.Anything).Return(nil).Once()
		mockEvents.On("PublishLevelCompleted", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, mockEvents, zap.NewNop())

		assert.NoError(t, svc.CompleteLevel(ctx, userID, "level-a"))
	})
}

func TestLevels(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Repository snapshot applied, unknown levels locked", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(models.ProgressSnapshot{
			"level-a": models.LevelStatusCompleted,
			"level-b": models.LevelStatusUnlocked,
		}, nil).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, nil, zap.NewNop())

		all := svc.Levels(ctx, userID)
		assert.Len(t, all, 3)
		assert.Equal(t, models.LevelStatusCompleted, all[0].Status)
		assert.Equal(t, models.LevelStatusUnlocked, all[1].Status)
		// level-c is not in the stored snapshot and must come back locked.
		assert.Equal(t, models.LevelStatusLocked, all[2].Status)
	})

	t.Run("Repository failure degrades to the initial view", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockSource.On("List", ctx).Return(threeLevels())
		mockRepo.On("Load", ctx, userID).Return(nil, errors.New("timeout")).Once()

		svc := progression.NewService(mockSource, mockRepo, nil, nil, zap.NewNop())

		all := svc.Levels(ctx, userID)
		assert.Equal(t, models.LevelStatusUnlocked, all[0].Status)
		assert.Equal(t, models.LevelStatusLocked, all[1].Status)
	})

	t.Run("Cache hit skips the repository", func(t *testing.T) {
		mockSource := new(progressionMocks.LevelSource)
		mockRepo := new(databaseMocks.ProgressRepository)
		mockCache := new(progressionMocks.SnapshotCache)
		mockSource.On("List", ctx).Return(threeLevels())
		mockCache.On("Get", ctx, userID).Return(models.ProgressSnapshot{
			"level-a": models.LevelStatusCompleted,
			"level-b": models.LevelStatusUnlocked,
			"level-c": models.LevelStatusLocked,
		}, nil).Once()

		svc := progression.NewService(mockSource, mockRepo, mockCache, nil, zap.NewNop())

		all := svc.Levels(ctx, userID)
		assert.Equal(t, models.LevelStatusCompleted, all[0].Status)
		mockRepo.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	})
}

func TestCurrentLevel(t *testing.T) {
	t.Run("First unlocked level wins", func(t *testing.T) {
		all := threeLevels()
		all[0].Status = models.LevelStatusCompleted
		all[1].Status = models.LevelStatusUnlocked
		all[2].Status = models.LevelStatusLocked

		current, ok := progression.CurrentLevel(all)
		assert.True(t, ok)
		assert.Equal(t, "level-b", current.ID)
	})

	t.Run("All completed falls back to the last level", func(t *testing.T) {
		all := threeLevels()
		for i := range all {
			all[i].Status = models.LevelStatusCompleted
		}

		current, ok := progression.CurrentLevel(all)
		assert.True(t, ok)
		assert.Equal(t, "level-c", current.ID)
	})

	t.Run("Empty set has no current level", func(t *testing.T) {
		_, ok := progression.CurrentLevel(nil)
		assert.False(t, ok)
	})
}

func TestProgressPercentage(t *testing.T) {
	t.Run("One of three completed", func(t *testing.T) {
		all := threeLevels()
		all[0].Status = models.LevelStatusCompleted
		all[1].Status = models.LevelStatusUnlocked

		assert.InDelta(t, 33.33, progression.ProgressPercentage(all), 0.01)
	})

	t.Run("Empty set is zero, not NaN", func(t *testing.T) {
		assert.Zero(t, progression.ProgressPercentage(nil))
	})
}
