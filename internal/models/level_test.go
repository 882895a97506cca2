package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire-server/internal/models"
)

func TestValidateLevel(t *testing.T) {
	valid := func() *models.Level {
		return &models.Level{
			Title:       "Chapitre test",
			Description: "Une description",
			Content: &models.LevelContent{
				Character:      "Hermione Granger",
				InitialMessage: "Bonsoir.",
			},
		}
	}

	t.Run("Valid level", func(t *testing.T) {
		assert.NoError(t, models.ValidateLevel(valid()))
	})

	t.Run("Negative order", func(t *testing.T) {
		l := valid()
		l.Order = -1
		assert.ErrorIs(t, models.ValidateLevel(l), models.ErrInvalidInput)
	})

	t.Run("Content without a character", func(t *testing.T) {
		l := valid()
		l.Content.Character = ""
		assert.ErrorIs(t, models.ValidateLevel(l), models.ErrInvalidInput)
	})

	t.Run("Too many suggested actions", func(t *testing.T) {
		l := valid()
		l.Content.SuggestedActions = []string{"a", "b", "c", "d", "e"}
		assert.ErrorIs(t, models.ValidateLevel(l), models.ErrInvalidInput)
	})

	t.Run("Nil content is allowed", func(t *testing.T) {
		l := valid()
		l.Content = nil
		assert.NoError(t, models.ValidateLevel(l))
	})
}

func TestProgressSnapshotClone(t *testing.T) {
	original := models.ProgressSnapshot{
		"chap-1": models.LevelStatusCompleted,
		"chap-2": models.LevelStatusUnlocked,
	}

	clone := original.Clone()
	clone["chap-2"] = models.LevelStatusCompleted

	assert.Equal(t, models.LevelStatusUnlocked, original["chap-2"])
}

func TestProgressSnapshotRoundTrip(t *testing.T) {
	// The repository and the cache both persist the snapshot as JSON;
	// reloading it must reproduce every status exactly.
	original := models.ProgressSnapshot{
		"chap-1": models.LevelStatusCompleted,
		"chap-2": models.LevelStatusUnlocked,
		"chap-3": models.LevelStatusLocked,
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	reloaded := models.ProgressSnapshot{}
	require.NoError(t, json.Unmarshal(raw, &reloaded))
	assert.Equal(t, original, reloaded)
}

func TestProgressSnapshotCompletedIDs(t *testing.T) {
	snapshot := models.ProgressSnapshot{
		"chap-1": models.LevelStatusCompleted,
		"chap-2": models.LevelStatusUnlocked,
		"chap-3": models.LevelStatusCompleted,
	}

	ids := snapshot.CompletedIDs()
	assert.ElementsMatch(t, []string{"chap-1", "chap-3"}, ids)
}

func TestGameStateTerminal(t *testing.T) {
	assert.False(t, models.GameState{}.Terminal())
	assert.True(t, models.GameState{GameOver: true}.Terminal())
	assert.True(t, models.GameState{GameWon: true}.Terminal())
}

func TestDefaultGameState(t *testing.T) {
	state := models.DefaultGameState()
	assert.Equal(t, models.MoodSad, state.Mood)
	assert.Equal(t, 50, state.DepartureRisk)
	assert.Len(t, state.SuggestedActions, 4)
	assert.False(t, state.Terminal())
}
