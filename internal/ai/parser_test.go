package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grimoire-server/internal/ai"
	"grimoire-server/internal/models"
)

func TestParseGameState(t *testing.T) {
	t.Run("Valid strict JSON body", func(t *testing.T) {
		state, err := ai.ParseGameState(`{
			"character_reply": "Je... je ne sais pas quoi dire.",
			"mood": "sad",
			"departure_risk": 40,
			"game_over": false,
			"game_won": false,
			"suggested_actions": ["Lui tendre un mouchoir", "Changer de sujet"]
		}`)
		assert.NoError(t, err)
		assert.Equal(t, "Je... je ne sais pas quoi dire.", state.CharacterReply)
		assert.Equal(t, models.MoodSad, state.Mood)
		assert.Equal(t, 40, state.DepartureRisk)
		assert.Len(t, state.SuggestedActions, 2)
		assert.False(t, state.Terminal())
	})

	t.Run("Code-fenced body is unwrapped", func(t *testing.T) {
		state, err := ai.ParseGameState("```json\n{\"character_reply\": \"D'accord.\", \"mood\": \"neutral\", \"departure_risk\": 10}\n```")
		assert.NoError(t, err)
		assert.Equal(t, "D'accord.", state.CharacterReply)
	})

	t.Run("Unknown mood normalizes to neutral", func(t *testing.T) {
		state, err := ai.ParseGameState(`{"character_reply": "Hm.", "mood": "melancholic", "departure_risk": 10}`)
		assert.NoError(t, err)
		assert.Equal(t, models.MoodNeutral, state.Mood)
	})

	t.Run("Departure risk is clamped to 0..100", func(t *testing.T) {
		state, err := ai.ParseGameState(`{"character_reply": "Non !", "mood": "angry", "departure_risk": 240}`)
		assert.NoError(t, err)
		assert.Equal(t, 100, state.DepartureRisk)

		state, err = ai.ParseGameState(`{"character_reply": "Oh.", "mood": "happy", "departure_risk": -5}`)
		assert.NoError(t, err)
		assert.Equal(t, 0, state.DepartureRisk)
	})

	t.Run("Suggested actions are capped", func(t *testing.T) {
		state, err := ai.ParseGameState(`{"character_reply": "Bien.", "mood": "neutral", "departure_risk": 10,
			"suggested_actions": ["a", "b", "c", "d", "e", "f"]}`)
		assert.NoError(t, err)
		assert.Len(t, state.SuggestedActions, models.MaxSuggestedActions)
	})

	t.Run("Missing character reply is malformed", func(t *testing.T) {
		_, err := ai.ParseGameState(`{"mood": "sad", "departure_risk": 40}`)
		assert.ErrorIs(t, err, models.ErrMalformedAIResponse)
	})

	t.Run("Prose instead of JSON is malformed", func(t *testing.T) {
		_, err := ai.ParseGameState("Hermione looks at you and starts crying.")
		assert.ErrorIs(t, err, models.ErrMalformedAIResponse)
	})

	t.Run("Empty body is malformed", func(t *testing.T) {
		_, err := ai.ParseGameState("")
		assert.ErrorIs(t, err, models.ErrMalformedAIResponse)
	})

	t.Run("Winning state is terminal", func(t *testing.T) {
		state, err := ai.ParseGameState(`{"character_reply": "Merci...", "mood": "happy", "departure_risk": 0, "game_won": true}`)
		assert.NoError(t, err)
		assert.True(t, state.Terminal())
	})
}

func TestParseEmotion(t *testing.T) {
	t.Run("Valid classification", func(t *testing.T) {
		analysis := ai.ParseEmotion(`{"emotion": "Tristesse", "valence": "negative", "intensity": "high", "confidence": 0.92}`)
		assert.Equal(t, "Tristesse", analysis.Emotion)
		assert.Equal(t, "negative", analysis.Valence)
		assert.InDelta(t, 0.92, analysis.Confidence, 0.001)
	})

	t.Run("Garbage falls back to the unknown emotion", func(t *testing.T) {
		analysis := ai.ParseEmotion("not json at all")
		assert.Equal(t, models.FallbackEmotionAnalysis(), analysis)
	})

	t.Run("Missing emotion falls back", func(t *testing.T) {
		analysis := ai.ParseEmotion(`{"valence": "positive"}`)
		assert.Equal(t, models.FallbackEmotionAnalysis(), analysis)
	})

	t.Run("Out-of-range fields are normalized", func(t *testing.T) {
		analysis := ai.ParseEmotion(`{"emotion": "Joie", "valence": "euphoric", "intensity": "extreme", "confidence": 3.5}`)
		assert.Equal(t, "neutral", analysis.Valence)
		assert.Equal(t, "low", analysis.Intensity)
		assert.Equal(t, 1.0, analysis.Confidence)
	})
}
