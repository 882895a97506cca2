package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"grimoire-server/internal/models"
)

// ParseGameState decodes a turn reply into a GameState. The model is
// instructed to return strict JSON, but the body is still treated as
// untrusted: code fences are stripped, the mood is normalized, the risk
// is clamped and the suggestion list is capped. A body that does not
// decode, or that lacks a character reply, is a malformed-response error.
func ParseGameState(raw string) (*models.GameState, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty body", models.ErrMalformedAIResponse)
	}

	state := &models.GameState{}
	if err := json.Unmarshal([]byte(cleaned), state); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedAIResponse, err)
	}
	if strings.TrimSpace(state.CharacterReply) == "" {
		return nil, fmt.Errorf("%w: missing character_reply", models.ErrMalformedAIResponse)
	}

	if !state.Mood.Valid() {
		log.Warn().Str("mood", string(state.Mood)).Msg("Unknown mood in reply, normalizing to neutral")
		state.Mood = models.MoodNeutral
	}
	if state.DepartureRisk < 0 {
		state.DepartureRisk = 0
	}
	if state.DepartureRisk > 100 {
		state.DepartureRisk = 100
	}
	if len(state.SuggestedActions) > models.MaxSuggestedActions {
		state.SuggestedActions = state.SuggestedActions[:models.MaxSuggestedActions]
	}
	return state, nil
}

// ParseEmotion decodes an emotion-classification reply. Malformed bodies
// fall back to the neutral "Inconnu" result, matching the degradation
// the chat mode expects.
func ParseEmotion(raw string) models.EmotionAnalysis {
	cleaned := stripCodeFences(raw)
	analysis := models.EmotionAnalysis{}
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil || analysis.Emotion == "" {
		log.Warn().Err(err).Msg("Emotion reply failed to parse, using fallback")
		return models.FallbackEmotionAnalysis()
	}
	switch analysis.Valence {
	case "positive", "neutral", "negative":
	default:
		analysis.Valence = "neutral"
	}
	switch analysis.Intensity {
	case "low", "medium", "high":
	default:
		analysis.Intensity = "low"
	}
	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	return analysis
}

// stripCodeFences removes a surrounding markdown code fence, which some
// models wrap around JSON bodies despite the response-format setting.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
