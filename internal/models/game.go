package models

// Mood is the emotional state reported by the character after each turn.
type Mood string

const (
	MoodSad       Mood = "sad"
	MoodAngry     Mood = "angry"
	MoodNeutral   Mood = "neutral"
	MoodHappy     Mood = "happy"
	MoodDesperate Mood = "desperate"
)

// Valid reports whether m is one of the moods the prompt contract allows.
func (m Mood) Valid() bool {
	switch m {
	case MoodSad, MoodAngry, MoodNeutral, MoodHappy, MoodDesperate:
		return true
	}
	return false
}

// Chat message roles, matching the OpenAI wire values.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MaxSuggestedActions caps the dialogue options offered to the player.
const MaxSuggestedActions = 4

// ChatMessage is one entry of a play-session transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GameState is the structured result of one RPG turn. It is produced fresh
// from the model's JSON reply on every call and never persisted on its own.
type GameState struct {
	CharacterReply   string   `json:"character_reply"`
	Mood             Mood     `json:"mood"`
	DepartureRisk    int      `json:"departure_risk"`
	GameOver         bool     `json:"game_over"`
	GameWon          bool     `json:"game_won"`
	SuggestedActions []string `json:"suggested_actions"`
}

// Terminal reports whether the session reached an ending.
func (g GameState) Terminal() bool {
	return g.GameOver || g.GameWon
}

// DefaultOpeningMessage is shown before the first turn of the built-in
// scenario; it is display context only and is never sent to the API.
const DefaultOpeningMessage = "Je... je ne sais pas ce que je fais encore ici. Tout semble si vain. Je pense que je vais faire mes valises ce soir."

// DefaultGameState returns the initial state of the built-in Hermione
// scenario: risk at 50, four opener suggestions.
func DefaultGameState() GameState {
	return GameState{
		Mood:          MoodSad,
		DepartureRisk: 50,
		SuggestedActions: []string{
			"Qu'est ce qui ne va pas ?",
			"Lui rappeler Harry et Ron",
			"Lui offrir une écoute attentive",
			"Bloquer le passage",
		},
	}
}

// EmotionAnalysis is the result of the emotion-classification call used by
// the assistant chat mode.
type EmotionAnalysis struct {
	Emotion    string  `json:"emotion"`
	Valence    string  `json:"valence"`
	Intensity  string  `json:"intensity"`
	Confidence float64 `json:"confidence"`
}

// FallbackEmotionAnalysis is returned when the classifier reply cannot be
// parsed; the chat mode degrades instead of failing.
func FallbackEmotionAnalysis() EmotionAnalysis {
	return EmotionAnalysis{Emotion: "Inconnu", Valence: "neutral", Intensity: "low", Confidence: 0}
}
