package session

import (
	"strings"
	"sync"

	"grimoire-server/internal/models"
)

// Session is one user's play state: the active level, the transcript and
// the latest game state. A session is owned by the Manager and touched
// only under its mutex.
type Session struct {
	mu sync.Mutex

	level      models.Level
	transcript []models.ChatMessage
	state      models.GameState
	userTurns  int

	// busy is set while an external call is in flight; no second call may
	// start against the same transcript.
	busy bool

	// epoch increments on every reset. A call started under an older
	// epoch discards its result instead of mutating the reset session.
	epoch uint64
}

func newSession(level models.Level) *Session {
	s := &Session{}
	s.resetLocked(level)
	return s
}

// resetLocked reinitializes the session for a level. Caller holds s.mu
// (or owns the session exclusively).
func (s *Session) resetLocked(level models.Level) {
	s.level = level
	s.userTurns = 0
	s.busy = false
	s.epoch++

	opening := models.DefaultOpeningMessage
	state := models.DefaultGameState()
	if level.Content != nil {
		opening = level.Content.InitialMessage
		if level.Content.InitialMood != "" {
			state.Mood = level.Content.InitialMood
		}
		if len(level.Content.SuggestedActions) > 0 {
			state.SuggestedActions = level.Content.SuggestedActions
		}
	}
	s.transcript = []models.ChatMessage{{Role: models.RoleAssistant, Content: opening}}
	s.state = state
}

// Snapshot is the session view returned to the client.
type Snapshot struct {
	LevelID    string               `json:"level_id"`
	Transcript []models.ChatMessage `json:"transcript"`
	State      models.GameState     `json:"state"`
	UserTurns  int                  `json:"user_turns"`
	MaxTurns   int                  `json:"max_turns"`
}

func (s *Session) snapshotLocked(maxTurns int) Snapshot {
	transcript := make([]models.ChatMessage, len(s.transcript))
	copy(transcript, s.transcript)
	return Snapshot{
		LevelID:    s.level.ID,
		Transcript: transcript,
		State:      s.state,
		UserTurns:  s.userTurns,
		MaxTurns:   maxTurns,
	}
}

// normalizeUtterance trims the input; an empty result means no-op.
func normalizeUtterance(text string) string {
	return strings.TrimSpace(text)
}
