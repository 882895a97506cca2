package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimoire-server/internal/levels"
	"grimoire-server/internal/models"
)

// TurnPlayer runs one external RPG turn. Satisfied by ai.Client.
type TurnPlayer interface {
	PlayTurn(ctx context.Context, level *models.Level, transcript []models.ChatMessage, userTurns int) (*models.GameState, error)
}

// LevelCompleter marks a level completed on a win. Satisfied by
// progression.Service.
type LevelCompleter interface {
	CompleteLevel(ctx context.Context, userID uuid.UUID, levelID string) error
}

// Manager owns the play sessions, one per user. It serializes turns per
// session (one external call in flight at a time) and translates turn
// results into transcript, game state and progression updates.
type Manager struct {
	player      TurnPlayer
	progression LevelCompleter
	maxTurns    int
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager.
func NewManager(player TurnPlayer, progression LevelCompleter, maxTurns int, logger *zap.Logger) *Manager {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &Manager{
		player:      player,
		progression: progression,
		maxTurns:    maxTurns,
		logger:      logger.Named("SessionManager"),
		sessions:    make(map[uuid.UUID]*Session),
	}
}

func (m *Manager) sessionFor(userID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		// A fresh session plays the first built-in chapter until the user
		// picks a level explicitly.
		s = newSession(levels.BuiltinLevels()[0])
		m.sessions[userID] = s
	}
	return s
}

// Snapshot returns the user's current session view, creating the default
// session on first use.
func (m *Manager) Snapshot(userID uuid.UUID) Snapshot {
	s := m.sessionFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(m.maxTurns)
}

// Reset clears the user's session and reinitializes it for the given
// level. Any in-flight call of the previous session discards its result.
func (m *Manager) Reset(userID uuid.UUID, level models.Level) Snapshot {
	s := m.sessionFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(level)
	m.logger.Info("Session reset", zap.Stringer("userID", userID), zap.String("levelID", level.ID))
	return s.snapshotLocked(m.maxTurns)
}

// SubmitUtterance appends the user's text to the transcript, runs one
// external turn and applies the structured result.
//
// Empty utterances and terminal sessions are silent no-ops that return
// the unchanged snapshot. A second submission while a call is pending
// fails with ErrTurnInFlight. When the external call fails, the user
// turn stays in the transcript, no assistant turn is appended and the
// session remains playable; the error surfaces as a transient notice.
func (m *Manager) SubmitUtterance(ctx context.Context, userID uuid.UUID, text string) (Snapshot, error) {
	s := m.sessionFor(userID)
	utterance := normalizeUtterance(text)

	s.mu.Lock()
	if utterance == "" || s.state.Terminal() {
		snap := s.snapshotLocked(m.maxTurns)
		s.mu.Unlock()
		return snap, nil
	}
	if s.busy {
		snap := s.snapshotLocked(m.maxTurns)
		s.mu.Unlock()
		return snap, models.ErrTurnInFlight
	}

	// The user turn is added optimistically: it survives a failed call so
	// the input is not lost on retry.
	s.transcript = append(s.transcript, models.ChatMessage{Role: models.RoleUser, Content: utterance})
	s.busy = true
	epoch := s.epoch
	level := s.level
	turnIndex := s.userTurns + 1
	transcript := make([]models.ChatMessage, len(s.transcript))
	copy(transcript, s.transcript)
	s.mu.Unlock()

	state, err := m.player.PlayTurn(ctx, &level, transcript, turnIndex)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// The session was reset while the call was in flight; the result
		// must not touch the new session.
		m.logger.Debug("Discarding stale turn result", zap.Stringer("userID", userID))
		return s.snapshotLocked(m.maxTurns), nil
	}
	s.busy = false

	if err != nil {
		m.logger.Warn("Turn failed",
			zap.Stringer("userID", userID),
			zap.String("levelID", level.ID),
			zap.Error(err))
		return s.snapshotLocked(m.maxTurns), err
	}

	s.userTurns++
	if !state.Terminal() && s.userTurns >= m.maxTurns {
		// The prompt asks the model to end the game on the last turn; if
		// it did not, close the session here so it cannot run forever.
		m.logger.Warn("Turn limit reached without an ending, forcing game over",
			zap.Stringer("userID", userID), zap.String("levelID", level.ID))
		state.GameOver = true
	}

	s.transcript = append(s.transcript, models.ChatMessage{Role: models.RoleAssistant, Content: state.CharacterReply})
	s.state = *state

	if state.GameWon {
		if err := m.progression.CompleteLevel(ctx, userID, level.ID); err != nil {
			// The win stands either way; progression can be retried via
			// the explicit completion endpoint.
			m.logger.Error("Failed to record level completion after win",
				zap.Stringer("userID", userID),
				zap.String("levelID", level.ID),
				zap.Error(err))
		}
	}

	return s.snapshotLocked(m.maxTurns), nil
}
