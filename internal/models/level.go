package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LevelStatus describes where a level sits in the unlock sequence.
type LevelStatus string

const (
	LevelStatusLocked    LevelStatus = "locked"
	LevelStatusUnlocked  LevelStatus = "unlocked"
	LevelStatusCompleted LevelStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s LevelStatus) Valid() bool {
	switch s {
	case LevelStatusLocked, LevelStatusUnlocked, LevelStatusCompleted:
		return true
	}
	return false
}

// Level is one chapter of the role-play story. Built-in levels carry the
// default Hermione scenario; custom levels created through the admin API
// carry their own Content payload.
type Level struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	Status      LevelStatus   `json:"status"`
	Content     *LevelContent `json:"content,omitempty"`
	Custom      bool          `json:"custom"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
}

// LevelContent is the structured scenario configuration of a custom level.
// Levels without content fall back to the built-in scenario text.
type LevelContent struct {
	Character        string   `json:"character"`
	Location         string   `json:"location,omitempty"`
	InitialMessage   string   `json:"initial_message"`
	InitialMood      Mood     `json:"initial_mood,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
	ScenarioRole     string   `json:"scenario_role,omitempty"`
	ScenarioContext  string   `json:"scenario_context,omitempty"`
	Goal             string   `json:"goal,omitempty"`
	WinningCondition string   `json:"winning_condition,omitempty"`
	LosingCondition  string   `json:"losing_condition,omitempty"`
}

// Validate checks the required fields of a content payload.
func (c *LevelContent) Validate() error {
	if c == nil {
		return nil
	}
	if strings.TrimSpace(c.Character) == "" {
		return fmt.Errorf("%w: content.character is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.InitialMessage) == "" {
		return fmt.Errorf("%w: content.initial_message is required", ErrInvalidInput)
	}
	if c.InitialMood != "" && !c.InitialMood.Valid() {
		return fmt.Errorf("%w: unknown initial_mood %q", ErrInvalidInput, c.InitialMood)
	}
	if len(c.SuggestedActions) > MaxSuggestedActions {
		return fmt.Errorf("%w: at most %d suggested_actions allowed", ErrInvalidInput, MaxSuggestedActions)
	}
	return nil
}

// ProgressSnapshot is the persisted representation of a user's progression:
// the full map of level statuses, saved and loaded as one unit.
type ProgressSnapshot map[string]LevelStatus

// Clone returns an independent copy of the snapshot.
func (s ProgressSnapshot) Clone() ProgressSnapshot {
	out := make(ProgressSnapshot, len(s))
	for id, st := range s {
		out[id] = st
	}
	return out
}

// CompletedIDs lists the ids of completed levels, for the denormalized
// text[] column stored alongside the JSONB snapshot.
func (s ProgressSnapshot) CompletedIDs() []string {
	ids := make([]string, 0, len(s))
	for id, st := range s {
		if st == LevelStatusCompleted {
			ids = append(ids, id)
		}
	}
	return ids
}

// ValidateLevel checks the fields of a level being created.
func ValidateLevel(l *Level) error {
	if l == nil {
		return errors.New("level is nil")
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(l.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if l.Order < 0 {
		return fmt.Errorf("%w: order must not be negative", ErrInvalidInput)
	}
	return l.Content.Validate()
}
