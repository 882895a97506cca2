package database

import (
	"context"

	"github.com/google/uuid"

	"grimoire-server/internal/models"
)

// LevelRepository stores custom levels.
type LevelRepository interface {
	ListCustom(ctx context.Context) ([]models.Level, error)
	Insert(ctx context.Context, level *models.Level, ownerID uuid.UUID) error
}

// ProgressRepository persists the full snapshot of a user's level
// statuses. Load returns models.ErrNotFound when the user has no saved
// progression yet.
type ProgressRepository interface {
	Load(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error)
	Save(ctx context.Context, userID uuid.UUID, snapshot models.ProgressSnapshot) error
}
