package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"grimoire-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ ProgressRepository = (*pgProgressRepository)(nil)

type pgProgressRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgProgressRepository creates a Postgres-backed ProgressRepository.
func NewPgProgressRepository(pool *pgxpool.Pool, logger *zap.Logger) ProgressRepository {
	return &pgProgressRepository{
		pool:   pool,
		logger: logger.Named("PgProgressRepo"),
	}
}

const loadProgressQuery = `
SELECT statuses
FROM player_progress
WHERE user_id = $1`

const saveProgressQuery = `
INSERT INTO player_progress (user_id, statuses, completed_levels, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
    statuses = EXCLUDED.statuses,
    completed_levels = EXCLUDED.completed_levels,
    updated_at = EXCLUDED.updated_at`

func (r *pgProgressRepository) Load(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error) {
	var statusesJSON []byte
	err := r.pool.QueryRow(ctx, loadProgressQuery, userID).Scan(&statusesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to load progress snapshot", zap.Stringer("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load progress snapshot: %w", err)
	}

	snapshot := models.ProgressSnapshot{}
	if err := json.Unmarshal(statusesJSON, &snapshot); err != nil {
		r.logger.Error("Failed to unmarshal progress snapshot", zap.Stringer("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal progress snapshot: %w", err)
	}
	r.logger.Debug("Loaded progress snapshot", zap.Stringer("userID", userID), zap.Int("levels", len(snapshot)))
	return snapshot, nil
}

func (r *pgProgressRepository) Save(ctx context.Context, userID uuid.UUID, snapshot models.ProgressSnapshot) error {
	statusesJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}

	_, err = r.pool.Exec(ctx, saveProgressQuery,
		userID,
		statusesJSON,
		pq.Array(snapshot.CompletedIDs()),
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to save progress snapshot", zap.Stringer("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to save progress snapshot: %w", err)
	}
	r.logger.Debug("Saved progress snapshot", zap.Stringer("userID", userID), zap.Int("levels", len(snapshot)))
	return nil
}
