package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"grimoire-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ LevelRepository = (*pgLevelRepository)(nil)

type pgLevelRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgLevelRepository creates a Postgres-backed LevelRepository.
func NewPgLevelRepository(pool *pgxpool.Pool, logger *zap.Logger) LevelRepository {
	return &pgLevelRepository{
		pool:   pool,
		logger: logger.Named("PgLevelRepo"),
	}
}

const listCustomLevelsQuery = `
SELECT id, title, description, order_index, content, suggested_actions, created_at
FROM levels
ORDER BY order_index ASC, created_at ASC`

const insertLevelQuery = `
INSERT INTO levels (id, title, description, order_index, content, suggested_actions, owner_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// levelRow mirrors the levels table. Suggested actions live in a text[]
// column next to the JSONB content so they can be queried without
// unpacking the payload.
type levelRow struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Description      string         `db:"description"`
	OrderIndex       int            `db:"order_index"`
	Content          []byte         `db:"content"`
	SuggestedActions pq.StringArray `db:"suggested_actions"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (r *pgLevelRepository) ListCustom(ctx context.Context) ([]models.Level, error) {
	var rows []levelRow
	if err := pgxscan.Select(ctx, r.pool, &rows, listCustomLevelsQuery); err != nil {
		r.logger.Error("Failed to list custom levels", zap.Error(err))
		return nil, fmt.Errorf("failed to list custom levels: %w", err)
	}

	out := make([]models.Level, 0, len(rows))
	for _, row := range rows {
		level := models.Level{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Order:       row.OrderIndex,
			Status:      models.LevelStatusLocked,
			Custom:      true,
			CreatedAt:   row.CreatedAt,
		}
		if len(row.Content) > 0 {
			content := &models.LevelContent{}
			if err := json.Unmarshal(row.Content, content); err != nil {
				r.logger.Warn("Skipping level with unreadable content payload",
					zap.String("levelID", row.ID), zap.Error(err))
				continue
			}
			content.SuggestedActions = []string(row.SuggestedActions)
			level.Content = content
		}
		out = append(out, level)
	}
	r.logger.Debug("Listed custom levels", zap.Int("count", len(out)))
	return out, nil
}

func (r *pgLevelRepository) Insert(ctx context.Context, level *models.Level, ownerID uuid.UUID) error {
	var contentJSON []byte
	var actions pq.StringArray
	if level.Content != nil {
		actions = pq.StringArray(level.Content.SuggestedActions)
		var err error
		contentJSON, err = json.Marshal(level.Content)
		if err != nil {
			return fmt.Errorf("failed to marshal level content: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, insertLevelQuery,
		level.ID,
		level.Title,
		level.Description,
		level.Order,
		contentJSON,
		actions,
		ownerID,
		level.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert level", zap.String("levelID", level.ID), zap.Error(err))
		return fmt.Errorf("failed to insert level: %w", err)
	}
	r.logger.Debug("Inserted level", zap.String("levelID", level.ID))
	return nil
}
