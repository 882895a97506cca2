package levels

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimoire-server/internal/models"
)

// Repository is the persistence surface the registry needs for custom
// levels.
type Repository interface {
	ListCustom(ctx context.Context) ([]models.Level, error)
	Insert(ctx context.Context, level *models.Level, ownerID uuid.UUID) error
}

// Registry supplies the ordered set of candidate levels: built-ins first,
// then custom levels from the store with their order shifted to follow
// the highest built-in order.
type Registry struct {
	repo   Repository
	logger *zap.Logger
}

// NewRegistry creates a Registry. repo may be nil, in which case only the
// built-in levels are served.
func NewRegistry(repo Repository, logger *zap.Logger) *Registry {
	return &Registry{repo: repo, logger: logger.Named("LevelRegistry")}
}

// List returns all levels sorted by order ascending. Custom levels keep
// their relative order but are renumbered to start right after the last
// built-in, so no two levels share an order value. A store failure falls
// back to the built-ins only and never fails the caller.
func (r *Registry) List(ctx context.Context) []models.Level {
	all := BuiltinLevels()
	maxOrder := 0
	for _, l := range all {
		if l.Order > maxOrder {
			maxOrder = l.Order
		}
	}

	if r.repo != nil {
		custom, err := r.repo.ListCustom(ctx)
		if err != nil {
			r.logger.Warn("Failed to load custom levels, serving built-ins only", zap.Error(err))
			return all
		}
		sort.SliceStable(custom, func(i, j int) bool { return custom[i].Order < custom[j].Order })
		for i := range custom {
			custom[i].Order = maxOrder + i + 1
			custom[i].Status = models.LevelStatusLocked
			custom[i].Custom = true
		}
		all = append(all, custom...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Order < all[j].Order })
	return all
}

// Find returns the level with the given id, or nil.
func (r *Registry) Find(ctx context.Context, id string) *models.Level {
	for _, l := range r.List(ctx) {
		if l.ID == id {
			lvl := l
			return &lvl
		}
	}
	return nil
}

// Create validates and stores a new custom level.
func (r *Registry) Create(ctx context.Context, level *models.Level, ownerID uuid.UUID) error {
	if err := models.ValidateLevel(level); err != nil {
		return err
	}
	if r.repo == nil {
		return models.ErrNotFound
	}
	if level.ID == "" {
		level.ID = "custom-" + uuid.NewString()
	}
	level.Custom = true
	level.CreatedAt = time.Now().UTC()
	if err := r.repo.Insert(ctx, level, ownerID); err != nil {
		r.logger.Error("Failed to insert custom level", zap.String("levelID", level.ID), zap.Error(err))
		return err
	}
	r.logger.Info("Custom level created", zap.String("levelID", level.ID), zap.Stringer("ownerID", ownerID))
	return nil
}
