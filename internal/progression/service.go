package progression

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimoire-server/internal/database"
	"grimoire-server/internal/models"
)

// LevelSource supplies the ordered candidate levels. Satisfied by
// levels.Registry.
type LevelSource interface {
	List(ctx context.Context) []models.Level
}

// SnapshotCache is an optional fast path in front of the repository.
// Satisfied by database.RedisProgressCache.
type SnapshotCache interface {
	Get(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error)
	Set(ctx context.Context, userID uuid.UUID, snapshot models.ProgressSnapshot)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// LevelCompletedEvent is published after a level completion is persisted.
type LevelCompletedEvent struct {
	UserID          string    `json:"user_id"`
	LevelID         string    `json:"level_id"`
	UnlockedLevelID string    `json:"unlocked_level_id,omitempty"`
	CompletedAt     time.Time `json:"completed_at"`
}

// EventPublisher delivers progression events to the notification
// pipeline. Implementations must be safe for concurrent use.
type EventPublisher interface {
	PublishLevelCompleted(ctx context.Context, event LevelCompletedEvent) error
}

// Service owns the per-user level progression: the locked / unlocked /
// completed statuses, the unlock-next-on-complete rule and the persisted
// snapshot. Mutations are applied optimistically to the in-memory view
// and rolled back if persistence fails.
type Service struct {
	source LevelSource
	repo   database.ProgressRepository
	cache  SnapshotCache  // may be nil
	events EventPublisher // may be nil
	logger *zap.Logger

	mu    sync.Mutex
	views map[uuid.UUID]models.ProgressSnapshot
}

// NewService creates a progression Service. cache and events may be nil.
func NewService(source LevelSource, repo database.ProgressRepository, cache SnapshotCache, events EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger.Named("ProgressionService"),
		views:  make(map[uuid.UUID]models.ProgressSnapshot),
	}
}

// InitialSnapshot builds the starting statuses for a level set: exactly
// the lowest-order level unlocked, everything else locked.
func InitialSnapshot(all []models.Level) models.ProgressSnapshot {
	snapshot := make(models.ProgressSnapshot, len(all))
	lowest := -1
	for i, l := range all {
		snapshot[l.ID] = models.LevelStatusLocked
		if lowest == -1 || l.Order < all[lowest].Order {
			lowest = i
		}
	}
	if lowest >= 0 {
		snapshot[all[lowest].ID] = models.LevelStatusUnlocked
	}
	return snapshot
}

// Levels returns the merged level list with the user's statuses applied,
// sorted by order ascending. Levels added after the snapshot was taken
// show up locked.
func (s *Service) Levels(ctx context.Context, userID uuid.UUID) []models.Level {
	all := s.source.List(ctx)
	snapshot := s.snapshotFor(ctx, userID, all)

	for i := range all {
		if st, ok := snapshot[all[i].ID]; ok {
			all[i].Status = st
		} else {
			all[i].Status = models.LevelStatusLocked
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Order < all[j].Order })
	return all
}

// CompleteLevel marks an unlocked level completed and unlocks the level
// with the next-higher order if it exists and is locked. Unknown, locked
// and already-completed levels are no-ops. The in-memory view is updated
// before persistence; a persistence failure reverts exactly the entries
// this mutation touched.
func (s *Service) CompleteLevel(ctx context.Context, userID uuid.UUID, levelID string) error {
	all := s.source.List(ctx)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Order < all[j].Order })

	s.mu.Lock()
	snapshot := s.viewLocked(ctx, userID, all)

	if snapshot[levelID] != models.LevelStatusUnlocked {
		s.mu.Unlock()
		s.logger.Debug("CompleteLevel ignored",
			zap.Stringer("userID", userID),
			zap.String("levelID", levelID),
			zap.String("status", string(snapshot[levelID])))
		return nil
	}

	// Remember only what this mutation changes, so a rollback cannot
	// clobber a concurrent mutation of other levels.
	previous := models.ProgressSnapshot{levelID: snapshot[levelID]}
	snapshot[levelID] = models.LevelStatusCompleted

	unlockedID := ""
	for i, l := range all {
		if l.ID != levelID {
			continue
		}
		if i+1 < len(all) && snapshot[all[i+1].ID] == models.LevelStatusLocked {
			next := all[i+1].ID
			previous[next] = models.LevelStatusLocked
			snapshot[next] = models.LevelStatusUnlocked
			unlockedID = next
		}
		break
	}

	persisted := snapshot.Clone()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, userID, persisted); err != nil {
		s.mu.Lock()
		if view, ok := s.views[userID]; ok {
			for id, st := range previous {
				view[id] = st
			}
		}
		s.mu.Unlock()
		// The cache may still hold the optimistic snapshot from an earlier
		// write; drop it so reads fall through to the repository.
		if s.cache != nil {
			s.cache.Invalidate(ctx, userID)
		}
		s.logger.Error("Progress save failed, optimistic update rolled back",
			zap.Stringer("userID", userID),
			zap.String("levelID", levelID),
			zap.Error(err))
		return err
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, persisted)
	}
	s.publishCompleted(ctx, userID, levelID, unlockedID)

	s.logger.Info("Level completed",
		zap.Stringer("userID", userID),
		zap.String("levelID", levelID),
		zap.String("unlocked", unlockedID))
	return nil
}

// CurrentLevel returns the first unlocked level, or the last level when
// none is unlocked (display fallback, not a validated state).
func CurrentLevel(all []models.Level) (models.Level, bool) {
	if len(all) == 0 {
		return models.Level{}, false
	}
	for _, l := range all {
		if l.Status == models.LevelStatusUnlocked {
			return l, true
		}
	}
	return all[len(all)-1], true
}

// ProgressPercentage is 100 * completed / total, and 0 for an empty set.
func ProgressPercentage(all []models.Level) float64 {
	if len(all) == 0 {
		return 0
	}
	completed := 0
	for _, l := range all {
		if l.Status == models.LevelStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(all)) * 100
}

// snapshotFor resolves the user's statuses without holding the lock
// during I/O beyond what viewLocked needs.
func (s *Service) snapshotFor(ctx context.Context, userID uuid.UUID, all []models.Level) models.ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(ctx, userID, all).Clone()
}

// viewLocked returns the live in-memory snapshot for the user, loading
// it from cache or repository on first use. Caller holds s.mu.
func (s *Service) viewLocked(ctx context.Context, userID uuid.UUID, all []models.Level) models.ProgressSnapshot {
	if view, ok := s.views[userID]; ok {
		return view
	}

	var snapshot models.ProgressSnapshot
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err == nil {
			snapshot = cached
		}
	}
	if snapshot == nil {
		loaded, err := s.repo.Load(ctx, userID)
		switch {
		case err == nil:
			snapshot = loaded
		case errors.Is(err, models.ErrNotFound):
			snapshot = InitialSnapshot(all)
		default:
			// Degrade to a fresh view rather than failing the caller;
			// the next successful save re-establishes persistence.
			s.logger.Warn("Failed to load progress, starting from initial statuses",
				zap.Stringer("userID", userID), zap.Error(err))
			snapshot = InitialSnapshot(all)
		}
	}
	s.views[userID] = snapshot
	return snapshot
}

func (s *Service) publishCompleted(ctx context.Context, userID uuid.UUID, levelID, unlockedID string) {
	if s.events == nil {
		return
	}
	event := LevelCompletedEvent{
		UserID:          userID.String(),
		LevelID:         levelID,
		UnlockedLevelID: unlockedID,
		CompletedAt:     time.Now().UTC(),
	}
	if err := s.events.PublishLevelCompleted(ctx, event); err != nil {
		// Event delivery is best effort; progression already persisted.
		s.logger.Warn("Failed to publish level completion event",
			zap.Stringer("userID", userID), zap.String("levelID", levelID), zap.Error(err))
	}
}
