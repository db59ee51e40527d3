package geo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type TravelTimeRepo interface {
	// Get returns the cache row for the composite key, or nil on miss.
	Get(ctx context.Context, tx *gorm.DB, originHash string, venueID uuid.UUID, mode, timeBucket string) (*types.TravelTimeCache, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.TravelTimeCache) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type travelTimeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTravelTimeRepo(db *gorm.DB, baseLog *logger.Logger) TravelTimeRepo {
	return &travelTimeRepo{db: db, log: baseLog.With("repo", "TravelTimeRepo")}
}

func (r *travelTimeRepo) Get(ctx context.Context, tx *gorm.DB, originHash string, venueID uuid.UUID, mode, timeBucket string) (*types.TravelTimeCache, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.TravelTimeCache
	if err := t.WithContext(ctx).
		Where("origin_hash = ?", originHash).
		Where("venue_id = ?", venueID).
		Where("mode = ?", mode).
		Where("time_bucket = ?", timeBucket).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *travelTimeRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.TravelTimeCache) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.LastCheckedAt.IsZero() {
		row.LastCheckedAt = time.Now().UTC()
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "origin_hash"}, {Name: "venue_id"}, {Name: "mode"}, {Name: "time_bucket"}},
			DoUpdates: clause.AssignmentColumns([]string{"travel_minutes", "last_checked_at"}),
		}).
		Create(row).Error
}

func (r *travelTimeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Delete(&types.TravelTimeCache{}, "id = ?", id).Error
}
