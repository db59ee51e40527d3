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

type GeocodeRepo interface {
	Get(ctx context.Context, tx *gorm.DB, rawQuery, provider string) (*types.GeocodeCache, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.GeocodeCache) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type geocodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeocodeRepo(db *gorm.DB, baseLog *logger.Logger) GeocodeRepo {
	return &geocodeRepo{db: db, log: baseLog.With("repo", "GeocodeRepo")}
}

func (r *geocodeRepo) Get(ctx context.Context, tx *gorm.DB, rawQuery, provider string) (*types.GeocodeCache, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.GeocodeCache
	if err := t.WithContext(ctx).
		Where("raw_query = ?", rawQuery).
		Where("provider = ?", provider).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *geocodeRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.GeocodeCache) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "raw_query"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"lat", "lng", "formatted_address", "created_at"}),
		}).
		Create(row).Error
}

func (r *geocodeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Delete(&types.GeocodeCache{}, "id = ?", id).Error
}
