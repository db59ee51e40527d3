package catalogue

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type VenueBlackoutRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.VenueBlackout) ([]*types.VenueBlackout, error)

	// VenueIDsCovering returns ids of venues with a blackout range that
	// covers the ISO date, inclusive on both ends.
	VenueIDsCovering(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error)
}

type venueBlackoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVenueBlackoutRepo(db *gorm.DB, baseLog *logger.Logger) VenueBlackoutRepo {
	return &venueBlackoutRepo{db: db, log: baseLog.With("repo", "VenueBlackoutRepo")}
}

func (r *venueBlackoutRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.VenueBlackout) ([]*types.VenueBlackout, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.VenueBlackout{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *venueBlackoutRepo) VenueIDsCovering(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(ctx).
		Model(&types.VenueBlackout{}).
		Where("start_date <= ?", date).
		Where("end_date >= ?", date).
		Distinct().
		Pluck("venue_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
