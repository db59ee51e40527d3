package catalogue

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type VenueRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Venue) ([]*types.Venue, error)

	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Venue, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Venue, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Venue, error)

	// FindOpen returns distinct active venues in the city that have an
	// active slot containing timeOfDay on the given weekday. The city
	// match is a case-insensitive substring; the slot end time is
	// exclusive.
	FindOpen(ctx context.Context, tx *gorm.DB, city string, weekday int, timeOfDay string) ([]*types.Venue, error)
}

type venueRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVenueRepo(db *gorm.DB, baseLog *logger.Logger) VenueRepo {
	return &venueRepo{db: db, log: baseLog.With("repo", "VenueRepo")}
}

func (r *venueRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Venue) ([]*types.Venue, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Venue{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *venueRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Venue, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Venue
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *venueRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Venue, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *venueRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Venue, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Venue
	if err := t.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *venueRepo) FindOpen(ctx context.Context, tx *gorm.DB, city string, weekday int, timeOfDay string) ([]*types.Venue, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Venue
	if err := t.WithContext(ctx).
		Distinct("venues.*").
		Joins("JOIN venue_slots ON venue_slots.venue_id = venues.id").
		Where("LOWER(venues.city) LIKE ?", "%"+lowered(city)+"%").
		Where("venues.is_active = ?", true).
		Where("venue_slots.is_active = ?", true).
		Where("venue_slots.weekday = ?", weekday).
		Where("venue_slots.start_time <= ?", timeOfDay).
		Where("venue_slots.end_time > ?", timeOfDay).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
