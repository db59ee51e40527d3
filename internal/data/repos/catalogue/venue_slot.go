package catalogue

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

func lowered(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type VenueSlotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.VenueSlot) ([]*types.VenueSlot, error)
	GetByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]*types.VenueSlot, error)

	// FindContaining returns the active slot for the venue whose
	// [start_time, end_time) window contains timeOfDay on the weekday.
	// Overlapping slots resolve deterministically: earliest start wins,
	// then lowest id. Returns nil when no slot matches.
	FindContaining(ctx context.Context, tx *gorm.DB, venueID uuid.UUID, weekday int, timeOfDay string) (*types.VenueSlot, error)

	// FindContainingForUpdate is FindContaining with a row lock, for the
	// booking capacity check.
	FindContainingForUpdate(ctx context.Context, tx *gorm.DB, venueID uuid.UUID, weekday int, timeOfDay string) (*types.VenueSlot, error)
}

type venueSlotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVenueSlotRepo(db *gorm.DB, baseLog *logger.Logger) VenueSlotRepo {
	return &venueSlotRepo{db: db, log: baseLog.With("repo", "VenueSlotRepo")}
}

func (r *venueSlotRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.VenueSlot) ([]*types.VenueSlot, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.VenueSlot{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *venueSlotRepo) GetByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]*types.VenueSlot, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.VenueSlot
	if len(venueIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("venue_id IN ?", venueIDs).
		Order("weekday ASC, start_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *venueSlotRepo) FindContaining(ctx context.Context, tx *gorm.DB, venueID uuid.UUID, weekday int, timeOfDay string) (*types.VenueSlot, error) {
	return r.findContaining(ctx, tx, venueID, weekday, timeOfDay, false)
}

func (r *venueSlotRepo) FindContainingForUpdate(ctx context.Context, tx *gorm.DB, venueID uuid.UUID, weekday int, timeOfDay string) (*types.VenueSlot, error) {
	return r.findContaining(ctx, tx, venueID, weekday, timeOfDay, true)
}

func (r *venueSlotRepo) findContaining(ctx context.Context, tx *gorm.DB, venueID uuid.UUID, weekday int, timeOfDay string, lock bool) (*types.VenueSlot, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Where("weekday = ?", weekday).
		Where("start_time <= ?", timeOfDay).
		Where("end_time > ?", timeOfDay).
		Where("is_active = ?", true).
		Order("start_time ASC, id ASC").
		Limit(1)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []*types.VenueSlot
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
