package catalogue

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type MatchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Match) ([]*types.Match, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Match, error)
}

type matchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
	return &matchRepo{db: db, log: baseLog.With("repo", "MatchRepo")}
}

func (r *matchRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Match) ([]*types.Match, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Match{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *matchRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Match, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Match
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

type BookingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Booking) ([]*types.Booking, error)

	// CountActiveForSlot counts confirmed + pending bookings against a
	// slot on the ISO date. Used for the load factor and the capacity
	// check; cancelled and refunded bookings do not count.
	CountActiveForSlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, date string) (int64, error)
}

type bookingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookingRepo(db *gorm.DB, baseLog *logger.Logger) BookingRepo {
	return &bookingRepo{db: db, log: baseLog.With("repo", "BookingRepo")}
}

func (r *bookingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Booking) ([]*types.Booking, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Booking{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bookingRepo) CountActiveForSlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, date string) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Booking{}).
		Where("slot_id = ?", slotID).
		Where("booked_date = ?", date).
		Where("status IN ?", []types.BookingStatus{types.BookingConfirmed, types.BookingPending}).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
