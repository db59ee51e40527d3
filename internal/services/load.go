package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/data/repos/catalogue"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// LoadService computes per-venue booking pressure for a slot: active
// bookings divided by the slot's table budget, clamped to [0, 1]. A
// venue with no matching slot reports zero load.
type LoadService interface {
	LoadFactors(ctx context.Context, venueIDs []uuid.UUID, date, timeOfDay string) (map[uuid.UUID]float64, error)
}

type loadService struct {
	db       *gorm.DB
	log      *logger.Logger
	slots    catalogue.VenueSlotRepo
	bookings catalogue.BookingRepo
}

func NewLoadService(db *gorm.DB, baseLog *logger.Logger, slots catalogue.VenueSlotRepo, bookings catalogue.BookingRepo) LoadService {
	return &loadService{
		db:       db,
		log:      baseLog.With("service", "LoadService"),
		slots:    slots,
		bookings: bookings,
	}
}

func (s *loadService) LoadFactors(ctx context.Context, venueIDs []uuid.UUID, date, timeOfDay string) (map[uuid.UUID]float64, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	t, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, err
	}
	weekday := WeekdayMonday(d)

	out := make(map[uuid.UUID]float64, len(venueIDs))
	for _, venueID := range venueIDs {
		slot, err := s.slots.FindContaining(ctx, nil, venueID, weekday, t)
		if err != nil {
			return nil, err
		}
		if slot == nil {
			out[venueID] = 0.0
			continue
		}

		booked, err := s.bookings.CountActiveForSlot(ctx, nil, slot.ID, date)
		if err != nil {
			return nil, err
		}

		capacity := slot.MaxTablesForTwo
		if capacity < 1 {
			capacity = 1
		}
		load := float64(booked) / float64(capacity)
		if load > 1.0 {
			load = 1.0
		}
		out[venueID] = load
	}
	return out, nil
}
