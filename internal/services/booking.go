package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/redis"
	"github.com/twotable/twotable-backend/internal/data/repos/catalogue"
	types "github.com/twotable/twotable-backend/internal/domain"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// BookingInput creates one table-for-two booking from a match.
type BookingInput struct {
	MatchID uuid.UUID `json:"match_id" binding:"required"`
	VenueID uuid.UUID `json:"venue_id" binding:"required"`
	Date    string    `json:"date" binding:"required"`
	Time    string    `json:"time" binding:"required"`
}

// BookingService creates bookings with a slot capacity check. The slot
// row is locked inside the transaction so two simultaneous bookings
// for the last table cannot both succeed.
type BookingService interface {
	Create(ctx context.Context, in BookingInput) (*types.Booking, error)
}

type bookingService struct {
	db       *gorm.DB
	log      *logger.Logger
	matches  catalogue.MatchRepo
	venues   catalogue.VenueRepo
	slots    catalogue.VenueSlotRepo
	bookings catalogue.BookingRepo
	cache    redis.Cache
}

func NewBookingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	matches catalogue.MatchRepo,
	venues catalogue.VenueRepo,
	slots catalogue.VenueSlotRepo,
	bookings catalogue.BookingRepo,
	cache redis.Cache,
) BookingService {
	return &bookingService{
		db:       db,
		log:      baseLog.With("service", "BookingService"),
		matches:  matches,
		venues:   venues,
		slots:    slots,
		bookings: bookings,
		cache:    cache,
	}
}

func (s *bookingService) Create(ctx context.Context, in BookingInput) (*types.Booking, error) {
	d, err := ParseDate(in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err)
	}
	t, err := ParseTimeOfDay(in.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err)
	}
	weekday := WeekdayMonday(d)

	match, err := s.matches.GetByID(ctx, nil, in.MatchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("%w: match %s", apperrors.ErrNotFound, in.MatchID)
	}

	venue, err := s.venues.GetByID(ctx, nil, in.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil || !venue.IsActive {
		return nil, fmt.Errorf("%w: venue %s", apperrors.ErrNotFound, in.VenueID)
	}

	var booking *types.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slots.FindContainingForUpdate(ctx, tx, in.VenueID, weekday, t)
		if err != nil {
			return err
		}
		if slot == nil {
			return fmt.Errorf("%w: no open slot for venue %s at %s", apperrors.ErrNotFound, in.VenueID, t)
		}

		booked, err := s.bookings.CountActiveForSlot(ctx, tx, slot.ID, in.Date)
		if err != nil {
			return err
		}
		capacity := int64(slot.MaxTablesForTwo)
		if capacity < 1 {
			capacity = 1
		}
		if booked >= capacity {
			return fmt.Errorf("%w: no tables left for %s on %s at %s",
				apperrors.ErrConflict, venue.Name, in.Date, t)
		}

		slotID := slot.ID
		venueID := in.VenueID
		booking = &types.Booking{
			ID:         uuid.New(),
			MatchID:    in.MatchID,
			VenueID:    &venueID,
			SlotID:     &slotID,
			Status:     types.BookingPending,
			BookedDate: in.Date,
			BookedTime: t,
		}
		_, err = s.bookings.Create(ctx, tx, []*types.Booking{booking})
		return err
	})
	if err != nil {
		return nil, err
	}

	// Load factors changed, so ranked and availability results are stale.
	s.cache.Clear(ctx, nsAvailableVenues)
	s.cache.Clear(ctx, nsSuggestResults)

	s.log.Info("Booking created",
		"booking_id", booking.ID,
		"match_id", in.MatchID,
		"venue", venue.Name,
		"date", in.Date,
		"time", t,
	)
	return booking, nil
}
