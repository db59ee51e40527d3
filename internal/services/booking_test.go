package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/twotable/twotable-backend/internal/data/repos/catalogue"
	"github.com/twotable/twotable-backend/internal/data/repos/testutil"
	types "github.com/twotable/twotable-backend/internal/domain"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
)

func newBookingFixture(t *testing.T) (BookingService, *types.Venue, *types.VenueSlot, *types.Match) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	venue := testutil.SeedVenue(t, tx, "Bristol", 51.455, -2.590)
	slot := testutil.SeedSlot(t, tx, venue.ID, 5, "18:00", "23:00") // 2 tables
	match := testutil.SeedMatch(t, tx)

	svc := NewBookingService(
		tx, log,
		catalogue.NewMatchRepo(tx, log),
		catalogue.NewVenueRepo(tx, log),
		catalogue.NewVenueSlotRepo(tx, log),
		catalogue.NewBookingRepo(tx, log),
		newMemCache(),
	)
	return svc, venue, slot, match
}

func TestBookingCreate(t *testing.T) {
	svc, venue, slot, match := newBookingFixture(t)

	booking, err := svc.Create(context.Background(), BookingInput{
		MatchID: match.ID,
		VenueID: venue.ID,
		Date:    "2026-09-05",
		Time:    "19:30",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if booking.Status != types.BookingPending {
		t.Errorf("status=%s, want pending", booking.Status)
	}
	if booking.SlotID == nil || *booking.SlotID != slot.ID {
		t.Error("booking not linked to the containing slot")
	}
	if booking.BookedTime != "19:30" {
		t.Errorf("booked time=%q, want 19:30", booking.BookedTime)
	}
}

func TestBookingCapacityConflict(t *testing.T) {
	svc, venue, _, match := newBookingFixture(t)
	ctx := context.Background()

	in := BookingInput{MatchID: match.ID, VenueID: venue.ID, Date: "2026-09-05", Time: "19:30"}
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("booking %d failed: %v", i+1, err)
		}
	}

	_, err := svc.Create(ctx, in)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("third booking err=%v, want ErrConflict", err)
	}

	// A different date against the same slot is unaffected.
	in.Date = "2026-09-12"
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("booking on another date failed: %v", err)
	}
}

func TestBookingNotFound(t *testing.T) {
	svc, venue, _, match := newBookingFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, BookingInput{
		MatchID: uuid.New(), VenueID: venue.ID, Date: "2026-09-05", Time: "19:30",
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown match err=%v, want ErrNotFound", err)
	}

	_, err = svc.Create(ctx, BookingInput{
		MatchID: match.ID, VenueID: uuid.New(), Date: "2026-09-05", Time: "19:30",
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown venue err=%v, want ErrNotFound", err)
	}

	// Sunday has no slot seeded.
	_, err = svc.Create(ctx, BookingInput{
		MatchID: match.ID, VenueID: venue.ID, Date: "2026-09-06", Time: "19:30",
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("no-slot err=%v, want ErrNotFound", err)
	}
}

func TestBookingInvalidInput(t *testing.T) {
	svc, venue, _, match := newBookingFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, BookingInput{
		MatchID: match.ID, VenueID: venue.ID, Date: "05/09/2026", Time: "19:30",
	})
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("bad date err=%v, want ErrInvalidArgument", err)
	}
}
