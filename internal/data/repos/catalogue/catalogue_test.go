package catalogue

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/twotable/twotable-backend/internal/data/repos/testutil"
	types "github.com/twotable/twotable-backend/internal/domain"
)

func TestFindOpen(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewVenueRepo(db, log)
	ctx := context.Background()

	// Saturday dinner slot, end-exclusive.
	open := testutil.SeedVenue(t, tx, "Bristol", 51.455, -2.590)
	testutil.SeedSlot(t, tx, open.ID, 5, "18:00", "23:00")

	lunchOnly := testutil.SeedVenue(t, tx, "Bristol", 51.450, -2.595)
	testutil.SeedSlot(t, tx, lunchOnly.ID, 5, "12:00", "15:00")

	otherCity := testutil.SeedVenue(t, tx, "Bath", 51.381, -2.359)
	testutil.SeedSlot(t, tx, otherCity.ID, 5, "18:00", "23:00")

	inactive := testutil.SeedVenue(t, tx, "Bristol", 51.452, -2.591)
	testutil.SeedSlot(t, tx, inactive.ID, 5, "18:00", "23:00")
	if err := tx.Model(&types.Venue{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate venue: %v", err)
	}

	found := func(city, timeOfDay string, weekday int) map[uuid.UUID]bool {
		t.Helper()
		venues, err := repo.FindOpen(ctx, tx, city, weekday, timeOfDay)
		if err != nil {
			t.Fatalf("FindOpen: %v", err)
		}
		out := map[uuid.UUID]bool{}
		for _, v := range venues {
			out[v.ID] = true
		}
		return out
	}

	got := found("Bristol", "19:30", 5)
	if !got[open.ID] || got[lunchOnly.ID] || got[otherCity.ID] || got[inactive.ID] {
		t.Fatalf("19:30 Saturday: got %v, want only the dinner venue", got)
	}

	if got := found("Bristol", "18:00", 5); !got[open.ID] {
		t.Error("slot start time should be inclusive")
	}
	if got := found("Bristol", "23:00", 5); got[open.ID] {
		t.Error("slot end time should be exclusive")
	}
	if got := found("Bristol", "19:30", 6); got[open.ID] {
		t.Error("wrong weekday should not match")
	}
	if got := found("bRiStOl", "19:30", 5); !got[open.ID] {
		t.Error("city match should be case-insensitive")
	}
	if got := found("Brist", "19:30", 5); !got[open.ID] {
		t.Error("city match should allow substring")
	}
}

func TestVenueIDsCovering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewVenueBlackoutRepo(db, log)
	ctx := context.Background()

	singleDay := testutil.SeedVenue(t, tx, "Bristol", 51.455, -2.590)
	testutil.SeedBlackout(t, tx, singleDay.ID, "2026-09-05", "2026-09-05")

	ranged := testutil.SeedVenue(t, tx, "Bristol", 51.450, -2.595)
	testutil.SeedBlackout(t, tx, ranged.ID, "2026-09-01", "2026-09-10")

	clear := testutil.SeedVenue(t, tx, "Bristol", 51.452, -2.591)

	ids, err := repo.VenueIDsCovering(ctx, tx, "2026-09-05")
	if err != nil {
		t.Fatalf("VenueIDsCovering: %v", err)
	}
	covered := map[uuid.UUID]bool{}
	for _, id := range ids {
		covered[id] = true
	}
	if !covered[singleDay.ID] {
		t.Error("single-day blackout should cover its own date")
	}
	if !covered[ranged.ID] {
		t.Error("ranged blackout should cover a date inside the range")
	}
	if covered[clear.ID] {
		t.Error("venue without blackout reported as covered")
	}

	ids, err = repo.VenueIDsCovering(ctx, tx, "2026-09-11")
	if err != nil {
		t.Fatalf("VenueIDsCovering: %v", err)
	}
	for _, id := range ids {
		if id == ranged.ID {
			t.Fatal("date after end_date should not be covered")
		}
	}
}

func TestFindContainingPrecedence(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewVenueSlotRepo(db, log)
	ctx := context.Background()

	venue := testutil.SeedVenue(t, tx, "Bristol", 51.455, -2.590)
	late := testutil.SeedSlot(t, tx, venue.ID, 5, "19:00", "23:00")
	early := testutil.SeedSlot(t, tx, venue.ID, 5, "17:00", "21:00")

	// 19:30 falls in both windows; the earlier start wins.
	slot, err := repo.FindContaining(ctx, tx, venue.ID, 5, "19:30")
	if err != nil {
		t.Fatalf("FindContaining: %v", err)
	}
	if slot == nil || slot.ID != early.ID {
		t.Fatalf("overlapping slots: got %v, want the earlier-starting slot", slot)
	}

	// 22:00 only fits the late window.
	slot, err = repo.FindContaining(ctx, tx, venue.ID, 5, "22:00")
	if err != nil {
		t.Fatalf("FindContaining: %v", err)
	}
	if slot == nil || slot.ID != late.ID {
		t.Fatal("22:00 should resolve to the late slot")
	}

	// No slot covers 08:00.
	slot, err = repo.FindContaining(ctx, tx, venue.ID, 5, "08:00")
	if err != nil {
		t.Fatalf("FindContaining: %v", err)
	}
	if slot != nil {
		t.Fatal("expected nil for a time outside every window")
	}
}

func TestCountActiveForSlot(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewBookingRepo(db, log)
	ctx := context.Background()

	venue := testutil.SeedVenue(t, tx, "Bristol", 51.455, -2.590)
	slot := testutil.SeedSlot(t, tx, venue.ID, 5, "18:00", "23:00")
	match := testutil.SeedMatch(t, tx)

	seedBooking := func(status types.BookingStatus, date string) {
		t.Helper()
		venueID := venue.ID
		slotID := slot.ID
		b := &types.Booking{
			ID:         uuid.New(),
			MatchID:    match.ID,
			VenueID:    &venueID,
			SlotID:     &slotID,
			Status:     status,
			BookedDate: date,
			BookedTime: "19:30",
		}
		if err := tx.Create(b).Error; err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	seedBooking(types.BookingPending, "2026-09-05")
	seedBooking(types.BookingConfirmed, "2026-09-05")
	seedBooking(types.BookingCancelled, "2026-09-05")
	seedBooking(types.BookingRefunded, "2026-09-05")
	seedBooking(types.BookingConfirmed, "2026-09-12") // different date

	n, err := repo.CountActiveForSlot(ctx, tx, slot.ID, "2026-09-05")
	if err != nil {
		t.Fatalf("CountActiveForSlot: %v", err)
	}
	if n != 2 {
		t.Fatalf("active bookings=%d, want 2 (pending + confirmed only)", n)
	}
}
