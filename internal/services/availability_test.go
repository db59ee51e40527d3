package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/twotable/twotable-backend/internal/domain"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
)

type fakeVenueRepo struct {
	open      []*types.Venue
	openCalls int
}

func (f *fakeVenueRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Venue) ([]*types.Venue, error) {
	return rows, nil
}

func (f *fakeVenueRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Venue, error) {
	return nil, nil
}

func (f *fakeVenueRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Venue, error) {
	return nil, nil
}

func (f *fakeVenueRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Venue, error) {
	return f.open, nil
}

func (f *fakeVenueRepo) FindOpen(ctx context.Context, tx *gorm.DB, city string, weekday int, timeOfDay string) ([]*types.Venue, error) {
	f.openCalls++
	return f.open, nil
}

type fakeBlackoutRepo struct {
	covered []uuid.UUID
}

func (f *fakeBlackoutRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.VenueBlackout) ([]*types.VenueBlackout, error) {
	return rows, nil
}

func (f *fakeBlackoutRepo) VenueIDsCovering(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error) {
	return f.covered, nil
}

func TestOpenVenuesFilters(t *testing.T) {
	good := bristolVenue("Quiet Corner", 51.455, -2.590)
	blackedOut := bristolVenue("Closed For Event", 51.450, -2.595)
	supermarket := bristolVenue("Big Shop", 51.452, -2.591)
	supermarket.Cuisine = "Supermarket"

	venues := &fakeVenueRepo{open: []*types.Venue{good, blackedOut, supermarket}}
	blackouts := &fakeBlackoutRepo{covered: []uuid.UUID{blackedOut.ID}}

	svc := NewAvailabilityService(nil, testLogger(t), venues, blackouts, &fakeTravelTime{}, newMemCache())

	out, err := svc.OpenVenues(context.Background(), "Bristol", "2026-09-05", "19:30")
	if err != nil {
		t.Fatalf("OpenVenues failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != good.ID {
		t.Fatalf("got %d venues, want only the date-appropriate, non-blacked-out one", len(out))
	}
}

func TestOpenVenuesInvalidInput(t *testing.T) {
	svc := NewAvailabilityService(nil, testLogger(t), &fakeVenueRepo{}, &fakeBlackoutRepo{}, &fakeTravelTime{}, newMemCache())

	if _, err := svc.OpenVenues(context.Background(), "Bristol", "not-a-date", "19:30"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("bad date err=%v, want ErrInvalidArgument", err)
	}
	if _, err := svc.OpenVenues(context.Background(), "Bristol", "2026-09-05", "late"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("bad time err=%v, want ErrInvalidArgument", err)
	}
}

func TestAvailableVenuesCachesAndFiltersTravel(t *testing.T) {
	near := bristolVenue("Quiet Corner", 51.455, -2.590)
	unrouted := bristolVenue("No Roads", 51.450, -2.595)

	venues := &fakeVenueRepo{open: []*types.Venue{near, unrouted}}
	travel := &fakeTravelTime{minutes: map[uuid.UUID]float64{near.ID: 15}}

	svc := NewAvailabilityService(nil, testLogger(t), venues, &fakeBlackoutRepo{}, travel, newMemCache())

	q := AvailableVenuesQuery{
		City:             "Bristol",
		Date:             "2026-09-05",
		Time:             "19:30",
		OriginLat:        floatPtr(51.4545),
		OriginLng:        floatPtr(-2.5879),
		TravelMode:       "drive",
		MaxTravelMinutes: 30,
	}

	out, err := svc.AvailableVenues(context.Background(), q)
	if err != nil {
		t.Fatalf("AvailableVenues failed: %v", err)
	}
	if len(out) != 1 || out[0].Venue.ID != near.ID {
		t.Fatalf("got %d venues, want only the routable one", len(out))
	}
	if out[0].TravelMinutes == nil || *out[0].TravelMinutes != 15 {
		t.Fatal("travel minutes missing from the available venue")
	}

	if _, err := svc.AvailableVenues(context.Background(), q); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if venues.openCalls != 1 || travel.calls != 1 {
		t.Fatalf("openCalls=%d travelCalls=%d, want 1 each (second call should hit the cache)",
			venues.openCalls, travel.calls)
	}
}

func TestAvailableVenuesWithoutOrigin(t *testing.T) {
	v := bristolVenue("Quiet Corner", 51.455, -2.590)
	venues := &fakeVenueRepo{open: []*types.Venue{v}}
	travel := &fakeTravelTime{}

	svc := NewAvailabilityService(nil, testLogger(t), venues, &fakeBlackoutRepo{}, travel, newMemCache())

	out, err := svc.AvailableVenues(context.Background(), AvailableVenuesQuery{
		City: "Bristol", Date: "2026-09-05", Time: "19:30",
	})
	if err != nil {
		t.Fatalf("AvailableVenues failed: %v", err)
	}
	if len(out) != 1 || out[0].TravelMinutes != nil {
		t.Fatalf("no-origin path: got %d venues, want 1 without travel minutes", len(out))
	}
	if travel.calls != 0 {
		t.Fatal("travel resolver should not run without an origin")
	}
}
