package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/twotable/twotable-backend/internal/domain"
)

// SeedVenue inserts a minimal active venue in the given city.
func SeedVenue(tb testing.TB, tx *gorm.DB, city string, lat, lng float64) *types.Venue {
	tb.Helper()
	v := &types.Venue{
		ID:            uuid.New(),
		Name:          "venue-" + uuid.NewString()[:8],
		City:          city,
		Country:       "UK",
		Lat:           &lat,
		Lng:           &lng,
		TotalCapacity: 20,
		IsActive:      true,
	}
	if err := tx.Create(v).Error; err != nil {
		tb.Fatalf("seed venue: %v", err)
	}
	return v
}

// SeedSlot inserts an active slot for a venue on the given weekday.
func SeedSlot(tb testing.TB, tx *gorm.DB, venueID uuid.UUID, weekday int, start, end string) *types.VenueSlot {
	tb.Helper()
	s := &types.VenueSlot{
		ID:              uuid.New(),
		VenueID:         venueID,
		Weekday:         weekday,
		StartTime:       start,
		EndTime:         end,
		MaxTablesForTwo: 2,
		IsActive:        true,
	}
	if err := tx.Create(s).Error; err != nil {
		tb.Fatalf("seed slot: %v", err)
	}
	return s
}

// SeedBlackout inserts a blackout window, dates inclusive on both ends.
func SeedBlackout(tb testing.TB, tx *gorm.DB, venueID uuid.UUID, startDate, endDate string) *types.VenueBlackout {
	tb.Helper()
	b := &types.VenueBlackout{
		ID:        uuid.New(),
		VenueID:   venueID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    "private event",
	}
	if err := tx.Create(b).Error; err != nil {
		tb.Fatalf("seed blackout: %v", err)
	}
	return b
}

// SeedMatch inserts a match row for booking tests.
func SeedMatch(tb testing.TB, tx *gorm.DB) *types.Match {
	tb.Helper()
	m := &types.Match{ID: uuid.New(), City: "Bristol"}
	if err := tx.Create(m).Error; err != nil {
		tb.Fatalf("seed match: %v", err)
	}
	return m
}
