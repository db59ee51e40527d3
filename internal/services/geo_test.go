package services

import (
	"math"
	"testing"

	"github.com/google/uuid"

	types "github.com/twotable/twotable-backend/internal/domain"
)

func TestHaversineKm(t *testing.T) {
	// Bristol city centre to Bath city centre, roughly 18.5 km.
	got := HaversineKm(51.4545, -2.5879, 51.3811, -2.3590)
	if got < 17.5 || got > 19.5 {
		t.Fatalf("HaversineKm(Bristol, Bath)=%f, want ~18.5", got)
	}

	if d := HaversineKm(51.4545, -2.5879, 51.4545, -2.5879); d != 0 {
		t.Fatalf("distance to self=%f, want 0", d)
	}

	// One degree of latitude is about 111.2 km.
	got = HaversineKm(0, 0, 1, 0)
	if math.Abs(got-111.19) > 0.5 {
		t.Fatalf("one degree latitude=%f, want ~111.19", got)
	}
}

func TestMaxRadiusKm(t *testing.T) {
	cases := []struct {
		mode    string
		minutes int
		want    float64
	}{
		{"walk", 30, 0.083 * 30 * 1.8},
		{"drive", 45, 0.5 * 45 * 1.8},
		{"transit", 20, 0.4 * 20 * 1.8},
		{"hoverboard", 45, 0.5 * 45 * 1.8}, // unknown falls back to drive
	}
	for _, tc := range cases {
		got := MaxRadiusKm(tc.mode, tc.minutes)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("MaxRadiusKm(%s, %d)=%f, want %f", tc.mode, tc.minutes, got, tc.want)
		}
	}

	if MaxRadiusKm("drive", 10) >= MaxRadiusKm("drive", 45) {
		t.Fatal("radius should grow with the travel budget")
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestPrefilterByDistance(t *testing.T) {
	near := &types.Venue{ID: uuid.New(), Lat: floatPtr(51.455), Lng: floatPtr(-2.590)}
	far := &types.Venue{ID: uuid.New(), Lat: floatPtr(53.483), Lng: floatPtr(-2.244)} // Manchester
	noCoords := &types.Venue{ID: uuid.New()}

	out := PrefilterByDistance([]*types.Venue{near, far, noCoords}, 51.4545, -2.5879, "walk", 30)
	if len(out) != 1 || out[0].ID != near.ID {
		t.Fatalf("got %d venues, want only the near one", len(out))
	}
}

func TestIsDateAppropriate(t *testing.T) {
	cases := []struct {
		name  string
		venue *types.Venue
		want  bool
	}{
		{"italian restaurant", &types.Venue{Cuisine: "Italian"}, true},
		{"supermarket cuisine", &types.Venue{Cuisine: "Supermarket"}, false},
		{"substring match", &types.Venue{Cuisine: "Halal fast food grill"}, false},
		{"sports bar", &types.Venue{Cuisine: "Sports Bar"}, false},
		{"coffee shop type", &types.Venue{Cuisine: "Coffee Shop"}, false},
		{"family friendly vibe", &types.Venue{Cuisine: "Thai", VibeTags: "cosy, Family Friendly"}, false},
		{"buffet vibe", &types.Venue{VibeTags: "buffet"}, false},
		{"romantic vibes pass", &types.Venue{Cuisine: "French", VibeTags: "romantic,candlelit"}, true},
		{"empty venue passes", &types.Venue{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDateAppropriate(tc.venue); got != tc.want {
				t.Fatalf("IsDateAppropriate=%v, want %v", got, tc.want)
			}
		})
	}
}
