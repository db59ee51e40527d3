package services

import (
	"strings"
	"testing"

	types "github.com/twotable/twotable-backend/internal/domain"
)

func validIntent() Intent {
	return Intent{
		Stage:  "first_date",
		Mood:   "romantic",
		Energy: "low",
		Budget: "mid",
		City:   "Bristol",
	}
}

func TestIntentValidate(t *testing.T) {
	if err := validIntent().Validate(); err != nil {
		t.Fatalf("valid intent rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Intent)
	}{
		{"missing city", func(i *Intent) { i.City = "  " }},
		{"bad stage", func(i *Intent) { i.Stage = "fourth_date" }},
		{"bad mood", func(i *Intent) { i.Mood = "angry" }},
		{"bad energy", func(i *Intent) { i.Energy = "extreme" }},
		{"bad budget", func(i *Intent) { i.Budget = "free" }},
		{"free text too long", func(i *Intent) { i.FreeText = strings.Repeat("x", 301) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			i := validIntent()
			tc.mutate(&i)
			if err := i.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestBuildIntentText(t *testing.T) {
	i := validIntent()
	got := BuildIntentText(i)
	want := "first_date. Mood: romantic. Energy: low. Budget: mid. City: Bristol."
	if got != want {
		t.Fatalf("BuildIntentText=%q, want %q", got, want)
	}

	i.FreeText = "somewhere with candles"
	got = BuildIntentText(i)
	want = "first_date. Mood: romantic. Energy: low. Budget: mid. City: Bristol. somewhere with candles."
	if got != want {
		t.Fatalf("BuildIntentText with free text=%q, want %q", got, want)
	}
}

func TestBuildVenueSourceText(t *testing.T) {
	v := &types.Venue{
		Name:        "The Glass Boat",
		City:        "Bristol",
		Cuisine:     "French",
		VibeTags:    "romantic, candlelit,  ",
		PriceBand:   types.PricePremium,
		NoiseLevel:  types.NoiseQuiet,
		Description: "Floating restaurant on the harbourside",
	}
	got := BuildVenueSourceText(v)
	want := "Venue: The Glass Boat. City: Bristol. Cuisine: French. Vibes: romantic, candlelit. Price: premium. Noise: quiet. Description: Floating restaurant on the harbourside."
	if got != want {
		t.Fatalf("BuildVenueSourceText=%q, want %q", got, want)
	}

	minimal := &types.Venue{Name: "Spot", City: "Bath"}
	got = BuildVenueSourceText(minimal)
	want = "Venue: Spot. City: Bath."
	if got != want {
		t.Fatalf("minimal source text=%q, want %q", got, want)
	}
}
