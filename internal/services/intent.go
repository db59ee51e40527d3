package services

import (
	"fmt"
	"strings"

	types "github.com/twotable/twotable-backend/internal/domain"
)

// Intent dimensions accepted on the suggest surface.
var (
	validStages = map[string]bool{"first_date": true, "second_third": true, "together": true}
	validMoods  = map[string]bool{"romantic": true, "cosy": true, "buzzy": true, "adventurous": true, "chill": true}
	validEnergy = map[string]bool{"low": true, "medium": true, "high": true}
	validBudget = map[string]bool{"budget": true, "mid": true, "premium": true, "luxury": true}
)

// Intent is the validated shape of what the user is looking for.
type Intent struct {
	Stage    string
	Mood     string
	Energy   string
	Budget   string
	City     string
	FreeText string
}

func (i Intent) Validate() error {
	if strings.TrimSpace(i.City) == "" {
		return fmt.Errorf("city is required")
	}
	if !validStages[i.Stage] {
		return fmt.Errorf("invalid stage %q", i.Stage)
	}
	if !validMoods[i.Mood] {
		return fmt.Errorf("invalid mood %q", i.Mood)
	}
	if !validEnergy[i.Energy] {
		return fmt.Errorf("invalid energy %q", i.Energy)
	}
	if !validBudget[i.Budget] {
		return fmt.Errorf("invalid budget %q", i.Budget)
	}
	if len(i.FreeText) > 300 {
		return fmt.Errorf("free_text too long (max 300)")
	}
	return nil
}

// BuildIntentText renders the intent as the natural-language query
// string fed to the embedding model.
func BuildIntentText(i Intent) string {
	parts := []string{
		i.Stage,
		"Mood: " + i.Mood,
		"Energy: " + i.Energy,
		"Budget: " + i.Budget,
		"City: " + i.City,
	}
	if i.FreeText != "" {
		parts = append(parts, i.FreeText)
	}
	return strings.Join(parts, ". ") + "."
}

// BuildVenueSourceText renders a venue as the document string its
// embedding is computed from.
func BuildVenueSourceText(v *types.Venue) string {
	parts := []string{"Venue: " + v.Name, "City: " + v.City}
	if v.Cuisine != "" {
		parts = append(parts, "Cuisine: "+v.Cuisine)
	}
	tags := make([]string, 0)
	for _, t := range strings.Split(v.VibeTags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) > 0 {
		parts = append(parts, "Vibes: "+strings.Join(tags, ", "))
	}
	if v.PriceBand != "" {
		parts = append(parts, "Price: "+string(v.PriceBand))
	}
	if v.NoiseLevel != "" {
		parts = append(parts, "Noise: "+string(v.NoiseLevel))
	}
	if v.Description != "" {
		parts = append(parts, "Description: "+v.Description)
	}
	return strings.Join(parts, ". ") + "."
}
