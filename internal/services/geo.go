package services

import (
	"math"
	"strings"

	types "github.com/twotable/twotable-backend/internal/domain"
)

// Straight-line speed assumptions in km per minute, used only for the
// coarse radius prefilter. The safety factor compensates for roads not
// being straight lines.
var speedKmPerMin = map[string]float64{
	"walk":    0.083,
	"drive":   0.5,
	"transit": 0.4,
}

const safetyFactor = 1.8

const earthRadiusKm = 6371.0

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// MaxRadiusKm is the largest straight-line distance a venue can be at
// and still plausibly be reachable within maxMinutes. Unknown modes
// assume driving speed.
func MaxRadiusKm(mode string, maxMinutes int) float64 {
	speed, ok := speedKmPerMin[mode]
	if !ok {
		speed = speedKmPerMin["drive"]
	}
	return speed * float64(maxMinutes) * safetyFactor
}

// PrefilterByDistance drops venues outside the reachable radius.
// Venues without coordinates are dropped too; they cannot be routed.
func PrefilterByDistance(venues []*types.Venue, originLat, originLng float64, mode string, maxMinutes int) []*types.Venue {
	radiusKm := MaxRadiusKm(mode, maxMinutes)
	out := make([]*types.Venue, 0, len(venues))
	for _, v := range venues {
		if v.Lat == nil || v.Lng == nil {
			continue
		}
		if HaversineKm(originLat, originLng, *v.Lat, *v.Lng) <= radiusKm {
			out = append(out, v)
		}
	}
	return out
}

// Venue categories that never make sense for a date, matched as
// substrings against the cuisine field.
var nonDateCuisines = []string{
	"supermarket", "grocery", "convenience store", "petrol station",
	"fast food", "takeaway", "off licence", "newsagent", "pharmacy",
	"bakery", "butcher", "fishmonger", "food court",
	"bagel shop", "sandwich shop", "juice bar", "chicken restaurant",
	"sports bar",
}

var nonDateVibes = map[string]bool{
	"family friendly": true,
	"kids":            true,
	"canteen":         true,
	"buffet":          true,
	"cafeteria":       true,
}

var nonDateVenueTypes = map[string]bool{
	"event venue": true,
	"coffee shop": true,
	"newsagent":   true,
}

// IsDateAppropriate rejects venues whose cuisine or vibe tags mark
// them as non-date locations.
func IsDateAppropriate(v *types.Venue) bool {
	if v.Cuisine != "" {
		cuisine := strings.ToLower(strings.TrimSpace(v.Cuisine))
		for _, bad := range nonDateCuisines {
			if strings.Contains(cuisine, bad) {
				return false
			}
		}
		if nonDateVenueTypes[cuisine] {
			return false
		}
	}
	if v.VibeTags != "" {
		for _, tag := range strings.Split(v.VibeTags, ",") {
			if nonDateVibes[strings.ToLower(strings.TrimSpace(tag))] {
				return false
			}
		}
	}
	return true
}
