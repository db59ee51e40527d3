package routing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Travel modes accepted on the wire. Unknown modes fall back to drive.
const (
	ModeWalk    = "walk"
	ModeDrive   = "drive"
	ModeTransit = "transit"
)

// Provider returns door-to-door travel minutes between two points, or
// ErrNoRoute when the upstream cannot produce a route.
type Provider interface {
	TravelMinutes(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (float64, error)
	Name() string
}

// ErrNoRoute means the provider answered but had no usable route. It
// is not retryable and the venue should be treated as unreachable.
var ErrNoRoute = fmt.Errorf("no route found")

// OriginHash collapses an origin onto a ~500m grid before hashing so
// nearly identical origins share cache entries.
func OriginHash(lat, lng float64) string {
	rounded := fmt.Sprintf("%g:%g", round3(lat), round3(lng))
	sum := sha256.Sum256([]byte(rounded))
	return hex.EncodeToString(sum[:])[:16]
}

func round3(f float64) float64 {
	if f < 0 {
		return float64(int64(f*1000-0.5)) / 1000
	}
	return float64(int64(f*1000+0.5)) / 1000
}

// TimeBucket classifies a wall-clock instant into one of five traffic
// regimes. Weekday evenings start at 17:00, weekend mornings end at
// 12:00 and weekend afternoons at 18:00.
func TimeBucket(now time.Time) string {
	hour := now.Hour()
	wd := now.Weekday()
	weekend := wd == time.Saturday || wd == time.Sunday
	if weekend {
		switch {
		case hour < 12:
			return "weekend_morning"
		case hour < 18:
			return "weekend_afternoon"
		default:
			return "weekend_evening"
		}
	}
	if hour >= 17 {
		return "weekday_evening"
	}
	return "weekday_daytime"
}

// NormalizeMode maps any unrecognized mode to drive.
func NormalizeMode(mode string) string {
	switch mode {
	case ModeWalk, ModeDrive, ModeTransit:
		return mode
	default:
		return ModeDrive
	}
}

func roundMinutes(seconds float64) float64 {
	minutes := seconds / 60
	if minutes < 0 {
		return float64(int64(minutes*10-0.5)) / 10
	}
	return float64(int64(minutes*10+0.5)) / 10
}
