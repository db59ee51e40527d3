package routing

import (
	"testing"
	"time"
)

func TestTimeBucket(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"weekday morning", time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC), "weekday_daytime"},
		{"weekday late afternoon", time.Date(2026, 3, 4, 16, 59, 0, 0, time.UTC), "weekday_daytime"},
		{"weekday evening boundary", time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC), "weekday_evening"},
		{"saturday morning", time.Date(2026, 3, 7, 11, 59, 0, 0, time.UTC), "weekend_morning"},
		{"saturday noon", time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), "weekend_afternoon"},
		{"sunday evening", time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC), "weekend_evening"},
	}
	for _, tc := range cases {
		if got := TimeBucket(tc.at); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestOriginHashGridCollapse(t *testing.T) {
	// Points within the same ~500m grid cell share a hash.
	a := OriginHash(51.4545, -2.5879)
	b := OriginHash(51.45452, -2.58791)
	if a != b {
		t.Fatalf("expected identical hashes for near-identical origins: %q vs %q", a, b)
	}

	c := OriginHash(51.4645, -2.5879)
	if a == c {
		t.Fatalf("expected distinct hashes for distinct origins")
	}

	if len(a) != 16 {
		t.Fatalf("expected 16-char hash, got %d", len(a))
	}
}

func TestNormalizeMode(t *testing.T) {
	if got := NormalizeMode("walk"); got != ModeWalk {
		t.Fatalf("walk: got %q", got)
	}
	if got := NormalizeMode("horseback"); got != ModeDrive {
		t.Fatalf("unknown mode should fall back to drive, got %q", got)
	}
	if got := NormalizeMode(""); got != ModeDrive {
		t.Fatalf("empty mode should fall back to drive, got %q", got)
	}
}
