package services

import (
	"fmt"
	"time"
)

// ParseDate validates an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

// ParseTimeOfDay validates a zero-padded HH:MM clock time and returns
// it normalized. Seconds are accepted and dropped.
func ParseTimeOfDay(s string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time %q (want HH:MM)", s)
}

// WeekdayMonday maps a date onto the Monday-indexed 0..6 scheme the
// slot table uses.
func WeekdayMonday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}
