package geocoding

import (
	"context"
	"fmt"
)

// Result is a geocoded location.
type Result struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// Provider resolves a free-form query to coordinates. ErrNoResults
// means the upstream answered but matched nothing.
type Provider interface {
	Geocode(ctx context.Context, query string) (*Result, error)
	Name() string
}

var ErrNoResults = fmt.Errorf("no geocoding results")
