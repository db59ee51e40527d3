package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twotable/twotable-backend/internal/pkg/ctxutil"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type mapboxProvider struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewMapbox(log *logger.Logger, apiKey string) (Provider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing GEOCODING_API_KEY")
	}
	return &mapboxProvider{
		log:     log.With("client", "MapboxGeocoding"),
		baseURL: "https://api.mapbox.com",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *mapboxProvider) Name() string { return "mapbox" }

func (p *mapboxProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	u := p.baseURL + "/geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json"

	q := url.Values{}
	q.Set("access_token", p.apiKey)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "GET", u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox geocode http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			PlaceName string `json:"place_name"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("mapbox geocode decode error: %w", err)
	}
	if len(parsed.Features) == 0 {
		return nil, ErrNoResults
	}

	top := parsed.Features[0]
	if len(top.Geometry.Coordinates) < 2 {
		return nil, ErrNoResults
	}
	// Mapbox returns lng,lat pairs.
	return &Result{
		Lat:              top.Geometry.Coordinates[1],
		Lng:              top.Geometry.Coordinates[0],
		FormattedAddress: top.PlaceName,
	}, nil
}
