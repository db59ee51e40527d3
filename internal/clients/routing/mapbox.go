package routing

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
		return nil, fmt.Errorf("missing ROUTING_API_KEY")
	}
	return &mapboxProvider{
		log:     log.With("client", "MapboxRouting"),
		baseURL: "https://api.mapbox.com",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *mapboxProvider) Name() string { return "mapbox" }

func (p *mapboxProvider) TravelMinutes(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (float64, error) {
	profile := "driving"
	if NormalizeMode(mode) == ModeWalk {
		profile = "walking"
	}

	// Mapbox expects lng,lat pairs.
	coords := fmt.Sprintf("%f,%f;%f,%f", originLng, originLat, destLng, destLat)
	u := fmt.Sprintf("%s/directions/v5/mapbox/%s/%s", p.baseURL, profile, coords)

	q := url.Values{}
	q.Set("access_token", p.apiKey)
	q.Set("overview", "false")

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "GET", u+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return 0, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return 0, readErr
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("mapbox http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Routes []struct {
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("mapbox decode error: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return 0, ErrNoRoute
	}
	return roundMinutes(parsed.Routes[0].Duration), nil
}
