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

type tomtomProvider struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewTomTom builds the TomTom Routing API provider. Transit maps to car
// because TomTom has no public transport profile on this endpoint.
func NewTomTom(log *logger.Logger, apiKey string) (Provider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing ROUTING_API_KEY")
	}
	return &tomtomProvider{
		log:     log.With("client", "TomTomRouting"),
		baseURL: "https://api.tomtom.com",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *tomtomProvider) Name() string { return "tomtom" }

func (p *tomtomProvider) TravelMinutes(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (float64, error) {
	travelMode := "car"
	if NormalizeMode(mode) == ModeWalk {
		travelMode = "pedestrian"
	}

	locations := fmt.Sprintf("%f,%f:%f,%f", originLat, originLng, destLat, destLng)
	u := fmt.Sprintf("%s/routing/1/calculateRoute/%s/json", p.baseURL, locations)

	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("travelMode", travelMode)
	q.Set("traffic", "true")
	q.Set("routeType", "fastest")

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
		return 0, fmt.Errorf("tomtom http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Routes []struct {
			Summary struct {
				TravelTimeInSeconds float64 `json:"travelTimeInSeconds"`
			} `json:"summary"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("tomtom decode error: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return 0, ErrNoRoute
	}
	return roundMinutes(parsed.Routes[0].Summary.TravelTimeInSeconds), nil
}
