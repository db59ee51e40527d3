package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/twotable/twotable-backend/internal/pkg/ctxutil"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type orsProvider struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewOpenRouteService(log *logger.Logger, apiKey string) (Provider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing ROUTING_API_KEY")
	}
	return &orsProvider{
		log:     log.With("client", "OpenRouteService"),
		baseURL: "https://api.openrouteservice.org",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *orsProvider) Name() string { return "openrouteservice" }

func (p *orsProvider) TravelMinutes(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (float64, error) {
	profile := "driving-car"
	if NormalizeMode(mode) == ModeWalk {
		profile = "foot-walking"
	}

	// ORS expects lng,lat pairs.
	body := map[string]any{
		"coordinates": [][]float64{
			{originLng, originLat},
			{destLng, destLat},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, err
	}

	u := p.baseURL + "/v2/directions/" + profile
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "POST", u, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
		return 0, fmt.Errorf("openrouteservice http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Routes []struct {
			Summary struct {
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("openrouteservice decode error: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return 0, ErrNoRoute
	}
	return roundMinutes(parsed.Routes[0].Summary.Duration), nil
}
