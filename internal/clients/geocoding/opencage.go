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

type opencageProvider struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewOpenCage(log *logger.Logger, apiKey string) (Provider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing GEOCODING_API_KEY")
	}
	return &opencageProvider{
		log:     log.With("client", "OpenCageGeocoding"),
		baseURL: "https://api.opencagedata.com",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *opencageProvider) Name() string { return "opencage" }

func (p *opencageProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("key", p.apiKey)
	q.Set("limit", "1")
	q.Set("no_annotations", "1")

	u := p.baseURL + "/geocode/v1/json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "GET", u, nil)
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
		return nil, fmt.Errorf("opencage http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Results []struct {
			Geometry struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
			Formatted string `json:"formatted"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("opencage decode error: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, ErrNoResults
	}

	top := parsed.Results[0]
	return &Result{Lat: top.Geometry.Lat, Lng: top.Geometry.Lng, FormattedAddress: top.Formatted}, nil
}
