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

type tomtomProvider struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewTomTom(log *logger.Logger, apiKey string) (Provider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing GEOCODING_API_KEY")
	}
	return &tomtomProvider{
		log:     log.With("client", "TomTomGeocoding"),
		baseURL: "https://api.tomtom.com",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *tomtomProvider) Name() string { return "tomtom" }

func (p *tomtomProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	u := p.baseURL + "/search/2/search/" + url.PathEscape(query) + ".json"

	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("limit", "1")
	q.Set("typeahead", "false")

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
		return nil, fmt.Errorf("tomtom geocode http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Results []struct {
			Position struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"position"`
			Address struct {
				FreeformAddress string `json:"freeformAddress"`
			} `json:"address"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("tomtom geocode decode error: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, ErrNoResults
	}

	top := parsed.Results[0]
	formatted := top.Address.FreeformAddress
	if formatted == "" {
		formatted = query
	}
	return &Result{Lat: top.Position.Lat, Lng: top.Position.Lon, FormattedAddress: formatted}, nil
}
