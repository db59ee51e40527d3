package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/geocoding"
	"github.com/twotable/twotable-backend/internal/data/repos/geo"
	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// GeocodingService resolves free-form addresses to coordinates with a
// database cache in front of the provider. Cache entries expire after
// cacheTTL; expired rows are replaced on the next lookup.
type GeocodingService interface {
	Geocode(ctx context.Context, query string) (*geocoding.Result, error)
}

type geocodingService struct {
	db       *gorm.DB
	log      *logger.Logger
	provider geocoding.Provider
	repo     geo.GeocodeRepo
	cacheTTL time.Duration
}

func NewGeocodingService(db *gorm.DB, baseLog *logger.Logger, provider geocoding.Provider, repo geo.GeocodeRepo, cacheTTLDays int) GeocodingService {
	if cacheTTLDays <= 0 {
		cacheTTLDays = 30
	}
	return &geocodingService{
		db:       db,
		log:      baseLog.With("service", "GeocodingService"),
		provider: provider,
		repo:     repo,
		cacheTTL: time.Duration(cacheTTLDays) * 24 * time.Hour,
	}
}

func (s *geocodingService) Geocode(ctx context.Context, query string) (*geocoding.Result, error) {
	query = strings.TrimSpace(query)

	cached, err := s.repo.Get(ctx, nil, query, s.provider.Name())
	if err != nil {
		s.log.Warn("geocode cache lookup failed", "query", query, "error", err)
	}
	if cached != nil {
		if time.Since(cached.CreatedAt) < s.cacheTTL {
			return &geocoding.Result{
				Lat:              cached.Lat,
				Lng:              cached.Lng,
				FormattedAddress: cached.FormattedAddress,
			}, nil
		}
		if err := s.repo.Delete(ctx, nil, cached.ID); err != nil {
			s.log.Warn("expired geocode cache delete failed", "query", query, "error", err)
		}
	}

	result, err := s.provider.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	row := &types.GeocodeCache{
		ID:               uuid.New(),
		RawQuery:         query,
		Provider:         s.provider.Name(),
		Lat:              result.Lat,
		Lng:              result.Lng,
		FormattedAddress: result.FormattedAddress,
	}
	if err := s.repo.Upsert(ctx, nil, row); err != nil {
		s.log.Warn("geocode cache write failed", "query", query, "error", err)
	}
	return result, nil
}
