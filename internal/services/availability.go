package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/redis"
	"github.com/twotable/twotable-backend/internal/clients/routing"
	"github.com/twotable/twotable-backend/internal/data/repos/catalogue"
	types "github.com/twotable/twotable-backend/internal/domain"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// Redis cache namespaces and TTLs shared by the read path.
const (
	nsAvailableVenues = "available_venues"
	nsHaversine       = "haversine"
	nsIntentVectors   = "intent_vectors"
	nsSuggestResults  = "suggest_results"

	ttlAvailableVenues = 5 * time.Minute
	ttlHaversine       = time.Hour
	ttlIntentVectors   = time.Hour
	ttlSuggestResults  = 5 * time.Minute
)

// AvailableVenuesQuery is the input to the availability read surface.
type AvailableVenuesQuery struct {
	City             string
	Date             string // YYYY-MM-DD
	Time             string // HH:MM
	OriginLat        *float64
	OriginLng        *float64
	TravelMode       string
	MaxTravelMinutes int
}

// AvailableVenue is one open venue with optional travel minutes.
type AvailableVenue struct {
	Venue         *types.Venue `json:"venue"`
	TravelMinutes *float64     `json:"travel_minutes,omitempty"`
}

// AvailabilityService answers "which venues are open for two at this
// city, date and time", with blackouts and non-date venues removed.
type AvailabilityService interface {
	// OpenVenues is the hard filter used by the ranking pipeline.
	OpenVenues(ctx context.Context, city, date, timeOfDay string) ([]*types.Venue, error)
	// AvailableVenues is OpenVenues plus geo prefilter and travel
	// times, cached in Redis for the public endpoint.
	AvailableVenues(ctx context.Context, q AvailableVenuesQuery) ([]AvailableVenue, error)
}

type availabilityService struct {
	db         *gorm.DB
	log        *logger.Logger
	venues     catalogue.VenueRepo
	blackouts  catalogue.VenueBlackoutRepo
	travelTime TravelTimeService
	cache      redis.Cache
}

func NewAvailabilityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	venues catalogue.VenueRepo,
	blackouts catalogue.VenueBlackoutRepo,
	travelTime TravelTimeService,
	cache redis.Cache,
) AvailabilityService {
	return &availabilityService{
		db:         db,
		log:        baseLog.With("service", "AvailabilityService"),
		venues:     venues,
		blackouts:  blackouts,
		travelTime: travelTime,
		cache:      cache,
	}
}

func (s *availabilityService) OpenVenues(ctx context.Context, city, date, timeOfDay string) ([]*types.Venue, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err)
	}
	t, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err)
	}

	open, err := s.venues.FindOpen(ctx, nil, city, WeekdayMonday(d), t)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	blackedOut, err := s.blackouts.VenueIDsCovering(ctx, nil, date)
	if err != nil {
		return nil, err
	}
	excluded := make(map[uuid.UUID]bool, len(blackedOut))
	for _, id := range blackedOut {
		excluded[id] = true
	}

	out := make([]*types.Venue, 0, len(open))
	for _, v := range open {
		if excluded[v.ID] {
			continue
		}
		if !IsDateAppropriate(v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func availableCacheKey(q AvailableVenuesQuery) string {
	origin := "none"
	if q.OriginLat != nil && q.OriginLng != nil {
		origin = originGridKey(*q.OriginLat, *q.OriginLng)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d", q.City, q.Date, q.Time, origin, q.TravelMode, q.MaxTravelMinutes)
}

// originGridKey rounds to 3dp (~111m grid) so nearby origins share
// cache entries.
func originGridKey(lat, lng float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lng)
}

func (s *availabilityService) AvailableVenues(ctx context.Context, q AvailableVenuesQuery) ([]AvailableVenue, error) {
	q.TravelMode = routing.NormalizeMode(q.TravelMode)
	if q.MaxTravelMinutes <= 0 {
		q.MaxTravelMinutes = 45
	}

	cacheKey := availableCacheKey(q)
	var cached []AvailableVenue
	if s.cache.Get(ctx, nsAvailableVenues, cacheKey, &cached) {
		return cached, nil
	}

	venues, err := s.OpenVenues(ctx, q.City, q.Date, q.Time)
	if err != nil {
		return nil, err
	}

	if q.OriginLat == nil || q.OriginLng == nil {
		out := make([]AvailableVenue, 0, len(venues))
		for _, v := range venues {
			out = append(out, AvailableVenue{Venue: v})
		}
		s.cache.Set(ctx, nsAvailableVenues, cacheKey, out, ttlAvailableVenues)
		return out, nil
	}

	venues = s.prefilterCached(ctx, venues, *q.OriginLat, *q.OriginLng, q.TravelMode, q.MaxTravelMinutes)

	dests := make([]Destination, 0, len(venues))
	byID := make(map[uuid.UUID]*types.Venue, len(venues))
	for _, v := range venues {
		if v.Lat == nil || v.Lng == nil {
			continue
		}
		dests = append(dests, Destination{VenueID: v.ID, Lat: *v.Lat, Lng: *v.Lng})
		byID[v.ID] = v
	}

	minutes, err := s.travelTime.Resolve(ctx, Origin{Lat: *q.OriginLat, Lng: *q.OriginLng}, dests, q.TravelMode)
	if err != nil {
		return nil, err
	}

	out := make([]AvailableVenue, 0, len(dests))
	for _, dest := range dests {
		m, ok := minutes[dest.VenueID]
		if !ok {
			s.log.Warn("travel time unavailable, dropping venue", "venue_id", dest.VenueID)
			continue
		}
		if m > float64(q.MaxTravelMinutes) {
			continue
		}
		mm := m
		out = append(out, AvailableVenue{Venue: byID[dest.VenueID], TravelMinutes: &mm})
	}

	s.cache.Set(ctx, nsAvailableVenues, cacheKey, out, ttlAvailableVenues)
	return out, nil
}

// prefilterCached runs the haversine radius cut, remembering surviving
// venue ids per (city grid, mode, budget) for an hour.
func (s *availabilityService) prefilterCached(ctx context.Context, venues []*types.Venue, originLat, originLng float64, mode string, maxMinutes int) []*types.Venue {
	key := fmt.Sprintf("%s|%s|%d", originGridKey(originLat, originLng), mode, maxMinutes)

	var keepIDs []uuid.UUID
	if s.cache.Get(ctx, nsHaversine, key, &keepIDs) {
		keep := make(map[uuid.UUID]bool, len(keepIDs))
		for _, id := range keepIDs {
			keep[id] = true
		}
		out := make([]*types.Venue, 0, len(venues))
		for _, v := range venues {
			if keep[v.ID] {
				out = append(out, v)
			}
		}
		return out
	}

	before := len(venues)
	filtered := PrefilterByDistance(venues, originLat, originLng, mode, maxMinutes)

	ids := make([]uuid.UUID, 0, len(filtered))
	for _, v := range filtered {
		ids = append(ids, v.ID)
	}
	s.cache.Set(ctx, nsHaversine, key, ids, ttlHaversine)

	s.log.Info("haversine prefilter",
		"before", before,
		"after", len(filtered),
		"radius_km", MaxRadiusKm(mode, maxMinutes),
	)
	return filtered
}
