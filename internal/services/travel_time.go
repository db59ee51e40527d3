package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/routing"
	"github.com/twotable/twotable-backend/internal/data/repos/geo"
	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

const travelTimeResolveConcurrency = 8

// Origin is a resolved start point for travel-time lookups.
type Origin struct {
	Lat float64
	Lng float64
}

// Destination pairs a venue id with its coordinates.
type Destination struct {
	VenueID uuid.UUID
	Lat     float64
	Lng     float64
}

// TravelTimeService resolves door-to-door minutes from one origin to
// many venues, cache-first against the travel_time_cache table. A
// venue the provider cannot route is simply absent from the result.
type TravelTimeService interface {
	Resolve(ctx context.Context, origin Origin, dests []Destination, mode string) (map[uuid.UUID]float64, error)
	ResolveOne(ctx context.Context, origin Origin, dest Destination, mode string) (float64, bool, error)
}

type travelTimeService struct {
	db       *gorm.DB
	log      *logger.Logger
	provider routing.Provider
	repo     geo.TravelTimeRepo
	cacheTTL time.Duration
	now      func() time.Time
}

func NewTravelTimeService(db *gorm.DB, baseLog *logger.Logger, provider routing.Provider, repo geo.TravelTimeRepo, cacheTTLHours int) TravelTimeService {
	if cacheTTLHours <= 0 {
		cacheTTLHours = 72
	}
	return &travelTimeService{
		db:       db,
		log:      baseLog.With("service", "TravelTimeService"),
		provider: provider,
		repo:     repo,
		cacheTTL: time.Duration(cacheTTLHours) * time.Hour,
		now:      time.Now,
	}
}

// Resolve fans out over the destinations with bounded concurrency.
// Provider failures for individual venues degrade to "unreachable"
// rather than failing the whole batch; only context cancellation
// aborts it.
func (s *travelTimeService) Resolve(ctx context.Context, origin Origin, dests []Destination, mode string) (map[uuid.UUID]float64, error) {
	mode = routing.NormalizeMode(mode)

	out := make(map[uuid.UUID]float64, len(dests))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(travelTimeResolveConcurrency)

	for _, dest := range dests {
		dest := dest
		g.Go(func() error {
			minutes, ok, err := s.ResolveOne(gctx, origin, dest, mode)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.log.Warn("travel time lookup failed",
					"venue_id", dest.VenueID,
					"provider", s.provider.Name(),
					"error", err,
				)
				return nil
			}
			if !ok {
				return nil
			}
			mu.Lock()
			out[dest.VenueID] = minutes
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveOne returns (minutes, true) on success and (0, false) when
// the venue is unreachable for this mode.
func (s *travelTimeService) ResolveOne(ctx context.Context, origin Origin, dest Destination, mode string) (float64, bool, error) {
	mode = routing.NormalizeMode(mode)
	originHash := routing.OriginHash(origin.Lat, origin.Lng)
	bucket := routing.TimeBucket(s.now())

	cached, err := s.repo.Get(ctx, nil, originHash, dest.VenueID, mode, bucket)
	if err != nil {
		s.log.Warn("travel time cache lookup failed", "venue_id", dest.VenueID, "error", err)
	}
	if cached != nil {
		if s.now().Sub(cached.LastCheckedAt) < s.cacheTTL {
			return cached.TravelMinutes, true, nil
		}
		if err := s.repo.Delete(ctx, nil, cached.ID); err != nil {
			s.log.Warn("expired travel time cache delete failed", "venue_id", dest.VenueID, "error", err)
		}
	}

	minutes, err := s.provider.TravelMinutes(ctx, origin.Lat, origin.Lng, dest.Lat, dest.Lng, mode)
	if err != nil {
		if errors.Is(err, routing.ErrNoRoute) {
			return 0, false, nil
		}
		return 0, false, err
	}

	row := &types.TravelTimeCache{
		ID:            uuid.New(),
		OriginHash:    originHash,
		VenueID:       dest.VenueID,
		Mode:          mode,
		TimeBucket:    bucket,
		TravelMinutes: minutes,
		LastCheckedAt: s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, nil, row); err != nil {
		s.log.Warn("travel time cache write failed", "venue_id", dest.VenueID, "error", err)
	}
	return minutes, true, nil
}
