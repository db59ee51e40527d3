package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/redis"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
	"github.com/twotable/twotable-backend/internal/services"
)

type Services struct {
	TravelTime      services.TravelTimeService
	Availability    services.AvailabilityService
	Geocoding       services.GeocodingService
	VenueEmbeddings services.VenueEmbeddingService
	Load            services.LoadService
	Matcher         services.MatcherService
	Booking         services.BookingService
	Scenario        services.ScenarioService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, cache redis.Cache) (Services, error) {
	log.Info("Wiring services...")

	embedder, err := resolveEmbeddingProvider(log, cfg)
	if err != nil {
		return Services{}, fmt.Errorf("embedding provider: %w", err)
	}
	router, err := resolveRoutingProvider(log, cfg)
	if err != nil {
		return Services{}, fmt.Errorf("routing provider: %w", err)
	}
	geocoder, err := resolveGeocodingProvider(log, cfg)
	if err != nil {
		return Services{}, fmt.Errorf("geocoding provider: %w", err)
	}
	store, err := resolveVectorStore(db, log, cfg, repos.VenueEmbedding)
	if err != nil {
		return Services{}, fmt.Errorf("vector store: %w", err)
	}

	travelTime := services.NewTravelTimeService(db, log, router, repos.TravelTime, cfg.TravelTimeCacheTTLHours)
	availability := services.NewAvailabilityService(db, log, repos.Venue, repos.VenueBlackout, travelTime, cache)
	geocoding := services.NewGeocodingService(db, log, geocoder, repos.Geocode, cfg.GeocodingCacheTTLDays)
	venueEmbeddings := services.NewVenueEmbeddingService(db, log, embedder, store, repos.Venue, repos.VenueEmbedding, repos.IntentLog, cache)
	load := services.NewLoadService(db, log, repos.VenueSlot, repos.Booking)
	matcher := services.NewMatcherService(db, log, availability, travelTime, venueEmbeddings, load, cache)
	booking := services.NewBookingService(db, log, repos.Match, repos.Venue, repos.VenueSlot, repos.Booking, cache)
	scenario := services.NewScenarioService(db, log, geocoding, router)

	return Services{
		TravelTime:      travelTime,
		Availability:    availability,
		Geocoding:       geocoding,
		VenueEmbeddings: venueEmbeddings,
		Load:            load,
		Matcher:         matcher,
		Booking:         booking,
		Scenario:        scenario,
	}, nil
}
