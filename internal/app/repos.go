package app

import (
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/data/repos/catalogue"
	"github.com/twotable/twotable-backend/internal/data/repos/embeddings"
	"github.com/twotable/twotable-backend/internal/data/repos/geo"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

type Repos struct {
	Venue          catalogue.VenueRepo
	VenueSlot      catalogue.VenueSlotRepo
	VenueBlackout  catalogue.VenueBlackoutRepo
	Match          catalogue.MatchRepo
	Booking        catalogue.BookingRepo
	VenueEmbedding embeddings.VenueEmbeddingRepo
	IntentLog      embeddings.IntentEmbeddingRepo
	TravelTime     geo.TravelTimeRepo
	Geocode        geo.GeocodeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Venue:          catalogue.NewVenueRepo(db, log),
		VenueSlot:      catalogue.NewVenueSlotRepo(db, log),
		VenueBlackout:  catalogue.NewVenueBlackoutRepo(db, log),
		Match:          catalogue.NewMatchRepo(db, log),
		Booking:        catalogue.NewBookingRepo(db, log),
		VenueEmbedding: embeddings.NewVenueEmbeddingRepo(db, log),
		IntentLog:      embeddings.NewIntentEmbeddingRepo(db, log),
		TravelTime:     geo.NewTravelTimeRepo(db, log),
		Geocode:        geo.NewGeocodeRepo(db, log),
	}
}
