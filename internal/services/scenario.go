package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/geocoding"
	"github.com/twotable/twotable-backend/internal/clients/routing"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

const scenarioTravelBudgetMinutes = 45.0

// ScenarioInput checks one venue against two people's addresses.
type ScenarioInput struct {
	VenueAddress   string `json:"venue_address" binding:"required"`
	PersonAAddress string `json:"person_a_address" binding:"required"`
	PersonBAddress string `json:"person_b_address" binding:"required"`
	Mode           string `json:"mode"`
}

type PersonRoute struct {
	Address       string  `json:"address"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	TravelMinutes float64 `json:"travel_minutes"`
	WithinBudget  bool    `json:"within_45_min"`
}

type ScenarioResult struct {
	VenueAddress   string      `json:"venue_address"`
	VenueLat       float64     `json:"venue_lat"`
	VenueLng       float64     `json:"venue_lng"`
	PersonA        PersonRoute `json:"person_a"`
	PersonB        PersonRoute `json:"person_b"`
	BothReachable  bool        `json:"both_reachable"`
	Recommendation string      `json:"recommendation"`
	Mode           string      `json:"mode"`
}

// ScenarioService answers "can both people reach this venue in 45
// minutes", geocoding all three addresses first.
type ScenarioService interface {
	Evaluate(ctx context.Context, in ScenarioInput) (*ScenarioResult, error)
}

type scenarioService struct {
	db        *gorm.DB
	log       *logger.Logger
	geocoding GeocodingService
	routing   routing.Provider
}

func NewScenarioService(db *gorm.DB, baseLog *logger.Logger, geocodingSvc GeocodingService, routingProvider routing.Provider) ScenarioService {
	return &scenarioService{
		db:        db,
		log:       baseLog.With("service", "ScenarioService"),
		geocoding: geocodingSvc,
		routing:   routingProvider,
	}
}

func (s *scenarioService) Evaluate(ctx context.Context, in ScenarioInput) (*ScenarioResult, error) {
	mode := routing.NormalizeMode(in.Mode)

	venue, err := s.geocodeOr404(ctx, in.VenueAddress, "venue")
	if err != nil {
		return nil, err
	}
	personA, err := s.geocodeOr404(ctx, in.PersonAAddress, "person A")
	if err != nil {
		return nil, err
	}
	personB, err := s.geocodeOr404(ctx, in.PersonBAddress, "person B")
	if err != nil {
		return nil, err
	}

	aMinutes, err := s.routing.TravelMinutes(ctx, personA.Lat, personA.Lng, venue.Lat, venue.Lng, mode)
	if err != nil {
		return nil, fmt.Errorf("could not calculate travel time for person A: %w", err)
	}
	bMinutes, err := s.routing.TravelMinutes(ctx, personB.Lat, personB.Lng, venue.Lat, venue.Lng, mode)
	if err != nil {
		return nil, fmt.Errorf("could not calculate travel time for person B: %w", err)
	}

	aOK := aMinutes <= scenarioTravelBudgetMinutes
	bOK := bMinutes <= scenarioTravelBudgetMinutes

	var recommendation string
	switch {
	case aOK && bOK:
		recommendation = fmt.Sprintf("Great venue! Both can reach %s within 45 minutes.", venue.FormattedAddress)
	case aOK && !bOK:
		recommendation = fmt.Sprintf("Too far for Person B (%.1f min).", bMinutes)
	case bOK && !aOK:
		recommendation = fmt.Sprintf("Too far for Person A (%.1f min).", aMinutes)
	default:
		recommendation = "Too far for both. Find a more central venue."
	}

	return &ScenarioResult{
		VenueAddress: venue.FormattedAddress,
		VenueLat:     venue.Lat,
		VenueLng:     venue.Lng,
		PersonA: PersonRoute{
			Address:       personA.FormattedAddress,
			Lat:           personA.Lat,
			Lng:           personA.Lng,
			TravelMinutes: aMinutes,
			WithinBudget:  aOK,
		},
		PersonB: PersonRoute{
			Address:       personB.FormattedAddress,
			Lat:           personB.Lat,
			Lng:           personB.Lng,
			TravelMinutes: bMinutes,
			WithinBudget:  bOK,
		},
		BothReachable:  aOK && bOK,
		Recommendation: recommendation,
		Mode:           mode,
	}, nil
}

func (s *scenarioService) geocodeOr404(ctx context.Context, address, label string) (*geocoding.Result, error) {
	result, err := s.geocoding.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: could not geocode %s %q", apperrors.ErrNotFound, label, address)
	}
	return result, nil
}
