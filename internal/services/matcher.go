package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/redis"
	"github.com/twotable/twotable-backend/internal/clients/routing"
	types "github.com/twotable/twotable-backend/internal/domain"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

const (
	maxLoadPenalty   = 0.3
	neutralScore     = 0.5
	defaultTopN      = 3
	maxTopN          = 10
	defaultMaxTravel = 45
)

// SuggestRequest is the full input to the ranking pipeline.
type SuggestRequest struct {
	City             string   `json:"city" binding:"required"`
	OriginLat        *float64 `json:"origin_lat"`
	OriginLng        *float64 `json:"origin_lng"`
	TravelMode       string   `json:"travel_mode"`
	MaxTravelMinutes int      `json:"max_travel_minutes"`
	Date             string   `json:"date" binding:"required"`
	Time             string   `json:"time" binding:"required"`
	Stage            string   `json:"stage"`
	Mood             string   `json:"mood"`
	Energy           string   `json:"energy"`
	Budget           string   `json:"budget"`
	FreeText         string   `json:"free_text"`
	TopN             int      `json:"top_n"`
	SessionID        string   `json:"session_id"`
}

// Normalize fills defaults and validates ranges and enums.
func (r *SuggestRequest) Normalize() error {
	r.City = strings.TrimSpace(r.City)
	r.TravelMode = routing.NormalizeMode(r.TravelMode)
	if r.MaxTravelMinutes == 0 {
		r.MaxTravelMinutes = defaultMaxTravel
	}
	if r.MaxTravelMinutes < 5 || r.MaxTravelMinutes > 45 {
		return fmt.Errorf("max_travel_minutes must be between 5 and 45")
	}
	if r.TopN == 0 {
		r.TopN = defaultTopN
	}
	if r.TopN < 1 || r.TopN > maxTopN {
		return fmt.Errorf("top_n must be between 1 and %d", maxTopN)
	}
	if r.Stage == "" {
		r.Stage = "first_date"
	}
	if r.Mood == "" {
		r.Mood = "romantic"
	}
	if r.Energy == "" {
		r.Energy = "low"
	}
	if r.Budget == "" {
		r.Budget = "mid"
	}

	if _, err := ParseDate(r.Date); err != nil {
		return err
	}
	t, err := ParseTimeOfDay(r.Time)
	if err != nil {
		return err
	}
	r.Time = t

	return r.Intent().Validate()
}

func (r *SuggestRequest) Intent() Intent {
	return Intent{
		Stage:    r.Stage,
		Mood:     r.Mood,
		Energy:   r.Energy,
		Budget:   r.Budget,
		City:     r.City,
		FreeText: strings.TrimSpace(r.FreeText),
	}
}

// VenueSuggestion is one ranked venue with its score breakdown.
type VenueSuggestion struct {
	VenueID         uuid.UUID `json:"venue_id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Cuisine         string    `json:"cuisine,omitempty"`
	VibeTags        string    `json:"vibe_tags,omitempty"`
	NoiseLevel      string    `json:"noise_level,omitempty"`
	PriceBand       string    `json:"price_band,omitempty"`
	Description     string    `json:"description,omitempty"`
	Lat             *float64  `json:"lat,omitempty"`
	Lng             *float64  `json:"lng,omitempty"`
	TravelMinutes   *float64  `json:"travel_minutes,omitempty"`
	SimilarityScore float64   `json:"similarity_score"`
	LoadFactor      float64   `json:"load_factor"`
	FinalScore      float64   `json:"final_score"`
	SourceText      string    `json:"source_text,omitempty"`
}

// SuggestResult is the ranked output plus the intent text that drove
// it, for debugging.
type SuggestResult struct {
	IntentText  string            `json:"intent_text"`
	Suggestions []VenueSuggestion `json:"suggestions"`
}

// MatcherService runs the full pipeline: availability filter, geo
// prefilter, travel times, embedding similarity, load fairness, final
// ranking.
type MatcherService interface {
	Suggest(ctx context.Context, req SuggestRequest) (*SuggestResult, error)
}

type matcherService struct {
	db           *gorm.DB
	log          *logger.Logger
	availability AvailabilityService
	travelTime   TravelTimeService
	embeddings   VenueEmbeddingService
	load         LoadService
	cache        redis.Cache
}

func NewMatcherService(
	db *gorm.DB,
	baseLog *logger.Logger,
	availability AvailabilityService,
	travelTime TravelTimeService,
	embeddings VenueEmbeddingService,
	load LoadService,
	cache redis.Cache,
) MatcherService {
	return &matcherService{
		db:           db,
		log:          baseLog.With("service", "MatcherService"),
		availability: availability,
		travelTime:   travelTime,
		embeddings:   embeddings,
		load:         load,
		cache:        cache,
	}
}

func suggestCacheKey(req SuggestRequest) string {
	var originLat, originLng float64
	if req.OriginLat != nil {
		originLat = *req.OriginLat
	}
	if req.OriginLng != nil {
		originLng = *req.OriginLng
	}
	raw := fmt.Sprintf("%s|%s|%s|%.3f,%.3f|%s|%d|%s|%s|%s|%s|%s|%d",
		req.City, req.Date, req.Time,
		originLat, originLng,
		req.TravelMode, req.MaxTravelMinutes,
		req.Stage, req.Mood, req.Energy, req.Budget,
		req.FreeText, req.TopN,
	)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

type candidateVenue struct {
	venue         *types.Venue
	travelMinutes *float64
}

func (s *matcherService) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err)
	}
	intentText := BuildIntentText(req.Intent())

	cacheKey := suggestCacheKey(req)
	var cached SuggestResult
	if s.cache.Get(ctx, nsSuggestResults, cacheKey, &cached) {
		s.log.Info("suggest cache hit", "key", cacheKey[:12])
		return &cached, nil
	}

	candidates, err := s.hardFilteredCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.log.Info("no candidates after hard filters", "city", req.City)
		return &SuggestResult{IntentText: intentText, Suggestions: []VenueSuggestion{}}, nil
	}

	candidateIDs := make([]uuid.UUID, 0, len(candidates))
	candidateMap := make(map[uuid.UUID]candidateVenue, len(candidates))
	for _, c := range candidates {
		candidateIDs = append(candidateIDs, c.venue.ID)
		candidateMap[c.venue.ID] = c
	}
	s.log.Info("hard filters passed", "candidates", len(candidates))

	similarity, err := s.similarityScores(ctx, intentText, candidateIDs, req.SessionID)
	if err != nil {
		return nil, err
	}

	loadFactors, err := s.load.LoadFactors(ctx, candidateIDs, req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	type scored struct {
		id    uuid.UUID
		score float64
	}
	ranked := make([]scored, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		sim, ok := similarity[id]
		if !ok {
			sim = neutralScore
		}
		ranked = append(ranked, scored{
			id:    id,
			score: sim * (1.0 + loadFactors[id]*maxLoadPenalty),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].id.String() < ranked[j].id.String()
	})
	if len(ranked) > req.TopN {
		ranked = ranked[:req.TopN]
	}

	topIDs := make([]uuid.UUID, len(ranked))
	for i, r := range ranked {
		topIDs[i] = r.id
	}
	sourceTexts, err := s.embeddings.SourceTexts(ctx, topIDs)
	if err != nil {
		s.log.Warn("source text fetch failed", "error", err)
		sourceTexts = map[uuid.UUID]string{}
	}

	suggestions := make([]VenueSuggestion, 0, len(ranked))
	for _, r := range ranked {
		c := candidateMap[r.id]
		v := c.venue
		sim, ok := similarity[r.id]
		if !ok {
			sim = neutralScore
		}
		suggestions = append(suggestions, VenueSuggestion{
			VenueID:         v.ID,
			Name:            v.Name,
			Address:         v.Address,
			City:            v.City,
			Cuisine:         v.Cuisine,
			VibeTags:        v.VibeTags,
			NoiseLevel:      string(v.NoiseLevel),
			PriceBand:       string(v.PriceBand),
			Description:     v.Description,
			Lat:             v.Lat,
			Lng:             v.Lng,
			TravelMinutes:   c.travelMinutes,
			SimilarityScore: round4(sim),
			LoadFactor:      round4(loadFactors[r.id]),
			FinalScore:      round4(r.score),
			SourceText:      sourceTexts[r.id],
		})
	}

	result := &SuggestResult{IntentText: intentText, Suggestions: suggestions}
	s.cache.Set(ctx, nsSuggestResults, cacheKey, result, ttlSuggestResults)
	return result, nil
}

// hardFilteredCandidates applies availability, blackout, geo prefilter
// and travel-time budget. Venues the router cannot reach are dropped.
func (s *matcherService) hardFilteredCandidates(ctx context.Context, req SuggestRequest) ([]candidateVenue, error) {
	venues, err := s.availability.OpenVenues(ctx, req.City, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if len(venues) == 0 {
		return nil, nil
	}

	if req.OriginLat == nil || req.OriginLng == nil {
		out := make([]candidateVenue, 0, len(venues))
		for _, v := range venues {
			out = append(out, candidateVenue{venue: v})
		}
		return out, nil
	}

	before := len(venues)
	venues = PrefilterByDistance(venues, *req.OriginLat, *req.OriginLng, req.TravelMode, req.MaxTravelMinutes)
	s.log.Info("haversine prefilter",
		"before", before,
		"after", len(venues),
		"mode", req.TravelMode,
		"max_minutes", req.MaxTravelMinutes,
	)
	if len(venues) == 0 {
		return nil, nil
	}

	dests := make([]Destination, 0, len(venues))
	byID := make(map[uuid.UUID]*types.Venue, len(venues))
	for _, v := range venues {
		dests = append(dests, Destination{VenueID: v.ID, Lat: *v.Lat, Lng: *v.Lng})
		byID[v.ID] = v
	}

	minutes, err := s.travelTime.Resolve(ctx, Origin{Lat: *req.OriginLat, Lng: *req.OriginLng}, dests, req.TravelMode)
	if err != nil {
		return nil, err
	}

	out := make([]candidateVenue, 0, len(dests))
	for _, dest := range dests {
		m, ok := minutes[dest.VenueID]
		if !ok {
			continue
		}
		if m > float64(req.MaxTravelMinutes) {
			continue
		}
		mm := m
		out = append(out, candidateVenue{venue: byID[dest.VenueID], travelMinutes: &mm})
	}
	return out, nil
}

// similarityScores assigns each candidate a cosine distance to the
// intent vector. Candidates without an embedding get the neutral
// score, and when no candidate has one the provider is never called.
func (s *matcherService) similarityScores(ctx context.Context, intentText string, candidateIDs []uuid.UUID, sessionID string) (map[uuid.UUID]float64, error) {
	embeddedIDs, err := s.embeddings.VenueIDsWithEmbedding(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]float64, len(candidateIDs))
	if len(embeddedIDs) == 0 {
		s.log.Warn("no embeddings for candidates, using neutral scores")
		for _, id := range candidateIDs {
			out[id] = neutralScore
		}
		return out, nil
	}

	intentVector, err := s.embeddings.IntentVector(ctx, intentText)
	if err != nil {
		return nil, err
	}

	embedded := make(map[uuid.UUID]bool, len(embeddedIDs))
	for _, id := range embeddedIDs {
		embedded[id] = true
	}
	for _, id := range candidateIDs {
		if !embedded[id] {
			out[id] = neutralScore
		}
	}

	distances, err := s.embeddings.SimilarityDistances(ctx, intentVector, embeddedIDs)
	if err != nil {
		return nil, err
	}
	for id, d := range distances {
		out[id] = d
	}

	s.embeddings.LogIntentAsync(IntentLogEntry{
		SessionID:  sessionID,
		IntentText: intentText,
		Vector:     intentVector,
	})
	return out, nil
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
