package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/twotable/twotable-backend/internal/domain"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// memCache is an in-process redis.Cache stand-in that round-trips
// values through JSON the way the real one does.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, namespace, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[namespace+":"+key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memCache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[namespace+":"+key] = raw
}

func (c *memCache) Delete(ctx context.Context, namespace, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, namespace+":"+key)
}

func (c *memCache) Clear(ctx context.Context, namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if len(k) > len(namespace) && k[:len(namespace)+1] == namespace+":" {
			delete(c.data, k)
		}
	}
}

func (c *memCache) Close() error { return nil }

type fakeAvailability struct {
	venues []*types.Venue
	calls  int
}

func (f *fakeAvailability) OpenVenues(ctx context.Context, city, date, timeOfDay string) ([]*types.Venue, error) {
	f.calls++
	return f.venues, nil
}

func (f *fakeAvailability) AvailableVenues(ctx context.Context, q AvailableVenuesQuery) ([]AvailableVenue, error) {
	return nil, errors.New("not used")
}

type fakeTravelTime struct {
	minutes map[uuid.UUID]float64
	calls   int
}

func (f *fakeTravelTime) Resolve(ctx context.Context, origin Origin, dests []Destination, mode string) (map[uuid.UUID]float64, error) {
	f.calls++
	out := make(map[uuid.UUID]float64)
	for _, d := range dests {
		if m, ok := f.minutes[d.VenueID]; ok {
			out[d.VenueID] = m
		}
	}
	return out, nil
}

func (f *fakeTravelTime) ResolveOne(ctx context.Context, origin Origin, dest Destination, mode string) (float64, bool, error) {
	m, ok := f.minutes[dest.VenueID]
	return m, ok, nil
}

type fakeEmbeddings struct {
	embeddedIDs []uuid.UUID
	distances   map[uuid.UUID]float64
	sourceTexts map[uuid.UUID]string

	intentCalls int
	logged      []IntentLogEntry
}

func (f *fakeEmbeddings) UpsertForVenue(ctx context.Context, venue *types.Venue) (*types.VenueEmbedding, error) {
	return nil, errors.New("not used")
}

func (f *fakeEmbeddings) EmbedAll(ctx context.Context) (*EmbedAllResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeEmbeddings) IntentVector(ctx context.Context, intentText string) ([]float32, error) {
	f.intentCalls++
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbeddings) SimilarityDistances(ctx context.Context, intentVector []float32, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64)
	for _, id := range candidateIDs {
		if d, ok := f.distances[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (f *fakeEmbeddings) VenueIDsWithEmbedding(ctx context.Context, candidateIDs []uuid.UUID) ([]uuid.UUID, error) {
	return f.embeddedIDs, nil
}

func (f *fakeEmbeddings) SourceTexts(ctx context.Context, venueIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.sourceTexts == nil {
		return map[uuid.UUID]string{}, nil
	}
	return f.sourceTexts, nil
}

func (f *fakeEmbeddings) LogIntentAsync(entry IntentLogEntry) {
	f.logged = append(f.logged, entry)
}

func (f *fakeEmbeddings) Close() {}

type fakeLoad struct {
	factors map[uuid.UUID]float64
}

func (f *fakeLoad) LoadFactors(ctx context.Context, venueIDs []uuid.UUID, date, timeOfDay string) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64)
	for _, id := range venueIDs {
		out[id] = f.factors[id]
	}
	return out, nil
}

func bristolVenue(name string, lat, lng float64) *types.Venue {
	return &types.Venue{
		ID:       uuid.New(),
		Name:     name,
		Address:  "1 Harbourside",
		City:     "Bristol",
		Lat:      floatPtr(lat),
		Lng:      floatPtr(lng),
		IsActive: true,
	}
}

func bristolRequest() SuggestRequest {
	return SuggestRequest{
		City:       "Bristol",
		OriginLat:  floatPtr(51.4545),
		OriginLng:  floatPtr(-2.5879),
		TravelMode: "drive",
		Date:       "2026-09-05",
		Time:       "19:30",
	}
}

func TestSuggestLoadPenaltyReordersRanking(t *testing.T) {
	venueA := bristolVenue("Quiet Corner", 51.455, -2.590)
	venueB := bristolVenue("The Glass Boat", 51.450, -2.595)

	availability := &fakeAvailability{venues: []*types.Venue{venueA, venueB}}
	travel := &fakeTravelTime{minutes: map[uuid.UUID]float64{venueA.ID: 12, venueB.ID: 18}}
	embeddings := &fakeEmbeddings{
		embeddedIDs: []uuid.UUID{venueA.ID, venueB.ID},
		distances:   map[uuid.UUID]float64{venueA.ID: 0.10, venueB.ID: 0.08},
	}
	load := &fakeLoad{factors: map[uuid.UUID]float64{venueA.ID: 0.0, venueB.ID: 0.8}}

	svc := NewMatcherService(nil, testLogger(t), availability, travel, embeddings, load, newMemCache())

	result, err := svc.Suggest(context.Background(), bristolRequest())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(result.Suggestions))
	}

	// B's penalized score 0.08*1.24=0.0992 still beats A's 0.10.
	first, second := result.Suggestions[0], result.Suggestions[1]
	if first.VenueID != venueB.ID {
		t.Fatalf("first suggestion is %s, want %s", first.Name, venueB.Name)
	}
	if math.Abs(first.FinalScore-0.0992) > 1e-9 {
		t.Errorf("first FinalScore=%f, want 0.0992", first.FinalScore)
	}
	if second.VenueID != venueA.ID {
		t.Fatalf("second suggestion is %s, want %s", second.Name, venueA.Name)
	}
	if math.Abs(second.FinalScore-0.10) > 1e-9 {
		t.Errorf("second FinalScore=%f, want 0.10", second.FinalScore)
	}

	if len(embeddings.logged) != 1 {
		t.Errorf("intent log entries=%d, want 1", len(embeddings.logged))
	}
}

func TestSuggestNeutralWhenNoEmbeddings(t *testing.T) {
	venueA := bristolVenue("Quiet Corner", 51.455, -2.590)
	venueB := bristolVenue("The Glass Boat", 51.450, -2.595)

	availability := &fakeAvailability{venues: []*types.Venue{venueA, venueB}}
	travel := &fakeTravelTime{minutes: map[uuid.UUID]float64{venueA.ID: 12, venueB.ID: 18}}
	embeddings := &fakeEmbeddings{embeddedIDs: nil}
	load := &fakeLoad{factors: map[uuid.UUID]float64{}}

	svc := NewMatcherService(nil, testLogger(t), availability, travel, embeddings, load, newMemCache())

	result, err := svc.Suggest(context.Background(), bristolRequest())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(result.Suggestions))
	}
	for _, s := range result.Suggestions {
		if s.SimilarityScore != 0.5 {
			t.Errorf("%s SimilarityScore=%f, want neutral 0.5", s.Name, s.SimilarityScore)
		}
	}
	if embeddings.intentCalls != 0 {
		t.Errorf("intent embed calls=%d, want 0 when no candidate has a vector", embeddings.intentCalls)
	}
	if len(embeddings.logged) != 0 {
		t.Errorf("intent log entries=%d, want 0", len(embeddings.logged))
	}
}

func TestSuggestResultIsCached(t *testing.T) {
	venueA := bristolVenue("Quiet Corner", 51.455, -2.590)

	availability := &fakeAvailability{venues: []*types.Venue{venueA}}
	travel := &fakeTravelTime{minutes: map[uuid.UUID]float64{venueA.ID: 12}}
	embeddings := &fakeEmbeddings{
		embeddedIDs: []uuid.UUID{venueA.ID},
		distances:   map[uuid.UUID]float64{venueA.ID: 0.2},
	}
	load := &fakeLoad{factors: map[uuid.UUID]float64{}}

	svc := NewMatcherService(nil, testLogger(t), availability, travel, embeddings, load, newMemCache())

	first, err := svc.Suggest(context.Background(), bristolRequest())
	if err != nil {
		t.Fatalf("first Suggest failed: %v", err)
	}
	second, err := svc.Suggest(context.Background(), bristolRequest())
	if err != nil {
		t.Fatalf("second Suggest failed: %v", err)
	}

	if availability.calls != 1 || travel.calls != 1 {
		t.Fatalf("availability=%d travel=%d calls, want 1 each (second hit should come from cache)",
			availability.calls, travel.calls)
	}
	if len(first.Suggestions) != len(second.Suggestions) {
		t.Fatalf("cached result differs: %d vs %d suggestions", len(first.Suggestions), len(second.Suggestions))
	}
}

func TestSuggestDropsUnreachableVenues(t *testing.T) {
	reachable := bristolVenue("Quiet Corner", 51.455, -2.590)
	unrouted := bristolVenue("No Roads", 51.460, -2.600)
	tooFar := bristolVenue("Over Budget", 51.470, -2.610)

	availability := &fakeAvailability{venues: []*types.Venue{reachable, unrouted, tooFar}}
	travel := &fakeTravelTime{minutes: map[uuid.UUID]float64{reachable.ID: 12, tooFar.ID: 50}}
	embeddings := &fakeEmbeddings{embeddedIDs: nil}
	load := &fakeLoad{factors: map[uuid.UUID]float64{}}

	svc := NewMatcherService(nil, testLogger(t), availability, travel, embeddings, load, newMemCache())

	result, err := svc.Suggest(context.Background(), bristolRequest())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0].VenueID != reachable.ID {
		t.Fatalf("got %d suggestions, want only the reachable venue", len(result.Suggestions))
	}
}

func TestSuggestEmptyCandidatesIsNotAnError(t *testing.T) {
	availability := &fakeAvailability{venues: nil}
	svc := NewMatcherService(nil, testLogger(t), availability, &fakeTravelTime{}, &fakeEmbeddings{}, &fakeLoad{}, newMemCache())

	result, err := svc.Suggest(context.Background(), bristolRequest())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("got %d suggestions, want 0", len(result.Suggestions))
	}
	if result.IntentText == "" {
		t.Fatal("empty result should still carry the intent text")
	}
}

func TestSuggestValidation(t *testing.T) {
	svc := NewMatcherService(nil, testLogger(t), &fakeAvailability{}, &fakeTravelTime{}, &fakeEmbeddings{}, &fakeLoad{}, newMemCache())

	cases := []struct {
		name   string
		mutate func(*SuggestRequest)
	}{
		{"top_n too big", func(r *SuggestRequest) { r.TopN = 99 }},
		{"travel budget too small", func(r *SuggestRequest) { r.MaxTravelMinutes = 2 }},
		{"bad date", func(r *SuggestRequest) { r.Date = "05/09/2026" }},
		{"bad time", func(r *SuggestRequest) { r.Time = "7pm" }},
		{"bad mood", func(r *SuggestRequest) { r.Mood = "furious" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := bristolRequest()
			tc.mutate(&req)
			_, err := svc.Suggest(context.Background(), req)
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("err=%v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestSuggestRequestDefaults(t *testing.T) {
	req := SuggestRequest{City: "Bristol", Date: "2026-09-05", Time: "19:30:00"}
	if err := req.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if req.TopN != 3 || req.MaxTravelMinutes != 45 {
		t.Errorf("defaults TopN=%d MaxTravelMinutes=%d, want 3/45", req.TopN, req.MaxTravelMinutes)
	}
	if req.Stage != "first_date" || req.Mood != "romantic" || req.Energy != "low" || req.Budget != "mid" {
		t.Errorf("intent defaults wrong: %s/%s/%s/%s", req.Stage, req.Mood, req.Energy, req.Budget)
	}
	if req.Time != "19:30" {
		t.Errorf("Time=%q, want normalized 19:30", req.Time)
	}
	if req.TravelMode != "drive" {
		t.Errorf("TravelMode=%q, want drive", req.TravelMode)
	}
}
