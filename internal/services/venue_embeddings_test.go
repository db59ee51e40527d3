package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/pinecone"
	types "github.com/twotable/twotable-backend/internal/domain"
)

type fixedEmbedder struct {
	next []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	return f.next, nil
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.next
	}
	return out, nil
}

func (f *fixedEmbedder) ModelName() string { return "test-embed" }

type recordingVectorStore struct {
	upserted int
}

func (s *recordingVectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	s.upserted += len(vectors)
	return nil
}

func (s *recordingVectorStore) QueryDistances(ctx context.Context, q []float32, candidateIDs []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (s *recordingVectorStore) DeleteIDs(ctx context.Context, ids []string) error { return nil }

type memVenueEmbeddingRepo struct {
	rows map[uuid.UUID]*types.VenueEmbedding
}

func (r *memVenueEmbeddingRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.VenueEmbedding) error {
	r.rows[row.VenueID] = row
	return nil
}

func (r *memVenueEmbeddingRepo) GetByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]*types.VenueEmbedding, error) {
	var out []*types.VenueEmbedding
	for _, id := range venueIDs {
		if row, ok := r.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memVenueEmbeddingRepo) VenueIDsWithEmbedding(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range venueIDs {
		if _, ok := r.rows[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *memVenueEmbeddingRepo) SourceTextsByVenueIDs(ctx context.Context, tx *gorm.DB, venueIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	for _, id := range venueIDs {
		if row, ok := r.rows[id]; ok {
			out[id] = row.SourceText
		}
	}
	return out, nil
}

type memIntentRepo struct{}

func (memIntentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.IntentEmbedding) ([]*types.IntentEmbedding, error) {
	return rows, nil
}

func newEmbeddingFixture(t *testing.T) (VenueEmbeddingService, *fixedEmbedder, *memVenueEmbeddingRepo) {
	t.Helper()
	embedder := &fixedEmbedder{next: []float32{0.1, 0.2, 0.3, 0.4}}
	repo := &memVenueEmbeddingRepo{rows: map[uuid.UUID]*types.VenueEmbedding{}}
	svc := NewVenueEmbeddingService(
		nil,
		testLogger(t),
		embedder,
		&recordingVectorStore{},
		&fakeVenueRepo{},
		repo,
		memIntentRepo{},
		newMemCache(),
	)
	t.Cleanup(svc.Close)
	return svc, embedder, repo
}

func TestUpsertForVenueRejectsDimensionMismatch(t *testing.T) {
	svc, embedder, repo := newEmbeddingFixture(t)
	ctx := context.Background()

	if _, err := svc.UpsertForVenue(ctx, bristolVenue("The Glass Boat", 51.449, -2.593)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	embedder.next = []float32{0.1, 0.2, 0.3}
	if _, err := svc.UpsertForVenue(ctx, bristolVenue("Pasta Loco", 51.459, -2.590)); err == nil {
		t.Fatal("expected dimension mismatch error, got nil")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("stored rows = %d, want 1", len(repo.rows))
	}

	embedder.next = []float32{0.6, 0.8, 0.0, 0.0}
	if _, err := svc.UpsertForVenue(ctx, bristolVenue("Bravas", 51.466, -2.608)); err != nil {
		t.Fatalf("matching-dimension upsert: %v", err)
	}
	if len(repo.rows) != 2 {
		t.Fatalf("stored rows = %d, want 2", len(repo.rows))
	}
}

func TestUpsertForVenueRejectsEmptyVector(t *testing.T) {
	svc, embedder, repo := newEmbeddingFixture(t)
	embedder.next = nil

	if _, err := svc.UpsertForVenue(context.Background(), bristolVenue("Empty", 51.45, -2.59)); err == nil {
		t.Fatal("expected error for empty vector, got nil")
	}
	if len(repo.rows) != 0 {
		t.Fatalf("stored rows = %d, want 0", len(repo.rows))
	}
}
