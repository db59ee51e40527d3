package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/pinecone"
	"github.com/twotable/twotable-backend/internal/data/repos/embeddings"
	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// localVectorStore answers similarity queries straight from the
// venue_embeddings table, computing cosine distance in-process. It is
// the default store; Pinecone and Qdrant are opt-in for larger
// catalogues.
type localVectorStore struct {
	db   *gorm.DB
	log  *logger.Logger
	repo embeddings.VenueEmbeddingRepo
}

func NewLocalVectorStore(db *gorm.DB, baseLog *logger.Logger, repo embeddings.VenueEmbeddingRepo) pinecone.VectorStore {
	return &localVectorStore{
		db:   db,
		log:  baseLog.With("service", "LocalVectorStore"),
		repo: repo,
	}
}

// Upsert is a no-op: the embeddings service already persists vectors
// to the venue_embeddings table this store reads from.
func (s *localVectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	return nil
}

func (s *localVectorStore) QueryDistances(ctx context.Context, q []float32, candidateIDs []string) (map[string]float64, error) {
	if len(candidateIDs) == 0 {
		return map[string]float64{}, nil
	}

	ids := make([]uuid.UUID, 0, len(candidateIDs))
	for _, raw := range candidateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}

	rows, err := s.repo.GetByVenueIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		vec, err := types.DecodeVector(row.Embedding)
		if err != nil {
			s.log.Warn("corrupt venue embedding", "venue_id", row.VenueID, "error", err)
			continue
		}
		out[row.VenueID.String()] = CosineDistance(q, vec)
	}
	return out, nil
}

func (s *localVectorStore) DeleteIDs(ctx context.Context, ids []string) error {
	return nil
}

// CosineDistance is 1 - cosine similarity, clamped to [0, 2]. Zero or
// mismatched vectors get the maximum distance.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 2.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2.0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	d := 1 - sim
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}
