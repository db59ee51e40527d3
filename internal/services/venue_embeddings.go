package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/openai"
	"github.com/twotable/twotable-backend/internal/clients/pinecone"
	"github.com/twotable/twotable-backend/internal/clients/redis"
	"github.com/twotable/twotable-backend/internal/data/repos/catalogue"
	embeddingsRepo "github.com/twotable/twotable-backend/internal/data/repos/embeddings"
	types "github.com/twotable/twotable-backend/internal/domain"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

const embedBatchSize = 64

// EmbedAllResult summarizes a bulk embedding run.
type EmbedAllResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// IntentLogEntry is queued for asynchronous persistence; losing one on
// shutdown is acceptable.
type IntentLogEntry struct {
	SessionID  string
	IntentText string
	Vector     []float32
}

// VenueEmbeddingService owns venue and intent vectors: building source
// texts, calling the embedding provider, persisting rows, mirroring
// them into the vector store and answering similarity queries.
type VenueEmbeddingService interface {
	UpsertForVenue(ctx context.Context, venue *types.Venue) (*types.VenueEmbedding, error)
	EmbedAll(ctx context.Context) (*EmbedAllResult, error)
	IntentVector(ctx context.Context, intentText string) ([]float32, error)
	SimilarityDistances(ctx context.Context, intentVector []float32, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	VenueIDsWithEmbedding(ctx context.Context, candidateIDs []uuid.UUID) ([]uuid.UUID, error)
	SourceTexts(ctx context.Context, venueIDs []uuid.UUID) (map[uuid.UUID]string, error)
	LogIntentAsync(entry IntentLogEntry)
	Close()
}

type venueEmbeddingService struct {
	db       *gorm.DB
	log      *logger.Logger
	embedder openai.Client
	store    pinecone.VectorStore
	venues   catalogue.VenueRepo
	repo     embeddingsRepo.VenueEmbeddingRepo
	intents  embeddingsRepo.IntentEmbeddingRepo
	cache    redis.Cache

	intentQueue chan IntentLogEntry
	done        chan struct{}

	// Dimension of the first vector written this run. Later writes
	// must match it.
	dim atomic.Int64
}

func (s *venueEmbeddingService) checkDimension(vector []float32) error {
	n := int64(len(vector))
	if n == 0 {
		return fmt.Errorf("embedding provider returned an empty vector")
	}
	if s.dim.CompareAndSwap(0, n) {
		return nil
	}
	if want := s.dim.Load(); want != n {
		return fmt.Errorf("embedding dimension %d does not match expected %d", n, want)
	}
	return nil
}

func NewVenueEmbeddingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	embedder openai.Client,
	store pinecone.VectorStore,
	venues catalogue.VenueRepo,
	repo embeddingsRepo.VenueEmbeddingRepo,
	intents embeddingsRepo.IntentEmbeddingRepo,
	cache redis.Cache,
) VenueEmbeddingService {
	s := &venueEmbeddingService{
		db:          db,
		log:         baseLog.With("service", "VenueEmbeddingService"),
		embedder:    embedder,
		store:       store,
		venues:      venues,
		repo:        repo,
		intents:     intents,
		cache:       cache,
		intentQueue: make(chan IntentLogEntry, 256),
		done:        make(chan struct{}),
	}
	go s.intentWorker()
	return s
}

func (s *venueEmbeddingService) UpsertForVenue(ctx context.Context, venue *types.Venue) (*types.VenueEmbedding, error) {
	sourceText := BuildVenueSourceText(venue)
	vector, err := s.embedder.Embed(ctx, sourceText)
	if err != nil {
		return nil, err
	}
	if err := s.checkDimension(vector); err != nil {
		return nil, err
	}

	encoded, err := types.EncodeVector(vector)
	if err != nil {
		return nil, err
	}
	row := &types.VenueEmbedding{
		ID:         uuid.New(),
		VenueID:    venue.ID,
		Embedding:  encoded,
		ModelName:  s.embedder.ModelName(),
		SourceText: sourceText,
	}
	if err := s.repo.Upsert(ctx, nil, row); err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, []pinecone.Vector{{
		ID:       venue.ID.String(),
		Values:   vector,
		Metadata: map[string]any{"venue_id": venue.ID.String(), "city": venue.City},
	}}); err != nil {
		s.log.Warn("vector store upsert failed", "venue_id", venue.ID, "error", err)
	}

	s.log.Info("Upserted embedding", "venue_id", venue.ID, "name", venue.Name)
	return row, nil
}

// EmbedAll bulk-embeds every active venue in batches. Per-batch
// provider failures and per-venue write failures are counted, not
// fatal.
func (s *venueEmbeddingService) EmbedAll(ctx context.Context) (*EmbedAllResult, error) {
	venues, err := s.venues.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}

	result := &EmbedAllResult{Total: len(venues)}
	s.log.Info("EmbedAll starting", "total", result.Total, "batch_size", embedBatchSize)

	for start := 0; start < len(venues); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(venues) {
			end = len(venues)
		}
		batch := venues[start:end]

		sourceTexts := make([]string, len(batch))
		for i, v := range batch {
			sourceTexts[i] = BuildVenueSourceText(v)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, sourceTexts)
		if err != nil {
			s.log.Error("EmbedAll batch failed", "batch", start/embedBatchSize, "error", err)
			result.Failed += len(batch)
			continue
		}

		storeVectors := make([]pinecone.Vector, 0, len(batch))
		for i, v := range batch {
			if err := s.checkDimension(vectors[i]); err != nil {
				s.log.Error("EmbedAll vector rejected", "venue_id", v.ID, "error", err)
				result.Failed++
				continue
			}
			encoded, err := types.EncodeVector(vectors[i])
			if err != nil {
				result.Failed++
				continue
			}
			row := &types.VenueEmbedding{
				ID:         uuid.New(),
				VenueID:    v.ID,
				Embedding:  encoded,
				ModelName:  s.embedder.ModelName(),
				SourceText: sourceTexts[i],
			}
			if err := s.repo.Upsert(ctx, nil, row); err != nil {
				s.log.Error("EmbedAll write failed", "venue_id", v.ID, "error", err)
				result.Failed++
				continue
			}
			storeVectors = append(storeVectors, pinecone.Vector{
				ID:       v.ID.String(),
				Values:   vectors[i],
				Metadata: map[string]any{"venue_id": v.ID.String(), "city": v.City},
			})
			result.Success++
		}

		if len(storeVectors) > 0 {
			if err := s.store.Upsert(ctx, storeVectors); err != nil {
				s.log.Warn("vector store batch upsert failed", "batch", start/embedBatchSize, "error", err)
			}
		}
	}

	s.log.Info("EmbedAll complete", "success", result.Success, "failed", result.Failed, "total", result.Total)
	return result, nil
}

func intentVectorKey(intentText string) string {
	sum := sha256.Sum256([]byte(intentText))
	return hex.EncodeToString(sum[:])
}

// IntentVector embeds the intent text, with a Redis cache so repeated
// identical intents skip the provider.
func (s *venueEmbeddingService) IntentVector(ctx context.Context, intentText string) ([]float32, error) {
	key := intentVectorKey(intentText)

	var cached []float32
	if s.cache.Get(ctx, nsIntentVectors, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	vector, err := s.embedder.Embed(ctx, intentText)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, nsIntentVectors, key, vector, ttlIntentVectors)
	return vector, nil
}

func (s *venueEmbeddingService) SimilarityDistances(ctx context.Context, intentVector []float32, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	ids := make([]string, len(candidateIDs))
	for i, id := range candidateIDs {
		ids[i] = id.String()
	}

	raw, err := s.store.QueryDistances(ctx, intentVector, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]float64, len(raw))
	for idStr, dist := range raw {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		out[id] = dist
	}
	return out, nil
}

func (s *venueEmbeddingService) VenueIDsWithEmbedding(ctx context.Context, candidateIDs []uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.VenueIDsWithEmbedding(ctx, nil, candidateIDs)
}

func (s *venueEmbeddingService) SourceTexts(ctx context.Context, venueIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.repo.SourceTextsByVenueIDs(ctx, nil, venueIDs)
}

// LogIntentAsync queues an intent row for the background writer. When
// the queue is full the entry is dropped.
func (s *venueEmbeddingService) LogIntentAsync(entry IntentLogEntry) {
	select {
	case s.intentQueue <- entry:
	default:
		s.log.Warn("intent log queue full, dropping entry")
	}
}

func (s *venueEmbeddingService) intentWorker() {
	for entry := range s.intentQueue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		encoded, err := types.EncodeVector(entry.Vector)
		if err != nil {
			cancel()
			continue
		}
		row := &types.IntentEmbedding{
			ID:         uuid.New(),
			SessionID:  entry.SessionID,
			IntentText: entry.IntentText,
			Embedding:  encoded,
			ModelName:  s.embedder.ModelName(),
		}
		if _, err := s.intents.Create(ctx, nil, []*types.IntentEmbedding{row}); err != nil {
			s.log.Warn("intent embedding log failed", "error", err)
		}
		cancel()
	}
	close(s.done)
}

// Close drains the intent queue and stops the worker.
func (s *venueEmbeddingService) Close() {
	close(s.intentQueue)
	<-s.done
}
