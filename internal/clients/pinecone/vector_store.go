package pinecone

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// VectorStore indexes venue embeddings and answers similarity queries.
// Distances are cosine distances, lower is closer. Queries are always
// scoped to an explicit candidate id set so the store never ranks
// venues the pipeline has already excluded.
type VectorStore interface {
	Upsert(ctx context.Context, vectors []Vector) error
	// QueryDistances returns a distance per candidate id that exists in
	// the index. Candidates with no vector are simply absent from the
	// result.
	QueryDistances(ctx context.Context, q []float32, candidateIDs []string) (map[string]float64, error)
	DeleteIDs(ctx context.Context, ids []string) error
}

type vectorStore struct {
	log       *logger.Logger
	pc        Client
	indexName string
	indexHost string
	namespace string
}

func NewVectorStore(log *logger.Logger, pc Client) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pc == nil {
		return nil, fmt.Errorf("pinecone client required")
	}

	indexName := strings.TrimSpace(os.Getenv("PINECONE_INDEX_NAME"))
	if indexName == "" {
		return nil, fmt.Errorf("missing PINECONE_INDEX_NAME")
	}

	host := strings.TrimSpace(os.Getenv("PINECONE_INDEX_HOST"))

	namespace := strings.TrimSpace(os.Getenv("PINECONE_NAMESPACE"))
	if namespace == "" {
		namespace = "venues"
	}

	// If host missing, bootstrap via describe_index (fine for local/dev; avoid in prod).
	if host == "" {
		desc, err := pc.DescribeIndex(context.Background(), indexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		host = strings.TrimSpace(desc.Host)
		if host == "" {
			return nil, fmt.Errorf("pinecone describe_index returned empty host")
		}
		log.Warn("PINECONE_INDEX_HOST not set; resolved via describe_index (avoid this in production)",
			"index_name", indexName,
			"index_host", host,
		)
	}

	return &vectorStore{
		log:       log.With("client", "PineconeVectorStore"),
		pc:        pc,
		indexName: indexName,
		indexHost: host,
		namespace: namespace,
	}, nil
}

func (s *vectorStore) Upsert(ctx context.Context, vectors []Vector) error {
	if s == nil || s.pc == nil {
		return nil
	}
	_, err := s.pc.UpsertVectors(ctx, s.indexHost, UpsertRequest{
		Namespace: s.namespace,
		Vectors:   vectors,
	})
	return err
}

func (s *vectorStore) QueryDistances(ctx context.Context, q []float32, candidateIDs []string) (map[string]float64, error) {
	if s == nil || s.pc == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	if len(candidateIDs) == 0 {
		return map[string]float64{}, nil
	}

	ids := make([]any, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	}

	resp, err := s.pc.Query(ctx, s.indexHost, QueryRequest{
		Namespace: s.namespace,
		Vector:    q,
		TopK:      len(candidateIDs),
		Filter:    map[string]any{"venue_id": map[string]any{"$in": ids}},
	})
	if err != nil {
		return nil, err
	}

	// Pinecone cosine scores are similarities, higher is better.
	out := make(map[string]float64, len(resp.Matches))
	for _, m := range resp.Matches {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			continue
		}
		out[id] = 1 - m.Score
	}
	return out, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, ids []string) error {
	if s == nil || s.pc == nil {
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	return s.pc.DeleteVectors(ctx, s.indexHost, DeleteRequest{
		Namespace: s.namespace,
		IDs:       ids,
	})
}
