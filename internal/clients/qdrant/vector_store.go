package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/twotable/twotable-backend/internal/clients/pinecone"
	"github.com/twotable/twotable-backend/internal/pkg/ctxutil"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

const maxErrorBodyBytes = 1024

type vectorStore struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantSearchResultItem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// NewVectorStore connects to a Qdrant collection and returns it behind
// the shared store interface. Venue ids are used directly as point ids,
// which works because they are uuids.
func NewVectorStore(log *logger.Logger, cfg Config) (pinecone.VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &vectorStore{
		log:     log.With("client", "QdrantVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	if err := s.verifyReady(context.Background()); err != nil {
		return nil, err
	}

	log.Info("Qdrant vector store selected",
		"url", s.baseURL,
		"collection", cfg.Collection,
		"vector_dim", cfg.VectorDim,
	)
	return s, nil
}

func (s *vectorStore) verifyReady(ctx context.Context) error {
	var result map[string]any
	if err := s.doJSON(ctx, http.MethodGet, s.collectionPath(""), nil, &result); err != nil {
		return fmt.Errorf("qdrant ready check failed: %w", err)
	}
	return nil
}

func (s *vectorStore) collectionPath(suffix string) string {
	return s.baseURL + "/collections/" + s.cfg.Collection + suffix
}

func (s *vectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	if s == nil {
		return nil
	}
	if len(vectors) == 0 {
		return nil
	}

	points := make([]map[string]any, 0, len(vectors))
	for _, v := range vectors {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			return fmt.Errorf("qdrant upsert: vector id is required")
		}
		if len(v.Values) == 0 {
			return fmt.Errorf("qdrant upsert: vector %q has empty values", id)
		}
		if s.cfg.VectorDim > 0 && len(v.Values) != s.cfg.VectorDim {
			return fmt.Errorf("qdrant upsert: vector %q dimension mismatch: expected=%d got=%d",
				id, s.cfg.VectorDim, len(v.Values))
		}
		points = append(points, map[string]any{
			"id":      id,
			"vector":  v.Values,
			"payload": v.Metadata,
		})
	}

	req := map[string]any{"points": points}
	return s.doJSON(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil)
}

func (s *vectorStore) QueryDistances(ctx context.Context, q []float32, candidateIDs []string) (map[string]float64, error) {
	if s == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	if len(q) == 0 {
		return nil, fmt.Errorf("qdrant query: vector required")
	}
	if s.cfg.VectorDim > 0 && len(q) != s.cfg.VectorDim {
		return nil, fmt.Errorf("qdrant query: vector dimension mismatch: expected=%d got=%d",
			s.cfg.VectorDim, len(q))
	}
	if len(candidateIDs) == 0 {
		return map[string]float64{}, nil
	}

	ids := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	}

	req := map[string]any{
		"vector":       q,
		"limit":        len(ids),
		"with_payload": false,
		"with_vector":  false,
		"filter": map[string]any{
			"must": []map[string]any{
				{"has_id": ids},
			},
		},
	}

	var items []qdrantSearchResultItem
	if err := s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &items); err != nil {
		return nil, err
	}

	// Qdrant cosine scores are similarities, higher is better.
	out := make(map[string]float64, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		out[id] = 1 - item.Score
	}
	return out, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, ids []string) error {
	if s == nil {
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	req := map[string]any{"points": ids}
	return s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), req, nil)
}

func (s *vectorStore) doJSON(ctx context.Context, method, url string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(s.cfg.APIKey); key != "" {
		req.Header.Set("api-key", key)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := raw
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return fmt.Errorf("qdrant http %d: %s", resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	var env qdrantEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("qdrant decode error: %w", err)
	}
	if len(env.Result) == 0 {
		return fmt.Errorf("qdrant response missing result")
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("qdrant result decode error: %w", err)
	}
	return nil
}
