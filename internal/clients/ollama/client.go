package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/twotable/twotable-backend/internal/clients/openai"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
)

// client talks to a local Ollama server. It satisfies openai.Client so
// the embedding provider can be swapped by configuration alone.
type client struct {
	log        *logger.Logger
	baseURL    string
	embedModel string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (openai.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	baseURL := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	embedModel := strings.TrimSpace(os.Getenv("OLLAMA_EMBED_MODEL"))
	if embedModel == "" {
		embedModel = "nomic-embed-text"
	}

	return &client{
		log:        log.With("client", "OllamaClient"),
		baseURL:    baseURL,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *client) ModelName() string {
	return c.embedModel
}

type embedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func (c *client) Embed(ctx context.Context, input string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || vecs[0] == nil {
		return nil, fmt.Errorf("ollama embeddings: empty response")
	}
	return vecs[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(embedRequest{Model: c.embedModel, Input: clean}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/embed", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed embedResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("ollama decode error: %w", err)
	}
	if len(parsed.Embeddings) != len(clean) {
		return nil, fmt.Errorf("ollama embeddings: requested %d, returned %d", len(clean), len(parsed.Embeddings))
	}

	out := make([][]float32, len(parsed.Embeddings))
	for i, e := range parsed.Embeddings {
		vec := make([]float32, len(e))
		for j, f := range e {
			vec[j] = float32(f)
		}
		out[i] = openai.Normalize(vec)
	}
	return out, nil
}
