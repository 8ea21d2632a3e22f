package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"bookbot/internal/contextutil"
)

const (
	// DefaultMaxBatch is the number of texts sent per embeddings request.
	DefaultMaxBatch = 32
	defaultTimeout  = 60 * time.Second
)

// EmbeddingsConfig configures an EmbeddingsClient.
type EmbeddingsConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// ExpectedSize is the vector size every returned embedding must have.
	ExpectedSize int
	// MaxBatch caps the texts per request. Zero means DefaultMaxBatch.
	MaxBatch int
}

// EmbeddingsClient talks to an OpenAI compatible embeddings endpoint. It is
// the vectorizer of the Qdrant store.
type EmbeddingsClient struct {
	baseURL      string
	apiKey       string
	model        string
	expectedSize int
	maxBatch     int
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
func NewEmbeddingsClient(cfg EmbeddingsConfig) *EmbeddingsClient {
	maxBatch := cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	return &EmbeddingsClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		expectedSize: cfg.ExpectedSize,
		maxBatch:     maxBatch,
		client:       &http.Client{Timeout: defaultTimeout},
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// EmbedTexts returns one vector per text, in input order. Large inputs are
// split into several requests.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.maxBatch {
		end := min(start+c.maxBatch, len(texts))
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		result = append(result, vecs...)
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "embedded texts", "count", len(texts), "model", c.model)
	return result, nil
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingsRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp embeddingsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// Servers may answer out of order; the index field is authoritative.
	sort.SliceStable(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	out := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != c.expectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.expectedSize)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

// CheckModel reports an error unless the server lists the configured model.
func (c *EmbeddingsClient) CheckModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	var resp modelsResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	for _, m := range resp.Data {
		if m.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q is not served by %s", c.model, c.baseURL)
}

func (c *EmbeddingsClient) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
