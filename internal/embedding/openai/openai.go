// File: internal/embedding/openai/openai.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/embeddings"

	// MaxBatchSize caps how many texts go into one API call; larger inputs
	// are chunked to bound peak payload size.
	MaxBatchSize = 50
)

// Client computes embeddings using direct HTTP calls to an OpenAI-compatible
// embeddings endpoint.
type Client struct {
	apiKey     string
	modelName  string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new embeddings Client. An empty endpoint selects the
// public OpenAI API.
func NewClient(apiKey, modelName, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		apiKey:     apiKey,
		modelName:  modelName,
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// ModelName returns the model this client embeds with. The durable cache
// tags entries with it so vectors from another model are never reused.
func (c *Client) ModelName() string {
	return c.modelName
}

// embeddingRequest represents the JSON payload sent to the API.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingData represents one result in the API response.
type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
	Object    string    `json:"object"`
}

// embeddingResponse represents the full response from the API.
type embeddingResponse struct {
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Object string          `json:"object"`
}

// EmbedBatch returns one embedding per input text, in order. Inputs larger
// than MaxBatchSize are split across multiple API calls.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *Client) embedChunk(ctx context.Context, texts []string) ([][]float64, error) {
	reqBody := embeddingRequest{
		Model: c.modelName,
		Input: texts,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call embeddings API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &embResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal API response: %w", err)
	}
	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(embResp.Data), len(texts))
	}

	// The API documents results as index-ordered; sort to be safe.
	sort.Slice(embResp.Data, func(i, j int) bool {
		return embResp.Data[i].Index < embResp.Data[j].Index
	})
	vecs := make([][]float64, len(embResp.Data))
	for i, d := range embResp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
