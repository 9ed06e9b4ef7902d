package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/inkwhale/bookbatch/internal/config"
)

const (
	bridgeNormalizePath = "/normalize"
	bridgeEmbeddingPath = "/embedding"
)

// BridgeClient implements Prompt against the text-bridge sidecar, a small
// HTTP service wrapping a language model.
type BridgeClient struct {
	baseURL  string
	client   *http.Client
	attempts uint
	delay    time.Duration
}

// NewBridgeClient creates a bridge client from configuration.
func NewBridgeClient(cfg config.BridgeConfig) *BridgeClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	attempts := uint(cfg.RetryAttempts)
	if attempts == 0 {
		attempts = 3
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = time.Second
	}

	return &BridgeClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
		delay:    delay,
	}
}

// embeddingRequest is the bridge's embedding request body.
type embeddingRequest struct {
	Text []string `json:"text"`
}

// embeddingItem pairs one vector with the text it encodes.
type embeddingItem struct {
	Encode   []float32 `json:"encode"`
	Original string    `json:"original"`
}

// embeddingResponse is the bridge's embedding response body.
type embeddingResponse struct {
	Embeddings []embeddingItem `json:"embeddings"`
}

// Normalize posts the title to the bridge's normalize endpoint.
func (c *BridgeClient) Normalize(ctx context.Context, req *NormalizeRequest) (*Normalized, error) {
	var out Normalized
	if err := c.post(ctx, bridgeNormalizePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Embed posts the texts to the bridge's embedding endpoint. Vectors come
// back in input order.
func (c *BridgeClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out embeddingResponse
	if err := c.post(ctx, bridgeEmbeddingPath, embeddingRequest{Text: texts}, &out); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(out.Embeddings))
	for _, item := range out.Embeddings {
		vectors = append(vectors, item.Encode)
	}
	if len(vectors) != len(texts) {
		return nil, &DecodeError{
			Backend: "bridge",
			Err:     fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors)),
		}
	}
	return vectors, nil
}

// post sends one JSON request with retries and decodes the response.
func (c *BridgeClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding bridge request: %w", err)
	}

	var respBody []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status: %d", resp.StatusCode)
			}
			respBody, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return &ConnectError{Backend: "bridge", Err: err}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Backend: "bridge", Err: err}
	}
	return nil
}

var _ Prompt = (*BridgeClient)(nil)
