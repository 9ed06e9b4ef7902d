package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/inkwhale/bookbatch/internal/config"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openAIDefaultChatModel      = "gpt-4o-mini"
	openAIDefaultEmbeddingModel = "text-embedding-3-small"

	normalizeSystemPrompt = `You normalize book titles for series matching.
Remove volume numbers, edition markers, promotional phrases, format notes
and seller decorations, keeping only the core title shared across a series.
Respond with a single JSON object: {"original": <input title>,
"title": <normalized title>, "reason": <what was removed>}.`
)

// OpenAIOption customizes an OpenAIClient, mainly for tests.
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) { o.baseURL = url }
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(o *openAIOptions) { o.httpClient = client }
}

// OpenAIClient implements Prompt using the official OpenAI SDK.
type OpenAIClient struct {
	chatModel      string
	embeddingModel string
	client         openai.Client
}

// NewOpenAIClient creates an OpenAI-backed prompt client.
func NewOpenAIClient(cfg config.OpenAIConfig, opts ...OpenAIOption) *OpenAIClient {
	var o openAIOptions
	for _, opt := range opts {
		opt(&o)
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openAIDefaultChatModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = openAIDefaultEmbeddingModel
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(3),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &OpenAIClient{
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		client:         openai.NewClient(reqOpts...),
	}
}

// Normalize sends the request to the chat completion API and parses the
// JSON object out of the reply.
func (c *OpenAIClient) Normalize(ctx context.Context, req *NormalizeRequest) (*Normalized, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding normalize request: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(normalizeSystemPrompt),
			openai.UserMessage(string(payload)),
		},
	})
	if err != nil {
		return nil, &ConnectError{Backend: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &DecodeError{Backend: "openai", Err: fmt.Errorf("no choices in response")}
	}

	var out Normalized
	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, &DecodeError{Backend: "openai", Err: err}
	}
	if out.Original == "" {
		out.Original = req.Title
	}
	return &out, nil
}

// Embed sends the texts to the embedding API.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, &ConnectError{Backend: "openai", Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &DecodeError{
			Backend: "openai",
			Err:     fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[item.Index] = vec
	}
	return vectors, nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models add around JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ Prompt = (*OpenAIClient)(nil)
