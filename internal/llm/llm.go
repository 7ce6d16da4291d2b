// Package llm provides model clients and the alias registry used for all
// text generation and embedding calls.
package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"reelsmith/internal/config"
)

const (
	// DefaultEmbeddingModel is the Gemini embedding model.
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions is the output dimension for embeddings (Matryoshka)
	DefaultEmbeddingDimensions = int32(768)
)

// GeminiClient wraps the Gemini API for text generation and embeddings.
type GeminiClient struct {
	gClient             *genai.Client
	maxTokens           int32
	timeout             time.Duration
	embeddingModel      string
	embeddingDimensions int32
}

// NewGeminiClient creates a Gemini client from configuration. The API key
// must already be resolved by the config layer.
func NewGeminiClient(cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if parsed, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = parsed
		}
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	dims := cfg.EmbeddingDimensions
	if dims <= 0 {
		dims = DefaultEmbeddingDimensions
	}

	return &GeminiClient{
		gClient:             gClient,
		maxTokens:           cfg.MaxTokens,
		timeout:             timeout,
		embeddingModel:      embeddingModel,
		embeddingDimensions: dims,
	}, nil
}

// GenerateText sends a prompt to the given Gemini model and returns the raw
// response text. Schema-constrained requests force a JSON response.
func (c *GeminiClient) GenerateText(ctx context.Context, model string, temperature float32, req Request) (string, error) {
	if req.UserPrompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: req.UserPrompt}},
			Role:  "user",
		},
	}

	genConfig := &genai.GenerateContentConfig{}
	if c.maxTokens > 0 {
		genConfig.MaxOutputTokens = c.maxTokens
	}
	if temperature > 0 {
		genConfig.Temperature = genai.Ptr(temperature)
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Schema != nil {
		genConfig.ResponseMIMEType = "application/json"
		genConfig.ResponseSchema = req.Schema
	} else if req.ForceJSON {
		genConfig.ResponseMIMEType = "application/json"
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return "", classifyInvokeError(fmt.Sprintf("generate text with %s", model), err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generate text with %s: %w", model, ErrEmptyResponse)
	}
	return text, nil
}

// GenerateEmbedding creates an embedding vector for the given text.
func (c *GeminiClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("generate embedding: %w: empty text", ErrEmbeddingFailure)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: text}},
			Role:  "user",
		},
	}

	dims := c.embeddingDimensions
	embedConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	}

	resp, err := c.gClient.Models.EmbedContent(ctx, c.embeddingModel, contents, embedConfig)
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w: %v", ErrEmbeddingFailure, err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("generate embedding: %w: no values returned", ErrEmbeddingFailure)
	}

	values := resp.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, val := range values {
		embedding[i] = float64(val)
	}
	return embedding, nil
}

// EmbeddingDimensions reports the configured embedding output size.
func (c *GeminiClient) EmbeddingDimensions() int {
	return int(c.embeddingDimensions)
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}
