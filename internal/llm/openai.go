package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"reelsmith/internal/config"
)

// OpenAIClient wraps the OpenAI chat completions API. It serves aliases that
// route to OpenAI-compatible backends.
type OpenAIClient struct {
	client    openai.Client
	maxTokens int64
	timeout   time.Duration
}

// NewOpenAIClient creates an OpenAI client from configuration.
func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if parsed, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = parsed
		}
	}

	return &OpenAIClient{
		client:    openai.NewClient(clientOpts...),
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
	}, nil
}

// GenerateText sends a chat completion request and returns the raw response
// text. JSON-constrained requests use the json_object response format; schema
// enforcement happens downstream at parse time.
func (c *OpenAIClient) GenerateText(ctx context.Context, model string, temperature float32, req Request) (string, error) {
	if req.UserPrompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       model,
		Temperature: openai.Float(float64(temperature)),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(c.maxTokens)
	}
	if req.ForceJSON || req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyInvokeError(fmt.Sprintf("generate text with %s", model), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate text with %s: %w", model, ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("generate text with %s: %w", model, ErrEmptyResponse)
	}
	return text, nil
}

func (c *OpenAIClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}
