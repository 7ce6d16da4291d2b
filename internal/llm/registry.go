package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
)

// Backend identifiers for model handles.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default model bindings, used when configuration leaves them unset.
const (
	DefaultFastModel     = "gemini-flash-lite-latest"
	DefaultCreativeModel = "gemini-2.5-pro"
	DefaultBalancedModel = "gpt-4o"
)

// Handle is a resolved model binding: the backend, the concrete model name,
// and the sampling temperature the alias is tuned for.
type Handle struct {
	Alias       core.ModelAlias
	Provider    string
	Model       string
	Temperature float32
}

// Request carries a single model invocation. Schema constrains Gemini
// responses; ForceJSON requests a JSON-typed response on either backend.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	ForceJSON    bool
	Schema       *genai.Schema
}

// TextGenerator is the backend contract shared by model clients.
type TextGenerator interface {
	GenerateText(ctx context.Context, model string, temperature float32, req Request) (string, error)
}

// Registry maps stable aliases to concrete model handles. One registry is
// built at startup and shared by every component that invokes models, so a
// rebinding lands everywhere at once.
type Registry struct {
	handles map[core.ModelAlias]Handle
	gemini  TextGenerator
	openai  TextGenerator
}

// NewRegistry builds the alias table from configuration and binds the given
// backend clients.
func NewRegistry(cfg *config.Config, gemini, openai TextGenerator) *Registry {
	fastModel := cfg.AI.Gemini.FastModel
	if fastModel == "" {
		fastModel = DefaultFastModel
	}
	creativeModel := cfg.AI.Gemini.CreativeModel
	if creativeModel == "" {
		creativeModel = DefaultCreativeModel
	}
	balancedModel := cfg.AI.OpenAI.Model
	if balancedModel == "" {
		balancedModel = DefaultBalancedModel
	}

	fastTemp := cfg.AI.Gemini.FastTemperature
	if fastTemp <= 0 {
		fastTemp = 0.5
	}
	creativeTemp := cfg.AI.Gemini.CreativeTemperature
	if creativeTemp <= 0 {
		creativeTemp = 0.7
	}
	balancedTemp := cfg.AI.OpenAI.Temperature
	if balancedTemp <= 0 {
		balancedTemp = 0.6
	}

	handles := map[core.ModelAlias]Handle{
		core.AliasFastCheap: {
			Alias:       core.AliasFastCheap,
			Provider:    ProviderGemini,
			Model:       fastModel,
			Temperature: fastTemp,
		},
		core.AliasBalanced: {
			Alias:       core.AliasBalanced,
			Provider:    ProviderOpenAI,
			Model:       balancedModel,
			Temperature: balancedTemp,
		},
		core.AliasBestCreative: {
			Alias:       core.AliasBestCreative,
			Provider:    ProviderGemini,
			Model:       creativeModel,
			Temperature: creativeTemp,
		},
	}

	return &Registry{
		handles: handles,
		gemini:  gemini,
		openai:  openai,
	}
}

// Resolve maps an alias to its registered handle.
func (r *Registry) Resolve(alias core.ModelAlias) (Handle, error) {
	handle, ok := r.handles[alias]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %q", ErrUnknownModelAlias, alias)
	}
	return handle, nil
}

// Invoke resolves the alias and dispatches the request to its backend.
func (r *Registry) Invoke(ctx context.Context, alias core.ModelAlias, req Request) (string, error) {
	handle, err := r.Resolve(alias)
	if err != nil {
		return "", err
	}
	return r.InvokeHandle(ctx, handle, req)
}

// InvokeHandle dispatches a request to the backend of a resolved handle.
func (r *Registry) InvokeHandle(ctx context.Context, handle Handle, req Request) (string, error) {
	switch handle.Provider {
	case ProviderGemini:
		if r.gemini == nil {
			return "", fmt.Errorf("%w: gemini backend not configured", ErrModelUnavailable)
		}
		return r.gemini.GenerateText(ctx, handle.Model, handle.Temperature, req)
	case ProviderOpenAI:
		if r.openai == nil {
			return "", fmt.Errorf("%w: openai backend not configured", ErrModelUnavailable)
		}
		return r.openai.GenerateText(ctx, handle.Model, handle.Temperature, req)
	default:
		return "", fmt.Errorf("%w: no backend for provider %q", ErrModelUnavailable, handle.Provider)
	}
}
