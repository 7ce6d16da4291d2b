package llm

import (
	"context"
	"errors"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
)

type fakeBackend struct {
	lastModel string
	lastTemp  float32
	lastReq   Request
	response  string
	err       error
	calls     int
}

func (f *fakeBackend) GenerateText(ctx context.Context, model string, temperature float32, req Request) (string, error) {
	f.calls++
	f.lastModel = model
	f.lastTemp = temperature
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func registryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AI.Gemini.FastModel = "fast-model"
	cfg.AI.Gemini.CreativeModel = "creative-model"
	cfg.AI.Gemini.FastTemperature = 0.5
	cfg.AI.Gemini.CreativeTemperature = 0.7
	cfg.AI.OpenAI.Model = "balanced-model"
	cfg.AI.OpenAI.Temperature = 0.6
	return cfg
}

func TestResolveKnownAliases(t *testing.T) {
	registry := NewRegistry(registryConfig(), &fakeBackend{}, &fakeBackend{})

	tests := []struct {
		alias       core.ModelAlias
		provider    string
		model       string
		temperature float32
	}{
		{core.AliasFastCheap, ProviderGemini, "fast-model", 0.5},
		{core.AliasBalanced, ProviderOpenAI, "balanced-model", 0.6},
		{core.AliasBestCreative, ProviderGemini, "creative-model", 0.7},
	}

	for _, tt := range tests {
		handle, err := registry.Resolve(tt.alias)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tt.alias, err)
		}
		if handle.Provider != tt.provider {
			t.Errorf("Resolve(%q) provider = %q, want %q", tt.alias, handle.Provider, tt.provider)
		}
		if handle.Model != tt.model {
			t.Errorf("Resolve(%q) model = %q, want %q", tt.alias, handle.Model, tt.model)
		}
		if handle.Temperature != tt.temperature {
			t.Errorf("Resolve(%q) temperature = %v, want %v", tt.alias, handle.Temperature, tt.temperature)
		}
	}
}

func TestResolveUnknownAlias(t *testing.T) {
	registry := NewRegistry(registryConfig(), &fakeBackend{}, &fakeBackend{})

	_, err := registry.Resolve(core.ModelAlias("super-turbo"))
	if err == nil {
		t.Fatal("expected error for unknown alias, got nil")
	}
	if !errors.Is(err, ErrUnknownModelAlias) {
		t.Errorf("expected ErrUnknownModelAlias, got %v", err)
	}
}

func TestResolveDefaultsApplied(t *testing.T) {
	registry := NewRegistry(&config.Config{}, &fakeBackend{}, &fakeBackend{})

	handle, err := registry.Resolve(core.AliasFastCheap)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if handle.Model != DefaultFastModel {
		t.Errorf("default fast model = %q, want %q", handle.Model, DefaultFastModel)
	}
	if handle.Temperature != 0.5 {
		t.Errorf("default fast temperature = %v, want 0.5", handle.Temperature)
	}

	handle, err = registry.Resolve(core.AliasBalanced)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if handle.Model != DefaultBalancedModel {
		t.Errorf("default balanced model = %q, want %q", handle.Model, DefaultBalancedModel)
	}
}

func TestInvokeRoutesToBackends(t *testing.T) {
	gemini := &fakeBackend{response: "gemini says hi"}
	oai := &fakeBackend{response: "openai says hi"}
	registry := NewRegistry(registryConfig(), gemini, oai)

	req := Request{SystemPrompt: "system", UserPrompt: "user"}

	text, err := registry.Invoke(context.Background(), core.AliasBestCreative, req)
	if err != nil {
		t.Fatalf("Invoke(best-creative) returned error: %v", err)
	}
	if text != "gemini says hi" {
		t.Errorf("Invoke(best-creative) = %q, want gemini response", text)
	}
	if gemini.lastModel != "creative-model" || gemini.lastTemp != 0.7 {
		t.Errorf("gemini backend got model=%q temp=%v, want creative-model/0.7", gemini.lastModel, gemini.lastTemp)
	}
	if oai.calls != 0 {
		t.Errorf("openai backend called %d times, want 0", oai.calls)
	}

	text, err = registry.Invoke(context.Background(), core.AliasBalanced, req)
	if err != nil {
		t.Fatalf("Invoke(balanced) returned error: %v", err)
	}
	if text != "openai says hi" {
		t.Errorf("Invoke(balanced) = %q, want openai response", text)
	}
	if oai.lastModel != "balanced-model" {
		t.Errorf("openai backend got model %q, want balanced-model", oai.lastModel)
	}
	if oai.lastReq.SystemPrompt != "system" || oai.lastReq.UserPrompt != "user" {
		t.Errorf("openai backend got prompts %+v, want originals preserved", oai.lastReq)
	}
}

func TestInvokeUnknownAlias(t *testing.T) {
	registry := NewRegistry(registryConfig(), &fakeBackend{}, &fakeBackend{})

	_, err := registry.Invoke(context.Background(), core.ModelAlias("nope"), Request{UserPrompt: "hi"})
	if !errors.Is(err, ErrUnknownModelAlias) {
		t.Errorf("expected ErrUnknownModelAlias, got %v", err)
	}
}

func TestInvokeHandleUnknownProvider(t *testing.T) {
	registry := NewRegistry(registryConfig(), &fakeBackend{}, &fakeBackend{})

	_, err := registry.InvokeHandle(context.Background(), Handle{Provider: "carrier-pigeon", Model: "m"}, Request{UserPrompt: "hi"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestInvokePropagatesBackendError(t *testing.T) {
	backendErr := errors.New("quota exhausted upstream")
	gemini := &fakeBackend{err: backendErr}
	registry := NewRegistry(registryConfig(), gemini, &fakeBackend{})

	_, err := registry.Invoke(context.Background(), core.AliasFastCheap, Request{UserPrompt: "hi"})
	if !errors.Is(err, backendErr) {
		t.Errorf("expected backend error to propagate, got %v", err)
	}
}

func TestClassifyInvokeError(t *testing.T) {
	err := classifyInvokeError("op", context.DeadlineExceeded)
	if !errors.Is(err, ErrModelTimeout) {
		t.Errorf("deadline exceeded should map to ErrModelTimeout, got %v", err)
	}

	err = classifyInvokeError("op", errors.New("boom"))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("generic failure should map to ErrModelUnavailable, got %v", err)
	}
}
