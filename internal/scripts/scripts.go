// Package scripts implements the end-to-end script generation pipeline:
// admission, similarity-based dedup context, prompt composition, model
// invocation, parsing, embedding, and persistence. It also drives
// single-element regeneration against existing scripts.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reelsmith/internal/core"
	"reelsmith/internal/llm"
	"reelsmith/internal/logger"
	"reelsmith/internal/parse"
	"reelsmith/internal/persistence"
	"reelsmith/internal/prompts"
)

// Idea length bounds, in runes.
const (
	MinIdeaLength = 10
	MaxIdeaLength = 1000
)

var (
	// ErrInvalidRequest indicates the generation request failed validation.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrUnsupportedElement indicates an unknown regeneration target.
	ErrUnsupportedElement = errors.New("unsupported regeneration element")
)

// Admitter decides whether a user may generate a script right now.
type Admitter interface {
	CheckAndAdmit(ctx context.Context, userID string) error
}

// SimilarityFinder retrieves a user's semantically similar prior scripts.
type SimilarityFinder interface {
	FindSimilar(ctx context.Context, userID, text string, limit int) []core.Script
}

// ModelInvoker resolves aliases and invokes the resolved backend.
type ModelInvoker interface {
	Resolve(alias core.ModelAlias) (llm.Handle, error)
	InvokeHandle(ctx context.Context, handle llm.Handle, req llm.Request) (string, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// ProfileSource loads creator profiles for prompt steering.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*core.Profile, error)
}

// ScriptStore is the slice of script persistence the orchestrator needs.
type ScriptStore interface {
	Insert(ctx context.Context, script *core.Script) error
	Get(ctx context.Context, scriptID, userID string) (*core.Script, error)
	UpdateElement(ctx context.Context, scriptID, userID string, element core.Element, value string, updatedAt time.Time) error
	UpdateContent(ctx context.Context, script *core.Script) error
}

// Orchestrator composes quota, similarity, prompts, the model registry and
// the parser into the generate and regenerate operations.
type Orchestrator struct {
	quota     Admitter
	retriever SimilarityFinder
	models    ModelInvoker
	embedder  Embedder
	profiles  ProfileSource
	scripts   ScriptStore
	now       func() time.Time
	log       zerolog.Logger
}

// NewOrchestrator wires the generation pipeline.
func NewOrchestrator(quota Admitter, retriever SimilarityFinder, models ModelInvoker, embedder Embedder, profiles ProfileSource, scripts ScriptStore) *Orchestrator {
	return &Orchestrator{
		quota:     quota,
		retriever: retriever,
		models:    models,
		embedder:  embedder,
		profiles:  profiles,
		scripts:   scripts,
		now:       time.Now,
		log:       logger.Get(),
	}
}

// Generate runs the full pipeline for one request and persists the result.
// Quota rejection and validation failures surface before any model call;
// a failed embedding never blocks persistence.
func (o *Orchestrator) Generate(ctx context.Context, req core.GenerationRequest) (*core.Script, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := o.quota.CheckAndAdmit(ctx, req.UserID); err != nil {
		return nil, err
	}

	prior := o.retriever.FindSimilar(ctx, req.UserID, req.Idea, prompts.MaxDedupScripts)

	result, err := o.invokeGeneration(ctx, req, prior)
	if err != nil {
		return nil, err
	}

	now := o.now().UTC()
	script := &core.Script{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Title:        result.parsed.Title,
		Hook:         result.parsed.Hook,
		Content:      result.parsed.Content,
		CallToAction: result.parsed.CallToAction,
		Tone:         req.Tone,
		Duration:     req.Duration,
		Platform:     req.Platform,
		Metadata: core.ScriptMetadata{
			Idea:              req.Idea,
			AdditionalContext: req.AdditionalContext,
			GeneratedBy:       result.model,
		},
		Embedding: result.embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := o.scripts.Insert(ctx, script); err != nil {
		return nil, fmt.Errorf("failed to persist script: %w", err)
	}

	o.log.Info().
		Str("script_id", script.ID).
		Str("user_id", script.UserID).
		Str("model", result.model).
		Str("parse_source", string(result.parsed.Source)).
		Int("similar_scripts", len(prior)).
		Msg("Script generated")

	return script, nil
}

// RegenerateElement replaces one element of an existing script. Hook and
// CTA regeneration use the fast model and touch only that field plus
// updated_at; full regeneration re-runs the generation pipeline anchored
// on the existing script and overwrites title, hook, content and CTA
// atomically.
func (o *Orchestrator) RegenerateElement(ctx context.Context, userID, scriptID string, element core.Element, extraInstructions string) (*core.Script, error) {
	if !element.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedElement, element)
	}

	script, err := o.scripts.Get(ctx, scriptID, userID)
	if err != nil {
		return nil, err
	}

	switch element {
	case core.ElementHook:
		prompt := prompts.HookRegenerationPrompt(script.Content, script.Hook, extraInstructions)
		return o.replaceElement(ctx, script, core.ElementHook, prompt)
	case core.ElementCTA:
		prompt := prompts.CTARegenerationPrompt(script.Content, script.CallToAction, extraInstructions)
		return o.replaceElement(ctx, script, core.ElementCTA, prompt)
	default:
		return o.regenerateFull(ctx, script, extraInstructions)
	}
}

// replaceElement invokes the fast model for a single replacement element
// and persists only that field.
func (o *Orchestrator) replaceElement(ctx context.Context, script *core.Script, element core.Element, prompt string) (*core.Script, error) {
	handle, err := o.models.Resolve(core.AliasFastCheap)
	if err != nil {
		return nil, err
	}

	raw, err := o.models.InvokeHandle(ctx, handle, llm.Request{UserPrompt: prompt})
	if err != nil {
		return nil, err
	}

	// Single-element responses are plain text, not JSON.
	value := strings.TrimSpace(raw)
	now := o.now().UTC()

	if err := o.scripts.UpdateElement(ctx, script.ID, script.UserID, element, value, now); err != nil {
		return nil, err
	}

	switch element {
	case core.ElementHook:
		script.Hook = value
	case core.ElementCTA:
		script.CallToAction = value
	}
	script.UpdatedAt = now

	o.log.Info().
		Str("script_id", script.ID).
		Str("element", string(element)).
		Str("model", handle.Model).
		Msg("Script element regenerated")

	return script, nil
}

// regenerateFull re-runs the pipeline with the stored idea, the caller's
// extra instructions as context, and the existing script as the sole
// dedup anchor. It replaces an already-admitted script, so quota is not
// re-checked.
func (o *Orchestrator) regenerateFull(ctx context.Context, script *core.Script, extraInstructions string) (*core.Script, error) {
	req := core.GenerationRequest{
		UserID:            script.UserID,
		Idea:              script.Metadata.Idea,
		Tone:              script.Tone,
		Duration:          script.Duration,
		Platform:          script.Platform,
		AdditionalContext: extraInstructions,
	}

	result, err := o.invokeGeneration(ctx, req, []core.Script{*script})
	if err != nil {
		return nil, err
	}

	script.Title = result.parsed.Title
	script.Hook = result.parsed.Hook
	script.Content = result.parsed.Content
	script.CallToAction = result.parsed.CallToAction
	script.Metadata.GeneratedBy = result.model
	if extraInstructions != "" {
		script.Metadata.AdditionalContext = extraInstructions
	}
	script.Embedding = result.embedding
	script.UpdatedAt = o.now().UTC()

	if err := o.scripts.UpdateContent(ctx, script); err != nil {
		return nil, fmt.Errorf("failed to persist regenerated script: %w", err)
	}

	o.log.Info().
		Str("script_id", script.ID).
		Str("model", result.model).
		Str("parse_source", string(result.parsed.Source)).
		Msg("Script fully regenerated")

	return script, nil
}

type generationResult struct {
	parsed    core.ParsedScript
	model     string
	embedding []float64
}

// invokeGeneration composes the prompts, invokes the creative model,
// parses the response and computes the content embedding.
func (o *Orchestrator) invokeGeneration(ctx context.Context, req core.GenerationRequest, prior []core.Script) (*generationResult, error) {
	style, audience := o.profileSteering(ctx, req.UserID)

	handle, err := o.models.Resolve(core.AliasBestCreative)
	if err != nil {
		return nil, err
	}

	raw, err := o.models.InvokeHandle(ctx, handle, llm.Request{
		SystemPrompt: prompts.GenerationPrompt(req.Tone, req.Duration, req.Platform, style, audience),
		UserPrompt:   prompts.DedupContext(req.Idea, req.AdditionalContext, prior),
		ForceJSON:    true,
		Schema:       prompts.ScriptSchema(),
	})
	if err != nil {
		return nil, err
	}

	parsed := parse.Script(raw)
	if parsed.Source == core.ParseFallback {
		o.log.Warn().
			Str("user_id", req.UserID).
			Msg("Model response was not valid JSON, used fallback extraction")
	}

	return &generationResult{
		parsed:    parsed,
		model:     handle.Model,
		embedding: o.embedContent(ctx, req.UserID, parsed.Content),
	}, nil
}

// profileSteering returns the user's style and audience preferences, or
// empty strings when the profile is absent or unavailable.
func (o *Orchestrator) profileSteering(ctx context.Context, userID string) (style, audience string) {
	profile, err := o.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, persistence.ErrProfileNotFound) {
			o.log.Warn().Err(err).Str("user_id", userID).Msg("Profile lookup failed, generating without steering")
		}
		return "", ""
	}
	return profile.ContentStyle, profile.TargetAudience
}

// embedContent computes the content embedding. Failure degrades to a nil
// embedding so the script still persists.
func (o *Orchestrator) embedContent(ctx context.Context, userID, content string) []float64 {
	embedding, err := o.embedder.GenerateEmbedding(ctx, content)
	if err != nil {
		o.log.Warn().Err(err).Str("user_id", userID).Msg("Embedding failed, persisting script without vector")
		return nil
	}
	return embedding
}

func validateRequest(req core.GenerationRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}

	idea := strings.TrimSpace(req.Idea)
	length := utf8.RuneCountInString(idea)
	if length < MinIdeaLength {
		return fmt.Errorf("%w: idea must be at least %d characters", ErrInvalidRequest, MinIdeaLength)
	}
	if length > MaxIdeaLength {
		return fmt.Errorf("%w: idea must be at most %d characters", ErrInvalidRequest, MaxIdeaLength)
	}

	if !req.Tone.Valid() {
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidRequest, req.Tone)
	}
	if !req.Duration.Valid() {
		return fmt.Errorf("%w: unknown duration %q", ErrInvalidRequest, req.Duration)
	}
	if !req.Platform.Valid() {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidRequest, req.Platform)
	}
	return nil
}
