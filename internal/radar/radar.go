// Package radar implements the daily cross-platform trends sweep: fetch raw
// signals per platform, synthesize them into a creator-facing report, and
// persist the outcome as a snapshot. A run never raises past its caller; a
// failed run leaves a failed snapshot behind so a missing day in the table
// always means the job did not start.
package radar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
	"reelsmith/internal/llm"
	"reelsmith/internal/logger"
	"reelsmith/internal/parse"
	"reelsmith/internal/persistence"
	"reelsmith/internal/prompts"
	"reelsmith/internal/search"
)

const (
	// DefaultSignalsPerPlatform caps how many signals one platform
	// contributes to a snapshot.
	DefaultSignalsPerPlatform = 10

	// fetchBatch is how many results to request per query before the
	// per-platform cap is applied. Fetching wide and capping late keeps the
	// cap meaningful when a provider returns thin results.
	fetchBatch = 20
)

// platform couples a signal bucket with the query that fills it. The query
// is a format string taking the current year, so the phrasing stays fresh
// without anyone editing it each January.
type platform struct {
	name  string
	query string
	news  bool // answer from the news index rather than organic results
}

var platforms = []platform{
	{name: "youtube", query: "trending topics YouTube creators %d"},
	{name: "tiktok", query: "TikTok viral trends challenges %d"},
	{name: "instagram", query: "Instagram Reels trends viral content %d"},
	{name: "general", query: "viral content trends social media %d", news: true},
}

// ModelInvoker is the slice of the model registry the radar needs.
type ModelInvoker interface {
	Resolve(alias core.ModelAlias) (llm.Handle, error)
	InvokeHandle(ctx context.Context, handle llm.Handle, req llm.Request) (string, error)
}

// Radar runs the trends sweep. One general search provider answers the
// per-platform queries; platform-native providers (trending charts,
// community feeds) can be attached to individual buckets on top.
type Radar struct {
	general     search.Provider
	native      map[string]search.Provider
	models      ModelInvoker
	snapshots   persistence.TrendsSnapshotRepository
	perPlatform int

	now func() time.Time
	log zerolog.Logger
}

// New builds a radar around the given general search provider.
func New(general search.Provider, models ModelInvoker, snapshots persistence.TrendsSnapshotRepository, cfg config.Trends) *Radar {
	perPlatform := cfg.SignalsPerPlatform
	if perPlatform <= 0 {
		perPlatform = DefaultSignalsPerPlatform
	}
	return &Radar{
		general:     general,
		native:      make(map[string]search.Provider),
		models:      models,
		snapshots:   snapshots,
		perPlatform: perPlatform,
		now:         time.Now,
		log:         logger.Get(),
	}
}

// AddNativeSource merges a platform's own source (its trending chart, its
// community feed) into that platform's bucket ahead of web search results.
func (r *Radar) AddNativeSource(platformName string, provider search.Provider) {
	r.native[platformName] = provider
}

// Run executes one sweep and persists its snapshot, completed or failed.
// The returned error is reserved for the cases where no snapshot could be
// written at all; a failed run is reported through the snapshot status.
func (r *Radar) Run(ctx context.Context) (*core.TrendsSnapshot, error) {
	r.log.Info().Msg("Trends radar run started")

	signals, err := r.fetchSignals(ctx)
	if err != nil {
		return r.finishFailed(ctx, signals, err)
	}

	report, err := r.synthesize(ctx, signals)
	if err != nil {
		return r.finishFailed(ctx, signals, err)
	}

	now := r.now().UTC()
	snapshot := &core.TrendsSnapshot{
		ID:        uuid.NewString(),
		Date:      now,
		Signals:   signals,
		Report:    report,
		Status:    core.SnapshotCompleted,
		CreatedAt: now,
	}
	if err := r.snapshots.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store trends snapshot: %w", err)
	}

	r.prune(ctx)

	r.log.Info().
		Str("snapshot_id", snapshot.ID).
		Int("platforms", len(signals)).
		Int("top_trends", len(report.TopTrends)).
		Msg("Trends radar run completed")

	return snapshot, nil
}

// Latest returns the most recent snapshots, newest first.
func (r *Radar) Latest(ctx context.Context, limit int) ([]core.TrendsSnapshot, error) {
	return r.snapshots.Latest(ctx, limit)
}

// fetchSignals gathers per-platform signals. A platform whose fetches all
// fail contributes nothing; the fetch as a whole fails only when every
// platform comes back empty.
func (r *Radar) fetchSignals(ctx context.Context) (map[string][]core.TrendSignal, error) {
	signals := make(map[string][]core.TrendSignal, len(platforms))
	var failures []string
	year := r.now().UTC().Year()

	for _, p := range platforms {
		var bucket []core.TrendSignal

		// The platform's own source leads the bucket; it speaks with more
		// authority than a web search about the platform.
		if native, ok := r.native[p.name]; ok {
			results, err := native.Search(ctx, fmt.Sprintf(p.query, year), search.Config{MaxResults: r.perPlatform})
			if err != nil {
				r.log.Warn().Err(err).Str("platform", p.name).Str("provider", native.GetName()).Msg("Native signal fetch failed")
				failures = append(failures, fmt.Sprintf("%s (%s): %v", p.name, native.GetName(), err))
			} else {
				bucket = append(bucket, toSignals(results)...)
			}
		}

		results, err := r.general.Search(ctx, fmt.Sprintf(p.query, year), search.Config{
			MaxResults: fetchBatch,
			News:       p.news,
		})
		if err != nil {
			r.log.Warn().Err(err).Str("platform", p.name).Str("provider", r.general.GetName()).Msg("Signal fetch failed")
			failures = append(failures, fmt.Sprintf("%s: %v", p.name, err))
		} else {
			bucket = append(bucket, toSignals(results)...)
		}

		if len(bucket) > r.perPlatform {
			bucket = bucket[:r.perPlatform]
		}
		if len(bucket) > 0 {
			signals[p.name] = bucket
			r.log.Debug().Str("platform", p.name).Int("signals", len(bucket)).Msg("Platform signals fetched")
		}
	}

	if len(signals) == 0 {
		detail := "no trend signals fetched"
		if len(failures) > 0 {
			detail = fmt.Sprintf("%s: %s", detail, strings.Join(failures, "; "))
		}
		return signals, errors.New(detail)
	}

	return signals, nil
}

// synthesize asks the balanced model to turn raw signals into a report.
func (r *Radar) synthesize(ctx context.Context, signals map[string][]core.TrendSignal) (*core.TrendsReport, error) {
	handle, err := r.models.Resolve(core.AliasBalanced)
	if err != nil {
		return nil, err
	}

	raw, err := r.models.InvokeHandle(ctx, handle, llm.Request{
		UserPrompt: prompts.TrendSynthesisPrompt(signals),
		ForceJSON:  true,
		Schema:     prompts.TrendsSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("trend synthesis failed: %w", err)
	}

	report, err := parse.Trends(raw)
	if err != nil {
		return nil, fmt.Errorf("trend synthesis produced unusable output: %w", err)
	}

	return report, nil
}

// finishFailed records a failed run. The signals fetched so far are kept in
// the snapshot so a partial fetch is still inspectable afterwards.
func (r *Radar) finishFailed(ctx context.Context, signals map[string][]core.TrendSignal, cause error) (*core.TrendsSnapshot, error) {
	now := r.now().UTC()
	snapshot := &core.TrendsSnapshot{
		ID:          uuid.NewString(),
		Date:        now,
		Signals:     signals,
		Status:      core.SnapshotFailed,
		ErrorDetail: cause.Error(),
		CreatedAt:   now,
	}
	if err := r.snapshots.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to record failed radar run (%v): %w", cause, err)
	}

	r.log.Error().Err(cause).Str("snapshot_id", snapshot.ID).Msg("Trends radar run failed")

	return snapshot, nil
}

// prune drops snapshots dated before the first day of the current month.
// Pruning is housekeeping: a failure here is logged and does not demote an
// otherwise successful run.
func (r *Radar) prune(ctx context.Context) {
	now := r.now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	deleted, err := r.snapshots.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		r.log.Warn().Err(err).Msg("Snapshot pruning failed")
		return
	}
	if deleted > 0 {
		r.log.Debug().Int64("deleted", deleted).Msg("Pruned old trends snapshots")
	}
}

// toSignals converts provider results into the persisted signal shape.
func toSignals(results []search.Result) []core.TrendSignal {
	signals := make([]core.TrendSignal, 0, len(results))
	for _, result := range results {
		signals = append(signals, core.TrendSignal{
			Title:   result.Title,
			Snippet: result.Snippet,
			URL:     result.URL,
			Source:  result.Source,
		})
	}
	return signals
}
