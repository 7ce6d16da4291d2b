package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
	"reelsmith/internal/llm"
	"reelsmith/internal/logger"
	"reelsmith/internal/parse"
	"reelsmith/internal/persistence"
	"reelsmith/internal/prompts"
)

// Defaults applied when job configuration is absent.
const (
	DefaultWorkers      = 2
	DefaultQueueSize    = 16
	DefaultPollInterval = 2 * time.Second
	DefaultStaleAfter   = 30 * time.Minute
)

const staleSweepDetail = "analysis timed out: worker did not finish"

// TechnicalAnalyzer measures a video. Implemented by the Video
// Intelligence adapter.
type TechnicalAnalyzer interface {
	Analyze(ctx context.Context, videoURL string) (core.TechnicalAnalysis, error)
}

// ModelInvoker resolves aliases and executes model calls.
type ModelInvoker interface {
	Resolve(alias core.ModelAlias) (llm.Handle, error)
	InvokeHandle(ctx context.Context, handle llm.Handle, req llm.Request) (string, error)
}

// Runner drains the job queue. Workers claim jobs one at a time; the
// claim itself is the queued -> processing transition, so two runners
// sharing a database never execute the same job.
type Runner struct {
	jobs       persistence.AnalysisJobRepository
	analyzer   TechnicalAnalyzer
	models     ModelInvoker
	workers    int
	poll       time.Duration
	staleAfter time.Duration
	nudge      chan struct{}
	now        func() time.Time
	log        zerolog.Logger
}

// NewRunner creates a runner from job configuration.
func NewRunner(jobs persistence.AnalysisJobRepository, analyzer TechnicalAnalyzer, models ModelInvoker, cfg config.Jobs) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	poll := DefaultPollInterval
	if cfg.PollInterval != "" {
		if parsed, err := time.ParseDuration(cfg.PollInterval); err == nil {
			poll = parsed
		}
	}
	staleAfter := DefaultStaleAfter
	if cfg.StaleAfter != "" {
		if parsed, err := time.ParseDuration(cfg.StaleAfter); err == nil {
			staleAfter = parsed
		}
	}

	return &Runner{
		jobs:       jobs,
		analyzer:   analyzer,
		models:     models,
		workers:    workers,
		poll:       poll,
		staleAfter: staleAfter,
		nudge:      make(chan struct{}, queueSize),
		now:        time.Now,
		log:        logger.Get(),
	}
}

// Nudge wakes a worker without blocking. A full buffer is fine: some
// worker is already awake and will drain the queue.
func (r *Runner) Nudge() {
	select {
	case r.nudge <- struct{}{}:
	default:
	}
}

// Run executes jobs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.log.Info().
		Int("workers", r.workers).
		Dur("poll_interval", r.poll).
		Dur("stale_after", r.staleAfter).
		Msg("Analysis runner started")

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r.workLoop(ctx, worker)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.sweepLoop(ctx)
	}()

	wg.Wait()
	r.log.Info().Msg("Analysis runner stopped")
}

// RunOnce claims and executes at most one queued job, reporting whether
// one ran.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	job, err := r.jobs.ClaimNextQueued(ctx, r.now().UTC())
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	r.execute(ctx, job)
	return true, nil
}

func (r *Runner) workLoop(ctx context.Context, worker int) {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		r.drain(ctx, worker)
		select {
		case <-ctx.Done():
			return
		case <-r.nudge:
		case <-ticker.C:
		}
	}
}

// drain claims and executes jobs until the queue is empty or the
// context ends.
func (r *Runner) drain(ctx context.Context, worker int) {
	for ctx.Err() == nil {
		ran, err := r.RunOnce(ctx)
		if err != nil {
			r.log.Error().Err(err).Int("worker", worker).Msg("Failed to claim queued job")
			return
		}
		if !ran {
			return
		}
	}
}

// execute runs one claimed job to a terminal state. Terminal writes are
// guarded by the processing status, so at most one of completion,
// failure, or a stale sweep lands.
func (r *Runner) execute(ctx context.Context, job *core.AnalysisJob) {
	log := r.log.With().Str("job_id", job.ID).Str("user_id", job.UserID).Logger()
	log.Info().Str("video_url", job.VideoURL).Msg("Analysis started")

	defer func() {
		if rec := recover(); rec != nil {
			r.finishFailed(ctx, job.ID, fmt.Sprintf("analysis panicked: %v", rec), log)
		}
	}()

	results, err := r.analyze(ctx, job.VideoURL)
	if err != nil {
		r.finishFailed(ctx, job.ID, err.Error(), log)
		return
	}

	landed, err := r.jobs.Complete(ctx, job.ID, results, r.now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to record completion")
		return
	}
	if !landed {
		log.Warn().Msg("Job was no longer processing when completion landed")
		return
	}
	log.Info().
		Float64("virality_score", results.Qualitative.ViralityScore).
		Int("recommendations", len(results.Recommendations)).
		Msg("Analysis completed")
}

func (r *Runner) analyze(ctx context.Context, videoURL string) (*core.AnalysisResults, error) {
	technical, err := r.analyzer.Analyze(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	qualitative, err := r.judge(ctx, technical)
	if err != nil {
		return nil, err
	}

	return &core.AnalysisResults{
		Technical:       technical,
		Qualitative:     qualitative,
		Recommendations: Recommendations(technical, qualitative),
	}, nil
}

// judge runs the qualitative step on the balanced model. An unparseable
// response still completes the job; the parse error travels inside the
// result.
func (r *Runner) judge(ctx context.Context, technical core.TechnicalAnalysis) (core.QualitativeAnalysis, error) {
	handle, err := r.models.Resolve(core.AliasBalanced)
	if err != nil {
		return core.QualitativeAnalysis{}, err
	}

	raw, err := r.models.InvokeHandle(ctx, handle, llm.Request{
		UserPrompt: prompts.QualitativeAnalysisPrompt(technical),
		ForceJSON:  true,
		Schema:     prompts.AnalysisSchema(),
	})
	if err != nil {
		return core.QualitativeAnalysis{}, err
	}
	return parse.Analysis(raw), nil
}

func (r *Runner) finishFailed(ctx context.Context, jobID, detail string, log zerolog.Logger) {
	landed, err := r.jobs.Fail(ctx, jobID, detail, r.now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to record job failure")
		return
	}
	if !landed {
		log.Warn().Msg("Job was no longer processing when failure landed")
		return
	}
	log.Warn().Str("error_detail", detail).Msg("Analysis failed")
}

// sweepLoop recovers jobs orphaned by a dead worker. It runs once at
// startup for orphans of a previous process, then on its own interval.
func (r *Runner) sweepLoop(ctx context.Context) {
	if r.staleAfter <= 0 {
		return
	}

	r.sweep(ctx)
	ticker := time.NewTicker(r.staleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	now := r.now().UTC()
	swept, err := r.jobs.SweepStale(ctx, now.Add(-r.staleAfter), staleSweepDetail, now)
	if err != nil {
		r.log.Error().Err(err).Msg("Stale job sweep failed")
		return
	}
	if swept > 0 {
		r.log.Warn().Int64("swept", swept).Msg("Failed stale processing jobs")
	}
}
