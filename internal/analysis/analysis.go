// Package analysis runs background video analysis jobs: a manager that
// accepts submissions and answers status queries, and a runner that
// drains the queue through the technical and qualitative steps.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reelsmith/internal/core"
	"reelsmith/internal/logger"
	"reelsmith/internal/persistence"
)

// Waker nudges the runner after a submission so a queued job does not
// wait for the next poll tick.
type Waker interface {
	Nudge()
}

// Manager owns the submission and query surface of the job system.
type Manager struct {
	jobs persistence.AnalysisJobRepository
	wake Waker
	now  func() time.Time
	log  zerolog.Logger
}

// NewManager creates a manager. The waker may be nil when no runner is
// attached, such as a one-off CLI invocation that only submits.
func NewManager(jobs persistence.AnalysisJobRepository, wake Waker) *Manager {
	return &Manager{
		jobs: jobs,
		wake: wake,
		now:  time.Now,
		log:  logger.Get(),
	}
}

// Submit records a new analysis job in its queued state and returns
// immediately. Execution happens asynchronously on the runner.
func (m *Manager) Submit(ctx context.Context, userID, videoURL string) (*core.AnalysisJob, error) {
	userID = strings.TrimSpace(userID)
	videoURL = strings.TrimSpace(videoURL)
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if videoURL == "" {
		return nil, fmt.Errorf("video URL is required")
	}

	now := m.now().UTC()
	job := &core.AnalysisJob{
		ID:        uuid.New().String(),
		UserID:    userID,
		VideoURL:  videoURL,
		Status:    core.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to queue analysis job: %w", err)
	}

	if m.wake != nil {
		m.wake.Nudge()
	}

	m.log.Info().
		Str("job_id", job.ID).
		Str("user_id", userID).
		Str("video_url", videoURL).
		Msg("Analysis job queued")
	return job, nil
}

// GetStatus returns a job with its current state and any attached
// results, scoped to the owning user.
func (m *Manager) GetStatus(ctx context.Context, jobID, userID string) (*core.AnalysisJob, error) {
	return m.jobs.Get(ctx, jobID, userID)
}

// List returns the user's jobs, newest first.
func (m *Manager) List(ctx context.Context, userID string, opts persistence.ListOptions) ([]core.AnalysisJob, error) {
	return m.jobs.List(ctx, userID, opts)
}

// SweepStale fails every processing job untouched for longer than the
// given window. Covers workers that died mid-job.
func (m *Manager) SweepStale(ctx context.Context, staleAfter time.Duration) (int64, error) {
	now := m.now().UTC()
	return m.jobs.SweepStale(ctx, now.Add(-staleAfter), staleSweepDetail, now)
}
