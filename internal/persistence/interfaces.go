// Package persistence provides the database contracts and PostgreSQL
// implementations for profiles, scripts, analysis jobs, and trend snapshots.
package persistence

import (
	"context"
	"time"

	"reelsmith/internal/core"
)

// ProfileRepository reads creator profiles. Profiles are written by the
// account system, never by this subsystem.
type ProfileRepository interface {
	// Get retrieves a profile by user ID
	Get(ctx context.Context, userID string) (*core.Profile, error)

	// GetPlan returns the user's subscription plan. A user without a stored
	// profile is treated as free.
	GetPlan(ctx context.Context, userID string) (core.Plan, error)
}

// ScriptRepository handles generated-script persistence operations.
type ScriptRepository interface {
	// Insert stores a newly generated script
	Insert(ctx context.Context, script *core.Script) error

	// Get retrieves a script by ID, scoped to its owner
	Get(ctx context.Context, scriptID, userID string) (*core.Script, error)

	// List retrieves a user's scripts, newest first
	List(ctx context.Context, userID string, opts ListOptions) ([]core.Script, error)

	// UpdateElement replaces a single script element and stamps updated_at
	UpdateElement(ctx context.Context, scriptID, userID string, element core.Element, value string, updatedAt time.Time) error

	// UpdateContent overwrites title, hook, content, call_to_action,
	// metadata, and embedding in one write, stamping updated_at
	UpdateContent(ctx context.Context, script *core.Script) error

	// CountSince counts a user's scripts created at or after the given time
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// AnalysisJobRepository drives the job state machine. Transition methods are
// guarded by the expected current status and report whether the write landed,
// which is what keeps terminal writes single-shot.
type AnalysisJobRepository interface {
	// Create stores a job in its initial queued state
	Create(ctx context.Context, job *core.AnalysisJob) error

	// Get retrieves a job by ID, scoped to its owner
	Get(ctx context.Context, jobID, userID string) (*core.AnalysisJob, error)

	// GetByID retrieves a job by ID without an ownership check, for the
	// execution path
	GetByID(ctx context.Context, jobID string) (*core.AnalysisJob, error)

	// List retrieves a user's jobs, newest first
	List(ctx context.Context, userID string, opts ListOptions) ([]core.AnalysisJob, error)

	// MarkProcessing transitions queued -> processing; false when the job
	// was not in queued
	MarkProcessing(ctx context.Context, jobID string, now time.Time) (bool, error)

	// ClaimNextQueued atomically claims the oldest queued job, or returns
	// nil when none is runnable
	ClaimNextQueued(ctx context.Context, now time.Time) (*core.AnalysisJob, error)

	// Complete transitions processing -> completed with results attached;
	// false when the job was not in processing
	Complete(ctx context.Context, jobID string, results *core.AnalysisResults, now time.Time) (bool, error)

	// Fail transitions processing -> failed with the error captured; false
	// when the job was not in processing
	Fail(ctx context.Context, jobID, errorDetail string, now time.Time) (bool, error)

	// SweepStale fails every processing job untouched since the cutoff and
	// returns how many were swept
	SweepStale(ctx context.Context, cutoff time.Time, errorDetail string, now time.Time) (int64, error)
}

// TrendsSnapshotRepository stores radar run outcomes.
type TrendsSnapshotRepository interface {
	// Create stores a snapshot, completed or failed
	Create(ctx context.Context, snapshot *core.TrendsSnapshot) error

	// Latest retrieves the most recent snapshots, newest first
	Latest(ctx context.Context, limit int) ([]core.TrendsSnapshot, error)

	// DeleteOlderThan removes snapshots dated before the cutoff and returns
	// how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ListOptions provides common pagination options
type ListOptions struct {
	Limit  int // Maximum number of results (0 for the default)
	Offset int // Number of results to skip
}

// Store aggregates the repositories behind one handle. It is constructed
// once at process start and passed to each component.
type Store interface {
	// Profiles returns the profile repository
	Profiles() ProfileRepository

	// Scripts returns the script repository
	Scripts() ScriptRepository

	// Jobs returns the analysis job repository
	Jobs() AnalysisJobRepository

	// Snapshots returns the trends snapshot repository
	Snapshots() TrendsSnapshotRepository

	// Close closes the database connection
	Close() error

	// Ping verifies the database connection
	Ping(ctx context.Context) error
}
