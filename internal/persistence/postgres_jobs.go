package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reelsmith/internal/core"
)

// postgresJobRepo implements AnalysisJobRepository for PostgreSQL. Every
// transition is guarded by the expected current status, which makes the
// queued -> processing -> terminal ordering a database invariant instead of
// a runtime convention.
type postgresJobRepo struct {
	db *sql.DB
}

func (r *postgresJobRepo) Create(ctx context.Context, job *core.AnalysisJob) error {
	resultsJSON, err := marshalResults(job.Results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_jobs (
			id, user_id, video_url, status, results, error_detail, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		job.ID, job.UserID, job.VideoURL, job.Status, resultsJSON,
		job.ErrorDetail, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis job: %w", err)
	}
	return nil
}

func (r *postgresJobRepo) Get(ctx context.Context, jobID, userID string) (*core.AnalysisJob, error) {
	query := `
		SELECT id, user_id, video_url, status, results, error_detail, created_at, updated_at
		FROM analysis_jobs WHERE id = $1 AND user_id = $2
	`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, jobID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return nil, err
	}
	return job, nil
}

func (r *postgresJobRepo) GetByID(ctx context.Context, jobID string) (*core.AnalysisJob, error) {
	query := `
		SELECT id, user_id, video_url, status, results, error_detail, created_at, updated_at
		FROM analysis_jobs WHERE id = $1
	`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return nil, err
	}
	return job, nil
}

func (r *postgresJobRepo) List(ctx context.Context, userID string, opts ListOptions) ([]core.AnalysisJob, error) {
	query := `
		SELECT id, user_id, video_url, status, results, error_detail, created_at, updated_at
		FROM analysis_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	limit := opts.Limit
	if limit == 0 {
		limit = 50 // Default limit
	}
	rows, err := r.db.QueryContext(ctx, query, userID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.AnalysisJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *postgresJobRepo) MarkProcessing(ctx context.Context, jobID string, now time.Time) (bool, error) {
	query := `
		UPDATE analysis_jobs
		SET status = 'processing', updated_at = $2
		WHERE id = $1 AND status = 'queued'
	`
	result, err := r.db.ExecContext(ctx, query, jobID, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark job processing: %w", err)
	}
	return oneRowChanged(result)
}

func (r *postgresJobRepo) ClaimNextQueued(ctx context.Context, now time.Time) (*core.AnalysisJob, error) {
	query := `
		UPDATE analysis_jobs
		SET status = 'processing', updated_at = $1
		WHERE id = (
			SELECT id FROM analysis_jobs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, video_url, status, results, error_detail, created_at, updated_at
	`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim queued job: %w", err)
	}
	return job, nil
}

func (r *postgresJobRepo) Complete(ctx context.Context, jobID string, results *core.AnalysisResults, now time.Time) (bool, error) {
	resultsJSON, err := marshalResults(results)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE analysis_jobs
		SET status = 'completed', results = $2, updated_at = $3
		WHERE id = $1 AND status = 'processing'
	`
	result, err := r.db.ExecContext(ctx, query, jobID, resultsJSON, now)
	if err != nil {
		return false, fmt.Errorf("failed to complete job: %w", err)
	}
	return oneRowChanged(result)
}

func (r *postgresJobRepo) Fail(ctx context.Context, jobID, errorDetail string, now time.Time) (bool, error) {
	query := `
		UPDATE analysis_jobs
		SET status = 'failed', error_detail = $2, updated_at = $3
		WHERE id = $1 AND status = 'processing'
	`
	result, err := r.db.ExecContext(ctx, query, jobID, errorDetail, now)
	if err != nil {
		return false, fmt.Errorf("failed to fail job: %w", err)
	}
	return oneRowChanged(result)
}

func (r *postgresJobRepo) SweepStale(ctx context.Context, cutoff time.Time, errorDetail string, now time.Time) (int64, error) {
	query := `
		UPDATE analysis_jobs
		SET status = 'failed', error_detail = $2, updated_at = $3
		WHERE status = 'processing' AND updated_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff, errorDetail, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale jobs: %w", err)
	}
	swept, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return swept, nil
}

func scanJob(scanner rowScanner) (*core.AnalysisJob, error) {
	var job core.AnalysisJob
	var resultsJSON []byte

	err := scanner.Scan(
		&job.ID, &job.UserID, &job.VideoURL, &job.Status, &resultsJSON,
		&job.ErrorDetail, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(resultsJSON) > 0 {
		var results core.AnalysisResults
		if err := json.Unmarshal(resultsJSON, &results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job results: %w", err)
		}
		job.Results = &results
	}

	return &job, nil
}

func marshalResults(results *core.AnalysisResults) (interface{}, error) {
	if results == nil {
		return nil, nil
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job results: %w", err)
	}
	return resultsJSON, nil
}

func oneRowChanged(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// postgresSnapshotRepo implements TrendsSnapshotRepository for PostgreSQL
type postgresSnapshotRepo struct {
	db *sql.DB
}

func (r *postgresSnapshotRepo) Create(ctx context.Context, snapshot *core.TrendsSnapshot) error {
	signalsJSON, err := json.Marshal(snapshot.Signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}

	var reportJSON interface{}
	if snapshot.Report != nil {
		data, err := json.Marshal(snapshot.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		reportJSON = data
	}

	query := `
		INSERT INTO trends_snapshots (
			id, date, signals, report, status, error_detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.Date, signalsJSON, reportJSON,
		snapshot.Status, snapshot.ErrorDetail, snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trends snapshot: %w", err)
	}
	return nil
}

func (r *postgresSnapshotRepo) Latest(ctx context.Context, limit int) ([]core.TrendsSnapshot, error) {
	if limit <= 0 {
		limit = 1
	}

	query := `
		SELECT id, date, signals, report, status, error_detail, created_at
		FROM trends_snapshots
		ORDER BY date DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trends snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []core.TrendsSnapshot
	for rows.Next() {
		var snapshot core.TrendsSnapshot
		var signalsJSON, reportJSON []byte

		err := rows.Scan(
			&snapshot.ID, &snapshot.Date, &signalsJSON, &reportJSON,
			&snapshot.Status, &snapshot.ErrorDetail, &snapshot.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(signalsJSON) > 0 {
			if err := json.Unmarshal(signalsJSON, &snapshot.Signals); err != nil {
				return nil, fmt.Errorf("failed to unmarshal signals: %w", err)
			}
		}
		if len(reportJSON) > 0 {
			var report core.TrendsReport
			if err := json.Unmarshal(reportJSON, &report); err != nil {
				return nil, fmt.Errorf("failed to unmarshal report: %w", err)
			}
			snapshot.Report = &report
		}

		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func (r *postgresSnapshotRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM trends_snapshots WHERE date < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune trends snapshots: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return deleted, nil
}
