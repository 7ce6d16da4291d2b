package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"reelsmith/internal/config"
	"reelsmith/internal/core"
)

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db        *sql.DB
	profiles  ProfileRepository
	scripts   ScriptRepository
	jobs      AnalysisJobRepository
	snapshots TrendsSnapshotRepository
}

// NewPostgresStore opens a PostgreSQL connection pool and wires the
// repositories behind it.
func NewPostgresStore(cfg config.Database) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := 5 * time.Minute
	if cfg.ConnMaxLifetime != "" {
		if parsed, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			lifetime = parsed
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	store.profiles = &postgresProfileRepo{db: db}
	store.scripts = &postgresScriptRepo{db: db}
	store.jobs = &postgresJobRepo{db: db}
	store.snapshots = &postgresSnapshotRepo{db: db}

	return store, nil
}

func (s *PostgresStore) Profiles() ProfileRepository         { return s.profiles }
func (s *PostgresStore) Scripts() ScriptRepository           { return s.scripts }
func (s *PostgresStore) Jobs() AnalysisJobRepository         { return s.jobs }
func (s *PostgresStore) Snapshots() TrendsSnapshotRepository { return s.snapshots }

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying pool for the vector store and migrations.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// postgresProfileRepo implements ProfileRepository for PostgreSQL
type postgresProfileRepo struct {
	db *sql.DB
}

func (r *postgresProfileRepo) Get(ctx context.Context, userID string) (*core.Profile, error) {
	query := `
		SELECT user_id, plan, content_style, target_audience
		FROM profiles WHERE user_id = $1
	`
	var profile core.Profile
	var plan string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID, &plan, &profile.ContentStyle, &profile.TargetAudience,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile.Plan = normalizePlan(plan)
	return &profile, nil
}

func (r *postgresProfileRepo) GetPlan(ctx context.Context, userID string) (core.Plan, error) {
	profile, err := r.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return core.PlanFree, nil
		}
		return "", err
	}
	return profile.Plan, nil
}

// normalizePlan maps any stored plan value onto the two-tier model. Anything
// that is not explicitly paid counts as free, so unknown values can never
// grant unlimited generation.
func normalizePlan(plan string) core.Plan {
	if core.Plan(plan) == core.PlanPaid {
		return core.PlanPaid
	}
	return core.PlanFree
}

// postgresScriptRepo implements ScriptRepository for PostgreSQL
type postgresScriptRepo struct {
	db *sql.DB
}

func (r *postgresScriptRepo) Insert(ctx context.Context, script *core.Script) error {
	metadataJSON, err := json.Marshal(script.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	embeddingJSON, err := json.Marshal(script.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	query := `
		INSERT INTO scripts (
			id, user_id, title, hook, content, call_to_action,
			tone, duration, platform, metadata, embedding, embedding_vector,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CAST($12 AS VECTOR(768)), $13, $14)
	`

	_, err = r.db.ExecContext(ctx, query,
		script.ID, script.UserID, script.Title, script.Hook, script.Content,
		script.CallToAction, script.Tone, script.Duration, script.Platform,
		metadataJSON, embeddingJSON, vectorParam(script.Embedding),
		script.CreatedAt, script.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert script: %w", err)
	}
	return nil
}

func (r *postgresScriptRepo) Get(ctx context.Context, scriptID, userID string) (*core.Script, error) {
	query := `
		SELECT id, user_id, title, hook, content, call_to_action,
			   tone, duration, platform, metadata, embedding, created_at, updated_at
		FROM scripts WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, scriptID, userID)
	script, err := scanScriptRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("script %s: %w", scriptID, ErrScriptNotFound)
		}
		return nil, err
	}
	return script, nil
}

func (r *postgresScriptRepo) List(ctx context.Context, userID string, opts ListOptions) ([]core.Script, error) {
	query := `
		SELECT id, user_id, title, hook, content, call_to_action,
			   tone, duration, platform, metadata, embedding, created_at, updated_at
		FROM scripts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	limit := opts.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	rows, err := r.db.QueryContext(ctx, query, userID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	defer rows.Close()

	var scripts []core.Script
	for rows.Next() {
		script, err := scanScriptRows(rows)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, *script)
	}
	return scripts, rows.Err()
}

func (r *postgresScriptRepo) UpdateElement(ctx context.Context, scriptID, userID string, element core.Element, value string, updatedAt time.Time) error {
	var query string
	switch element {
	case core.ElementHook:
		query = `UPDATE scripts SET hook = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	case core.ElementCTA:
		query = `UPDATE scripts SET call_to_action = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	default:
		return fmt.Errorf("element %q has no dedicated column", element)
	}

	result, err := r.db.ExecContext(ctx, query, scriptID, userID, value, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update script element: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("script %s: %w", scriptID, ErrScriptNotFound)
	}
	return nil
}

func (r *postgresScriptRepo) UpdateContent(ctx context.Context, script *core.Script) error {
	metadataJSON, err := json.Marshal(script.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	embeddingJSON, err := json.Marshal(script.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	query := `
		UPDATE scripts SET
			title = $3, hook = $4, content = $5, call_to_action = $6,
			metadata = $7, embedding = $8, embedding_vector = CAST($9 AS VECTOR(768)),
			updated_at = $10
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		script.ID, script.UserID, script.Title, script.Hook, script.Content,
		script.CallToAction, metadataJSON, embeddingJSON, vectorParam(script.Embedding),
		script.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update script: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("script %s: %w", script.ID, ErrScriptNotFound)
	}
	return nil
}

func (r *postgresScriptRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM scripts WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scripts: %w", err)
	}
	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScriptRow(row *sql.Row) (*core.Script, error) {
	return scanScript(row)
}

func scanScriptRows(rows *sql.Rows) (*core.Script, error) {
	return scanScript(rows)
}

func scanScript(scanner rowScanner) (*core.Script, error) {
	var script core.Script
	var metadataJSON, embeddingJSON []byte

	err := scanner.Scan(
		&script.ID, &script.UserID, &script.Title, &script.Hook, &script.Content,
		&script.CallToAction, &script.Tone, &script.Duration, &script.Platform,
		&metadataJSON, &embeddingJSON, &script.CreatedAt, &script.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &script.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if len(embeddingJSON) > 0 {
		if err := json.Unmarshal(embeddingJSON, &script.Embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
		}
	}

	return &script, nil
}

// vectorParam converts an embedding to the pgvector text format, or NULL when
// the embedding is missing or has drifted from the fixed dimension.
// Format: '[1.0,2.0,3.0,...]' - pgvector can parse this format
func vectorParam(embedding []float64) interface{} {
	if len(embedding) != 768 {
		return nil
	}
	embeddingStr := "["
	for i, val := range embedding {
		if i > 0 {
			embeddingStr += ","
		}
		embeddingStr += fmt.Sprintf("%f", val)
	}
	embeddingStr += "]"
	return embeddingStr
}
