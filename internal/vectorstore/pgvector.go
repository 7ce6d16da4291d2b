package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"reelsmith/internal/core"
)

// PgVectorAdapter implements VectorStore using PostgreSQL with pgvector extension
// Provides production-scale semantic search with cosine similarity
type PgVectorAdapter struct {
	db *sql.DB
}

// NewPgVectorAdapter creates a new pgvector-based vector store
func NewPgVectorAdapter(db *sql.DB) *PgVectorAdapter {
	return &PgVectorAdapter{db: db}
}

// Store saves or updates the embedding vector for a script
func (p *PgVectorAdapter) Store(ctx context.Context, scriptID string, embedding []float64) error {
	vectorStr := formatVector(embedding)

	query := `
		UPDATE scripts
		SET embedding_vector = $1::vector,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := p.db.ExecContext(ctx, query, vectorStr, scriptID)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("script %s not found", scriptID)
	}

	return nil
}

// Search finds scripts similar to the query embedding within one user's library
// Uses cosine distance (<=> operator) and returns results ordered by similarity
func (p *PgVectorAdapter) Search(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	if query.UserID == "" {
		return nil, fmt.Errorf("user ID required for similarity search")
	}

	// Apply defaults
	if query.Limit == 0 {
		query.Limit = 10
	}
	if query.SimilarityThreshold == 0 {
		query.SimilarityThreshold = 0.7
	}

	vectorStr := formatVector(query.Embedding)

	// Build exclusion filter
	excludeClause := ""
	args := []interface{}{vectorStr, query.SimilarityThreshold, query.Limit, query.UserID}
	if len(query.ExcludeIDs) > 0 {
		excludeClause = "AND s.id NOT IN (SELECT unnest($5::uuid[]))"
		args = append(args, pq.Array(query.ExcludeIDs))
	}

	sqlQuery := fmt.Sprintf(`
		SELECT
			s.id,
			1 - (s.embedding_vector <=> $1::vector) as similarity,
			s.embedding_vector <=> $1::vector as distance
		FROM scripts s
		WHERE s.user_id = $4
		  AND s.embedding_vector IS NOT NULL
		  AND 1 - (s.embedding_vector <=> $1::vector) >= $2
		  %s
		ORDER BY s.embedding_vector <=> $1::vector
		LIMIT $3
	`, excludeClause)

	rows, err := p.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var result SearchResult
		if err := rows.Scan(&result.ScriptID, &result.Similarity, &result.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if query.IncludeScript {
		if err := p.populateScripts(ctx, results); err != nil {
			return nil, fmt.Errorf("failed to populate scripts: %w", err)
		}
	}

	return results, nil
}

// Delete removes an embedding (when a script is deleted)
func (p *PgVectorAdapter) Delete(ctx context.Context, scriptID string) error {
	query := `
		UPDATE scripts
		SET embedding_vector = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := p.db.ExecContext(ctx, query, scriptID)
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("script %s not found", scriptID)
	}

	return nil
}

// CreateIndex creates pgvector indexes for performance
// Uses HNSW (Hierarchical Navigable Small World) for best performance
func (p *PgVectorAdapter) CreateIndex(ctx context.Context) error {
	var exists bool
	checkQuery := `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE tablename = 'scripts'
			AND indexname = 'idx_scripts_embedding_vector'
		)
	`
	if err := p.db.QueryRowContext(ctx, checkQuery).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}

	if exists {
		return nil
	}

	// m=16 (number of connections per layer)
	// ef_construction=64 (size of dynamic candidate list during construction)
	indexQuery := `
		CREATE INDEX idx_scripts_embedding_vector
		ON scripts
		USING hnsw (embedding_vector vector_cosine_ops)
		WITH (m = 16, ef_construction = 64)
	`

	if _, err := p.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// GetStats returns statistics about the vector store
func (p *PgVectorAdapter) GetStats(ctx context.Context) (*VectorStoreStats, error) {
	var stats VectorStoreStats

	countQuery := `
		SELECT COUNT(*)
		FROM scripts
		WHERE embedding_vector IS NOT NULL
	`
	if err := p.db.QueryRowContext(ctx, countQuery).Scan(&stats.TotalEmbeddings); err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}

	stats.EmbeddingDimensions = 768

	indexQuery := `
		SELECT indexdef
		FROM pg_indexes
		WHERE tablename = 'scripts'
		AND indexname LIKE '%embedding%'
		LIMIT 1
	`
	var indexDef string
	if err := p.db.QueryRowContext(ctx, indexQuery).Scan(&indexDef); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to get index info: %w", err)
		}
		stats.IndexType = "none"
	} else {
		switch {
		case strings.Contains(indexDef, "hnsw"):
			stats.IndexType = "hnsw"
		case strings.Contains(indexDef, "ivfflat"):
			stats.IndexType = "ivfflat"
		default:
			stats.IndexType = "unknown"
		}
	}

	return &stats, nil
}

// populateScripts loads script data for search results
func (p *PgVectorAdapter) populateScripts(ctx context.Context, results []SearchResult) error {
	if len(results) == 0 {
		return nil
	}

	scriptIDs := make([]string, len(results))
	for i, r := range results {
		scriptIDs[i] = r.ScriptID
	}

	query := `
		SELECT id, user_id, title, hook, content, call_to_action,
		       tone, duration, platform, created_at, updated_at
		FROM scripts
		WHERE id = ANY($1::uuid[])
	`

	rows, err := p.db.QueryContext(ctx, query, pq.Array(scriptIDs))
	if err != nil {
		return fmt.Errorf("failed to query scripts: %w", err)
	}
	defer rows.Close()

	scriptsMap := make(map[string]*core.Script)
	for rows.Next() {
		script := &core.Script{}
		var tone, duration, platform string
		if err := rows.Scan(
			&script.ID,
			&script.UserID,
			&script.Title,
			&script.Hook,
			&script.Content,
			&script.CallToAction,
			&tone,
			&duration,
			&platform,
			&script.CreatedAt,
			&script.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan script: %w", err)
		}
		script.Tone = core.Tone(tone)
		script.Duration = core.Duration(duration)
		script.Platform = core.Platform(platform)
		scriptsMap[script.ID] = script
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	for i := range results {
		if script, ok := scriptsMap[results[i].ScriptID]; ok {
			results[i].Script = script
		}
	}

	return nil
}

// formatVector converts []float64 to PostgreSQL vector format
// Example: [0.1, 0.2, 0.3] -> "[0.1,0.2,0.3]"
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}

	result := "["
	for i, val := range embedding {
		if i > 0 {
			result += ","
		}
		result += fmt.Sprintf("%f", val)
	}
	result += "]"
	return result
}
