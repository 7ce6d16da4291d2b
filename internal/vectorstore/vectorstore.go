package vectorstore

import (
	"context"

	"reelsmith/internal/core"
)

// VectorStore provides semantic search operations for script embeddings
// Using pgvector for production-scale similarity search with cosine distance
type VectorStore interface {
	// Store saves or updates the embedding vector for a script
	// Returns error if the script doesn't exist
	Store(ctx context.Context, scriptID string, embedding []float64) error

	// Search finds scripts similar to the query embedding within one user's
	// library. Uses cosine similarity (1 - cosine distance) for ranking and
	// returns results ordered by similarity (highest first).
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)

	// Delete removes an embedding (when a script is deleted)
	Delete(ctx context.Context, scriptID string) error

	// CreateIndex creates pgvector indexes for performance
	// Should be called after bulk inserts
	CreateIndex(ctx context.Context) error

	// GetStats returns statistics about the vector store
	GetStats(ctx context.Context) (*VectorStoreStats, error)
}

// SearchQuery configures semantic search parameters
type SearchQuery struct {
	// UserID scopes the search to a single user's scripts. Required:
	// similarity never crosses user boundaries.
	UserID string

	// Embedding is the query vector (768-dim for Gemini)
	Embedding []float64

	// Limit is the maximum number of results to return (default: 10)
	Limit int

	// SimilarityThreshold is the minimum cosine similarity (0.0-1.0, default: 0.7)
	// Higher values = more strict matching
	SimilarityThreshold float64

	// IncludeScript populates the Script field in results (default: false)
	// Set to true when you need full script data, not just IDs
	IncludeScript bool

	// ExcludeIDs filters out specific scripts (useful for "more like this" queries)
	ExcludeIDs []string
}

// SearchResult contains a similar script and its similarity score
type SearchResult struct {
	// ScriptID is the unique identifier
	ScriptID string

	// Similarity is the cosine similarity (0.0-1.0, higher = more similar)
	Similarity float64

	// Script is the full script data (only populated if IncludeScript=true)
	Script *core.Script

	// Distance is the raw cosine distance (lower = more similar)
	// Similarity = 1 - Distance
	Distance float64
}

// VectorStoreStats provides metrics about the vector store
type VectorStoreStats struct {
	// TotalEmbeddings is the count of stored embeddings
	TotalEmbeddings int64

	// EmbeddingDimensions is the vector size (should be 768 for Gemini)
	EmbeddingDimensions int

	// IndexType describes the pgvector index (e.g., "ivfflat", "hnsw")
	IndexType string
}

// DefaultSearchQuery returns sensible defaults
func DefaultSearchQuery(userID string, embedding []float64) SearchQuery {
	return SearchQuery{
		UserID:              userID,
		Embedding:           embedding,
		Limit:               10,
		SimilarityThreshold: 0.7,
		IncludeScript:       false,
		ExcludeIDs:          []string{},
	}
}
