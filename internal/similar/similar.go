// Package similar finds a user's previous scripts that are semantically
// close to a new idea. Retrieval is best-effort: a failed embedding or
// search degrades to "no similar scripts" so generation can proceed
// without dedup context.
package similar

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"reelsmith/internal/core"
	"reelsmith/internal/logger"
	"reelsmith/internal/vectorstore"
)

const (
	// DefaultLimit caps how many prior scripts feed the dedup context.
	DefaultLimit = 3

	// DefaultThreshold is the minimum cosine similarity for a match.
	DefaultThreshold = 0.7
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Searcher runs similarity queries against stored script embeddings.
type Searcher interface {
	Search(ctx context.Context, query vectorstore.SearchQuery) ([]vectorstore.SearchResult, error)
}

// Retriever looks up semantically similar previous scripts for a user.
type Retriever struct {
	embedder  Embedder
	store     Searcher
	threshold float64
	log       zerolog.Logger
}

// NewRetriever creates a retriever with the default similarity threshold.
func NewRetriever(embedder Embedder, store Searcher) *Retriever {
	return &Retriever{
		embedder:  embedder,
		store:     store,
		threshold: DefaultThreshold,
		log:       logger.Get(),
	}
}

// FindSimilar returns up to limit of the user's previous scripts whose
// embeddings sit above the similarity threshold, ordered most similar
// first. It never fails: any problem is logged and an empty result is
// returned.
func (r *Retriever) FindSimilar(ctx context.Context, userID, text string, limit int) []core.Script {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Similarity lookup skipped: embedding failed")
		return nil
	}

	results, err := r.store.Search(ctx, vectorstore.SearchQuery{
		UserID:              userID,
		Embedding:           embedding,
		Limit:               limit,
		SimilarityThreshold: r.threshold,
		IncludeScript:       true,
	})
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Similarity lookup skipped: search failed")
		return nil
	}

	scripts := make([]core.Script, 0, len(results))
	for _, result := range results {
		if result.Script == nil {
			continue
		}
		scripts = append(scripts, *result.Script)
	}
	return scripts
}
