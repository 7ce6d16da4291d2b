package similar

import (
	"context"
	"errors"
	"testing"

	"reelsmith/internal/core"
	"reelsmith/internal/vectorstore"
)

type fakeEmbedder struct {
	embedding []float64
	err       error
	calls     int
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	return f.embedding, f.err
}

type fakeSearcher struct {
	results   []vectorstore.SearchResult
	err       error
	calls     int
	lastQuery vectorstore.SearchQuery
}

func (f *fakeSearcher) Search(ctx context.Context, query vectorstore.SearchQuery) ([]vectorstore.SearchResult, error) {
	f.calls++
	f.lastQuery = query
	return f.results, f.err
}

func TestFindSimilarReturnsScriptsInOrder(t *testing.T) {
	first := &core.Script{ID: "s1", Hook: "First hook"}
	second := &core.Script{ID: "s2", Hook: "Second hook"}
	searcher := &fakeSearcher{results: []vectorstore.SearchResult{
		{ScriptID: "s1", Similarity: 0.95, Script: first},
		{ScriptID: "s2", Similarity: 0.8, Script: second},
	}}
	retriever := NewRetriever(&fakeEmbedder{embedding: []float64{0.1}}, searcher)

	scripts := retriever.FindSimilar(context.Background(), "user-1", "a new idea", 3)

	if len(scripts) != 2 {
		t.Fatalf("got %d scripts, want 2", len(scripts))
	}
	if scripts[0].ID != "s1" || scripts[1].ID != "s2" {
		t.Errorf("order lost: %s, %s", scripts[0].ID, scripts[1].ID)
	}
}

func TestFindSimilarQueryShape(t *testing.T) {
	searcher := &fakeSearcher{}
	retriever := NewRetriever(&fakeEmbedder{embedding: []float64{0.1, 0.2}}, searcher)

	retriever.FindSimilar(context.Background(), "user-1", "a new idea", 0)

	q := searcher.lastQuery
	if q.UserID != "user-1" {
		t.Errorf("UserID = %q", q.UserID)
	}
	if q.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want default %d", q.Limit, DefaultLimit)
	}
	if q.SimilarityThreshold != DefaultThreshold {
		t.Errorf("SimilarityThreshold = %v, want %v", q.SimilarityThreshold, DefaultThreshold)
	}
	if !q.IncludeScript {
		t.Error("expected IncludeScript to be set")
	}
	if len(q.Embedding) != 2 {
		t.Errorf("embedding not passed through, len = %d", len(q.Embedding))
	}
}

func TestFindSimilarEmbeddingFailureYieldsEmpty(t *testing.T) {
	searcher := &fakeSearcher{}
	embedder := &fakeEmbedder{err: errors.New("model unavailable")}
	retriever := NewRetriever(embedder, searcher)

	scripts := retriever.FindSimilar(context.Background(), "user-1", "a new idea", 3)

	if len(scripts) != 0 {
		t.Errorf("expected no scripts on embedding failure, got %d", len(scripts))
	}
	if searcher.calls != 0 {
		t.Error("search should not run without an embedding")
	}
}

func TestFindSimilarSearchFailureYieldsEmpty(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("db down")}
	retriever := NewRetriever(&fakeEmbedder{embedding: []float64{0.1}}, searcher)

	scripts := retriever.FindSimilar(context.Background(), "user-1", "a new idea", 3)

	if len(scripts) != 0 {
		t.Errorf("expected no scripts on search failure, got %d", len(scripts))
	}
}

func TestFindSimilarBlankTextSkipsLookup(t *testing.T) {
	searcher := &fakeSearcher{}
	embedder := &fakeEmbedder{embedding: []float64{0.1}}
	retriever := NewRetriever(embedder, searcher)

	scripts := retriever.FindSimilar(context.Background(), "user-1", "   \n", 3)

	if len(scripts) != 0 {
		t.Errorf("expected no scripts for blank text, got %d", len(scripts))
	}
	if embedder.calls != 0 || searcher.calls != 0 {
		t.Error("blank text should not reach the embedder or the store")
	}
}

func TestFindSimilarSkipsResultsWithoutScriptData(t *testing.T) {
	searcher := &fakeSearcher{results: []vectorstore.SearchResult{
		{ScriptID: "s1", Similarity: 0.9},
		{ScriptID: "s2", Similarity: 0.8, Script: &core.Script{ID: "s2"}},
	}}
	retriever := NewRetriever(&fakeEmbedder{embedding: []float64{0.1}}, searcher)

	scripts := retriever.FindSimilar(context.Background(), "user-1", "a new idea", 3)

	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	if scripts[0].ID != "s2" {
		t.Errorf("unexpected script %s", scripts[0].ID)
	}
}
