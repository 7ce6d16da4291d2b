package vectorstore

import (
	"context"
	"database/sql"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

func TestFormatVector(t *testing.T) {
	cases := []struct {
		name      string
		embedding []float64
		want      string
	}{
		{"empty", nil, "[]"},
		{"single", []float64{0.5}, "[0.500000]"},
		{"multiple", []float64{0.1, -0.2, 1}, "[0.100000,-0.200000,1.000000]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatVector(tc.embedding)
			if got != tc.want {
				t.Errorf("formatVector(%v) = %q, want %q", tc.embedding, got, tc.want)
			}
		})
	}
}

func TestSearchRequiresUserID(t *testing.T) {
	store := NewPgVectorAdapter(nil)

	_, err := store.Search(context.Background(), SearchQuery{Embedding: directionVector(0, 1)})
	if err == nil {
		t.Fatal("expected error for search without user ID")
	}
	if !strings.Contains(err.Error(), "user ID") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultSearchQuery(t *testing.T) {
	q := DefaultSearchQuery("user-1", []float64{0.1})
	if q.UserID != "user-1" {
		t.Errorf("UserID = %q", q.UserID)
	}
	if q.Limit != 10 {
		t.Errorf("Limit = %d, want 10", q.Limit)
	}
	if q.SimilarityThreshold != 0.7 {
		t.Errorf("SimilarityThreshold = %v, want 0.7", q.SimilarityThreshold)
	}
}

// TestPgVectorIntegration exercises the adapter against a live database.
// Run with: go test -v ./internal/vectorstore -run TestPgVectorIntegration
//
// Prerequisites:
// - PostgreSQL running with pgvector extension
// - DATABASE_URL environment variable set
// - Schema migrated (scripts table with embedding_vector column)
func TestPgVectorIntegration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	ctx := context.Background()
	store := NewPgVectorAdapter(db)

	userA := uuid.New().String()
	userB := uuid.New().String()

	// Seed three scripts with embeddings whose pairwise cosine similarities
	// are known: anchor, a close variant (0.9), and a distant one (0.3).
	// userB holds an exact copy of the anchor that must never surface in
	// userA's searches.
	anchor := seedScript(t, db, userA, "Anchor script", directionVector(0, 1))
	closeVariant := seedScript(t, db, userA, "Close variant", directionVector(0, 0.9))
	distant := seedScript(t, db, userA, "Distant script", directionVector(0, 0.3))
	foreign := seedScript(t, db, userB, "Other user's copy", directionVector(0, 1))
	defer cleanupScripts(t, db, anchor, closeVariant, distant, foreign)

	t.Run("Stats", func(t *testing.T) {
		stats, err := store.GetStats(ctx)
		if err != nil {
			t.Fatalf("Failed to get stats: %v", err)
		}

		t.Logf("📊 VectorStore Stats:")
		t.Logf("   Total Embeddings: %d", stats.TotalEmbeddings)
		t.Logf("   Embedding Dimensions: %d", stats.EmbeddingDimensions)
		t.Logf("   Index Type: %s", stats.IndexType)

		if stats.TotalEmbeddings < 4 {
			t.Errorf("Expected at least 4 embeddings, got %d", stats.TotalEmbeddings)
		}
	})

	t.Run("Index Creation", func(t *testing.T) {
		if err := store.CreateIndex(ctx); err != nil {
			t.Fatalf("Failed to create index: %v", err)
		}

		stats, _ := store.GetStats(ctx)
		t.Logf("🔧 Index Type after CreateIndex: %s", stats.IndexType)
	})

	t.Run("Search Is User Scoped", func(t *testing.T) {
		results, err := store.Search(ctx, SearchQuery{
			UserID:              userA,
			Embedding:           directionVector(0, 1),
			Limit:               10,
			SimilarityThreshold: 0.7,
			IncludeScript:       true,
			ExcludeIDs:          []string{anchor},
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		t.Logf("🔍 Found %d similar scripts for userA:", len(results))
		for i, r := range results {
			t.Logf("   [%d] Similarity: %.3f (Distance: %.3f) ID: %s", i+1, r.Similarity, r.Distance, r.ScriptID)
		}

		if len(results) != 1 {
			t.Fatalf("Expected exactly 1 result above threshold, got %d", len(results))
		}
		if results[0].ScriptID != closeVariant {
			t.Errorf("Expected close variant %s, got %s", closeVariant, results[0].ScriptID)
		}
		if results[0].Script == nil {
			t.Fatal("Expected populated script data")
		}
		if results[0].Script.Title != "Close variant" {
			t.Errorf("Script title = %q", results[0].Script.Title)
		}
		if math.Abs(results[0].Similarity-0.9) > 0.01 {
			t.Errorf("Similarity = %.3f, want ~0.9", results[0].Similarity)
		}
	})

	t.Run("Lower Threshold Admits Distant Scripts", func(t *testing.T) {
		results, err := store.Search(ctx, SearchQuery{
			UserID:              userA,
			Embedding:           directionVector(0, 1),
			Limit:               10,
			SimilarityThreshold: 0.2,
			ExcludeIDs:          []string{anchor},
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("Expected 2 results at threshold 0.2, got %d", len(results))
		}

		// Ordered by similarity, highest first.
		for i := 1; i < len(results); i++ {
			if results[i].Similarity > results[i-1].Similarity {
				t.Errorf("Results not sorted by similarity at index %d", i)
			}
		}
		if results[1].ScriptID != distant {
			t.Errorf("Expected distant script last, got %s", results[1].ScriptID)
		}
	})

	t.Run("Exclusions Apply", func(t *testing.T) {
		results, err := store.Search(ctx, SearchQuery{
			UserID:              userA,
			Embedding:           directionVector(0, 1),
			Limit:               10,
			SimilarityThreshold: 0.2,
			ExcludeIDs:          []string{anchor, closeVariant},
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		for _, r := range results {
			if r.ScriptID == anchor || r.ScriptID == closeVariant {
				t.Errorf("Excluded script %s appeared in results", r.ScriptID)
			}
		}
	})

	t.Run("Store and Delete Embedding", func(t *testing.T) {
		fresh := seedScript(t, db, userA, "Fresh script", nil)
		defer cleanupScripts(t, db, fresh)

		if err := store.Store(ctx, fresh, directionVector(1, 1)); err != nil {
			t.Fatalf("Failed to store embedding: %v", err)
		}

		results, err := store.Search(ctx, SearchQuery{
			UserID:              userA,
			Embedding:           directionVector(1, 1),
			SimilarityThreshold: 0.9,
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) == 0 {
			t.Fatal("Stored embedding not found by search")
		}

		if err := store.Delete(ctx, fresh); err != nil {
			t.Fatalf("Failed to delete embedding: %v", err)
		}

		results, err = store.Search(ctx, SearchQuery{
			UserID:              userA,
			Embedding:           directionVector(1, 1),
			SimilarityThreshold: 0.9,
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		for _, r := range results {
			if r.ScriptID == fresh {
				t.Error("Deleted embedding still surfaced in search")
			}
		}
	})

	t.Run("Store Unknown Script Fails", func(t *testing.T) {
		err := store.Store(ctx, uuid.New().String(), directionVector(0, 1))
		if err == nil {
			t.Error("Expected error storing embedding for unknown script")
		}
	})
}

// directionVector returns a unit-length 768-dim vector whose cosine
// similarity with directionVector(axis, 1) equals weight. The remaining
// magnitude goes to the following axis.
func directionVector(axis int, weight float64) []float64 {
	v := make([]float64, 768)
	v[axis] = weight
	v[(axis+1)%768] = math.Sqrt(1 - weight*weight)
	return v
}

func seedScript(t *testing.T, db *sql.DB, userID, title string, embedding []float64) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()

	var vector interface{}
	if embedding != nil {
		vector = formatVector(embedding)
	}

	_, err := db.Exec(`
		INSERT INTO scripts (
			id, user_id, title, hook, content, call_to_action,
			tone, duration, platform, embedding_vector, created_at, updated_at
		) VALUES ($1, $2, $3, 'hook', 'content', 'cta', 'casual', '60s', 'tiktok', CAST($4 AS VECTOR(768)), $5, $5)
	`, id, userID, title, vector, now)
	if err != nil {
		t.Fatalf("Failed to seed script: %v", err)
	}
	return id
}

func cleanupScripts(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()

	for _, id := range ids {
		if _, err := db.Exec(`DELETE FROM scripts WHERE id = $1`, id); err != nil {
			t.Logf("Warning: failed to clean up script %s: %v", id, err)
		}
	}
}
